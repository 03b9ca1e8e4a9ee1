package service

import (
	"fmt"

	apperrors "github.com/Rishiraj17/backend-foundation/internal/errors"
	"golang.org/x/crypto/bcrypt"
)

// PasswordHasher wraps bcrypt with an injected cost factor. The
// plaintext is never logged or persisted.
type PasswordHasher struct {
	cost int
}

func NewPasswordHasher(cost int) *PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &PasswordHasher{cost: cost}
}

func (h *PasswordHasher) Hash(plaintext string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", fmt.Errorf("%w: %v", apperrors.ErrHashingFailure, err)
	}
	return string(hashed), nil
}

// Verify reports whether plaintext matches hash. Any comparison error,
// including a malformed stored hash, counts as a mismatch.
func (h *PasswordHasher) Verify(plaintext, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}
