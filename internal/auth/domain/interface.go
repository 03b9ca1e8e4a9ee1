package domain

import (
	"context"
	"time"
)

//go:generate mockgen -destination=../../mocks/mock_repositories.go -package=mocks github.com/Rishiraj17/backend-foundation/internal/auth/domain AccountRepository,TokenRepository

// ListFilter carries a sanitized admin listing query. SortBy and Order
// must already be whitelisted by the caller.
type ListFilter struct {
	Page   int
	Limit  int
	SortBy string
	Order  string
	Role   string
	Email  string
}

type AccountRepository interface {
	// GetByEmail returns (nil, nil) when no account matches.
	GetByEmail(ctx context.Context, email string) (*Account, error)
	// GetByID returns (nil, nil) when no account matches.
	GetByID(ctx context.Context, id string) (*Account, error)
	Create(ctx context.Context, account *Account) error
	// RecordFailedAttempt increments the failure counter and, when the
	// threshold is reached, resets it to zero and sets lock_until, all in
	// a single conditional update. It reports whether the lock was
	// triggered by this attempt.
	RecordFailedAttempt(ctx context.Context, id string, threshold int, lockUntil time.Time) (bool, error)
	// ClearLoginFailures zeroes the counter and clears both timestamps.
	ClearLoginFailures(ctx context.Context, id string) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	List(ctx context.Context, filter ListFilter) ([]Account, int, error)
}

type TokenRepository interface {
	Store(ctx context.Context, token *RefreshToken) error
	// GetByHash looks a token up by secret hash, including revoked rows,
	// so a replayed secret is distinguishable from one that never
	// existed. Returns (nil, nil) when no row matches.
	GetByHash(ctx context.Context, hash string) (*RefreshToken, error)
	// Revoke marks a single row revoked and reports whether this call
	// performed the revocation (false when already revoked or absent).
	Revoke(ctx context.Context, id string) (bool, error)
	RevokeAllForAccount(ctx context.Context, accountID string) error
	// ActiveByAccount returns unrevoked rows oldest-first by creation
	// time. Expiry is not filtered here; cap eviction works on creation
	// order alone.
	ActiveByAccount(ctx context.Context, accountID string) ([]RefreshToken, error)
	// Rotate revokes the row identified by oldID and inserts its
	// successor in one transaction. When the row was concurrently
	// revoked the whole rotation fails with ErrInvalidSession.
	Rotate(ctx context.Context, oldID string, successor *RefreshToken) error
}
