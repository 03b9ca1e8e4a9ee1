package domain

import "time"

// RefreshToken is a session handle. Only the SHA-256 hash of the opaque
// secret is stored; the plaintext is returned to the client once and
// never persisted.
type RefreshToken struct {
	ID        string
	AccountID string
	TokenHash string
	ExpiresAt time.Time
	RevokedAt *time.Time
	CreatedAt time.Time
}

// Active reports whether the token is neither revoked nor expired.
func (rt *RefreshToken) Active(now time.Time) bool {
	return rt.RevokedAt == nil && rt.ExpiresAt.After(now)
}
