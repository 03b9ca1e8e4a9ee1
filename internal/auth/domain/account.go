package domain

import "time"

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// AccountStatus is the administrative status axis. It is independent of
// the temporary lockout tracked by LockUntil: a lock expires on its own,
// a suspension is lifted only by an administrator.
type AccountStatus string

const (
	StatusActive    AccountStatus = "active"
	StatusLocked    AccountStatus = "locked"
	StatusSuspended AccountStatus = "suspended"
)

type Account struct {
	ID                  string
	Email               string
	PasswordHash        string
	Role                Role
	Status              AccountStatus
	FailedLoginAttempts int
	LastFailedLoginAt   *time.Time
	LockUntil           *time.Time
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// Locked reports whether the account is inside an active lockout window.
func (a *Account) Locked(now time.Time) bool {
	return a.LockUntil != nil && a.LockUntil.After(now)
}

// HasLoginFailures reports whether any lockout bookkeeping is set and
// needs clearing on a successful login.
func (a *Account) HasLoginFailures() bool {
	return a.FailedLoginAttempts > 0 || a.LastFailedLoginAt != nil || a.LockUntil != nil
}
