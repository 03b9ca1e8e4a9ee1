package constant

const (
	// LoginFailureThreshold is the number of consecutive failed logins
	// that triggers a temporary lock.
	LoginFailureThreshold = 5

	// LockoutMinutes is the flat lock window applied when the threshold
	// is reached, regardless of failure spacing.
	LockoutMinutes = 15

	// AccessTokenExpiryMinutes is the fixed access token validity window.
	AccessTokenExpiryMinutes = 15

	// RefreshTokenExpiryMinutes is seven days.
	RefreshTokenExpiryMinutes = 7 * 24 * 60

	// MaxActiveSessionsPerUser caps concurrently live refresh tokens per
	// account; the oldest sessions are evicted first.
	MaxActiveSessionsPerUser = 5

	// RefreshSecretBytes is the entropy of the opaque refresh secret.
	RefreshSecretBytes = 32
)
