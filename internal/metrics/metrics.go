package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// LoginAttemptsTotal counts login attempts by outcome.
	LoginAttemptsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "auth_login_attempts_total",
		Help: "The total number of login attempts by outcome",
	}, []string{"status"})

	// TokenRotationsTotal counts refresh token rotations by outcome.
	TokenRotationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "auth_token_rotations_total",
		Help: "The total number of refresh token rotations by outcome",
	}, []string{"status"})

	// SessionRevocationsTotal counts revoked sessions by trigger.
	SessionRevocationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "auth_session_revocations_total",
		Help: "The total number of session revocations by trigger",
	}, []string{"scope"})
)

const (
	StatusSuccess          = "success"
	StatusInvalid          = "invalid_credentials"
	StatusLocked           = "account_locked"
	StatusNotActive        = "account_not_active"
	StatusExpired          = "expired"
	StatusReuse            = "reuse_detected"
	ScopeLogout         = "logout"
	ScopeCapEviction    = "cap_eviction"
	ScopePasswordChange = "password_change"
)
