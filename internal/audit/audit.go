// Package audit is a fire-and-forget side channel for security events.
// Emission is synchronous and best-effort: it never returns an error and
// never blocks the outcome of the operation being audited.
package audit

import (
	"context"

	"go.uber.org/zap"
)

const (
	ActionLoginSuccess          = "LOGIN_SUCCESS"
	ActionLoginFailed           = "LOGIN_FAILED"
	ActionLoginRecovery         = "LOGIN_RECOVERY"
	ActionPasswordChanged       = "PASSWORD_CHANGED"
	ActionSessionReuseDetected  = "SESSION_REUSE_DETECTED"
	ActionAdminUsersListFetched = "ADMIN_USERS_LIST_FETCHED"
)

// Origin identifies the caller of the audited operation.
type Origin struct {
	IP        string
	UserAgent string
}

// Event is a single audit record. An empty AccountID means the subject
// could not be attributed (for example a login with an unknown email).
type Event struct {
	AccountID string
	Action    string
	Origin    Origin
	Details   map[string]any
}

//go:generate mockgen -destination=../mocks/mock_audit_emitter.go -package=mocks github.com/Rishiraj17/backend-foundation/internal/audit Emitter

type Emitter interface {
	Emit(ctx context.Context, event Event)
}

// Store is an optional durable sink behind an Emitter.
type Store interface {
	Insert(ctx context.Context, event Event) error
}

// Logger emits events as structured zap entries and, when a Store is
// configured, persists them as well. Store failures are logged and
// swallowed.
type Logger struct {
	log   *zap.Logger
	store Store
}

// New builds a Logger. store may be nil.
func New(log *zap.Logger, store Store) *Logger {
	return &Logger{log: log, store: store}
}

func (l *Logger) Emit(ctx context.Context, event Event) {
	subject := event.AccountID
	if subject == "" {
		subject = "anonymous"
	}

	fields := []zap.Field{
		zap.String("account_id", subject),
		zap.String("action", event.Action),
		zap.String("ip", event.Origin.IP),
		zap.String("user_agent", event.Origin.UserAgent),
	}
	if len(event.Details) > 0 {
		fields = append(fields, zap.Any("details", event.Details))
	}
	l.log.Info("audit", fields...)

	if l.store == nil {
		return
	}
	if err := l.store.Insert(ctx, event); err != nil {
		l.log.Warn("audit store insert failed",
			zap.String("action", event.Action), zap.Error(err))
	}
}
