package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/Rishiraj17/backend-foundation/config"
	"github.com/Rishiraj17/backend-foundation/internal/audit"
	"github.com/Rishiraj17/backend-foundation/internal/auth/domain"
	"github.com/Rishiraj17/backend-foundation/internal/auth/dto"
	apperrors "github.com/Rishiraj17/backend-foundation/internal/errors"
	"github.com/Rishiraj17/backend-foundation/internal/metrics"
	"github.com/Rishiraj17/backend-foundation/pkg/constant"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SessionManager owns the refresh token lifecycle: issuance under the
// concurrent-session cap, single-use rotation, and revocation.
type SessionManager struct {
	tokens        domain.TokenRepository
	issuer        TokenGenerator
	audit         audit.Emitter
	log           *zap.Logger
	maxSessions   int
	refreshExpiry time.Duration
	locks         *accountLocks
}

func NewSessionManager(tokens domain.TokenRepository, issuer TokenGenerator,
	emitter audit.Emitter, logger *zap.Logger, cfg *config.Config) *SessionManager {
	return &SessionManager{
		tokens:        tokens,
		issuer:        issuer,
		audit:         emitter,
		log:           logger,
		maxSessions:   cfg.MaxActiveSessionsPerUser,
		refreshExpiry: time.Duration(cfg.RefreshExpiryMin) * time.Minute,
		locks:         newAccountLocks(),
	}
}

func generateRefreshSecret() (string, error) {
	buf := make([]byte, constant.RefreshSecretBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate refresh secret: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

func hashRefreshSecret(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])
}

// Issue mints a new session for the account: a fresh opaque refresh
// secret persisted as a hash, plus an access token. When the account is
// at the session cap the oldest sessions are revoked first, by creation
// order. The count-evict-insert sequence runs under a per-account lock.
func (m *SessionManager) Issue(ctx context.Context, accountID string, origin audit.Origin) (*dto.TokenResponse, error) {
	unlock := m.locks.lock(accountID)
	defer unlock()

	active, err := m.tokens.ActiveByAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}

	if excess := len(active) + 1 - m.maxSessions; excess > 0 {
		for _, stale := range active[:excess] {
			if _, err := m.tokens.Revoke(ctx, stale.ID); err != nil {
				return nil, err
			}
			metrics.SessionRevocationsTotal.WithLabelValues(metrics.ScopeCapEviction).Inc()
			m.log.Info("evicted oldest session over cap",
				zap.String("account_id", accountID), zap.String("token_id", stale.ID))
		}
	}

	secret, err := generateRefreshSecret()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	row := &domain.RefreshToken{
		ID:        uuid.NewString(),
		AccountID: accountID,
		TokenHash: hashRefreshSecret(secret),
		ExpiresAt: now.Add(m.refreshExpiry),
		CreatedAt: now,
	}
	if err := m.tokens.Store(ctx, row); err != nil {
		return nil, err
	}

	accessToken, _, err := m.issuer.Issue(accountID)
	if err != nil {
		return nil, err
	}

	return &dto.TokenResponse{AccessToken: accessToken, RefreshToken: secret}, nil
}

// Rotate exchanges a presented refresh secret for a successor session.
// Rotation is single-use: presenting an already-rotated secret fails
// with ErrInvalidSession and emits a reuse-detected audit event, the
// replay signal for a stolen token.
func (m *SessionManager) Rotate(ctx context.Context, presentedSecret string, origin audit.Origin) (*dto.TokenResponse, error) {
	current, err := m.tokens.GetByHash(ctx, hashRefreshSecret(presentedSecret))
	if err != nil {
		return nil, err
	}
	if current == nil {
		metrics.TokenRotationsTotal.WithLabelValues(metrics.StatusInvalid).Inc()
		return nil, apperrors.ErrInvalidSession
	}
	if current.RevokedAt != nil {
		metrics.TokenRotationsTotal.WithLabelValues(metrics.StatusReuse).Inc()
		m.audit.Emit(ctx, audit.Event{
			AccountID: current.AccountID,
			Action:    audit.ActionSessionReuseDetected,
			Origin:    origin,
			Details:   map[string]any{"token_id": current.ID},
		})
		return nil, apperrors.ErrInvalidSession
	}
	if !current.ExpiresAt.After(time.Now()) {
		metrics.TokenRotationsTotal.WithLabelValues(metrics.StatusExpired).Inc()
		return nil, apperrors.ErrSessionExpired
	}

	secret, err := generateRefreshSecret()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	successor := &domain.RefreshToken{
		ID:        uuid.NewString(),
		AccountID: current.AccountID,
		TokenHash: hashRefreshSecret(secret),
		ExpiresAt: now.Add(m.refreshExpiry),
		CreatedAt: now,
	}
	// The repository revokes and inserts in one transaction; a rotation
	// that lost the race to a concurrent one fails here.
	if err := m.tokens.Rotate(ctx, current.ID, successor); err != nil {
		return nil, err
	}

	accessToken, _, err := m.issuer.Issue(current.AccountID)
	if err != nil {
		return nil, err
	}

	metrics.TokenRotationsTotal.WithLabelValues(metrics.StatusSuccess).Inc()

	return &dto.TokenResponse{AccessToken: accessToken, RefreshToken: secret}, nil
}

// Revoke terminates the session identified by the presented secret.
func (m *SessionManager) Revoke(ctx context.Context, presentedSecret string) error {
	current, err := m.tokens.GetByHash(ctx, hashRefreshSecret(presentedSecret))
	if err != nil {
		return err
	}
	if current == nil || current.RevokedAt != nil {
		return apperrors.ErrInvalidSession
	}

	revoked, err := m.tokens.Revoke(ctx, current.ID)
	if err != nil {
		return err
	}
	if !revoked {
		return apperrors.ErrInvalidSession
	}

	metrics.SessionRevocationsTotal.WithLabelValues(metrics.ScopeLogout).Inc()

	return nil
}

// RevokeAll terminates every active session for the account. Used by
// password change to invalidate all standing sessions.
func (m *SessionManager) RevokeAll(ctx context.Context, accountID string) error {
	if err := m.tokens.RevokeAllForAccount(ctx, accountID); err != nil {
		return err
	}
	metrics.SessionRevocationsTotal.WithLabelValues(metrics.ScopePasswordChange).Inc()
	return nil
}
