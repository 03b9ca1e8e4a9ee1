package service

import (
	"context"
	"strings"
	"time"

	"github.com/Rishiraj17/backend-foundation/config"
	"github.com/Rishiraj17/backend-foundation/internal/audit"
	"github.com/Rishiraj17/backend-foundation/internal/auth/domain"
	"github.com/Rishiraj17/backend-foundation/internal/auth/dto"
	apperrors "github.com/Rishiraj17/backend-foundation/internal/errors"
	"github.com/Rishiraj17/backend-foundation/internal/metrics"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var allowedSortFields = map[string]bool{
	"created_at": true,
	"email":      true,
	"role":       true,
}

const (
	defaultSortField = "created_at"
	defaultPageLimit = 10
	maxPageLimit     = 100
)

// UserService holds the account-facing flows: registration, the login
// lockout state machine, password change, and the admin listing.
type UserService struct {
	accounts         domain.AccountRepository
	sessions         *SessionManager
	hasher           *PasswordHasher
	audit            audit.Emitter
	log              *zap.Logger
	failureThreshold int
	lockDuration     time.Duration
}

func NewUserService(accounts domain.AccountRepository, sessions *SessionManager,
	hasher *PasswordHasher, emitter audit.Emitter, logger *zap.Logger, cfg *config.Config) *UserService {
	return &UserService{
		accounts:         accounts,
		sessions:         sessions,
		hasher:           hasher,
		audit:            emitter,
		log:              logger,
		failureThreshold: cfg.LoginFailureThreshold,
		lockDuration:     time.Duration(cfg.LockoutMin) * time.Minute,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *UserService) Register(ctx context.Context, input dto.RegisterInput) (*domain.Account, error) {
	email := normalizeEmail(input.Email)

	existing, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperrors.ErrEmailAlreadyInUse
	}

	passwordHash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	account := &domain.Account{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: passwordHash,
		Role:         domain.RoleUser,
		Status:       domain.StatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.accounts.Create(ctx, account); err != nil {
		return nil, err
	}

	return account, nil
}

// Login runs the lockout state machine. Check order is fixed: lookup,
// administrative status, lock window, then password. An unknown email
// and a wrong password both come back as ErrInvalidCredentials so the
// caller cannot enumerate accounts.
func (s *UserService) Login(ctx context.Context, input dto.LoginInput) (*dto.TokenResponse, error) {
	origin := audit.Origin{IP: input.IPAddress, UserAgent: input.UserAgent}

	account, err := s.accounts.GetByEmail(ctx, normalizeEmail(input.Email))
	if err != nil {
		return nil, err
	}
	if account == nil {
		s.audit.Emit(ctx, audit.Event{
			Action:  audit.ActionLoginFailed,
			Origin:  origin,
			Details: map[string]any{"reason": "no such account"},
		})
		metrics.LoginAttemptsTotal.WithLabelValues(metrics.StatusInvalid).Inc()
		return nil, apperrors.ErrInvalidCredentials
	}

	if account.Status != domain.StatusActive {
		s.audit.Emit(ctx, audit.Event{
			AccountID: account.ID,
			Action:    audit.ActionLoginFailed,
			Origin:    origin,
			Details:   map[string]any{"reason": "account not active"},
		})
		metrics.LoginAttemptsTotal.WithLabelValues(metrics.StatusNotActive).Inc()
		return nil, apperrors.ErrAccountNotActive
	}

	// Inside the lock window: reject without touching counters and
	// without a fresh audit event beyond the one that set the lock.
	if account.Locked(time.Now()) {
		metrics.LoginAttemptsTotal.WithLabelValues(metrics.StatusLocked).Inc()
		return nil, apperrors.ErrAccountLocked
	}

	if !s.hasher.Verify(input.Password, account.PasswordHash) {
		return nil, s.recordLoginFailure(ctx, account, origin)
	}

	if account.HasLoginFailures() {
		if err := s.accounts.ClearLoginFailures(ctx, account.ID); err != nil {
			return nil, err
		}
		s.audit.Emit(ctx, audit.Event{
			AccountID: account.ID,
			Action:    audit.ActionLoginRecovery,
			Origin:    origin,
			Details:   map[string]any{"cleared_attempts": account.FailedLoginAttempts},
		})
	}

	tokens, err := s.sessions.Issue(ctx, account.ID, origin)
	if err != nil {
		return nil, err
	}

	s.audit.Emit(ctx, audit.Event{
		AccountID: account.ID,
		Action:    audit.ActionLoginSuccess,
		Origin:    origin,
	})
	metrics.LoginAttemptsTotal.WithLabelValues(metrics.StatusSuccess).Inc()

	return tokens, nil
}

// recordLoginFailure bumps the failure counter through a single atomic
// store update. Reaching the threshold resets the counter to zero and
// starts the lock window in the same statement.
func (s *UserService) recordLoginFailure(ctx context.Context, account *domain.Account, origin audit.Origin) error {
	lockUntil := time.Now().Add(s.lockDuration)

	locked, err := s.accounts.RecordFailedAttempt(ctx, account.ID, s.failureThreshold, lockUntil)
	if err != nil {
		return err
	}

	details := map[string]any{"reason": "wrong password"}
	if locked {
		details["locked_until"] = lockUntil
	}
	s.audit.Emit(ctx, audit.Event{
		AccountID: account.ID,
		Action:    audit.ActionLoginFailed,
		Origin:    origin,
		Details:   details,
	})

	if locked {
		metrics.LoginAttemptsTotal.WithLabelValues(metrics.StatusLocked).Inc()
		s.log.Warn("account locked after repeated login failures",
			zap.String("account_id", account.ID), zap.Time("lock_until", lockUntil))
		return apperrors.ErrAccountLocked
	}

	metrics.LoginAttemptsTotal.WithLabelValues(metrics.StatusInvalid).Inc()
	return apperrors.ErrInvalidCredentials
}

// ChangePassword verifies the old password, persists the new hash, and
// revokes every standing session for the account.
func (s *UserService) ChangePassword(ctx context.Context, accountID string, input dto.ChangePasswordInput) error {
	origin := audit.Origin{IP: input.IPAddress, UserAgent: input.UserAgent}

	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return err
	}
	if account == nil {
		return apperrors.ErrInvalidCredentials
	}

	if !s.hasher.Verify(input.OldPassword, account.PasswordHash) {
		return apperrors.ErrInvalidCredentials
	}

	newHash, err := s.hasher.Hash(input.NewPassword)
	if err != nil {
		return err
	}

	if err := s.accounts.UpdatePassword(ctx, account.ID, newHash); err != nil {
		return err
	}

	if err := s.sessions.RevokeAll(ctx, account.ID); err != nil {
		return err
	}

	s.audit.Emit(ctx, audit.Event{
		AccountID: account.ID,
		Action:    audit.ActionPasswordChanged,
		Origin:    origin,
	})

	return nil
}

func (s *UserService) GetByID(ctx context.Context, accountID string) (*domain.Account, error) {
	return s.accounts.GetByID(ctx, accountID)
}

// List serves the admin user listing with pagination and a sort-field
// whitelist; unknown sort fields fall back to created_at.
func (s *UserService) List(ctx context.Context, adminID string, query dto.ListUsersQuery, origin audit.Origin) (*dto.UserListOutput, error) {
	filter := domain.ListFilter{
		Page:   query.Page,
		Limit:  query.Limit,
		SortBy: query.SortBy,
		Order:  "desc",
		Role:   query.Role,
		Email:  normalizeEmail(query.Email),
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 || filter.Limit > maxPageLimit {
		filter.Limit = defaultPageLimit
	}
	if !allowedSortFields[filter.SortBy] {
		filter.SortBy = defaultSortField
	}
	if strings.EqualFold(query.Order, "asc") {
		filter.Order = "asc"
	}

	accounts, total, err := s.accounts.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	out := &dto.UserListOutput{
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalUsers: total,
		Users:      make([]dto.UserOutput, 0, len(accounts)),
	}
	for _, a := range accounts {
		out.Users = append(out.Users, dto.UserOutput{
			ID:        a.ID,
			Email:     a.Email,
			Role:      string(a.Role),
			Status:    string(a.Status),
			CreatedAt: a.CreatedAt,
			UpdatedAt: a.UpdatedAt,
		})
	}

	s.audit.Emit(ctx, audit.Event{
		AccountID: adminID,
		Action:    audit.ActionAdminUsersListFetched,
		Origin:    origin,
		Details:   map[string]any{"page": filter.Page, "limit": filter.Limit},
	})

	return out, nil
}
