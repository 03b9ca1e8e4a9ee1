package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Rishiraj17/backend-foundation/config"
	"github.com/Rishiraj17/backend-foundation/internal/audit"
	"github.com/Rishiraj17/backend-foundation/internal/auth/domain"
	"github.com/Rishiraj17/backend-foundation/internal/auth/dto"
	"github.com/Rishiraj17/backend-foundation/internal/auth/service"
	apperrors "github.com/Rishiraj17/backend-foundation/internal/errors"
	"github.com/Rishiraj17/backend-foundation/internal/mocks"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type userServiceFixture struct {
	accounts *mocks.MockAccountRepository
	tokens   *mocks.MockTokenRepository
	issuer   *mocks.MockTokenGenerator
	emitter  *mocks.MockEmitter
	actions  *[]string
	service  *service.UserService
}

func newUserServiceFixture(t *testing.T, ctrl *gomock.Controller) *userServiceFixture {
	t.Helper()

	cfg := &config.Config{
		LoginFailureThreshold:    5,
		LockoutMin:               15,
		RefreshExpiryMin:         7 * 24 * 60,
		MaxActiveSessionsPerUser: 5,
	}

	f := &userServiceFixture{
		accounts: mocks.NewMockAccountRepository(ctrl),
		tokens:   mocks.NewMockTokenRepository(ctrl),
		issuer:   mocks.NewMockTokenGenerator(ctrl),
		emitter:  mocks.NewMockEmitter(ctrl),
		actions:  &[]string{},
	}

	f.emitter.EXPECT().Emit(gomock.Any(), gomock.Any()).
		Do(func(_ context.Context, e audit.Event) {
			*f.actions = append(*f.actions, e.Action)
		}).AnyTimes()

	logger := zap.NewNop()
	hasher := service.NewPasswordHasher(bcrypt.MinCost)
	sessions := service.NewSessionManager(f.tokens, f.issuer, f.emitter, logger, cfg)
	f.service = service.NewUserService(f.accounts, sessions, hasher, f.emitter, logger, cfg)

	return f
}

func hashPassword(t *testing.T, plaintext string) string {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hashed)
}

func activeAccount(t *testing.T, password string) *domain.Account {
	t.Helper()
	now := time.Now()
	return &domain.Account{
		ID:           "account-123",
		Email:        "test@example.com",
		PasswordHash: hashPassword(t, password),
		Role:         domain.RoleUser,
		Status:       domain.StatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestUserService_Register_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	f := newUserServiceFixture(t, ctrl)

	input := dto.RegisterInput{Email: "  Test@Example.COM ", Password: "password123"}

	f.accounts.EXPECT().GetByEmail(gomock.Any(), "test@example.com").Return(nil, nil)
	f.accounts.EXPECT().Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, a *domain.Account) error {
			assert.Equal(t, "test@example.com", a.Email)
			assert.Equal(t, domain.RoleUser, a.Role)
			assert.Equal(t, domain.StatusActive, a.Status)
			assert.NotEmpty(t, a.PasswordHash)
			assert.NotEqual(t, "password123", a.PasswordHash)
			return nil
		})

	account, err := f.service.Register(context.Background(), input)

	require.NoError(t, err)
	assert.NotEmpty(t, account.ID)
	assert.Equal(t, "test@example.com", account.Email)
}

func TestUserService_Register_EmailAlreadyInUse(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	f := newUserServiceFixture(t, ctrl)

	f.accounts.EXPECT().GetByEmail(gomock.Any(), "test@example.com").
		Return(&domain.Account{ID: "existing"}, nil)

	_, err := f.service.Register(context.Background(), dto.RegisterInput{
		Email: "test@example.com", Password: "password123",
	})

	assert.ErrorIs(t, err, apperrors.ErrEmailAlreadyInUse)
}

func TestUserService_Login_UnknownEmail(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	f := newUserServiceFixture(t, ctrl)

	f.accounts.EXPECT().GetByEmail(gomock.Any(), "nobody@example.com").Return(nil, nil)

	_, err := f.service.Login(context.Background(), dto.LoginInput{
		Email: "nobody@example.com", Password: "whatever",
	})

	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
	assert.Contains(t, *f.actions, audit.ActionLoginFailed)
}

func TestUserService_Login_AccountNotActive(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	f := newUserServiceFixture(t, ctrl)

	account := activeAccount(t, "password123")
	account.Status = domain.StatusSuspended

	f.accounts.EXPECT().GetByEmail(gomock.Any(), account.Email).Return(account, nil)

	_, err := f.service.Login(context.Background(), dto.LoginInput{
		Email: account.Email, Password: "password123",
	})

	assert.ErrorIs(t, err, apperrors.ErrAccountNotActive)
}

func TestUserService_Login_LockedAccount(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	f := newUserServiceFixture(t, ctrl)

	account := activeAccount(t, "password123")
	lockUntil := time.Now().Add(10 * time.Minute)
	account.LockUntil = &lockUntil

	f.accounts.EXPECT().GetByEmail(gomock.Any(), account.Email).Return(account, nil)

	// Correct password makes no difference inside the lock window, and
	// no counters are touched, no audit is emitted.
	_, err := f.service.Login(context.Background(), dto.LoginInput{
		Email: account.Email, Password: "password123",
	})

	assert.ErrorIs(t, err, apperrors.ErrAccountLocked)
	assert.Empty(t, *f.actions)
}

func TestUserService_Login_WrongPasswordBelowThreshold(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	f := newUserServiceFixture(t, ctrl)

	account := activeAccount(t, "password123")

	f.accounts.EXPECT().GetByEmail(gomock.Any(), account.Email).Return(account, nil)
	f.accounts.EXPECT().RecordFailedAttempt(gomock.Any(), account.ID, 5, gomock.Any()).
		Return(false, nil)

	_, err := f.service.Login(context.Background(), dto.LoginInput{
		Email: account.Email, Password: "wrong",
	})

	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
	assert.Contains(t, *f.actions, audit.ActionLoginFailed)
}

func TestUserService_Login_WrongPasswordTriggersLock(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	f := newUserServiceFixture(t, ctrl)

	account := activeAccount(t, "password123")
	account.FailedLoginAttempts = 4

	f.accounts.EXPECT().GetByEmail(gomock.Any(), account.Email).Return(account, nil)
	f.accounts.EXPECT().RecordFailedAttempt(gomock.Any(), account.ID, 5, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, _ int, lockUntil time.Time) (bool, error) {
			assert.True(t, lockUntil.After(time.Now()))
			return true, nil
		})

	_, err := f.service.Login(context.Background(), dto.LoginInput{
		Email: account.Email, Password: "wrong",
	})

	assert.ErrorIs(t, err, apperrors.ErrAccountLocked)
	assert.Contains(t, *f.actions, audit.ActionLoginFailed)
}

func TestUserService_Login_SuccessAfterStrikes(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	f := newUserServiceFixture(t, ctrl)

	account := activeAccount(t, "password123")
	account.FailedLoginAttempts = 4

	f.accounts.EXPECT().GetByEmail(gomock.Any(), account.Email).Return(account, nil)
	f.accounts.EXPECT().ClearLoginFailures(gomock.Any(), account.ID).Return(nil)
	f.tokens.EXPECT().ActiveByAccount(gomock.Any(), account.ID).Return(nil, nil)
	f.tokens.EXPECT().Store(gomock.Any(), gomock.Any()).Return(nil)
	f.issuer.EXPECT().Issue(account.ID).Return("access-token", time.Now().Add(15*time.Minute), nil)

	tokens, err := f.service.Login(context.Background(), dto.LoginInput{
		Email: account.Email, Password: "password123",
	})

	require.NoError(t, err)
	assert.Equal(t, "access-token", tokens.AccessToken)
	assert.NotEmpty(t, tokens.RefreshToken)
	assert.Contains(t, *f.actions, audit.ActionLoginRecovery)
	assert.Contains(t, *f.actions, audit.ActionLoginSuccess)
}

func TestUserService_Login_SuccessWithoutStrikes(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	f := newUserServiceFixture(t, ctrl)

	account := activeAccount(t, "password123")

	f.accounts.EXPECT().GetByEmail(gomock.Any(), account.Email).Return(account, nil)
	f.tokens.EXPECT().ActiveByAccount(gomock.Any(), account.ID).Return(nil, nil)
	f.tokens.EXPECT().Store(gomock.Any(), gomock.Any()).Return(nil)
	f.issuer.EXPECT().Issue(account.ID).Return("access-token", time.Now().Add(15*time.Minute), nil)

	_, err := f.service.Login(context.Background(), dto.LoginInput{
		Email: account.Email, Password: "password123",
	})

	require.NoError(t, err)
	assert.NotContains(t, *f.actions, audit.ActionLoginRecovery)
	assert.Contains(t, *f.actions, audit.ActionLoginSuccess)
}

func TestUserService_Login_RepositoryError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	f := newUserServiceFixture(t, ctrl)

	dbErr := errors.New("database error")
	f.accounts.EXPECT().GetByEmail(gomock.Any(), gomock.Any()).Return(nil, dbErr)

	_, err := f.service.Login(context.Background(), dto.LoginInput{
		Email: "test@example.com", Password: "password123",
	})

	assert.ErrorIs(t, err, dbErr)
}

func TestUserService_ChangePassword_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	f := newUserServiceFixture(t, ctrl)

	account := activeAccount(t, "old-password")

	f.accounts.EXPECT().GetByID(gomock.Any(), account.ID).Return(account, nil)
	f.accounts.EXPECT().UpdatePassword(gomock.Any(), account.ID, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, hash string) error {
			assert.NotEqual(t, "new-password-1", hash)
			return nil
		})
	f.tokens.EXPECT().RevokeAllForAccount(gomock.Any(), account.ID).Return(nil)

	err := f.service.ChangePassword(context.Background(), account.ID, dto.ChangePasswordInput{
		OldPassword: "old-password", NewPassword: "new-password-1",
	})

	require.NoError(t, err)
	assert.Contains(t, *f.actions, audit.ActionPasswordChanged)
}

func TestUserService_ChangePassword_WrongOldPassword(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	f := newUserServiceFixture(t, ctrl)

	account := activeAccount(t, "old-password")

	f.accounts.EXPECT().GetByID(gomock.Any(), account.ID).Return(account, nil)

	err := f.service.ChangePassword(context.Background(), account.ID, dto.ChangePasswordInput{
		OldPassword: "not-the-old-password", NewPassword: "new-password-1",
	})

	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
}

func TestUserService_ChangePassword_UnknownAccount(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	f := newUserServiceFixture(t, ctrl)

	f.accounts.EXPECT().GetByID(gomock.Any(), "missing").Return(nil, nil)

	err := f.service.ChangePassword(context.Background(), "missing", dto.ChangePasswordInput{
		OldPassword: "old", NewPassword: "new-password-1",
	})

	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
}

func TestUserService_List_SanitizesQuery(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	f := newUserServiceFixture(t, ctrl)

	f.accounts.EXPECT().List(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, filter domain.ListFilter) ([]domain.Account, int, error) {
			assert.Equal(t, 1, filter.Page)
			assert.Equal(t, 10, filter.Limit)
			assert.Equal(t, "created_at", filter.SortBy)
			assert.Equal(t, "desc", filter.Order)
			return []domain.Account{*activeAccount(t, "x")}, 1, nil
		})

	out, err := f.service.List(context.Background(), "admin-1", dto.ListUsersQuery{
		Page:   -3,
		Limit:  9999,
		SortBy: "password_hash; DROP TABLE users",
		Order:  "sideways",
	}, audit.Origin{})

	require.NoError(t, err)
	assert.Equal(t, 1, out.TotalUsers)
	assert.Len(t, out.Users, 1)
	assert.Contains(t, *f.actions, audit.ActionAdminUsersListFetched)
}
