package postgres_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/Rishiraj17/backend-foundation/internal/auth/domain"
	repo "github.com/Rishiraj17/backend-foundation/internal/auth/repository/postgres"
	apperrors "github.com/Rishiraj17/backend-foundation/internal/errors"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var accountColumns = []string{
	"id", "email", "password_hash", "role", "account_status",
	"failed_login_attempts", "last_failed_login_at", "lock_until", "created_at", "updated_at",
}

func accountRow(id, email string) *pgxmock.Rows {
	now := time.Now()
	return pgxmock.NewRows(accountColumns).
		AddRow(id, email, "hash", domain.RoleUser, domain.StatusActive, 0, nil, nil, now, now)
}

func TestAccountRepository_GetByEmail(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	r := repo.NewAccountRepository(mock)
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		mock.ExpectQuery("SELECT id, email").
			WithArgs("test@example.com").
			WillReturnRows(accountRow("user-123", "test@example.com"))

		account, err := r.GetByEmail(ctx, "test@example.com")
		require.NoError(t, err)
		require.NotNil(t, account)
		assert.Equal(t, "user-123", account.ID)
		assert.Equal(t, domain.StatusActive, account.Status)
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery("SELECT id, email").
			WithArgs("missing@example.com").
			WillReturnRows(pgxmock.NewRows(accountColumns))

		account, err := r.GetByEmail(ctx, "missing@example.com")
		require.NoError(t, err)
		assert.Nil(t, account)
	})

	t.Run("database error", func(t *testing.T) {
		mock.ExpectQuery("SELECT id, email").
			WithArgs("test@example.com").
			WillReturnError(fmt.Errorf("db error"))

		_, err := r.GetByEmail(ctx, "test@example.com")
		assert.Error(t, err)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepository_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	r := repo.NewAccountRepository(mock)
	ctx := context.Background()

	now := time.Now()
	account := &domain.Account{
		ID:           "user-123",
		Email:        "new@example.com",
		PasswordHash: "hash",
		Role:         domain.RoleUser,
		Status:       domain.StatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	t.Run("success", func(t *testing.T) {
		mock.ExpectExec("INSERT INTO users").
			WithArgs(account.ID, account.Email, account.PasswordHash, account.Role,
				account.Status, account.CreatedAt, account.UpdatedAt).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		assert.NoError(t, r.Create(ctx, account))
	})

	t.Run("duplicate email", func(t *testing.T) {
		mock.ExpectExec("INSERT INTO users").
			WithArgs(account.ID, account.Email, account.PasswordHash, account.Role,
				account.Status, account.CreatedAt, account.UpdatedAt).
			WillReturnError(&pgconn.PgError{Code: "23505"})

		err := r.Create(ctx, account)
		assert.ErrorIs(t, err, apperrors.ErrEmailAlreadyInUse)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepository_RecordFailedAttempt(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	r := repo.NewAccountRepository(mock)
	ctx := context.Background()
	lockUntil := time.Now().Add(15 * time.Minute)

	t.Run("below threshold", func(t *testing.T) {
		mock.ExpectQuery("UPDATE users SET").
			WithArgs("user-123", 5, lockUntil).
			WillReturnRows(pgxmock.NewRows([]string{"locked"}).AddRow(false))

		locked, err := r.RecordFailedAttempt(ctx, "user-123", 5, lockUntil)
		require.NoError(t, err)
		assert.False(t, locked)
	})

	t.Run("threshold reached", func(t *testing.T) {
		mock.ExpectQuery("UPDATE users SET").
			WithArgs("user-123", 5, lockUntil).
			WillReturnRows(pgxmock.NewRows([]string{"locked"}).AddRow(true))

		locked, err := r.RecordFailedAttempt(ctx, "user-123", 5, lockUntil)
		require.NoError(t, err)
		assert.True(t, locked)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepository_ClearLoginFailures(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	r := repo.NewAccountRepository(mock)

	mock.ExpectExec("UPDATE users SET").
		WithArgs("user-123").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	assert.NoError(t, r.ClearLoginFailures(context.Background(), "user-123"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepository_UpdatePassword(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	r := repo.NewAccountRepository(mock)
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		mock.ExpectExec("UPDATE users SET password_hash").
			WithArgs("user-123", "new-hash").
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		assert.NoError(t, r.UpdatePassword(ctx, "user-123", "new-hash"))
	})

	t.Run("account missing", func(t *testing.T) {
		mock.ExpectExec("UPDATE users SET password_hash").
			WithArgs("missing", "new-hash").
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		assert.Error(t, r.UpdatePassword(ctx, "missing", "new-hash"))
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepository_List(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	r := repo.NewAccountRepository(mock)
	ctx := context.Background()

	t.Run("unfiltered", func(t *testing.T) {
		mock.ExpectQuery("SELECT COUNT").
			WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(2))
		mock.ExpectQuery("SELECT id, email").
			WithArgs(10, 0).
			WillReturnRows(accountRow("user-1", "a@example.com").
				AddRow("user-2", "b@example.com", "hash", domain.RoleAdmin, domain.StatusActive,
					0, nil, nil, time.Now(), time.Now()))

		accounts, total, err := r.List(ctx, domain.ListFilter{
			Page: 1, Limit: 10, SortBy: "created_at", Order: "desc",
		})
		require.NoError(t, err)
		assert.Equal(t, 2, total)
		assert.Len(t, accounts, 2)
	})

	t.Run("role filter", func(t *testing.T) {
		mock.ExpectQuery("SELECT COUNT").
			WithArgs("admin").
			WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(1))
		mock.ExpectQuery("SELECT id, email").
			WithArgs("admin", 10, 0).
			WillReturnRows(accountRow("user-2", "b@example.com"))

		_, total, err := r.List(ctx, domain.ListFilter{
			Page: 1, Limit: 10, SortBy: "created_at", Order: "asc", Role: "admin",
		})
		require.NoError(t, err)
		assert.Equal(t, 1, total)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}
