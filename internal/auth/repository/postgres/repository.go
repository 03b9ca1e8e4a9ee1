package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Rishiraj17/backend-foundation/internal/auth/domain"
	apperrors "github.com/Rishiraj17/backend-foundation/internal/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolationCode = "23505"

// DB is the subset of pgxpool.Pool the repositories use; pgxmock
// satisfies it in tests.
type DB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

type AccountRepository struct {
	db DB
}

func NewAccountRepository(db DB) *AccountRepository {
	return &AccountRepository{db: db}
}

const accountColumns = `id, email, password_hash, role, account_status,
		failed_login_attempts, last_failed_login_at, lock_until, created_at, updated_at`

func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE email = $1 LIMIT 1`, accountColumns)

	account, err := r.scanAccount(r.db.QueryRow(ctx, query, email))
	if err != nil {
		return nil, fmt.Errorf("failed to get account by email: %w", err)
	}
	return account, nil
}

func (r *AccountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE id = $1 LIMIT 1`, accountColumns)

	account, err := r.scanAccount(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get account by id: %w", err)
	}
	return account, nil
}

func (r *AccountRepository) scanAccount(row pgx.Row) (*domain.Account, error) {
	var account domain.Account
	err := row.Scan(&account.ID, &account.Email, &account.PasswordHash, &account.Role,
		&account.Status, &account.FailedLoginAttempts, &account.LastFailedLoginAt,
		&account.LockUntil, &account.CreatedAt, &account.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &account, nil
}

func (r *AccountRepository) Create(ctx context.Context, account *domain.Account) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO users (id, email, password_hash, role, account_status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, account.ID, account.Email, account.PasswordHash, account.Role, account.Status,
		account.CreatedAt, account.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return apperrors.ErrEmailAlreadyInUse
		}
		return fmt.Errorf("failed to create account: %w", err)
	}
	return nil
}

// RecordFailedAttempt is the atomic increment-and-check for the lockout
// counter. A single conditional UPDATE decides between bumping the
// counter and arming the lock, so concurrent failed logins cannot lose
// increments. The counter resets to zero in the same statement that sets
// lock_until; RETURNING the reset counter tells us the lock fired.
func (r *AccountRepository) RecordFailedAttempt(ctx context.Context, id string, threshold int, lockUntil time.Time) (bool, error) {
	query := `
		UPDATE users SET
			failed_login_attempts = CASE WHEN failed_login_attempts + 1 >= $2 THEN 0
				ELSE failed_login_attempts + 1 END,
			last_failed_login_at = now(),
			lock_until = CASE WHEN failed_login_attempts + 1 >= $2 THEN $3
				ELSE lock_until END,
			updated_at = now()
		WHERE id = $1
		RETURNING failed_login_attempts = 0
	`

	var locked bool
	if err := r.db.QueryRow(ctx, query, id, threshold, lockUntil).Scan(&locked); err != nil {
		return false, fmt.Errorf("failed to record login failure: %w", err)
	}
	return locked, nil
}

func (r *AccountRepository) ClearLoginFailures(ctx context.Context, id string) error {
	_, err := r.db.Exec(ctx, `
		UPDATE users SET
			failed_login_attempts = 0,
			last_failed_login_at = NULL,
			lock_until = NULL,
			updated_at = now()
		WHERE id = $1
	`, id)
	if err != nil {
		return fmt.Errorf("failed to clear login failures: %w", err)
	}
	return nil
}

func (r *AccountRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE users SET password_hash = $2, updated_at = now() WHERE id = $1
	`, id, passwordHash)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("failed to update password: account %s not found", id)
	}
	return nil
}

// List serves the admin listing. filter.SortBy and filter.Order must be
// whitelisted by the caller; they are interpolated into the query.
func (r *AccountRepository) List(ctx context.Context, filter domain.ListFilter) ([]domain.Account, int, error) {
	conditions := make([]string, 0, 2)
	args := make([]any, 0, 4)

	if filter.Role != "" {
		args = append(args, filter.Role)
		conditions = append(conditions, fmt.Sprintf("role = $%d", len(args)))
	}
	if filter.Email != "" {
		args = append(args, filter.Email)
		conditions = append(conditions, fmt.Sprintf("email = $%d", len(args)))
	}

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	countQuery := "SELECT COUNT(*) FROM users" + where
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count accounts: %w", err)
	}

	args = append(args, filter.Limit, (filter.Page-1)*filter.Limit)
	query := fmt.Sprintf("SELECT %s FROM users%s ORDER BY %s %s LIMIT $%d OFFSET $%d",
		accountColumns, where, filter.SortBy, strings.ToUpper(filter.Order), len(args)-1, len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []domain.Account
	for rows.Next() {
		var account domain.Account
		if err := rows.Scan(&account.ID, &account.Email, &account.PasswordHash, &account.Role,
			&account.Status, &account.FailedLoginAttempts, &account.LastFailedLoginAt,
			&account.LockUntil, &account.CreatedAt, &account.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, account)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to list accounts: %w", err)
	}

	return accounts, total, nil
}
