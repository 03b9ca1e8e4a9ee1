package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/Rishiraj17/backend-foundation/internal/auth/domain"
	apperrors "github.com/Rishiraj17/backend-foundation/internal/errors"
	"github.com/jackc/pgx/v5"
)

type TokenRepository struct {
	db DB
}

func NewTokenRepository(db DB) *TokenRepository {
	return &TokenRepository{db: db}
}

const tokenColumns = `id, account_id, token_hash, expires_at, revoked_at, created_at`

func (r *TokenRepository) Store(ctx context.Context, token *domain.RefreshToken) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO refresh_tokens (id, account_id, token_hash, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, token.ID, token.AccountID, token.TokenHash, token.ExpiresAt, token.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to store refresh token: %w", err)
	}
	return nil
}

// GetByHash deliberately matches revoked rows too, so the caller can
// tell a replayed secret apart from one that never existed.
func (r *TokenRepository) GetByHash(ctx context.Context, hash string) (*domain.RefreshToken, error) {
	query := fmt.Sprintf(`SELECT %s FROM refresh_tokens WHERE token_hash = $1 LIMIT 1`, tokenColumns)

	var token domain.RefreshToken
	err := r.db.QueryRow(ctx, query, hash).Scan(&token.ID, &token.AccountID, &token.TokenHash,
		&token.ExpiresAt, &token.RevokedAt, &token.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get refresh token by hash: %w", err)
	}
	return &token, nil
}

func (r *TokenRepository) Revoke(ctx context.Context, id string) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE refresh_tokens SET revoked_at = now() WHERE id = $1 AND revoked_at IS NULL
	`, id)
	if err != nil {
		return false, fmt.Errorf("failed to revoke refresh token: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *TokenRepository) RevokeAllForAccount(ctx context.Context, accountID string) error {
	_, err := r.db.Exec(ctx, `
		UPDATE refresh_tokens SET revoked_at = now() WHERE account_id = $1 AND revoked_at IS NULL
	`, accountID)
	if err != nil {
		return fmt.Errorf("failed to revoke account sessions: %w", err)
	}
	return nil
}

// ActiveByAccount returns unrevoked rows oldest-first. Expiry is left
// unfiltered: cap eviction is by creation order alone.
func (r *TokenRepository) ActiveByAccount(ctx context.Context, accountID string) ([]domain.RefreshToken, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM refresh_tokens
		WHERE account_id = $1 AND revoked_at IS NULL
		ORDER BY created_at ASC
	`, tokenColumns)

	rows, err := r.db.Query(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to list active sessions: %w", err)
	}
	defer rows.Close()

	var tokens []domain.RefreshToken
	for rows.Next() {
		var token domain.RefreshToken
		if err := rows.Scan(&token.ID, &token.AccountID, &token.TokenHash,
			&token.ExpiresAt, &token.RevokedAt, &token.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan refresh token: %w", err)
		}
		tokens = append(tokens, token)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list active sessions: %w", err)
	}

	return tokens, nil
}

// Rotate revokes the old row and inserts its successor in a single
// transaction. The revoke is conditional on the row still being live, so
// of two concurrent rotations of one secret exactly one commits and the
// other fails with ErrInvalidSession.
func (r *TokenRepository) Rotate(ctx context.Context, oldID string, successor *domain.RefreshToken) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin rotation: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		UPDATE refresh_tokens SET revoked_at = now() WHERE id = $1 AND revoked_at IS NULL
	`, oldID)
	if err != nil {
		return fmt.Errorf("failed to revoke rotated token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrInvalidSession
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO refresh_tokens (id, account_id, token_hash, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, successor.ID, successor.AccountID, successor.TokenHash, successor.ExpiresAt, successor.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to store successor token: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit rotation: %w", err)
	}
	return nil
}
