package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Rishiraj17/backend-foundation/internal/audit"
)

// AuditRepository is the durable sink behind the audit emitter. Writes
// are best-effort from the emitter's point of view; errors surface here
// and are logged (not propagated) by the caller.
type AuditRepository struct {
	db DB
}

func NewAuditRepository(db DB) *AuditRepository {
	return &AuditRepository{db: db}
}

func (r *AuditRepository) Insert(ctx context.Context, event audit.Event) error {
	var accountID *string
	if event.AccountID != "" {
		accountID = &event.AccountID
	}

	var details []byte
	if len(event.Details) > 0 {
		encoded, err := json.Marshal(event.Details)
		if err != nil {
			return fmt.Errorf("failed to encode audit details: %w", err)
		}
		details = encoded
	}

	_, err := r.db.Exec(ctx, `
		INSERT INTO audit_logs (account_id, action, ip_address, user_agent, details)
		VALUES ($1, $2, $3, $4, $5)
	`, accountID, event.Action, event.Origin.IP, event.Origin.UserAgent, details)
	if err != nil {
		return fmt.Errorf("failed to insert audit log: %w", err)
	}
	return nil
}
