package audit

import (
	"context"
	"database/sql"
)

// PostgresRepo appends audit events to the audit_events table.
// The table should carry an INSERT-only policy; retention is handled by
// time partitioning, not deletes from this code.
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

func (r *PostgresRepo) Append(ctx context.Context, e Event) error {
	const q = `
INSERT INTO audit_events (
  id, company_id, type, actor_user_id, actor_role, ip_address,
  conversation_id, message_id, contact_id, account_id, message, metadata, created_at
) VALUES (
  $1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13
)
`
	_, err := r.db.ExecContext(ctx, q,
		e.ID,
		e.CompanyID,
		e.Type,
		nullableID(e.ActorUserID),
		e.ActorRole,
		e.IPAddress,
		nullableID(e.ConversationID),
		nullableID(e.MessageID),
		nullableID(e.ContactID),
		nullableID(e.AccountID),
		e.Message,
		e.Metadata,
		e.CreatedAt,
	)
	return err
}

func nullableID(id int64) any {
	if id <= 0 {
		return nil
	}
	return id
}
