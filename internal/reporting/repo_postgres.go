package reporting

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"msgdesk/internal/message"
	"msgdesk/internal/order"
)

// PostgresRepo reads aggregation inputs straight from the primary tables.
// Reports tolerate stale reads, so no transaction is used.
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

func (r *PostgresRepo) ListMessages(ctx context.Context, companyID int64, from, to time.Time, conversationID int64) ([]message.Message, error) {
	q := `
SELECT id, company_id, conversation_id, contact_id, direction, status, content, state, created_at
FROM messages
WHERE company_id = $1 AND state = $2 AND created_at >= $3 AND created_at < $4
`
	args := []any{companyID, message.StateActive, from, to}
	if conversationID > 0 {
		args = append(args, conversationID)
		q += ` AND conversation_id = $5`
	}

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []message.Message
	for rows.Next() {
		var (
			m       message.Message
			content []byte
		)
		if err := rows.Scan(
			&m.ID, &m.CompanyID, &m.ConversationID, &m.ContactID, &m.Direction, &m.Status,
			&content, &m.State, &m.CreatedAt,
		); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(content, &m.Content); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *PostgresRepo) ListOrders(ctx context.Context, companyID int64, from, to time.Time) ([]order.Order, error) {
	const q = `
SELECT id, company_id, contact_id, code, status, total_minor, currency, state, created_at, updated_at
FROM orders
WHERE company_id = $1 AND state = $2 AND created_at >= $3 AND created_at < $4
`
	rows, err := r.db.QueryContext(ctx, q, companyID, order.StateActive, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []order.Order
	for rows.Next() {
		var o order.Order
		if err := rows.Scan(
			&o.ID, &o.CompanyID, &o.ContactID, &o.Code, &o.Status, &o.TotalMinor, &o.Currency, &o.State, &o.CreatedAt, &o.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}
