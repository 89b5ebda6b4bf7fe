package message

import (
	"context"
	"database/sql"
	"encoding/json"
	"strconv"
	"time"

	"msgdesk/internal/pagination"
	"msgdesk/pkg/utils"
)

// PostgresRepo persists messages in the messages table and keeps the
// conversations summary projection consistent in the same transaction.
// Content is stored as a JSONB column.
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

const messageColumns = `id, company_id, conversation_id, contact_id, direction, status,
content, provider_message_id, error_code, error_message, state, created_at, updated_at`

func (r *PostgresRepo) Insert(ctx context.Context, m Message) (Message, error) {
	content, err := json.Marshal(m.Content)
	if err != nil {
		return Message{}, err
	}
	const q = `
INSERT INTO messages (company_id, conversation_id, contact_id, direction, status,
content, provider_message_id, error_code, error_message, state, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
RETURNING id
`
	if err := r.db.QueryRowContext(ctx, q,
		m.CompanyID, m.ConversationID, m.ContactID, m.Direction, m.Status,
		content, m.ProviderMessageID, m.ErrorCode, m.ErrorMessage, m.State, m.CreatedAt, m.UpdatedAt,
	).Scan(&m.ID); err != nil {
		return Message{}, err
	}
	return m, nil
}

func (r *PostgresRepo) GetByID(ctx context.Context, companyID, id int64) (Message, bool, error) {
	const q = `
SELECT ` + messageColumns + `
FROM messages
WHERE company_id = $1 AND id = $2 AND state = $3
`
	return scanMessage(r.db.QueryRowContext(ctx, q, companyID, id, StateActive))
}

func (r *PostgresRepo) FindByProviderID(ctx context.Context, companyID int64, providerID string) (Message, bool, error) {
	const q = `
SELECT ` + messageColumns + `
FROM messages
WHERE company_id = $1 AND provider_message_id = $2 AND state = $3
`
	return scanMessage(r.db.QueryRowContext(ctx, q, companyID, providerID, StateActive))
}

// MarkSent flips the message to sent and refreshes the conversation summary
// in one transaction. Readers never observe a sent message next to a stale
// conversation row.
func (r *PostgresRepo) MarkSent(ctx context.Context, companyID, conversationID, id int64, providerID, preview string, at time.Time) error {
	return utils.WithTx(ctx, r.db, nil, func(ctx context.Context, tx *sql.Tx) error {
		const upd = `
UPDATE messages
SET status = $3, provider_message_id = $4, updated_at = $5
WHERE company_id = $1 AND id = $2 AND state = $6
`
		res, err := tx.ExecContext(ctx, upd, companyID, id, StatusSent, providerID, at, StateActive)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return ErrNotFound
		}

		const summary = `
UPDATE conversations
SET last_message_preview = $3, last_message_at = $4, last_message_id = $5, updated_at = $4
WHERE company_id = $1 AND id = $2
`
		_, err = tx.ExecContext(ctx, summary, companyID, conversationID, preview, at, id)
		return err
	})
}

func (r *PostgresRepo) MarkFailed(ctx context.Context, companyID, id int64, errCode, errMsg string, at time.Time) error {
	const q = `
UPDATE messages
SET status = $3, error_code = $4, error_message = $5, updated_at = $6
WHERE company_id = $1 AND id = $2 AND state = $7
`
	res, err := r.db.ExecContext(ctx, q, companyID, id, StatusFailed, errCode, errMsg, at, StateActive)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// InsertInbound inserts an already-settled inbound message and, in the same
// transaction, bumps the conversation unread counter and summary.
func (r *PostgresRepo) InsertInbound(ctx context.Context, m Message, preview string) (Message, error) {
	content, err := json.Marshal(m.Content)
	if err != nil {
		return Message{}, err
	}
	err = utils.WithTx(ctx, r.db, nil, func(ctx context.Context, tx *sql.Tx) error {
		const ins = `
INSERT INTO messages (company_id, conversation_id, contact_id, direction, status,
content, provider_message_id, error_code, error_message, state, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
RETURNING id
`
		if err := tx.QueryRowContext(ctx, ins,
			m.CompanyID, m.ConversationID, m.ContactID, m.Direction, m.Status,
			content, m.ProviderMessageID, m.ErrorCode, m.ErrorMessage, m.State, m.CreatedAt, m.UpdatedAt,
		).Scan(&m.ID); err != nil {
			return err
		}

		const summary = `
UPDATE conversations
SET last_message_preview = $3, last_message_at = $4, last_message_id = $5,
    unread_count = unread_count + 1, updated_at = $4
WHERE company_id = $1 AND id = $2
`
		_, err := tx.ExecContext(ctx, summary, m.CompanyID, m.ConversationID, preview, m.CreatedAt, m.ID)
		return err
	})
	if err != nil {
		return Message{}, err
	}
	return m, nil
}

// SetReceiptStatus upgrades an outbound message matched by provider id.
// Only forward transitions apply: delivered needs sent, read needs sent or
// delivered. Out-of-order receipts are silently dropped that way.
func (r *PostgresRepo) SetReceiptStatus(ctx context.Context, companyID int64, providerID string, status Status, at time.Time) error {
	from := []Status{StatusSent}
	if status == StatusRead {
		from = append(from, StatusDelivered)
	}
	const q = `
UPDATE messages
SET status = $3, updated_at = $4
WHERE company_id = $1 AND provider_message_id = $2
  AND direction = $5 AND status = ANY($6) AND state = $7
`
	_, err := r.db.ExecContext(ctx, q, companyID, providerID, status, at, DirectionOutbound, statusList(from), StateActive)
	return err
}

func statusList(ss []Status) []string {
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = string(s)
	}
	return out
}

func (r *PostgresRepo) ListByConversation(ctx context.Context, companyID, conversationID int64, cur *pagination.Cursor, limit int) ([]Message, error) {
	q := `
SELECT ` + messageColumns + `
FROM messages
WHERE company_id = $1 AND conversation_id = $2 AND state = $3
`
	args := []any{companyID, conversationID, StateActive}

	if cur != nil {
		args = append(args, cursorTime(cur), cur.ID)
		q += ` AND (created_at, id) < ($` + itoa(len(args)-1) + `, $` + itoa(len(args)) + `)`
	}

	args = append(args, limit+1)
	q += `
ORDER BY created_at DESC, id DESC
LIMIT $` + itoa(len(args))

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Message
	for rows.Next() {
		m, ok, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, m)
		}
	}
	return out, rows.Err()
}

// ClearConversation soft-deletes every message in the conversation and
// resets the conversation summary, atomically.
func (r *PostgresRepo) ClearConversation(ctx context.Context, companyID, conversationID int64, at time.Time) error {
	return utils.WithTx(ctx, r.db, nil, func(ctx context.Context, tx *sql.Tx) error {
		const del = `
UPDATE messages
SET state = $3, updated_at = $4
WHERE company_id = $1 AND conversation_id = $2 AND state = $5
`
		if _, err := tx.ExecContext(ctx, del, companyID, conversationID, StateDeleted, at, StateActive); err != nil {
			return err
		}

		const reset = `
UPDATE conversations
SET last_message_preview = '', last_message_at = NULL, last_message_id = NULL,
    unread_count = 0, updated_at = $3
WHERE company_id = $1 AND id = $2
`
		_, err := tx.ExecContext(ctx, reset, companyID, conversationID, at)
		return err
	})
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMessage(row rowScanner) (Message, bool, error) {
	var (
		m       Message
		content []byte
	)
	err := row.Scan(
		&m.ID, &m.CompanyID, &m.ConversationID, &m.ContactID, &m.Direction, &m.Status,
		&content, &m.ProviderMessageID, &m.ErrorCode, &m.ErrorMessage, &m.State, &m.CreatedAt, &m.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return Message{}, false, nil
	}
	if err != nil {
		return Message{}, false, err
	}
	if err := json.Unmarshal(content, &m.Content); err != nil {
		return Message{}, false, err
	}
	return m, true, nil
}

func itoa(n int) string { return strconv.Itoa(n) }

func cursorTime(cur *pagination.Cursor) time.Time {
	if cur.SortValue != nil {
		if t, err := time.Parse(time.RFC3339Nano, *cur.SortValue); err == nil {
			return t
		}
	}
	return time.Unix(1<<40, 0)
}
