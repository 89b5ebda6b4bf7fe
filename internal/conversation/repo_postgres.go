package conversation

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"time"

	"msgdesk/internal/pagination"
)

type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

const convColumns = `
cv.id, cv.company_id, cv.contact_id, cv.status, cv.unread_count,
cv.last_message_preview, cv.last_message_at, cv.last_message_id,
cv.assignee_user_id, cv.state, cv.created_at, cv.updated_at,
ct.phone, ct.display_name`

const convFrom = `
FROM conversations cv
JOIN contacts ct ON ct.id = cv.contact_id AND ct.company_id = cv.company_id
`

func (r *PostgresRepo) FindByContact(ctx context.Context, companyID, contactID int64) (Conversation, bool, error) {
	q := `SELECT ` + convColumns + convFrom + `
WHERE cv.company_id = $1 AND cv.contact_id = $2 AND cv.state = $3`
	return scanOne(r.db.QueryRowContext(ctx, q, companyID, contactID, StateActive))
}

func (r *PostgresRepo) GetByID(ctx context.Context, companyID, id int64) (Conversation, bool, error) {
	q := `SELECT ` + convColumns + convFrom + `
WHERE cv.company_id = $1 AND cv.id = $2 AND cv.state = $3`
	return scanOne(r.db.QueryRowContext(ctx, q, companyID, id, StateActive))
}

func (r *PostgresRepo) Insert(ctx context.Context, cv Conversation) (Conversation, error) {
	const q = `
INSERT INTO conversations (company_id, contact_id, status, unread_count, state, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7)
RETURNING id
`
	if err := r.db.QueryRowContext(ctx, q,
		cv.CompanyID, cv.ContactID, cv.Status, cv.UnreadCount, cv.State, cv.CreatedAt, cv.UpdatedAt,
	).Scan(&cv.ID); err != nil {
		return Conversation{}, err
	}
	return cv, nil
}

func (r *PostgresRepo) List(ctx context.Context, companyID int64, f Filter, cur *pagination.Cursor, limit int) ([]Conversation, error) {
	// Company scope first; the cursor condition is a tuple comparison so
	// conversations sharing last_message_at paginate without gaps or
	// duplicates. NULLS LAST keeps never-messaged conversations at the tail.
	q := `SELECT ` + convColumns + convFrom + `
WHERE cv.company_id = $1 AND cv.state = $2`
	args := []any{companyID, StateActive}

	if f.Status != "" {
		args = append(args, f.Status)
		q += ` AND cv.status = $` + strconv.Itoa(len(args))
	}
	if f.Assignee != nil {
		args = append(args, *f.Assignee)
		q += ` AND cv.assignee_user_id = $` + strconv.Itoa(len(args))
	}
	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		n := strconv.Itoa(len(args))
		q += ` AND (ct.phone ILIKE $` + n + ` OR ct.display_name ILIKE $` + n + `)`
	}
	if cur != nil {
		var frag string
		frag, args = cursorWhere(cur, args)
		q += frag
	}

	args = append(args, limit+1)
	q += `
ORDER BY cv.last_message_at DESC NULLS LAST, cv.id DESC
LIMIT $` + strconv.Itoa(len(args))

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Conversation
	for rows.Next() {
		cv, err := scanConversation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, cv)
	}
	return out, rows.Err()
}

// cursorWhere renders the keyset predicate for the
// (last_message_at DESC NULLS LAST, id DESC) ordering. Never-messaged
// conversations carry a NULL last_message_at and sit in the tail, after
// every timestamped row; a cursor inside the timestamped head must keep
// them, and the bare tuple comparison alone would not — it evaluates to
// NULL for those rows and filters them out.
func cursorWhere(cur *pagination.Cursor, args []any) (string, []any) {
	if cur.SortValue == nil {
		// Cursor inside the NULL tail: only unmessaged conversations with
		// smaller ids remain.
		args = append(args, cur.ID)
		return ` AND cv.last_message_at IS NULL AND cv.id < $` + strconv.Itoa(len(args)), args
	}
	at, err := time.Parse(time.RFC3339Nano, *cur.SortValue)
	if err != nil {
		return ``, args
	}
	args = append(args, at, cur.ID)
	t, id := strconv.Itoa(len(args)-1), strconv.Itoa(len(args))
	return ` AND (cv.last_message_at IS NULL OR (cv.last_message_at, cv.id) < ($` + t + `, $` + id + `))`, args
}

func (r *PostgresRepo) MarkRead(ctx context.Context, companyID, id int64, at time.Time) error {
	const q = `
UPDATE conversations
SET unread_count = 0, updated_at = $3
WHERE company_id = $1 AND id = $2 AND state = $4
`
	return r.exec(ctx, q, companyID, id, at, StateActive)
}

func (r *PostgresRepo) SetStatus(ctx context.Context, companyID, id int64, status Status, at time.Time) error {
	const q = `
UPDATE conversations
SET status = $3, updated_at = $4
WHERE company_id = $1 AND id = $2 AND state = $5
`
	return r.exec(ctx, q, companyID, id, status, at, StateActive)
}

func (r *PostgresRepo) Assign(ctx context.Context, companyID, id int64, userID *int64, at time.Time) error {
	const q = `
UPDATE conversations
SET assignee_user_id = $3, updated_at = $4
WHERE company_id = $1 AND id = $2 AND state = $5
`
	return r.exec(ctx, q, companyID, id, userID, at, StateActive)
}

func (r *PostgresRepo) SoftDelete(ctx context.Context, companyID, id int64, at time.Time) error {
	const q = `
UPDATE conversations
SET state = $3, updated_at = $4
WHERE company_id = $1 AND id = $2 AND state = $5
`
	return r.exec(ctx, q, companyID, id, StateDeleted, at, StateActive)
}

func (r *PostgresRepo) ApplySummary(ctx context.Context, companyID, id int64, preview string, at time.Time, messageID int64, incrementUnread bool) error {
	// Last writer wins on concurrent sends; accepted weak-consistency
	// trade-off for the summary projection.
	bump := 0
	if incrementUnread {
		bump = 1
	}
	const q = `
UPDATE conversations
SET last_message_preview = $3, last_message_at = $4, last_message_id = $5,
    unread_count = unread_count + $6, updated_at = $4
WHERE company_id = $1 AND id = $2 AND state = $7
`
	return r.exec(ctx, q, companyID, id, preview, at, messageID, bump, StateActive)
}

func (r *PostgresRepo) ResetSummary(ctx context.Context, companyID, id int64, at time.Time) error {
	const q = `
UPDATE conversations
SET last_message_preview = '', last_message_at = NULL, last_message_id = NULL,
    unread_count = 0, updated_at = $3
WHERE company_id = $1 AND id = $2 AND state = $4
`
	return r.exec(ctx, q, companyID, id, at, StateActive)
}

func (r *PostgresRepo) exec(ctx context.Context, q string, args ...any) error {
	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func scanOne(row *sql.Row) (Conversation, bool, error) {
	cv, err := scanConversation(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Conversation{}, false, nil
		}
		return Conversation{}, false, err
	}
	return cv, true, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanConversation(row rowScanner) (Conversation, error) {
	var cv Conversation
	var preview sql.NullString
	var lastAt sql.NullTime
	var lastID, assignee sql.NullInt64
	var name sql.NullString
	if err := row.Scan(
		&cv.ID, &cv.CompanyID, &cv.ContactID, &cv.Status, &cv.UnreadCount,
		&preview, &lastAt, &lastID,
		&assignee, &cv.State, &cv.CreatedAt, &cv.UpdatedAt,
		&cv.ContactPhone, &name,
	); err != nil {
		return Conversation{}, err
	}
	cv.LastMessagePreview = preview.String
	if lastAt.Valid {
		t := lastAt.Time
		cv.LastMessageAt = &t
	}
	if lastID.Valid {
		v := lastID.Int64
		cv.LastMessageID = &v
	}
	if assignee.Valid {
		v := assignee.Int64
		cv.AssigneeUserID = &v
	}
	cv.ContactName = name.String
	return cv, nil
}
