package note

import (
	"context"
	"database/sql"
	"strconv"
	"time"

	"msgdesk/internal/pagination"
)

type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

const noteColumns = `id, company_id, contact_id, author_user_id, body, state, created_at, updated_at`

func (r *PostgresRepo) Insert(ctx context.Context, n Note) (Note, error) {
	const q = `
INSERT INTO contact_notes (company_id, contact_id, author_user_id, body, state, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7)
RETURNING id
`
	if err := r.db.QueryRowContext(ctx, q,
		n.CompanyID, n.ContactID, n.AuthorUserID, n.Body, n.State, n.CreatedAt, n.UpdatedAt,
	).Scan(&n.ID); err != nil {
		return Note{}, err
	}
	return n, nil
}

func (r *PostgresRepo) GetByID(ctx context.Context, companyID, id int64) (Note, bool, error) {
	const q = `
SELECT ` + noteColumns + `
FROM contact_notes
WHERE company_id = $1 AND id = $2 AND state = $3
`
	var n Note
	err := r.db.QueryRowContext(ctx, q, companyID, id, StateActive).Scan(
		&n.ID, &n.CompanyID, &n.ContactID, &n.AuthorUserID, &n.Body, &n.State, &n.CreatedAt, &n.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return Note{}, false, nil
	}
	if err != nil {
		return Note{}, false, err
	}
	return n, true, nil
}

func (r *PostgresRepo) Update(ctx context.Context, n Note) (Note, error) {
	const q = `
UPDATE contact_notes
SET body = $3, updated_at = $4
WHERE company_id = $1 AND id = $2 AND state = $5
`
	res, err := r.db.ExecContext(ctx, q, n.CompanyID, n.ID, n.Body, n.UpdatedAt, StateActive)
	if err != nil {
		return Note{}, err
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return Note{}, ErrNotFound
	}
	return n, nil
}

func (r *PostgresRepo) SoftDelete(ctx context.Context, companyID, id int64, at time.Time) error {
	const q = `
UPDATE contact_notes
SET state = $3, updated_at = $4
WHERE company_id = $1 AND id = $2 AND state = $5
`
	res, err := r.db.ExecContext(ctx, q, companyID, id, StateDeleted, at, StateActive)
	if err != nil {
		return err
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepo) ListByContact(ctx context.Context, companyID, contactID int64, cur *pagination.Cursor, limit int) ([]Note, error) {
	q := `
SELECT ` + noteColumns + `
FROM contact_notes
WHERE company_id = $1 AND contact_id = $2 AND state = $3
`
	args := []any{companyID, contactID, StateActive}

	if cur != nil {
		args = append(args, cursorTime(cur), cur.ID)
		q += ` AND (created_at, id) < ($` + strconv.Itoa(len(args)-1) + `, $` + strconv.Itoa(len(args)) + `)`
	}

	args = append(args, limit+1)
	q += `
ORDER BY created_at DESC, id DESC
LIMIT $` + strconv.Itoa(len(args))

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Note
	for rows.Next() {
		var n Note
		if err := rows.Scan(
			&n.ID, &n.CompanyID, &n.ContactID, &n.AuthorUserID, &n.Body, &n.State, &n.CreatedAt, &n.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func cursorTime(cur *pagination.Cursor) time.Time {
	if cur.SortValue != nil {
		if t, err := time.Parse(time.RFC3339Nano, *cur.SortValue); err == nil {
			return t
		}
	}
	return time.Unix(1<<40, 0)
}
