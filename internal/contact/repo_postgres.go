package contact

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"msgdesk/internal/pagination"
)

// PostgresRepo persists contacts in the contacts table.
// Tags are stored as a JSONB array.
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

const contactColumns = `id, company_id, phone, display_name, tags, state, created_at, updated_at`

func (r *PostgresRepo) FindByPhone(ctx context.Context, companyID int64, phone string) (Contact, bool, error) {
	const q = `
SELECT ` + contactColumns + `
FROM contacts
WHERE company_id = $1 AND phone = $2 AND state = $3
`
	return r.scanOne(r.db.QueryRowContext(ctx, q, companyID, phone, StateActive))
}

func (r *PostgresRepo) GetByID(ctx context.Context, companyID, id int64) (Contact, bool, error) {
	const q = `
SELECT ` + contactColumns + `
FROM contacts
WHERE company_id = $1 AND id = $2 AND state = $3
`
	return r.scanOne(r.db.QueryRowContext(ctx, q, companyID, id, StateActive))
}

func (r *PostgresRepo) Insert(ctx context.Context, c Contact) (Contact, error) {
	tags, err := marshalTags(c.Tags)
	if err != nil {
		return Contact{}, err
	}
	const q = `
INSERT INTO contacts (company_id, phone, display_name, tags, state, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7)
RETURNING id
`
	if err := r.db.QueryRowContext(ctx, q,
		c.CompanyID, c.Phone, c.DisplayName, tags, c.State, c.CreatedAt, c.UpdatedAt,
	).Scan(&c.ID); err != nil {
		return Contact{}, err
	}
	return c, nil
}

func (r *PostgresRepo) Update(ctx context.Context, c Contact) (Contact, error) {
	tags, err := marshalTags(c.Tags)
	if err != nil {
		return Contact{}, err
	}
	const q = `
UPDATE contacts
SET display_name = $3, tags = $4, updated_at = $5
WHERE company_id = $1 AND id = $2 AND state = $6
`
	res, err := r.db.ExecContext(ctx, q, c.CompanyID, c.ID, c.DisplayName, tags, c.UpdatedAt, StateActive)
	if err != nil {
		return Contact{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return Contact{}, ErrNotFound
	}
	return c, nil
}

func (r *PostgresRepo) List(ctx context.Context, companyID int64, f Filter, cur *pagination.Cursor, limit int) ([]Contact, error) {
	// Company scope first, then state, then optional filters, then the
	// cursor tuple comparison. Tuple (not two column filters) so rows
	// sharing created_at are neither skipped nor repeated.
	q := `
SELECT ` + contactColumns + `
FROM contacts
WHERE company_id = $1 AND state = $2
`
	args := []any{companyID, StateActive}

	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		q += ` AND (phone ILIKE $` + itoa(len(args)) + ` OR display_name ILIKE $` + itoa(len(args)) + `)`
	}
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

	var out []Contact
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *PostgresRepo) scanOne(row *sql.Row) (Contact, bool, error) {
	c, err := scanContact(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Contact{}, false, nil
		}
		return Contact{}, false, err
	}
	return c, true, nil
}

func scanContact(row rowScanner) (Contact, error) {
	var c Contact
	var tags []byte
	if err := row.Scan(
		&c.ID,
		&c.CompanyID,
		&c.Phone,
		&c.DisplayName,
		&tags,
		&c.State,
		&c.CreatedAt,
		&c.UpdatedAt,
	); err != nil {
		return Contact{}, err
	}
	if len(tags) > 0 {
		if err := json.Unmarshal(tags, &c.Tags); err != nil {
			return Contact{}, err
		}
	}
	return c, nil
}

func marshalTags(tags []string) ([]byte, error) {
	if tags == nil {
		tags = []string{}
	}
	return json.Marshal(tags)
}

func cursorTime(cur *pagination.Cursor) time.Time {
	if cur.SortValue != nil {
		if t, err := time.Parse(time.RFC3339Nano, *cur.SortValue); err == nil {
			return t
		}
	}
	// Unparseable sort value degrades to "start from the beginning" for the
	// time component; id still bounds the page.
	return time.Unix(1<<40, 0)
}

func itoa(n int) string { return strconv.Itoa(n) }
