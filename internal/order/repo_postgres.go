package order

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

const orderColumns = `id, company_id, contact_id, code, status, total_minor, currency, state, created_at, updated_at`

func (r *PostgresRepo) Insert(ctx context.Context, o Order) (Order, error) {
	const q = `
INSERT INTO orders (company_id, contact_id, code, status, total_minor, currency, state, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
RETURNING id
`
	if err := r.db.QueryRowContext(ctx, q,
		o.CompanyID, o.ContactID, o.Code, o.Status, o.TotalMinor, o.Currency, o.State, o.CreatedAt, o.UpdatedAt,
	).Scan(&o.ID); err != nil {
		return Order{}, err
	}
	return o, nil
}

func (r *PostgresRepo) GetByID(ctx context.Context, companyID, id int64) (Order, bool, error) {
	const q = `
SELECT ` + orderColumns + `
FROM orders
WHERE company_id = $1 AND id = $2 AND state = $3
`
	var o Order
	err := r.db.QueryRowContext(ctx, q, companyID, id, StateActive).Scan(
		&o.ID, &o.CompanyID, &o.ContactID, &o.Code, &o.Status, &o.TotalMinor, &o.Currency, &o.State, &o.CreatedAt, &o.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return Order{}, false, nil
	}
	if err != nil {
		return Order{}, false, err
	}
	return o, true, nil
}

func (r *PostgresRepo) Update(ctx context.Context, o Order) (Order, error) {
	const q = `
UPDATE orders
SET status = $3, total_minor = $4, updated_at = $5
WHERE company_id = $1 AND id = $2 AND state = $6
`
	res, err := r.db.ExecContext(ctx, q, o.CompanyID, o.ID, o.Status, o.TotalMinor, o.UpdatedAt, StateActive)
	if err != nil {
		return Order{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return Order{}, ErrNotFound
	}
	return o, nil
}

func (r *PostgresRepo) SoftDelete(ctx context.Context, companyID, id int64, at time.Time) error {
	const q = `
UPDATE orders
SET state = $3, updated_at = $4
WHERE company_id = $1 AND id = $2 AND state = $5
`
	res, err := r.db.ExecContext(ctx, q, companyID, id, StateDeleted, at, StateActive)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepo) List(ctx context.Context, companyID int64, f Filter, cur *pagination.Cursor, limit int) ([]Order, error) {
	q := `
SELECT ` + orderColumns + `
FROM orders
WHERE company_id = $1 AND state = $2
`
	args := []any{companyID, StateActive}

	if f.Status != "" {
		args = append(args, f.Status)
		q += ` AND status = $` + strconv.Itoa(len(args))
	}
	if f.ContactID > 0 {
		args = append(args, f.ContactID)
		q += ` AND contact_id = $` + strconv.Itoa(len(args))
	}
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

	var out []Order
	for rows.Next() {
		var o Order
		if err := rows.Scan(
			&o.ID, &o.CompanyID, &o.ContactID, &o.Code, &o.Status, &o.TotalMinor, &o.Currency, &o.State, &o.CreatedAt, &o.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, o)
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
