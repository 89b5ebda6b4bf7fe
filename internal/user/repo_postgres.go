package user

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

const userColumns = `id, company_id, email, name, role, password_hash, state, created_at, updated_at`

func (r *PostgresRepo) Insert(ctx context.Context, u User) (User, error) {
	const q = `
INSERT INTO users (company_id, email, name, role, password_hash, state, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
RETURNING id
`
	if err := r.db.QueryRowContext(ctx, q,
		u.CompanyID, u.Email, u.Name, u.Role, u.PasswordHash, u.State, u.CreatedAt, u.UpdatedAt,
	).Scan(&u.ID); err != nil {
		return User{}, err
	}
	return u, nil
}

func (r *PostgresRepo) GetByID(ctx context.Context, companyID, id int64) (User, bool, error) {
	const q = `
SELECT ` + userColumns + `
FROM users
WHERE company_id = $1 AND id = $2 AND state = $3
`
	return scanUser(r.db.QueryRowContext(ctx, q, companyID, id, StateActive))
}

func (r *PostgresRepo) FindByEmail(ctx context.Context, email string) (User, bool, error) {
	const q = `
SELECT ` + userColumns + `
FROM users
WHERE email = $1 AND state = $2
`
	return scanUser(r.db.QueryRowContext(ctx, q, email, StateActive))
}

func (r *PostgresRepo) Update(ctx context.Context, u User) (User, error) {
	const q = `
UPDATE users
SET name = $3, role = $4, password_hash = $5, updated_at = $6
WHERE company_id = $1 AND id = $2 AND state = $7
`
	res, err := r.db.ExecContext(ctx, q, u.CompanyID, u.ID, u.Name, u.Role, u.PasswordHash, u.UpdatedAt, StateActive)
	if err != nil {
		return User{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return User{}, ErrNotFound
	}
	return u, nil
}

func (r *PostgresRepo) SoftDelete(ctx context.Context, companyID, id int64, at time.Time) error {
	const q = `
UPDATE users
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

func (r *PostgresRepo) List(ctx context.Context, companyID int64, cur *pagination.Cursor, limit int) ([]User, error) {
	q := `
SELECT ` + userColumns + `
FROM users
WHERE company_id = $1 AND state = $2
`
	args := []any{companyID, StateActive}

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

	var out []User
	for rows.Next() {
		u, ok, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, u)
		}
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (User, bool, error) {
	var u User
	err := row.Scan(
		&u.ID, &u.CompanyID, &u.Email, &u.Name, &u.Role, &u.PasswordHash, &u.State, &u.CreatedAt, &u.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return User{}, false, nil
	}
	if err != nil {
		return User{}, false, err
	}
	return u, true, nil
}

func cursorTime(cur *pagination.Cursor) time.Time {
	if cur.SortValue != nil {
		if t, err := time.Parse(time.RFC3339Nano, *cur.SortValue); err == nil {
			return t
		}
	}
	return time.Unix(1<<40, 0)
}
