package account

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

const accountColumns = `id, company_id, phone_number_id, display_number, access_token, is_default, state, created_at, updated_at`

func (r *PostgresRepo) GetByID(ctx context.Context, companyID, id int64) (Account, bool, error) {
	const q = `
SELECT ` + accountColumns + `
FROM whatsapp_accounts
WHERE company_id = $1 AND id = $2 AND state = $3
`
	return scanOne(r.db.QueryRowContext(ctx, q, companyID, id, StateActive))
}

func (r *PostgresRepo) FindActive(ctx context.Context, companyID int64) ([]Account, error) {
	const q = `
SELECT ` + accountColumns + `
FROM whatsapp_accounts
WHERE company_id = $1 AND state = $2
ORDER BY is_default DESC, id ASC
`
	return r.queryAll(ctx, q, companyID, StateActive)
}

func (r *PostgresRepo) FindByPhoneNumberID(ctx context.Context, phoneNumberID string) (Account, bool, error) {
	// Webhook resolution runs before any identity exists; phone_number_id is
	// globally unique at the provider so no company scope applies here.
	const q = `
SELECT ` + accountColumns + `
FROM whatsapp_accounts
WHERE phone_number_id = $1 AND state = $2
`
	return scanOne(r.db.QueryRowContext(ctx, q, phoneNumberID, StateActive))
}

func (r *PostgresRepo) Insert(ctx context.Context, a Account) (Account, error) {
	const q = `
INSERT INTO whatsapp_accounts (company_id, phone_number_id, display_number, access_token, is_default, state, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
RETURNING id
`
	if err := r.db.QueryRowContext(ctx, q,
		a.CompanyID, a.PhoneNumberID, a.DisplayNumber, a.AccessToken, a.IsDefault, a.State, a.CreatedAt, a.UpdatedAt,
	).Scan(&a.ID); err != nil {
		return Account{}, err
	}
	return a, nil
}

func (r *PostgresRepo) Update(ctx context.Context, a Account) (Account, error) {
	const q = `
UPDATE whatsapp_accounts
SET display_number = $3, access_token = $4, is_default = $5, updated_at = $6
WHERE company_id = $1 AND id = $2 AND state = $7
`
	res, err := r.db.ExecContext(ctx, q, a.CompanyID, a.ID, a.DisplayNumber, a.AccessToken, a.IsDefault, a.UpdatedAt, StateActive)
	if err != nil {
		return Account{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return Account{}, ErrNotFound
	}
	return a, nil
}

func (r *PostgresRepo) ClearDefault(ctx context.Context, companyID int64) error {
	const q = `
UPDATE whatsapp_accounts
SET is_default = FALSE
WHERE company_id = $1 AND is_default = TRUE
`
	_, err := r.db.ExecContext(ctx, q, companyID)
	return err
}

func (r *PostgresRepo) SoftDelete(ctx context.Context, companyID, id int64, at time.Time) error {
	const q = `
UPDATE whatsapp_accounts
SET state = $3, is_default = FALSE, updated_at = $4
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

func (r *PostgresRepo) ListByCompany(ctx context.Context, companyID int64) ([]Account, error) {
	const q = `
SELECT ` + accountColumns + `
FROM whatsapp_accounts
WHERE company_id = $1 AND state = $2
ORDER BY id ASC
`
	return r.queryAll(ctx, q, companyID, StateActive)
}

func (r *PostgresRepo) queryAll(ctx context.Context, q string, args ...any) ([]Account, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Account
	for rows.Next() {
		var a Account
		if err := rows.Scan(
			&a.ID, &a.CompanyID, &a.PhoneNumberID, &a.DisplayNumber, &a.AccessToken,
			&a.IsDefault, &a.State, &a.CreatedAt, &a.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func scanOne(row *sql.Row) (Account, bool, error) {
	var a Account
	err := row.Scan(
		&a.ID, &a.CompanyID, &a.PhoneNumberID, &a.DisplayNumber, &a.AccessToken,
		&a.IsDefault, &a.State, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Account{}, false, nil
		}
		return Account{}, false, err
	}
	return a, true, nil
}
