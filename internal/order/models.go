package order

import "time"

type Status string

const (
	StatusPending   Status = "pending"
	StatusPaid      Status = "paid"
	StatusShipped   Status = "shipped"
	StatusCancelled Status = "cancelled"
)

func ValidStatus(s Status) bool {
	switch s {
	case StatusPending, StatusPaid, StatusShipped, StatusCancelled:
		return true
	}
	return false
}

type State string

const (
	StateActive  State = "active"
	StateDeleted State = "deleted"
)

// Order is a sale recorded against a contact. Money is carried in minor
// units (cents); the currency is an ISO 4217 code.
type Order struct {
	ID         int64     `json:"id"`
	CompanyID  int64     `json:"company_id"`
	ContactID  int64     `json:"contact_id"`
	Code       string    `json:"code"`
	Status     Status    `json:"status"`
	TotalMinor int64     `json:"total_minor"`
	Currency   string    `json:"currency"`
	State      State     `json:"-"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
