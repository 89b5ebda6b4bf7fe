package contact

import "time"

// Contact is a phone-number identity scoped to a company.
//
// Invariants:
// - (company_id, phone) is unique.
// - Contacts are never hard-deleted; State tracks the lifecycle and every
//   query must filter on it explicitly.
type Contact struct {
	ID        int64  `json:"id" db:"id"`
	CompanyID int64  `json:"company_id" db:"company_id"`
	Phone     string `json:"phone" db:"phone"`

	DisplayName string   `json:"display_name,omitempty" db:"display_name"`
	Tags        []string `json:"tags,omitempty" db:"tags"`

	State State `json:"state" db:"state"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

type State string

const (
	StateActive  State = "active"
	StateDeleted State = "deleted"
)
