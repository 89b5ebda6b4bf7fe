package account

import "time"

// Account holds a company's WhatsApp Business sending configuration.
// A company may register several numbers; at most one is flagged default.
// Sending resolves to the default active account, falling back to any
// active one.
type Account struct {
	ID        int64 `json:"id" db:"id"`
	CompanyID int64 `json:"company_id" db:"company_id"`

	// PhoneNumberID is the Cloud API identifier the send endpoint is keyed by.
	PhoneNumberID string `json:"phone_number_id" db:"phone_number_id"`
	// DisplayNumber is the human-readable number for UI purposes.
	DisplayNumber string `json:"display_number,omitempty" db:"display_number"`

	// AccessToken is the bearer token for the Cloud API. Never log it.
	AccessToken string `json:"-" db:"access_token"`

	IsDefault bool  `json:"is_default" db:"is_default"`
	State     State `json:"state" db:"state"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

type State string

const (
	StateActive  State = "active"
	StateDeleted State = "deleted"
)
