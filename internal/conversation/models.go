package conversation

import "time"

// Conversation is the unique thread between a company and one contact.
//
// Invariants:
// - (company_id, contact_id) is unique among non-deleted conversations.
// - The last-message fields mirror the most recently created, non-deleted
//   message; they are written in the same transaction as the message row.
// - State is the explicit lifecycle; every query filters on it.
type Conversation struct {
	ID        int64 `json:"id" db:"id"`
	CompanyID int64 `json:"company_id" db:"company_id"`
	ContactID int64 `json:"contact_id" db:"contact_id"`

	Status      Status `json:"status" db:"status"`
	UnreadCount int    `json:"unread_count" db:"unread_count"`

	LastMessagePreview string     `json:"last_message_preview,omitempty" db:"last_message_preview"`
	LastMessageAt      *time.Time `json:"last_message_at,omitempty" db:"last_message_at"`
	LastMessageID      *int64     `json:"last_message_id,omitempty" db:"last_message_id"`

	AssigneeUserID *int64 `json:"assignee_user_id,omitempty" db:"assignee_user_id"`

	State State `json:"state" db:"state"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`

	// Contact projections filled on reads for list screens.
	ContactPhone string `json:"contact_phone,omitempty" db:"-"`
	ContactName  string `json:"contact_name,omitempty" db:"-"`
}

type Status string

const (
	StatusActive   Status = "active"
	StatusArchived Status = "archived"
)

type State string

const (
	StateActive  State = "active"
	StateDeleted State = "deleted"
)
