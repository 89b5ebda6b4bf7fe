package note

import "time"

type State string

const (
	StateActive  State = "active"
	StateDeleted State = "deleted"
)

// Note is an internal annotation on a contact, visible to agents only.
type Note struct {
	ID           int64     `json:"id"`
	CompanyID    int64     `json:"company_id"`
	ContactID    int64     `json:"contact_id"`
	AuthorUserID int64     `json:"author_user_id"`
	Body         string    `json:"body"`
	State        State     `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
