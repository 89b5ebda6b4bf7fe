package audit

import "time"

// Event is an immutable, append-only audit log record.
//
// Invariants:
// - Events are never updated or deleted.
// - company_id is required for tenancy isolation.
// - actor and ip capture are best-effort; do not block message flows on audit failures.
type Event struct {
	ID        string `json:"id" db:"id"`
	CompanyID int64  `json:"company_id" db:"company_id"`

	// Type indicates the business category of the audit record.
	Type EventType `json:"type" db:"type"`

	// ActorUserID is the authenticated user causing the event (if applicable).
	ActorUserID int64 `json:"actor_user_id,omitempty" db:"actor_user_id"`
	ActorRole   string `json:"actor_role,omitempty" db:"actor_role"`

	// IPAddress should capture the original client IP when available.
	IPAddress string `json:"ip_address,omitempty" db:"ip_address"`

	// Target identifiers (optional, depending on the event type).
	ConversationID int64 `json:"conversation_id,omitempty" db:"conversation_id"`
	MessageID      int64 `json:"message_id,omitempty" db:"message_id"`
	ContactID      int64 `json:"contact_id,omitempty" db:"contact_id"`
	AccountID      int64 `json:"account_id,omitempty" db:"account_id"`

	// Message is a short human-readable description for internal ops.
	Message string `json:"message,omitempty" db:"message"`

	// Metadata is optional JSON for full details.
	Metadata string `json:"metadata,omitempty" db:"metadata"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type EventType string

const (
	EventTypeMessageSent          EventType = "message_sent"
	EventTypeMessageSendFailed    EventType = "message_send_failed"
	EventTypeMessageReceived      EventType = "message_received"
	EventTypeConversationArchived EventType = "conversation_archived"
	EventTypeConversationAssigned EventType = "conversation_assigned"
	EventTypeConversationCleared  EventType = "conversation_cleared"
	EventTypeConversationDeleted  EventType = "conversation_deleted"
	EventTypeAccountUpdated       EventType = "account_updated"
	EventTypeUserCreated          EventType = "user_created"
)
