package message

import "time"

// Message belongs to exactly one conversation.
//
// Lifecycle: outbound messages are created in StatusSending and transition
// once, terminally, to StatusSent or StatusFailed. Inbound messages are
// created already settled; provider receipts later move sent messages to
// delivered/read. A failed message is never resumed; retrying runs the
// whole pipeline again and the failed row stays as an audit trail.
type Message struct {
	ID             int64 `json:"id" db:"id"`
	CompanyID      int64 `json:"company_id" db:"company_id"`
	ConversationID int64 `json:"conversation_id" db:"conversation_id"`
	ContactID      int64 `json:"contact_id" db:"contact_id"`

	Direction Direction `json:"direction" db:"direction"`
	Status    Status    `json:"status" db:"status"`

	Content Content `json:"content" db:"content"`

	// ProviderMessageID is set after a successful send, or on inbound
	// messages from the webhook payload.
	ProviderMessageID string `json:"provider_message_id,omitempty" db:"provider_message_id"`

	ErrorCode    string `json:"error_code,omitempty" db:"error_code"`
	ErrorMessage string `json:"error_message,omitempty" db:"error_message"`

	State State `json:"state" db:"state"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

type Direction string

const (
	DirectionInbound  Direction = "inbound"
	DirectionOutbound Direction = "outbound"
)

type Status string

const (
	StatusSending Status = "sending"
	StatusSent    Status = "sent"
	StatusFailed  Status = "failed"

	// Settled states: inbound creation and outbound receipt tracking.
	StatusDelivered Status = "delivered"
	StatusRead      Status = "read"
)

type State string

const (
	StateActive  State = "active"
	StateDeleted State = "deleted"
)

// ErrorCode is the send pipeline failure taxonomy. Values are stable; the
// UI keys retry affordances and copy off them.
type ErrorCode string

const (
	CodeValidationError          ErrorCode = "VALIDATION_ERROR"
	CodeContactCreateFailed      ErrorCode = "CONTACT_CREATE_FAILED"
	CodeConversationCreateFailed ErrorCode = "CONVERSATION_CREATE_FAILED"
	CodeMessageInsertFailed      ErrorCode = "MESSAGE_INSERT_FAILED"
	CodeWhatsAppSendFailed       ErrorCode = "WHATSAPP_SEND_FAILED"
	CodeUnknown                  ErrorCode = "UNKNOWN"
)

// SendResult is the discriminated outcome of the send pipeline.
type SendResult struct {
	Success bool `json:"success"`

	ConversationID int64    `json:"conversation_id,omitempty"`
	ContactID      int64    `json:"contact_id,omitempty"`
	MessageID      int64    `json:"message_id,omitempty"`
	Message        *Message `json:"message,omitempty"`

	Error string    `json:"error,omitempty"`
	Code  ErrorCode `json:"code,omitempty"`
}
