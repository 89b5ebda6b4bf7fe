package audit

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Repository is the persistence contract for audit events.
//
// It MUST be append-only: no Update/Delete methods exist.
type Repository interface {
	Append(ctx context.Context, e Event) error
}

// Service logs internal audit information.
//
// IMPORTANT:
// - Audit is internal-only. Do not expose these records to tenant users by default.
// - Callers should treat audit logging as best-effort; the send pipeline must
//   never fail because an audit insert failed.
type Service struct {
	repo  Repository
	clock func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, clock: time.Now}
}

var ErrInvalidEvent = errors.New("audit: invalid event")

func (s *Service) Append(ctx context.Context, e Event) error {
	if s.repo == nil {
		return errors.New("audit: repository not configured")
	}
	if e.CompanyID <= 0 {
		return ErrInvalidEvent
	}
	if e.Type == "" {
		return ErrInvalidEvent
	}

	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = s.clock().UTC()
	}
	return s.repo.Append(ctx, e)
}

// LogMessageSent records a successful outbound delivery.
func (s *Service) LogMessageSent(ctx context.Context, companyID, actorUserID, conversationID, messageID int64) error {
	return s.Append(ctx, Event{
		CompanyID:      companyID,
		Type:           EventTypeMessageSent,
		ActorUserID:    actorUserID,
		ConversationID: conversationID,
		MessageID:      messageID,
		Message:        "outbound message sent",
	})
}

// LogMessageSendFailed records a failed outbound delivery with its error code.
func (s *Service) LogMessageSendFailed(ctx context.Context, companyID, actorUserID, conversationID, messageID int64, code, detail string) error {
	return s.Append(ctx, Event{
		CompanyID:      companyID,
		Type:           EventTypeMessageSendFailed,
		ActorUserID:    actorUserID,
		ConversationID: conversationID,
		MessageID:      messageID,
		Message:        "outbound message failed: " + code,
		Metadata:       detail,
	})
}

// LogConversationAction records an explicit staff action on a conversation.
func (s *Service) LogConversationAction(ctx context.Context, t EventType, companyID, actorUserID, conversationID int64, message string) error {
	return s.Append(ctx, Event{
		CompanyID:      companyID,
		Type:           t,
		ActorUserID:    actorUserID,
		ConversationID: conversationID,
		Message:        message,
	})
}
