package conversation

import (
	"context"
	"errors"
	"strings"
	"time"

	"msgdesk/internal/audit"
	"msgdesk/internal/pagination"
	"msgdesk/pkg/logger"
)

// Repository abstracts conversation persistence.
type Repository interface {
	FindByContact(ctx context.Context, companyID, contactID int64) (Conversation, bool, error)
	GetByID(ctx context.Context, companyID, id int64) (Conversation, bool, error)
	Insert(ctx context.Context, cv Conversation) (Conversation, error)

	// List fetches up to limit+1 conversations ordered by
	// (last_message_at DESC, id DESC), starting strictly after cur.
	List(ctx context.Context, companyID int64, f Filter, cur *pagination.Cursor, limit int) ([]Conversation, error)

	MarkRead(ctx context.Context, companyID, id int64, at time.Time) error
	SetStatus(ctx context.Context, companyID, id int64, status Status, at time.Time) error
	Assign(ctx context.Context, companyID, id int64, userID *int64, at time.Time) error
	SoftDelete(ctx context.Context, companyID, id int64, at time.Time) error

	// ApplySummary refreshes the last-message projection; incrementUnread is
	// set for inbound messages. Exposed for the message store, whose
	// transaction owns the paired message write.
	ApplySummary(ctx context.Context, companyID, id int64, preview string, at time.Time, messageID int64, incrementUnread bool) error
	// ResetSummary clears the projection after a conversation is cleared.
	ResetSummary(ctx context.Context, companyID, id int64, at time.Time) error
}

type Filter struct {
	Status   Status
	Search   string
	Assignee *int64
}

var (
	ErrNotFound        = errors.New("conversation not found")
	ErrInvalidArgument = errors.New("invalid argument")
)

type Service struct {
	repo  Repository
	audit *audit.Service
	clock func() time.Time
}

func NewService(repo Repository, auditSvc *audit.Service) *Service {
	return &Service{repo: repo, audit: auditSvc, clock: time.Now}
}

// Resolve finds the conversation for (company, contact), creating it lazily
// with zeroed counters when a message first flows for the contact.
func (s *Service) Resolve(ctx context.Context, companyID, contactID int64) (Conversation, error) {
	if companyID <= 0 || contactID <= 0 {
		return Conversation{}, ErrInvalidArgument
	}

	if existing, ok, err := s.repo.FindByContact(ctx, companyID, contactID); err != nil {
		return Conversation{}, err
	} else if ok {
		return existing, nil
	}

	now := s.clock().UTC()
	return s.repo.Insert(ctx, Conversation{
		CompanyID: companyID,
		ContactID: contactID,
		Status:    StatusActive,
		State:     StateActive,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

func (s *Service) Get(ctx context.Context, companyID, id int64) (Conversation, error) {
	if companyID <= 0 || id <= 0 {
		return Conversation{}, ErrInvalidArgument
	}
	cv, ok, err := s.repo.GetByID(ctx, companyID, id)
	if err != nil {
		return Conversation{}, err
	}
	if !ok {
		return Conversation{}, ErrNotFound
	}
	return cv, nil
}

type ListRequest struct {
	Status   string
	Search   string
	Assignee *int64
	Cursor   string
	Limit    int
}

func (s *Service) List(ctx context.Context, companyID int64, req ListRequest) (pagination.Page[Conversation], error) {
	if companyID <= 0 {
		return pagination.Page[Conversation]{}, ErrInvalidArgument
	}

	f := Filter{Search: strings.TrimSpace(req.Search), Assignee: req.Assignee}
	switch req.Status {
	case "":
	case string(StatusActive):
		f.Status = StatusActive
	case string(StatusArchived):
		f.Status = StatusArchived
	default:
		return pagination.Page[Conversation]{}, ErrInvalidArgument
	}

	limit := pagination.DefaultLimit(req.Limit)
	cur := pagination.Decode(req.Cursor)

	rows, err := s.repo.List(ctx, companyID, f, cur, limit)
	if err != nil {
		return pagination.Page[Conversation]{}, err
	}
	return pagination.NewPage(rows, limit, cursorOf), nil
}

func cursorOf(cv Conversation) pagination.Cursor {
	cur := pagination.Cursor{ID: cv.ID}
	if cv.LastMessageAt != nil {
		v := cv.LastMessageAt.UTC().Format(time.RFC3339Nano)
		cur.SortValue = &v
	}
	return cur
}

func (s *Service) MarkRead(ctx context.Context, companyID, id int64) error {
	if companyID <= 0 || id <= 0 {
		return ErrInvalidArgument
	}
	return s.repo.MarkRead(ctx, companyID, id, s.clock().UTC())
}

func (s *Service) Archive(ctx context.Context, companyID, actorUserID, id int64) error {
	if err := s.setStatus(ctx, companyID, id, StatusArchived); err != nil {
		return err
	}
	s.logAction(ctx, audit.EventTypeConversationArchived, companyID, actorUserID, id, "conversation archived")
	return nil
}

func (s *Service) Unarchive(ctx context.Context, companyID, actorUserID, id int64) error {
	return s.setStatus(ctx, companyID, id, StatusActive)
}

func (s *Service) setStatus(ctx context.Context, companyID, id int64, status Status) error {
	if companyID <= 0 || id <= 0 {
		return ErrInvalidArgument
	}
	return s.repo.SetStatus(ctx, companyID, id, status, s.clock().UTC())
}

// Assign sets the conversation's assignee; a nil userID unassigns.
func (s *Service) Assign(ctx context.Context, companyID, actorUserID, id int64, userID *int64) error {
	if companyID <= 0 || id <= 0 {
		return ErrInvalidArgument
	}
	if userID != nil && *userID <= 0 {
		return ErrInvalidArgument
	}
	if err := s.repo.Assign(ctx, companyID, id, userID, s.clock().UTC()); err != nil {
		return err
	}
	s.logAction(ctx, audit.EventTypeConversationAssigned, companyID, actorUserID, id, "conversation assigned")
	return nil
}

func (s *Service) Delete(ctx context.Context, companyID, actorUserID, id int64) error {
	if companyID <= 0 || id <= 0 {
		return ErrInvalidArgument
	}
	if err := s.repo.SoftDelete(ctx, companyID, id, s.clock().UTC()); err != nil {
		return err
	}
	s.logAction(ctx, audit.EventTypeConversationDeleted, companyID, actorUserID, id, "conversation deleted")
	return nil
}

func (s *Service) logAction(ctx context.Context, t audit.EventType, companyID, actorUserID, id int64, msg string) {
	if s.audit == nil {
		return
	}
	if err := s.audit.LogConversationAction(ctx, t, companyID, actorUserID, id, msg); err != nil {
		logger.From(ctx).Warn("audit append failed", "type", t, "err", err)
	}
}
