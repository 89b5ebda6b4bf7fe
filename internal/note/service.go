package note

import (
	"context"
	"errors"
	"strings"
	"time"

	"msgdesk/internal/pagination"
)

const maxBodyLength = 4000

var (
	ErrNotFound        = errors.New("note not found")
	ErrInvalidArgument = errors.New("invalid argument")
)

type Repository interface {
	Insert(ctx context.Context, n Note) (Note, error)
	GetByID(ctx context.Context, companyID, id int64) (Note, bool, error)
	Update(ctx context.Context, n Note) (Note, error)
	SoftDelete(ctx context.Context, companyID, id int64, at time.Time) error
	ListByContact(ctx context.Context, companyID, contactID int64, cur *pagination.Cursor, limit int) ([]Note, error)
}

// Contacts verifies the target contact exists in the company before a note
// is attached to it.
type Contacts interface {
	Exists(ctx context.Context, companyID, id int64) (bool, error)
}

type Service struct {
	repo     Repository
	contacts Contacts
	clock    func() time.Time
}

func NewService(repo Repository, contacts Contacts) *Service {
	return &Service{repo: repo, contacts: contacts, clock: time.Now}
}

func (s *Service) Create(ctx context.Context, companyID, authorUserID, contactID int64, body string) (Note, error) {
	body = strings.TrimSpace(body)
	if companyID <= 0 || contactID <= 0 || body == "" || len(body) > maxBodyLength {
		return Note{}, ErrInvalidArgument
	}
	ok, err := s.contacts.Exists(ctx, companyID, contactID)
	if err != nil {
		return Note{}, err
	}
	if !ok {
		return Note{}, ErrInvalidArgument
	}

	now := s.clock().UTC()
	return s.repo.Insert(ctx, Note{
		CompanyID:    companyID,
		ContactID:    contactID,
		AuthorUserID: authorUserID,
		Body:         body,
		State:        StateActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
}

// Update rewrites the body. Only the author may edit their note.
func (s *Service) Update(ctx context.Context, companyID, authorUserID, id int64, body string) (Note, error) {
	body = strings.TrimSpace(body)
	if companyID <= 0 || id <= 0 || body == "" || len(body) > maxBodyLength {
		return Note{}, ErrInvalidArgument
	}
	n, ok, err := s.repo.GetByID(ctx, companyID, id)
	if err != nil {
		return Note{}, err
	}
	if !ok {
		return Note{}, ErrNotFound
	}
	if n.AuthorUserID != authorUserID {
		return Note{}, ErrInvalidArgument
	}
	n.Body = body
	n.UpdatedAt = s.clock().UTC()
	return s.repo.Update(ctx, n)
}

func (s *Service) Delete(ctx context.Context, companyID, id int64) error {
	if companyID <= 0 || id <= 0 {
		return ErrInvalidArgument
	}
	return s.repo.SoftDelete(ctx, companyID, id, s.clock().UTC())
}

type ListRequest struct {
	Cursor string
	Limit  int
}

func (s *Service) List(ctx context.Context, companyID, contactID int64, req ListRequest) (pagination.Page[Note], error) {
	if companyID <= 0 || contactID <= 0 {
		return pagination.Page[Note]{}, ErrInvalidArgument
	}
	limit := pagination.DefaultLimit(req.Limit)
	cur := pagination.Decode(req.Cursor)

	rows, err := s.repo.ListByContact(ctx, companyID, contactID, cur, limit)
	if err != nil {
		return pagination.Page[Note]{}, err
	}
	return pagination.NewPage(rows, limit, cursorOf), nil
}

func cursorOf(n Note) pagination.Cursor {
	v := n.CreatedAt.UTC().Format(time.RFC3339Nano)
	return pagination.Cursor{SortValue: &v, ID: n.ID}
}
