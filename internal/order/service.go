package order

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"msgdesk/internal/pagination"
)

var (
	ErrNotFound          = errors.New("order not found")
	ErrInvalidArgument   = errors.New("invalid argument")
	ErrInvalidTransition = errors.New("invalid status transition")
)

type Repository interface {
	Insert(ctx context.Context, o Order) (Order, error)
	GetByID(ctx context.Context, companyID, id int64) (Order, bool, error)
	Update(ctx context.Context, o Order) (Order, error)
	SoftDelete(ctx context.Context, companyID, id int64, at time.Time) error
	List(ctx context.Context, companyID int64, f Filter, cur *pagination.Cursor, limit int) ([]Order, error)
}

type Contacts interface {
	Exists(ctx context.Context, companyID, id int64) (bool, error)
}

type Filter struct {
	Status    Status
	ContactID int64
}

type Service struct {
	repo     Repository
	contacts Contacts
	clock    func() time.Time
}

func NewService(repo Repository, contacts Contacts) *Service {
	return &Service{repo: repo, contacts: contacts, clock: time.Now}
}

type CreateRequest struct {
	ContactID  int64  `json:"contact_id"`
	Code       string `json:"code"`
	TotalMinor int64  `json:"total_minor"`
	Currency   string `json:"currency"`
}

func (s *Service) Create(ctx context.Context, companyID int64, req CreateRequest) (Order, error) {
	req.Currency = strings.ToUpper(strings.TrimSpace(req.Currency))
	req.Code = strings.TrimSpace(req.Code)
	if companyID <= 0 || req.ContactID <= 0 || req.TotalMinor < 0 || len(req.Currency) != 3 {
		return Order{}, ErrInvalidArgument
	}
	ok, err := s.contacts.Exists(ctx, companyID, req.ContactID)
	if err != nil {
		return Order{}, err
	}
	if !ok {
		return Order{}, ErrInvalidArgument
	}
	if req.Code == "" {
		req.Code = newCode()
	}

	now := s.clock().UTC()
	return s.repo.Insert(ctx, Order{
		CompanyID:  companyID,
		ContactID:  req.ContactID,
		Code:       req.Code,
		Status:     StatusPending,
		TotalMinor: req.TotalMinor,
		Currency:   req.Currency,
		State:      StateActive,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
}

func newCode() string {
	// First uuid segment is enough entropy for a human-facing order code.
	return "ORD-" + strings.ToUpper(strings.SplitN(uuid.NewString(), "-", 2)[0])
}

func (s *Service) Get(ctx context.Context, companyID, id int64) (Order, error) {
	if companyID <= 0 || id <= 0 {
		return Order{}, ErrInvalidArgument
	}
	o, ok, err := s.repo.GetByID(ctx, companyID, id)
	if err != nil {
		return Order{}, err
	}
	if !ok {
		return Order{}, ErrNotFound
	}
	return o, nil
}

// SetStatus moves an order along pending -> paid -> shipped. Cancellation
// is allowed from pending or paid; cancelled and shipped are terminal.
func (s *Service) SetStatus(ctx context.Context, companyID, id int64, next Status) (Order, error) {
	if !ValidStatus(next) {
		return Order{}, ErrInvalidArgument
	}
	o, err := s.Get(ctx, companyID, id)
	if err != nil {
		return Order{}, err
	}
	if !allowedTransition(o.Status, next) {
		return Order{}, ErrInvalidTransition
	}
	o.Status = next
	o.UpdatedAt = s.clock().UTC()
	return s.repo.Update(ctx, o)
}

func allowedTransition(from, to Status) bool {
	switch from {
	case StatusPending:
		return to == StatusPaid || to == StatusCancelled
	case StatusPaid:
		return to == StatusShipped || to == StatusCancelled
	}
	return false
}

func (s *Service) Delete(ctx context.Context, companyID, id int64) error {
	if companyID <= 0 || id <= 0 {
		return ErrInvalidArgument
	}
	return s.repo.SoftDelete(ctx, companyID, id, s.clock().UTC())
}

type ListRequest struct {
	Status    string
	ContactID int64
	Cursor    string
	Limit     int
}

func (s *Service) List(ctx context.Context, companyID int64, req ListRequest) (pagination.Page[Order], error) {
	if companyID <= 0 {
		return pagination.Page[Order]{}, ErrInvalidArgument
	}
	f := Filter{ContactID: req.ContactID}
	if req.Status != "" {
		if !ValidStatus(Status(req.Status)) {
			return pagination.Page[Order]{}, ErrInvalidArgument
		}
		f.Status = Status(req.Status)
	}

	limit := pagination.DefaultLimit(req.Limit)
	cur := pagination.Decode(req.Cursor)

	rows, err := s.repo.List(ctx, companyID, f, cur, limit)
	if err != nil {
		return pagination.Page[Order]{}, err
	}
	return pagination.NewPage(rows, limit, cursorOf), nil
}

func cursorOf(o Order) pagination.Cursor {
	v := o.CreatedAt.UTC().Format(time.RFC3339Nano)
	return pagination.Cursor{SortValue: &v, ID: o.ID}
}
