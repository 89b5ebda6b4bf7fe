package contact

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode"

	"msgdesk/internal/pagination"
)

// Repository abstracts contact persistence.
type Repository interface {
	FindByPhone(ctx context.Context, companyID int64, phone string) (Contact, bool, error)
	GetByID(ctx context.Context, companyID, id int64) (Contact, bool, error)
	Insert(ctx context.Context, c Contact) (Contact, error)
	Update(ctx context.Context, c Contact) (Contact, error)

	// List fetches up to limit+1 active contacts ordered by (created_at DESC, id DESC),
	// starting strictly after cur when present.
	List(ctx context.Context, companyID int64, f Filter, cur *pagination.Cursor, limit int) ([]Contact, error)
}

type Filter struct {
	// Search matches a substring of phone or display name.
	Search string
}

var (
	ErrNotFound        = errors.New("contact not found")
	ErrInvalidArgument = errors.New("invalid argument")
)

type Service struct {
	repo  Repository
	clock func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, clock: time.Now}
}

// Resolve finds the contact for (company, phone), creating it with default
// fields on first sight. Creation happens on the first inbound or outbound
// message to an unknown number.
func (s *Service) Resolve(ctx context.Context, companyID int64, phone string) (Contact, error) {
	if companyID <= 0 {
		return Contact{}, ErrInvalidArgument
	}
	phone = strings.TrimSpace(phone)
	if !ValidPhone(phone) {
		return Contact{}, ErrInvalidArgument
	}

	if existing, ok, err := s.repo.FindByPhone(ctx, companyID, phone); err != nil {
		return Contact{}, err
	} else if ok {
		return existing, nil
	}

	now := s.clock().UTC()
	return s.repo.Insert(ctx, Contact{
		CompanyID: companyID,
		Phone:     phone,
		State:     StateActive,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

func (s *Service) Get(ctx context.Context, companyID, id int64) (Contact, error) {
	if companyID <= 0 || id <= 0 {
		return Contact{}, ErrInvalidArgument
	}
	c, ok, err := s.repo.GetByID(ctx, companyID, id)
	if err != nil {
		return Contact{}, err
	}
	if !ok {
		return Contact{}, ErrNotFound
	}
	return c, nil
}

// Exists reports whether an active contact with this id belongs to the
// company.
func (s *Service) Exists(ctx context.Context, companyID, id int64) (bool, error) {
	_, err := s.Get(ctx, companyID, id)
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrInvalidArgument) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

type UpdateRequest struct {
	DisplayName *string  `json:"display_name"`
	Tags        []string `json:"tags"`
}

func (s *Service) Update(ctx context.Context, companyID, id int64, req UpdateRequest) (Contact, error) {
	c, err := s.Get(ctx, companyID, id)
	if err != nil {
		return Contact{}, err
	}
	if req.DisplayName != nil {
		c.DisplayName = strings.TrimSpace(*req.DisplayName)
	}
	if req.Tags != nil {
		c.Tags = req.Tags
	}
	c.UpdatedAt = s.clock().UTC()
	return s.repo.Update(ctx, c)
}

type ListRequest struct {
	Search string
	Cursor string
	Limit  int
}

func (s *Service) List(ctx context.Context, companyID int64, req ListRequest) (pagination.Page[Contact], error) {
	if companyID <= 0 {
		return pagination.Page[Contact]{}, ErrInvalidArgument
	}
	limit := pagination.DefaultLimit(req.Limit)
	cur := pagination.Decode(req.Cursor)

	rows, err := s.repo.List(ctx, companyID, Filter{Search: strings.TrimSpace(req.Search)}, cur, limit)
	if err != nil {
		return pagination.Page[Contact]{}, err
	}
	return pagination.NewPage(rows, limit, cursorOf), nil
}

func cursorOf(c Contact) pagination.Cursor {
	v := c.CreatedAt.UTC().Format(time.RFC3339Nano)
	return pagination.Cursor{SortValue: &v, ID: c.ID}
}

// ValidPhone accepts an optional leading + followed by 8 to 15 digits,
// ignoring separator characters.
func ValidPhone(phone string) bool {
	if phone == "" {
		return false
	}
	digits := 0
	for i, r := range phone {
		switch {
		case unicode.IsDigit(r):
			digits++
		case r == '+' && i == 0:
		case r == ' ' || r == '-' || r == '(' || r == ')':
		default:
			return false
		}
	}
	return digits >= 8 && digits <= 15
}
