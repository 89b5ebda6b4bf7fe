package user

import (
	"context"
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"msgdesk/internal/audit"
	"msgdesk/internal/auth"
	"msgdesk/internal/pagination"
	"msgdesk/internal/rbac"
)

const minPasswordLength = 8

var (
	ErrNotFound           = errors.New("user not found")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

type Repository interface {
	Insert(ctx context.Context, u User) (User, error)
	GetByID(ctx context.Context, companyID, id int64) (User, bool, error)
	// FindByEmail is unscoped: login happens before the company is known.
	FindByEmail(ctx context.Context, email string) (User, bool, error)
	Update(ctx context.Context, u User) (User, error)
	SoftDelete(ctx context.Context, companyID, id int64, at time.Time) error
	List(ctx context.Context, companyID int64, cur *pagination.Cursor, limit int) ([]User, error)
}

type Service struct {
	repo   Repository
	tokens *auth.Manager
	audit  *audit.Service
	clock  func() time.Time

	// bcrypt cost is tunable so the hashing-heavy tests stay fast.
	cost int
}

func NewService(repo Repository, tokens *auth.Manager, auditSvc *audit.Service) *Service {
	return &Service{repo: repo, tokens: tokens, audit: auditSvc, clock: time.Now, cost: bcrypt.DefaultCost}
}

type CreateRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Role     string `json:"role"`
	Password string `json:"password"`
}

func (s *Service) Create(ctx context.Context, companyID int64, req CreateRequest) (User, error) {
	req.Email = normalizeEmail(req.Email)
	req.Name = strings.TrimSpace(req.Name)
	if companyID <= 0 || !validEmail(req.Email) || req.Name == "" {
		return User{}, ErrInvalidArgument
	}
	if !rbac.IsValidRole(req.Role) || rbac.IsSuperAdmin(req.Role) {
		return User{}, ErrInvalidArgument
	}
	if len(req.Password) < minPasswordLength {
		return User{}, ErrInvalidArgument
	}

	if _, ok, err := s.repo.FindByEmail(ctx, req.Email); err != nil {
		return User{}, err
	} else if ok {
		return User{}, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cost)
	if err != nil {
		return User{}, err
	}

	now := s.clock().UTC()
	u, err := s.repo.Insert(ctx, User{
		CompanyID:    companyID,
		Email:        req.Email,
		Name:         req.Name,
		Role:         req.Role,
		PasswordHash: hash,
		State:        StateActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return User{}, err
	}

	if s.audit != nil {
		actorID, _ := auth.UserID(ctx)
		_ = s.audit.Append(ctx, audit.Event{
			CompanyID:   companyID,
			ActorUserID: actorID,
			Type:        audit.EventTypeUserCreated,
			Message:     "user " + u.Email + " created",
		})
	}
	return u, nil
}

type LoginResult struct {
	User   User           `json:"user"`
	Tokens auth.TokenPair `json:"tokens"`
}

// Login verifies credentials and issues a token pair. The same error comes
// back for unknown email and wrong password.
func (s *Service) Login(ctx context.Context, email, password string) (LoginResult, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return LoginResult{}, ErrInvalidCredentials
	}

	u, ok, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return LoginResult{}, err
	}
	if !ok {
		// Burn a comparison anyway so timing does not reveal which emails exist.
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return LoginResult{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(password)); err != nil {
		return LoginResult{}, ErrInvalidCredentials
	}

	pair, err := s.tokens.IssuePair(s.clock(), u.ID, u.CompanyID, u.Role)
	if err != nil {
		return LoginResult{}, err
	}
	return LoginResult{User: u, Tokens: pair}, nil
}

// Refresh exchanges a valid refresh token for a fresh pair.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (auth.TokenPair, error) {
	now := s.clock()
	claims, err := s.tokens.Verify(refreshToken, auth.TokenTypeRefresh, now)
	if err != nil {
		return auth.TokenPair{}, ErrInvalidCredentials
	}
	u, ok, err := s.repo.GetByID(ctx, claims.CompanyID, claims.UserID)
	if err != nil {
		return auth.TokenPair{}, err
	}
	if !ok {
		return auth.TokenPair{}, ErrInvalidCredentials
	}
	return s.tokens.IssuePair(now, u.ID, u.CompanyID, u.Role)
}

var dummyHash = []byte("$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy")

func (s *Service) Get(ctx context.Context, companyID, id int64) (User, error) {
	if companyID <= 0 || id <= 0 {
		return User{}, ErrInvalidArgument
	}
	u, ok, err := s.repo.GetByID(ctx, companyID, id)
	if err != nil {
		return User{}, err
	}
	if !ok {
		return User{}, ErrNotFound
	}
	return u, nil
}

type UpdateRequest struct {
	Name *string `json:"name"`
	Role *string `json:"role"`
}

func (s *Service) Update(ctx context.Context, companyID, id int64, req UpdateRequest) (User, error) {
	u, err := s.Get(ctx, companyID, id)
	if err != nil {
		return User{}, err
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return User{}, ErrInvalidArgument
		}
		u.Name = name
	}
	if req.Role != nil {
		if !rbac.IsValidRole(*req.Role) || rbac.IsSuperAdmin(*req.Role) {
			return User{}, ErrInvalidArgument
		}
		u.Role = *req.Role
	}
	u.UpdatedAt = s.clock().UTC()
	return s.repo.Update(ctx, u)
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

func (s *Service) List(ctx context.Context, companyID int64, req ListRequest) (pagination.Page[User], error) {
	if companyID <= 0 {
		return pagination.Page[User]{}, ErrInvalidArgument
	}
	limit := pagination.DefaultLimit(req.Limit)
	cur := pagination.Decode(req.Cursor)

	rows, err := s.repo.List(ctx, companyID, cur, limit)
	if err != nil {
		return pagination.Page[User]{}, err
	}
	return pagination.NewPage(rows, limit, cursorOf), nil
}

func cursorOf(u User) pagination.Cursor {
	v := u.CreatedAt.UTC().Format(time.RFC3339Nano)
	return pagination.Cursor{SortValue: &v, ID: u.ID}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validEmail(email string) bool {
	at := strings.IndexByte(email, '@')
	if at <= 0 || at == len(email)-1 {
		return false
	}
	return strings.IndexByte(email[at+1:], '.') > 0
}
