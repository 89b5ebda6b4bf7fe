package account

import (
	"context"
	"errors"
	"strings"
	"time"
)

// Repository abstracts account persistence.
type Repository interface {
	GetByID(ctx context.Context, companyID, id int64) (Account, bool, error)
	// FindActive returns the company's active accounts, default first.
	FindActive(ctx context.Context, companyID int64) ([]Account, error)
	// FindByPhoneNumberID resolves the owning account of a provider webhook.
	FindByPhoneNumberID(ctx context.Context, phoneNumberID string) (Account, bool, error)
	Insert(ctx context.Context, a Account) (Account, error)
	Update(ctx context.Context, a Account) (Account, error)
	// ClearDefault unsets the default flag on all of a company's accounts.
	ClearDefault(ctx context.Context, companyID int64) error
	SoftDelete(ctx context.Context, companyID, id int64, at time.Time) error
	ListByCompany(ctx context.Context, companyID int64) ([]Account, error)
}

var (
	ErrNotFound        = errors.New("account not found")
	ErrNoActiveAccount = errors.New("no active whatsapp account configured")
	ErrInvalidArgument = errors.New("invalid argument")
)

type Service struct {
	repo  Repository
	clock func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, clock: time.Now}
}

// ResolveSending returns the account outbound sends should use: the default
// active account if one exists, otherwise any active account.
// ErrNoActiveAccount means the company cannot send at all right now.
func (s *Service) ResolveSending(ctx context.Context, companyID int64) (Account, error) {
	if companyID <= 0 {
		return Account{}, ErrInvalidArgument
	}
	accounts, err := s.repo.FindActive(ctx, companyID)
	if err != nil {
		return Account{}, err
	}
	if len(accounts) == 0 {
		return Account{}, ErrNoActiveAccount
	}
	for _, a := range accounts {
		if a.IsDefault {
			return a, nil
		}
	}
	return accounts[0], nil
}

// ResolveWebhook maps a provider phone_number_id to its owning account.
func (s *Service) ResolveWebhook(ctx context.Context, phoneNumberID string) (Account, error) {
	if phoneNumberID == "" {
		return Account{}, ErrInvalidArgument
	}
	a, ok, err := s.repo.FindByPhoneNumberID(ctx, phoneNumberID)
	if err != nil {
		return Account{}, err
	}
	if !ok {
		return Account{}, ErrNotFound
	}
	return a, nil
}

type CreateRequest struct {
	PhoneNumberID string `json:"phone_number_id"`
	DisplayNumber string `json:"display_number"`
	AccessToken   string `json:"access_token"`
	IsDefault     bool   `json:"is_default"`
}

func (s *Service) Create(ctx context.Context, companyID int64, req CreateRequest) (Account, error) {
	if companyID <= 0 {
		return Account{}, ErrInvalidArgument
	}
	req.PhoneNumberID = strings.TrimSpace(req.PhoneNumberID)
	if req.PhoneNumberID == "" || req.AccessToken == "" {
		return Account{}, ErrInvalidArgument
	}

	if req.IsDefault {
		if err := s.repo.ClearDefault(ctx, companyID); err != nil {
			return Account{}, err
		}
	}

	now := s.clock().UTC()
	return s.repo.Insert(ctx, Account{
		CompanyID:     companyID,
		PhoneNumberID: req.PhoneNumberID,
		DisplayNumber: strings.TrimSpace(req.DisplayNumber),
		AccessToken:   req.AccessToken,
		IsDefault:     req.IsDefault,
		State:         StateActive,
		CreatedAt:     now,
		UpdatedAt:     now,
	})
}

type UpdateRequest struct {
	DisplayNumber *string `json:"display_number"`
	AccessToken   *string `json:"access_token"`
	IsDefault     *bool   `json:"is_default"`
}

func (s *Service) Update(ctx context.Context, companyID, id int64, req UpdateRequest) (Account, error) {
	if companyID <= 0 || id <= 0 {
		return Account{}, ErrInvalidArgument
	}
	a, ok, err := s.repo.GetByID(ctx, companyID, id)
	if err != nil {
		return Account{}, err
	}
	if !ok {
		return Account{}, ErrNotFound
	}

	if req.DisplayNumber != nil {
		a.DisplayNumber = strings.TrimSpace(*req.DisplayNumber)
	}
	if req.AccessToken != nil && *req.AccessToken != "" {
		a.AccessToken = *req.AccessToken
	}
	if req.IsDefault != nil {
		if *req.IsDefault && !a.IsDefault {
			if err := s.repo.ClearDefault(ctx, companyID); err != nil {
				return Account{}, err
			}
		}
		a.IsDefault = *req.IsDefault
	}
	a.UpdatedAt = s.clock().UTC()
	return s.repo.Update(ctx, a)
}

func (s *Service) Delete(ctx context.Context, companyID, id int64) error {
	if companyID <= 0 || id <= 0 {
		return ErrInvalidArgument
	}
	return s.repo.SoftDelete(ctx, companyID, id, s.clock().UTC())
}

func (s *Service) List(ctx context.Context, companyID int64) ([]Account, error) {
	if companyID <= 0 {
		return nil, ErrInvalidArgument
	}
	return s.repo.ListByCompany(ctx, companyID)
}
