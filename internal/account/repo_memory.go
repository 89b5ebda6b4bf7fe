package account

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo is an in-memory Repository for tests.
type MemoryRepo struct {
	mu       sync.Mutex
	nextID   int64
	accounts map[int64]Account
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{nextID: 1, accounts: map[int64]Account{}}
}

func (r *MemoryRepo) GetByID(ctx context.Context, companyID, id int64) (Account, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[id]
	if !ok || a.CompanyID != companyID || a.State != StateActive {
		return Account{}, false, nil
	}
	return a, true, nil
}

func (r *MemoryRepo) FindActive(ctx context.Context, companyID int64) ([]Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Account
	for _, a := range r.accounts {
		if a.CompanyID == companyID && a.State == StateActive {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].IsDefault != out[j].IsDefault {
			return out[i].IsDefault
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *MemoryRepo) FindByPhoneNumberID(ctx context.Context, phoneNumberID string) (Account, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.accounts {
		if a.PhoneNumberID == phoneNumberID && a.State == StateActive {
			return a, true, nil
		}
	}
	return Account{}, false, nil
}

func (r *MemoryRepo) Insert(ctx context.Context, a Account) (Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a.ID = r.nextID
	r.nextID++
	r.accounts[a.ID] = a
	return a, nil
}

func (r *MemoryRepo) Update(ctx context.Context, a Account) (Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	old, ok := r.accounts[a.ID]
	if !ok || old.CompanyID != a.CompanyID || old.State != StateActive {
		return Account{}, ErrNotFound
	}
	r.accounts[a.ID] = a
	return a, nil
}

func (r *MemoryRepo) ClearDefault(ctx context.Context, companyID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, a := range r.accounts {
		if a.CompanyID == companyID && a.IsDefault {
			a.IsDefault = false
			r.accounts[id] = a
		}
	}
	return nil
}

func (r *MemoryRepo) SoftDelete(ctx context.Context, companyID, id int64, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[id]
	if !ok || a.CompanyID != companyID || a.State != StateActive {
		return ErrNotFound
	}
	a.State = StateDeleted
	a.IsDefault = false
	a.UpdatedAt = at
	r.accounts[id] = a
	return nil
}

func (r *MemoryRepo) ListByCompany(ctx context.Context, companyID int64) ([]Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Account
	for _, a := range r.accounts {
		if a.CompanyID == companyID && a.State == StateActive {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
