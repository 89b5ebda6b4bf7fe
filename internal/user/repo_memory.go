package user

import (
	"context"
	"sort"
	"sync"
	"time"

	"msgdesk/internal/pagination"
)

type MemoryRepo struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]User
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{rows: make(map[int64]User)}
}

func (r *MemoryRepo) Insert(_ context.Context, u User) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	u.ID = r.nextID
	r.rows[u.ID] = u
	return u, nil
}

func (r *MemoryRepo) GetByID(_ context.Context, companyID, id int64) (User, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.rows[id]
	if !ok || u.CompanyID != companyID || u.State != StateActive {
		return User{}, false, nil
	}
	return u, true, nil
}

func (r *MemoryRepo) FindByEmail(_ context.Context, email string) (User, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.rows {
		if u.Email == email && u.State == StateActive {
			return u, true, nil
		}
	}
	return User{}, false, nil
}

func (r *MemoryRepo) Update(_ context.Context, u User) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.rows[u.ID]
	if !ok || cur.CompanyID != u.CompanyID || cur.State != StateActive {
		return User{}, ErrNotFound
	}
	r.rows[u.ID] = u
	return u, nil
}

func (r *MemoryRepo) SoftDelete(_ context.Context, companyID, id int64, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.rows[id]
	if !ok || u.CompanyID != companyID || u.State != StateActive {
		return ErrNotFound
	}
	u.State = StateDeleted
	u.UpdatedAt = at
	r.rows[id] = u
	return nil
}

func (r *MemoryRepo) List(_ context.Context, companyID int64, cur *pagination.Cursor, limit int) ([]User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []User
	for _, u := range r.rows {
		if u.CompanyID != companyID || u.State != StateActive {
			continue
		}
		if cur != nil && !cur.After(sortValue(u), u.ID) {
			continue
		}
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	if len(out) > limit+1 {
		out = out[:limit+1]
	}
	return out, nil
}

func sortValue(u User) *string {
	v := u.CreatedAt.UTC().Format(time.RFC3339Nano)
	return &v
}
