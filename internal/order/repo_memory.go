package order

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
	rows   map[int64]Order
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{rows: make(map[int64]Order)}
}

func (r *MemoryRepo) Insert(_ context.Context, o Order) (Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	o.ID = r.nextID
	r.rows[o.ID] = o
	return o, nil
}

func (r *MemoryRepo) GetByID(_ context.Context, companyID, id int64) (Order, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.rows[id]
	if !ok || o.CompanyID != companyID || o.State != StateActive {
		return Order{}, false, nil
	}
	return o, true, nil
}

func (r *MemoryRepo) Update(_ context.Context, o Order) (Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.rows[o.ID]
	if !ok || cur.CompanyID != o.CompanyID || cur.State != StateActive {
		return Order{}, ErrNotFound
	}
	r.rows[o.ID] = o
	return o, nil
}

func (r *MemoryRepo) SoftDelete(_ context.Context, companyID, id int64, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.rows[id]
	if !ok || o.CompanyID != companyID || o.State != StateActive {
		return ErrNotFound
	}
	o.State = StateDeleted
	o.UpdatedAt = at
	r.rows[id] = o
	return nil
}

func (r *MemoryRepo) List(_ context.Context, companyID int64, f Filter, cur *pagination.Cursor, limit int) ([]Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []Order
	for _, o := range r.rows {
		if o.CompanyID != companyID || o.State != StateActive {
			continue
		}
		if f.Status != "" && o.Status != f.Status {
			continue
		}
		if f.ContactID > 0 && o.ContactID != f.ContactID {
			continue
		}
		if cur != nil && !cur.After(sortValue(o), o.ID) {
			continue
		}
		out = append(out, o)
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

func sortValue(o Order) *string {
	v := o.CreatedAt.UTC().Format(time.RFC3339Nano)
	return &v
}
