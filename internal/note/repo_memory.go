package note

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
	rows   map[int64]Note
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{rows: make(map[int64]Note)}
}

func (r *MemoryRepo) Insert(_ context.Context, n Note) (Note, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	n.ID = r.nextID
	r.rows[n.ID] = n
	return n, nil
}

func (r *MemoryRepo) GetByID(_ context.Context, companyID, id int64) (Note, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.rows[id]
	if !ok || n.CompanyID != companyID || n.State != StateActive {
		return Note{}, false, nil
	}
	return n, true, nil
}

func (r *MemoryRepo) Update(_ context.Context, n Note) (Note, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.rows[n.ID]
	if !ok || cur.CompanyID != n.CompanyID || cur.State != StateActive {
		return Note{}, ErrNotFound
	}
	r.rows[n.ID] = n
	return n, nil
}

func (r *MemoryRepo) SoftDelete(_ context.Context, companyID, id int64, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.rows[id]
	if !ok || n.CompanyID != companyID || n.State != StateActive {
		return ErrNotFound
	}
	n.State = StateDeleted
	n.UpdatedAt = at
	r.rows[id] = n
	return nil
}

func (r *MemoryRepo) ListByContact(_ context.Context, companyID, contactID int64, cur *pagination.Cursor, limit int) ([]Note, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []Note
	for _, n := range r.rows {
		if n.CompanyID != companyID || n.ContactID != contactID || n.State != StateActive {
			continue
		}
		if cur != nil && !cur.After(sortValue(n), n.ID) {
			continue
		}
		out = append(out, n)
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

func sortValue(n Note) *string {
	v := n.CreatedAt.UTC().Format(time.RFC3339Nano)
	return &v
}
