package contact

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"msgdesk/internal/pagination"
)

// MemoryRepo is an in-memory Repository for tests. It mirrors the Postgres
// ordering semantics: (created_at DESC, id DESC) with the cursor tuple
// comparison applied via pagination.Cursor.After.
type MemoryRepo struct {
	mu       sync.Mutex
	nextID   int64
	contacts map[int64]Contact
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{nextID: 1, contacts: map[int64]Contact{}}
}

func (r *MemoryRepo) FindByPhone(ctx context.Context, companyID int64, phone string) (Contact, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.contacts {
		if c.CompanyID == companyID && c.Phone == phone && c.State == StateActive {
			return c, true, nil
		}
	}
	return Contact{}, false, nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, companyID, id int64) (Contact, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.contacts[id]
	if !ok || c.CompanyID != companyID || c.State != StateActive {
		return Contact{}, false, nil
	}
	return c, true, nil
}

func (r *MemoryRepo) Insert(ctx context.Context, c Contact) (Contact, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c.ID = r.nextID
	r.nextID++
	r.contacts[c.ID] = c
	return c, nil
}

func (r *MemoryRepo) Update(ctx context.Context, c Contact) (Contact, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	old, ok := r.contacts[c.ID]
	if !ok || old.CompanyID != c.CompanyID || old.State != StateActive {
		return Contact{}, ErrNotFound
	}
	r.contacts[c.ID] = c
	return c, nil
}

func (r *MemoryRepo) List(ctx context.Context, companyID int64, f Filter, cur *pagination.Cursor, limit int) ([]Contact, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []Contact
	for _, c := range r.contacts {
		if c.CompanyID != companyID || c.State != StateActive {
			continue
		}
		if f.Search != "" {
			s := strings.ToLower(f.Search)
			if !strings.Contains(strings.ToLower(c.Phone), s) && !strings.Contains(strings.ToLower(c.DisplayName), s) {
				continue
			}
		}
		if cur != nil {
			at := c.CreatedAt.UTC().Format(time.RFC3339Nano)
			if !cur.After(&at, c.ID) {
				continue
			}
		}
		out = append(out, c)
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
