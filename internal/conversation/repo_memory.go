package conversation

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"msgdesk/internal/pagination"
)

// MemoryRepo is an in-memory Repository for tests, mirroring the Postgres
// ordering: (last_message_at DESC NULLS LAST, id DESC).
type MemoryRepo struct {
	mu            sync.Mutex
	nextID        int64
	conversations map[int64]Conversation
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{nextID: 1, conversations: map[int64]Conversation{}}
}

func (r *MemoryRepo) FindByContact(ctx context.Context, companyID, contactID int64) (Conversation, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, cv := range r.conversations {
		if cv.CompanyID == companyID && cv.ContactID == contactID && cv.State == StateActive {
			return cv, true, nil
		}
	}
	return Conversation{}, false, nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, companyID, id int64) (Conversation, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cv, ok := r.conversations[id]
	if !ok || cv.CompanyID != companyID || cv.State != StateActive {
		return Conversation{}, false, nil
	}
	return cv, true, nil
}

func (r *MemoryRepo) Insert(ctx context.Context, cv Conversation) (Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cv.ID = r.nextID
	r.nextID++
	r.conversations[cv.ID] = cv
	return cv, nil
}

func (r *MemoryRepo) List(ctx context.Context, companyID int64, f Filter, cur *pagination.Cursor, limit int) ([]Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []Conversation
	for _, cv := range r.conversations {
		if cv.CompanyID != companyID || cv.State != StateActive {
			continue
		}
		if f.Status != "" && cv.Status != f.Status {
			continue
		}
		if f.Assignee != nil && (cv.AssigneeUserID == nil || *cv.AssigneeUserID != *f.Assignee) {
			continue
		}
		if f.Search != "" {
			s := strings.ToLower(f.Search)
			if !strings.Contains(strings.ToLower(cv.ContactPhone), s) && !strings.Contains(strings.ToLower(cv.ContactName), s) {
				continue
			}
		}
		if cur != nil && !cur.After(sortValueOf(cv), cv.ID) {
			continue
		}
		out = append(out, cv)
	}

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].LastMessageAt, out[j].LastMessageAt
		switch {
		case a == nil && b == nil:
			return out[i].ID > out[j].ID
		case a == nil:
			return false // NULLS LAST
		case b == nil:
			return true
		case !a.Equal(*b):
			return a.After(*b)
		default:
			return out[i].ID > out[j].ID
		}
	})
	if len(out) > limit+1 {
		out = out[:limit+1]
	}
	return out, nil
}

func sortValueOf(cv Conversation) *string {
	if cv.LastMessageAt == nil {
		return nil
	}
	v := cv.LastMessageAt.UTC().Format(time.RFC3339Nano)
	return &v
}

func (r *MemoryRepo) MarkRead(ctx context.Context, companyID, id int64, at time.Time) error {
	return r.update(companyID, id, func(cv *Conversation) {
		cv.UnreadCount = 0
		cv.UpdatedAt = at
	})
}

func (r *MemoryRepo) SetStatus(ctx context.Context, companyID, id int64, status Status, at time.Time) error {
	return r.update(companyID, id, func(cv *Conversation) {
		cv.Status = status
		cv.UpdatedAt = at
	})
}

func (r *MemoryRepo) Assign(ctx context.Context, companyID, id int64, userID *int64, at time.Time) error {
	return r.update(companyID, id, func(cv *Conversation) {
		cv.AssigneeUserID = userID
		cv.UpdatedAt = at
	})
}

func (r *MemoryRepo) SoftDelete(ctx context.Context, companyID, id int64, at time.Time) error {
	return r.update(companyID, id, func(cv *Conversation) {
		cv.State = StateDeleted
		cv.UpdatedAt = at
	})
}

func (r *MemoryRepo) ApplySummary(ctx context.Context, companyID, id int64, preview string, at time.Time, messageID int64, incrementUnread bool) error {
	return r.update(companyID, id, func(cv *Conversation) {
		cv.LastMessagePreview = preview
		t := at
		cv.LastMessageAt = &t
		mid := messageID
		cv.LastMessageID = &mid
		if incrementUnread {
			cv.UnreadCount++
		}
		cv.UpdatedAt = at
	})
}

func (r *MemoryRepo) ResetSummary(ctx context.Context, companyID, id int64, at time.Time) error {
	return r.update(companyID, id, func(cv *Conversation) {
		cv.LastMessagePreview = ""
		cv.LastMessageAt = nil
		cv.LastMessageID = nil
		cv.UnreadCount = 0
		cv.UpdatedAt = at
	})
}

// SetContactProjection fills the denormalized contact fields that the
// Postgres repo gets from its JOIN.
func (r *MemoryRepo) SetContactProjection(id int64, phone, name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cv, ok := r.conversations[id]; ok {
		cv.ContactPhone = phone
		cv.ContactName = name
		r.conversations[id] = cv
	}
}

func (r *MemoryRepo) update(companyID, id int64, fn func(cv *Conversation)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cv, ok := r.conversations[id]
	if !ok || cv.CompanyID != companyID || cv.State != StateActive {
		return ErrNotFound
	}
	fn(&cv)
	r.conversations[id] = cv
	return nil
}
