package message

import (
	"context"
	"sort"
	"sync"
	"time"

	"msgdesk/internal/conversation"
	"msgdesk/internal/pagination"
)

// MemoryRepo is an in-memory Repository for tests and local development.
// The conversation repository stands in for the transactional summary
// update the Postgres implementation performs.
type MemoryRepo struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]Message

	convs conversation.Repository
}

func NewMemoryRepo(convs conversation.Repository) *MemoryRepo {
	return &MemoryRepo{rows: make(map[int64]Message), convs: convs}
}

func (r *MemoryRepo) Insert(_ context.Context, m Message) (Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	m.ID = r.nextID
	r.rows[m.ID] = m
	return m, nil
}

func (r *MemoryRepo) GetByID(_ context.Context, companyID, id int64) (Message, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.rows[id]
	if !ok || m.CompanyID != companyID || m.State != StateActive {
		return Message{}, false, nil
	}
	return m, true, nil
}

func (r *MemoryRepo) FindByProviderID(_ context.Context, companyID int64, providerID string) (Message, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.rows {
		if m.CompanyID == companyID && m.ProviderMessageID == providerID && m.State == StateActive {
			return m, true, nil
		}
	}
	return Message{}, false, nil
}

func (r *MemoryRepo) MarkSent(ctx context.Context, companyID, conversationID, id int64, providerID, preview string, at time.Time) error {
	if err := r.update(companyID, id, func(m *Message) {
		m.Status = StatusSent
		m.ProviderMessageID = providerID
		m.UpdatedAt = at
	}); err != nil {
		return err
	}
	if r.convs != nil {
		return r.convs.ApplySummary(ctx, companyID, conversationID, preview, at, id, false)
	}
	return nil
}

func (r *MemoryRepo) MarkFailed(_ context.Context, companyID, id int64, errCode, errMsg string, at time.Time) error {
	return r.update(companyID, id, func(m *Message) {
		m.Status = StatusFailed
		m.ErrorCode = errCode
		m.ErrorMessage = errMsg
		m.UpdatedAt = at
	})
}

func (r *MemoryRepo) InsertInbound(ctx context.Context, m Message, preview string) (Message, error) {
	r.mu.Lock()
	r.nextID++
	m.ID = r.nextID
	r.rows[m.ID] = m
	r.mu.Unlock()

	if r.convs != nil {
		if err := r.convs.ApplySummary(ctx, m.CompanyID, m.ConversationID, preview, m.CreatedAt, m.ID, true); err != nil {
			return Message{}, err
		}
	}
	return m, nil
}

func (r *MemoryRepo) SetReceiptStatus(_ context.Context, companyID int64, providerID string, status Status, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, m := range r.rows {
		if m.CompanyID != companyID || m.ProviderMessageID != providerID ||
			m.Direction != DirectionOutbound || m.State != StateActive {
			continue
		}
		if m.Status == StatusSent || (status == StatusRead && m.Status == StatusDelivered) {
			m.Status = status
			m.UpdatedAt = at
			r.rows[id] = m
		}
		return nil
	}
	return nil
}

func (r *MemoryRepo) ListByConversation(_ context.Context, companyID, conversationID int64, cur *pagination.Cursor, limit int) ([]Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []Message
	for _, m := range r.rows {
		if m.CompanyID != companyID || m.ConversationID != conversationID || m.State != StateActive {
			continue
		}
		if cur != nil && !cur.After(sortValue(m), m.ID) {
			continue
		}
		out = append(out, m)
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

func (r *MemoryRepo) ClearConversation(ctx context.Context, companyID, conversationID int64, at time.Time) error {
	r.mu.Lock()
	for id, m := range r.rows {
		if m.CompanyID == companyID && m.ConversationID == conversationID && m.State == StateActive {
			m.State = StateDeleted
			m.UpdatedAt = at
			r.rows[id] = m
		}
	}
	r.mu.Unlock()

	if r.convs != nil {
		return r.convs.ResetSummary(ctx, companyID, conversationID, at)
	}
	return nil
}

func (r *MemoryRepo) update(companyID, id int64, fn func(*Message)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.rows[id]
	if !ok || m.CompanyID != companyID || m.State != StateActive {
		return ErrNotFound
	}
	fn(&m)
	r.rows[id] = m
	return nil
}

func sortValue(m Message) *string {
	v := m.CreatedAt.UTC().Format(time.RFC3339Nano)
	return &v
}
