package reporting

import (
	"context"
	"errors"
	"sync"
	"time"

	"msgdesk/internal/message"
	"msgdesk/internal/order"
)

// MemoryRepo is a simple in-memory reporting repository for tests and early
// development. It enforces company isolation on reads.

type MemoryRepo struct {
	mu sync.Mutex

	Messages []message.Message
	Orders   []order.Order
}

func NewMemoryRepo() *MemoryRepo { return &MemoryRepo{} }

func (r *MemoryRepo) ListMessages(_ context.Context, companyID int64, from, to time.Time, conversationID int64) ([]message.Message, error) {
	if companyID <= 0 {
		return nil, errors.New("company_id required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]message.Message, 0)
	for _, m := range r.Messages {
		if m.CompanyID != companyID || m.State != message.StateActive {
			continue
		}
		if m.CreatedAt.Before(from) || !m.CreatedAt.Before(to) {
			continue
		}
		if conversationID > 0 && m.ConversationID != conversationID {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

func (r *MemoryRepo) ListOrders(_ context.Context, companyID int64, from, to time.Time) ([]order.Order, error) {
	if companyID <= 0 {
		return nil, errors.New("company_id required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]order.Order, 0)
	for _, o := range r.Orders {
		if o.CompanyID != companyID || o.State != order.StateActive {
			continue
		}
		if o.CreatedAt.Before(from) || !o.CreatedAt.Before(to) {
			continue
		}
		out = append(out, o)
	}
	return out, nil
}
