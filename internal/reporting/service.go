package reporting

import (
	"context"
	"errors"
	"time"

	"msgdesk/internal/message"
	"msgdesk/internal/order"
)

var ErrInvalidRequest = errors.New("reporting: invalid request")

// Repository abstracts data access for reporting.
//
// Implementations must enforce company filtering and should read from the
// primary tables directly; reports tolerate slightly stale data.

type Repository interface {
	ListMessages(ctx context.Context, companyID int64, from, to time.Time, conversationID int64) ([]message.Message, error)
	ListOrders(ctx context.Context, companyID int64, from, to time.Time) ([]order.Order, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service { return &Service{repo: repo} }

func (s *Service) MessagingSummary(ctx context.Context, req MessagingSummaryRequest) (MessagingSummary, error) {
	if req.CompanyID <= 0 {
		return MessagingSummary{}, ErrInvalidRequest
	}
	if req.Range.From.IsZero() || req.Range.To.IsZero() || !req.Range.To.After(req.Range.From) {
		return MessagingSummary{}, ErrInvalidRequest
	}
	if s.repo == nil {
		return MessagingSummary{}, errors.New("reporting: repository not configured")
	}

	rows, err := s.repo.ListMessages(ctx, req.CompanyID, req.Range.From, req.Range.To, req.ConversationID)
	if err != nil {
		return MessagingSummary{}, err
	}

	out := MessagingSummary{CompanyID: req.CompanyID, ConversationID: req.ConversationID}
	settledOutbound := 0
	for _, m := range rows {
		out.TotalMessages++
		switch m.Direction {
		case message.DirectionOutbound:
			out.OutboundMessages++
		case message.DirectionInbound:
			out.InboundMessages++
			continue
		}
		switch m.Status {
		case message.StatusSent:
			out.SentMessages++
			settledOutbound++
		case message.StatusFailed:
			out.FailedMessages++
			settledOutbound++
		case message.StatusDelivered:
			out.DeliveredMessages++
			settledOutbound++
		case message.StatusRead:
			out.ReadMessages++
			settledOutbound++
		case message.StatusSending:
			// in flight, not settled
		}
	}
	if settledOutbound > 0 {
		out.DeliveryRatePercent = 100 * (out.DeliveredMessages + out.ReadMessages) / settledOutbound
	}
	return out, nil
}

func (s *Service) SalesSummary(ctx context.Context, req SalesSummaryRequest) (SalesSummary, error) {
	if req.CompanyID <= 0 {
		return SalesSummary{}, ErrInvalidRequest
	}
	if req.Range.From.IsZero() || req.Range.To.IsZero() || !req.Range.To.After(req.Range.From) {
		return SalesSummary{}, ErrInvalidRequest
	}
	if s.repo == nil {
		return SalesSummary{}, errors.New("reporting: repository not configured")
	}

	rows, err := s.repo.ListOrders(ctx, req.CompanyID, req.Range.From, req.Range.To)
	if err != nil {
		return SalesSummary{}, err
	}

	out := SalesSummary{CompanyID: req.CompanyID, Currency: req.Currency}
	for _, o := range rows {
		// Currency normalization: a requested currency filters; otherwise the
		// first row decides.
		if out.Currency == "" {
			out.Currency = o.Currency
		}
		if req.Currency != "" && o.Currency != req.Currency {
			continue
		}

		out.TotalOrders++
		out.GrossMinor += o.TotalMinor
		switch o.Status {
		case order.StatusPending:
			out.PendingOrders++
		case order.StatusPaid:
			out.PaidOrders++
			out.PaidMinor += o.TotalMinor
		case order.StatusShipped:
			out.ShippedOrders++
			out.PaidMinor += o.TotalMinor
		case order.StatusCancelled:
			out.CancelledOrders++
			out.CancelledMinor += o.TotalMinor
		}
	}
	return out, nil
}
