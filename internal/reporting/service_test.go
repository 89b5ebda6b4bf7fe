package reporting

import (
	"context"
	"errors"
	"testing"
	"time"

	"msgdesk/internal/message"
	"msgdesk/internal/order"
)

func day(d int) time.Time {
	return time.Date(2024, 6, d, 12, 0, 0, 0, time.UTC)
}

func msg(companyID, convID int64, dir message.Direction, st message.Status, at time.Time) message.Message {
	return message.Message{
		CompanyID:      companyID,
		ConversationID: convID,
		Direction:      dir,
		Status:         st,
		State:          message.StateActive,
		CreatedAt:      at,
	}
}

func TestMessagingSummary(t *testing.T) {
	repo := NewMemoryRepo()
	repo.Messages = []message.Message{
		msg(1, 1, message.DirectionOutbound, message.StatusSent, day(1)),
		msg(1, 1, message.DirectionOutbound, message.StatusDelivered, day(2)),
		msg(1, 1, message.DirectionOutbound, message.StatusRead, day(3)),
		msg(1, 1, message.DirectionOutbound, message.StatusFailed, day(4)),
		msg(1, 2, message.DirectionInbound, message.StatusDelivered, day(5)),
		msg(1, 1, message.DirectionOutbound, message.StatusSending, day(6)),
		// outside the range
		msg(1, 1, message.DirectionOutbound, message.StatusSent, day(20)),
		// other company
		msg(2, 9, message.DirectionOutbound, message.StatusSent, day(2)),
	}

	got, err := NewService(repo).MessagingSummary(context.Background(), MessagingSummaryRequest{
		CompanyID: 1,
		Range:     TimeRange{From: day(1), To: day(10)},
	})
	if err != nil {
		t.Fatalf("summary: %v", err)
	}

	if got.TotalMessages != 6 || got.OutboundMessages != 5 || got.InboundMessages != 1 {
		t.Fatalf("totals = %+v", got)
	}
	if got.SentMessages != 1 || got.DeliveredMessages != 1 || got.ReadMessages != 1 || got.FailedMessages != 1 {
		t.Fatalf("status counts = %+v", got)
	}
	// 2 of 4 settled outbound reached the recipient.
	if got.DeliveryRatePercent != 50 {
		t.Fatalf("delivery rate = %d, want 50", got.DeliveryRatePercent)
	}
}

func TestMessagingSummaryConversationFilter(t *testing.T) {
	repo := NewMemoryRepo()
	repo.Messages = []message.Message{
		msg(1, 1, message.DirectionOutbound, message.StatusSent, day(1)),
		msg(1, 2, message.DirectionOutbound, message.StatusSent, day(1)),
	}

	got, err := NewService(repo).MessagingSummary(context.Background(), MessagingSummaryRequest{
		CompanyID:      1,
		Range:          TimeRange{From: day(1), To: day(2)},
		ConversationID: 2,
	})
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if got.TotalMessages != 1 {
		t.Fatalf("total = %d, want 1", got.TotalMessages)
	}
}

func TestMessagingSummaryValidation(t *testing.T) {
	svc := NewService(NewMemoryRepo())
	ctx := context.Background()

	cases := []MessagingSummaryRequest{
		{},
		{CompanyID: 1},
		{CompanyID: 1, Range: TimeRange{From: day(2), To: day(1)}},
		{CompanyID: 1, Range: TimeRange{From: day(1), To: day(1)}},
	}
	for _, req := range cases {
		if _, err := svc.MessagingSummary(ctx, req); !errors.Is(err, ErrInvalidRequest) {
			t.Fatalf("req %+v err = %v, want ErrInvalidRequest", req, err)
		}
	}
}

func TestSalesSummary(t *testing.T) {
	repo := NewMemoryRepo()
	repo.Orders = []order.Order{
		{CompanyID: 1, Status: order.StatusPending, TotalMinor: 1000, Currency: "USD", State: order.StateActive, CreatedAt: day(1)},
		{CompanyID: 1, Status: order.StatusPaid, TotalMinor: 2000, Currency: "USD", State: order.StateActive, CreatedAt: day(2)},
		{CompanyID: 1, Status: order.StatusShipped, TotalMinor: 3000, Currency: "USD", State: order.StateActive, CreatedAt: day(3)},
		{CompanyID: 1, Status: order.StatusCancelled, TotalMinor: 500, Currency: "USD", State: order.StateActive, CreatedAt: day(4)},
		{CompanyID: 1, Status: order.StatusPaid, TotalMinor: 9000, Currency: "EUR", State: order.StateActive, CreatedAt: day(5)},
	}

	got, err := NewService(repo).SalesSummary(context.Background(), SalesSummaryRequest{
		CompanyID: 1,
		Range:     TimeRange{From: day(1), To: day(10)},
		Currency:  "USD",
	})
	if err != nil {
		t.Fatalf("summary: %v", err)
	}

	if got.TotalOrders != 4 {
		t.Fatalf("total = %d, want 4 (EUR row filtered)", got.TotalOrders)
	}
	if got.GrossMinor != 6500 {
		t.Fatalf("gross = %d", got.GrossMinor)
	}
	if got.PaidMinor != 5000 {
		t.Fatalf("paid = %d (paid+shipped)", got.PaidMinor)
	}
	if got.CancelledMinor != 500 {
		t.Fatalf("cancelled = %d", got.CancelledMinor)
	}
	if got.PendingOrders != 1 || got.PaidOrders != 1 || got.ShippedOrders != 1 || got.CancelledOrders != 1 {
		t.Fatalf("status counts = %+v", got)
	}
}
