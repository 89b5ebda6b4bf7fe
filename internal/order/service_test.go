package order

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type stubContacts struct {
	known map[int64]bool
}

func (s stubContacts) Exists(_ context.Context, _ int64, id int64) (bool, error) {
	return s.known[id], nil
}

func newService() *Service {
	return NewService(NewMemoryRepo(), stubContacts{known: map[int64]bool{7: true}})
}

func TestCreateOrder(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	o, err := svc.Create(ctx, 1, CreateRequest{ContactID: 7, TotalMinor: 4999, Currency: "usd"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if o.Status != StatusPending {
		t.Fatalf("status = %s, want pending", o.Status)
	}
	if o.Currency != "USD" {
		t.Fatalf("currency = %q, want normalized USD", o.Currency)
	}
	if !strings.HasPrefix(o.Code, "ORD-") {
		t.Fatalf("code = %q, want generated ORD- prefix", o.Code)
	}
}

func TestCreateOrderValidation(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	cases := []struct {
		name string
		req  CreateRequest
	}{
		{"unknown contact", CreateRequest{ContactID: 8, TotalMinor: 100, Currency: "USD"}},
		{"negative total", CreateRequest{ContactID: 7, TotalMinor: -1, Currency: "USD"}},
		{"bad currency", CreateRequest{ContactID: 7, TotalMinor: 100, Currency: "dollars"}},
		{"zero contact", CreateRequest{TotalMinor: 100, Currency: "USD"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Create(ctx, 1, tc.req); !errors.Is(err, ErrInvalidArgument) {
				t.Fatalf("err = %v, want ErrInvalidArgument", err)
			}
		})
	}
}

func TestStatusTransitions(t *testing.T) {
	cases := []struct {
		name  string
		steps []Status
		fails Status
	}{
		{"full lifecycle", []Status{StatusPaid, StatusShipped}, ""},
		{"cancel pending", []Status{StatusCancelled}, ""},
		{"cancel paid", []Status{StatusPaid, StatusCancelled}, ""},
		{"ship unpaid", nil, StatusShipped},
		{"reopen cancelled", []Status{StatusCancelled}, StatusPaid},
		{"ship twice", []Status{StatusPaid, StatusShipped}, StatusShipped},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := newService()
			ctx := context.Background()
			o, err := svc.Create(ctx, 1, CreateRequest{ContactID: 7, TotalMinor: 100, Currency: "USD"})
			if err != nil {
				t.Fatalf("create: %v", err)
			}
			for _, st := range tc.steps {
				if o, err = svc.SetStatus(ctx, 1, o.ID, st); err != nil {
					t.Fatalf("transition to %s: %v", st, err)
				}
			}
			if tc.fails != "" {
				if _, err := svc.SetStatus(ctx, 1, o.ID, tc.fails); !errors.Is(err, ErrInvalidTransition) {
					t.Fatalf("transition to %s err = %v, want ErrInvalidTransition", tc.fails, err)
				}
			}
		})
	}
}

func TestListFiltersByStatus(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	first, _ := svc.Create(ctx, 1, CreateRequest{ContactID: 7, TotalMinor: 100, Currency: "USD"})
	if _, err := svc.Create(ctx, 1, CreateRequest{ContactID: 7, TotalMinor: 200, Currency: "USD"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.SetStatus(ctx, 1, first.ID, StatusPaid); err != nil {
		t.Fatalf("set status: %v", err)
	}

	page, err := svc.List(ctx, 1, ListRequest{Status: "paid", Limit: 10})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(page.Items) != 1 || page.Items[0].ID != first.ID {
		t.Fatalf("items = %+v, want only the paid order", page.Items)
	}

	if _, err := svc.List(ctx, 1, ListRequest{Status: "bogus"}); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("bogus status err = %v", err)
	}
}

func TestDeleteHidesOrder(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	o, err := svc.Create(ctx, 1, CreateRequest{ContactID: 7, TotalMinor: 100, Currency: "USD"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := svc.Delete(ctx, 1, o.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.Get(ctx, 1, o.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("get after delete err = %v", err)
	}
}

func TestOrderCompanyScoping(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	o, err := svc.Create(ctx, 1, CreateRequest{ContactID: 7, TotalMinor: 100, Currency: "USD"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Get(ctx, 2, o.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("cross-company get err = %v", err)
	}
}
