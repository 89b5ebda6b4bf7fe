package account

import (
	"context"
	"testing"
)

func seed(t *testing.T, svc *Service, companyID int64, pnid string, dflt bool) Account {
	t.Helper()
	a, err := svc.Create(context.Background(), companyID, CreateRequest{
		PhoneNumberID: pnid,
		AccessToken:   "token-" + pnid,
		IsDefault:     dflt,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	return a
}

func TestResolveSending_PrefersDefault(t *testing.T) {
	svc := NewService(NewMemoryRepo())

	seed(t, svc, 1, "pn-1", false)
	def := seed(t, svc, 1, "pn-2", true)

	got, err := svc.ResolveSending(context.Background(), 1)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got.ID != def.ID {
		t.Fatalf("expected default account %d, got %d", def.ID, got.ID)
	}
}

func TestResolveSending_FallsBackToAnyActive(t *testing.T) {
	svc := NewService(NewMemoryRepo())
	a := seed(t, svc, 1, "pn-1", false)

	got, err := svc.ResolveSending(context.Background(), 1)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got.ID != a.ID {
		t.Fatalf("expected account %d, got %d", a.ID, got.ID)
	}
}

func TestResolveSending_NoActiveAccount(t *testing.T) {
	svc := NewService(NewMemoryRepo())

	if _, err := svc.ResolveSending(context.Background(), 1); err != ErrNoActiveAccount {
		t.Fatalf("expected ErrNoActiveAccount, got %v", err)
	}

	a := seed(t, svc, 1, "pn-1", true)
	if err := svc.Delete(context.Background(), 1, a.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.ResolveSending(context.Background(), 1); err != ErrNoActiveAccount {
		t.Fatalf("deleted account must not send, got %v", err)
	}
}

func TestCreate_DefaultFlagIsExclusive(t *testing.T) {
	svc := NewService(NewMemoryRepo())

	first := seed(t, svc, 1, "pn-1", true)
	second := seed(t, svc, 1, "pn-2", true)

	accounts, err := svc.List(context.Background(), 1)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	for _, a := range accounts {
		if a.ID == first.ID && a.IsDefault {
			t.Fatalf("old default should have been cleared")
		}
		if a.ID == second.ID && !a.IsDefault {
			t.Fatalf("new account should be default")
		}
	}
}

func TestResolveWebhook_MapsPhoneNumberID(t *testing.T) {
	svc := NewService(NewMemoryRepo())
	a := seed(t, svc, 7, "pn-main", true)

	got, err := svc.ResolveWebhook(context.Background(), "pn-main")
	if err != nil {
		t.Fatalf("resolve webhook: %v", err)
	}
	if got.CompanyID != 7 || got.ID != a.ID {
		t.Fatalf("unexpected account: %+v", got)
	}

	if _, err := svc.ResolveWebhook(context.Background(), "pn-unknown"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
