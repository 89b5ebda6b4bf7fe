package user

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"msgdesk/internal/auth"
	"msgdesk/internal/config"
	"msgdesk/internal/rbac"
)

func newService(t *testing.T) *Service {
	t.Helper()
	tokens, err := auth.NewManager(config.AuthConfig{
		JWTSecret:       "secret",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 24 * time.Hour,
	})
	if err != nil {
		t.Fatalf("manager: %v", err)
	}
	svc := NewService(NewMemoryRepo(), tokens, nil)
	svc.cost = bcrypt.MinCost
	return svc
}

func TestCreateAndLogin(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	u, err := svc.Create(ctx, 1, CreateRequest{
		Email:    "  Ada@Example.COM ",
		Name:     "Ada",
		Role:     rbac.RoleAgent,
		Password: "correct horse",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if u.Email != "ada@example.com" {
		t.Fatalf("email = %q, want normalized", u.Email)
	}
	if len(u.PasswordHash) == 0 {
		t.Fatal("password hash not stored")
	}

	res, err := svc.Login(ctx, "ada@example.com", "correct horse")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if res.User.ID != u.ID {
		t.Fatalf("logged in as %d, want %d", res.User.ID, u.ID)
	}
	if res.Tokens.AccessToken == "" || res.Tokens.RefreshToken == "" {
		t.Fatal("token pair not issued")
	}

	claims, err := svc.tokens.Verify(res.Tokens.AccessToken, auth.TokenTypeAccess, time.Now())
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.UserID != u.ID || claims.CompanyID != 1 || claims.Role != rbac.RoleAgent {
		t.Fatalf("claims = %+v", claims)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	if _, err := svc.Create(ctx, 1, CreateRequest{
		Email: "ada@example.com", Name: "Ada", Role: rbac.RoleAgent, Password: "correct horse",
	}); err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := svc.Login(ctx, "ada@example.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong password err = %v", err)
	}
	if _, err := svc.Login(ctx, "nobody@example.com", "correct horse"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown email err = %v", err)
	}
}

func TestCreateValidation(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	cases := []struct {
		name string
		req  CreateRequest
		want error
	}{
		{"bad email", CreateRequest{Email: "nope", Name: "A", Role: rbac.RoleAgent, Password: "longenough"}, ErrInvalidArgument},
		{"short password", CreateRequest{Email: "a@b.co", Name: "A", Role: rbac.RoleAgent, Password: "short"}, ErrInvalidArgument},
		{"bad role", CreateRequest{Email: "a@b.co", Name: "A", Role: "wizard", Password: "longenough"}, ErrInvalidArgument},
		{"super admin role", CreateRequest{Email: "a@b.co", Name: "A", Role: rbac.RoleSuperAdmin, Password: "longenough"}, ErrInvalidArgument},
		{"empty name", CreateRequest{Email: "a@b.co", Role: rbac.RoleAgent, Password: "longenough"}, ErrInvalidArgument},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Create(ctx, 1, tc.req); !errors.Is(err, tc.want) {
				t.Fatalf("err = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestCreateRejectsDuplicateEmail(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	req := CreateRequest{Email: "ada@example.com", Name: "Ada", Role: rbac.RoleAgent, Password: "longenough"}
	if _, err := svc.Create(ctx, 1, req); err != nil {
		t.Fatalf("first create: %v", err)
	}
	if _, err := svc.Create(ctx, 2, req); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("duplicate err = %v", err)
	}
}

func TestRefresh(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	if _, err := svc.Create(ctx, 1, CreateRequest{
		Email: "ada@example.com", Name: "Ada", Role: rbac.RoleOwner, Password: "correct horse",
	}); err != nil {
		t.Fatalf("create: %v", err)
	}
	res, err := svc.Login(ctx, "ada@example.com", "correct horse")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	pair, err := svc.Refresh(ctx, res.Tokens.RefreshToken)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if pair.AccessToken == "" {
		t.Fatal("no access token from refresh")
	}

	if _, err := svc.Refresh(ctx, res.Tokens.AccessToken); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("refresh with access token err = %v", err)
	}
	if _, err := svc.Refresh(ctx, "garbage"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("refresh with garbage err = %v", err)
	}
}

func TestRefreshRejectsDeletedUser(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	u, err := svc.Create(ctx, 1, CreateRequest{
		Email: "ada@example.com", Name: "Ada", Role: rbac.RoleOwner, Password: "correct horse",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	res, err := svc.Login(ctx, "ada@example.com", "correct horse")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if err := svc.Delete(ctx, 1, u.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if _, err := svc.Refresh(ctx, res.Tokens.RefreshToken); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("refresh after delete err = %v", err)
	}
}

func TestUpdateUser(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	u, err := svc.Create(ctx, 1, CreateRequest{
		Email: "ada@example.com", Name: "Ada", Role: rbac.RoleAgent, Password: "longenough",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	name := "Ada L."
	role := rbac.RoleOwner
	got, err := svc.Update(ctx, 1, u.ID, UpdateRequest{Name: &name, Role: &role})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.Name != "Ada L." || got.Role != rbac.RoleOwner {
		t.Fatalf("user = %+v", got)
	}

	bad := "wizard"
	if _, err := svc.Update(ctx, 1, u.ID, UpdateRequest{Role: &bad}); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("bad role err = %v", err)
	}
}
