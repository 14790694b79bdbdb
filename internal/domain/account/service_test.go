package account

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/bookyourstay/stay-api/internal/domain/wallet"
	"github.com/bookyourstay/stay-api/internal/pkg/apperr"
	"github.com/bookyourstay/stay-api/internal/pkg/clock"
	"github.com/bookyourstay/stay-api/internal/pkg/jwt"
	"github.com/bookyourstay/stay-api/internal/pkg/notify"
	"github.com/bookyourstay/stay-api/internal/pkg/store"
)

type failingWallets struct{}

func (failingWallets) Open(ctx context.Context, ownerID uuid.UUID) (*wallet.Wallet, error) {
	return nil, errors.New("wallet store down")
}

type fixture struct {
	svc     *Service
	repo    *Repository
	wallets *wallet.Service
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	clk := clock.NewFake(time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC))

	walletRepo, err := wallet.NewRepository(store.Backend{Driver: store.DriverMemory})
	if err != nil {
		t.Fatalf("wallet repo: %v", err)
	}
	wallets := wallet.NewService(walletRepo, clk, notify.Discard{}, wallet.Config{})

	repo, err := NewRepository(store.Backend{Driver: store.DriverMemory})
	if err != nil {
		t.Fatalf("account repo: %v", err)
	}
	jwtSvc := jwt.NewService("account-test-secret", 15*time.Minute, time.Hour)
	svc := NewService(repo, jwtSvc, wallets, clk, Config{BcryptCost: bcrypt.MinCost})
	return fixture{svc: svc, repo: repo, wallets: wallets}
}

func register(t *testing.T, svc *Service, email, role string) *AuthResponse {
	t.Helper()
	resp, err := svc.Register(context.Background(), &RegisterRequest{
		Email:    email,
		Name:     "Laura Gómez",
		Password: "password123",
		Role:     role,
	})
	if err != nil {
		t.Fatalf("register %s: %v", email, err)
	}
	return resp
}

func TestRegisterGuestOpensWallet(t *testing.T) {
	f := newFixture(t)

	resp := register(t, f.svc, "  Laura@Example.COM ", "guest")
	if resp.Account.Email != "laura@example.com" {
		t.Fatalf("expected normalized email, got %q", resp.Account.Email)
	}
	if resp.Tokens.AccessToken == "" || resp.Tokens.RefreshToken == "" || resp.Tokens.TokenType != "Bearer" {
		t.Fatalf("unexpected tokens %+v", resp.Tokens)
	}

	w, err := f.wallets.GetByOwner(context.Background(), resp.Account.ID)
	if err != nil {
		t.Fatalf("guest wallet missing: %v", err)
	}
	if w.Balance != 0 || !w.Active {
		t.Fatalf("unexpected new wallet %+v", w)
	}
}

func TestRegisterOwnerHasNoWallet(t *testing.T) {
	f := newFixture(t)
	resp := register(t, f.svc, "owner@example.com", "owner")

	if _, err := f.wallets.GetByOwner(context.Background(), resp.Account.ID); !errors.Is(err, wallet.ErrWalletNotFound) {
		t.Fatalf("expected no wallet for owner, got %v", err)
	}
}

func TestRegisterRejects(t *testing.T) {
	f := newFixture(t)
	register(t, f.svc, "dup@example.com", "guest")

	tests := []struct {
		name string
		req  RegisterRequest
		want error
	}{
		{"duplicate email ignoring case", RegisterRequest{Email: "DUP@example.com", Name: "Dup", Password: "password123", Role: "guest"}, ErrEmailAlreadyExists},
		{"admin self registration", RegisterRequest{Email: "admin@example.com", Name: "Admin", Password: "password123", Role: "admin"}, ErrInvalidRole},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.req
			if _, err := f.svc.Register(context.Background(), &req); !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestRegisterRollsBackWhenWalletFails(t *testing.T) {
	f := newFixture(t)
	svc := NewService(f.repo, f.svc.jwtService, failingWallets{}, f.svc.clock, f.svc.cfg)

	_, err := svc.Register(context.Background(), &RegisterRequest{Email: "late@example.com", Name: "Late", Password: "password123", Role: "guest"})
	if err == nil {
		t.Fatal("expected wallet failure to fail registration")
	}
	if _, err := f.repo.GetByEmail(context.Background(), "late@example.com"); !errors.Is(err, ErrAccountNotFound) {
		t.Fatalf("expected account to be rolled back, got %v", err)
	}

	register(t, f.svc, "late@example.com", "guest")
}

func TestLogin(t *testing.T) {
	f := newFixture(t)
	reg := register(t, f.svc, "login@example.com", "guest")

	resp, err := f.svc.Login(context.Background(), &LoginRequest{Email: "LOGIN@example.com", Password: "password123"})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if resp.Account.ID != reg.Account.ID {
		t.Fatalf("expected account %s, got %s", reg.Account.ID, resp.Account.ID)
	}

	if _, err := f.svc.Login(context.Background(), &LoginRequest{Email: "login@example.com", Password: "nope-nope"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
	if _, err := f.svc.Login(context.Background(), &LoginRequest{Email: "ghost@example.com", Password: "password123"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials for unknown email, got %v", err)
	}

	if _, err := f.svc.SetActive(context.Background(), reg.Account.ID, false); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	_, err = f.svc.Login(context.Background(), &LoginRequest{Email: "login@example.com", Password: "password123"})
	if !errors.Is(err, ErrAccountInactive) || !errors.Is(err, apperr.PolicyViolation) {
		t.Fatalf("expected inactive policy violation, got %v", err)
	}
}

func TestRefreshRotatesToken(t *testing.T) {
	f := newFixture(t)
	reg := register(t, f.svc, "refresh@example.com", "owner")

	next, err := f.svc.Refresh(context.Background(), reg.Tokens.RefreshToken)
	if err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	if next.Tokens.RefreshToken == reg.Tokens.RefreshToken {
		t.Fatal("expected a new refresh token")
	}

	if _, err := f.svc.Refresh(context.Background(), reg.Tokens.RefreshToken); !errors.Is(err, ErrInvalidRefreshToken) {
		t.Fatalf("expected reused token to be rejected, got %v", err)
	}
	if _, err := f.svc.Refresh(context.Background(), "garbage"); !errors.Is(err, ErrInvalidRefreshToken) {
		t.Fatalf("expected garbage token to be rejected, got %v", err)
	}
}

func TestEnsureAdminIsIdempotent(t *testing.T) {
	f := newFixture(t)

	if err := f.svc.EnsureAdmin(context.Background(), "root@example.com", "admin-password"); err != nil {
		t.Fatalf("ensure admin: %v", err)
	}
	if err := f.svc.EnsureAdmin(context.Background(), "ROOT@example.com", "admin-password"); err != nil {
		t.Fatalf("second ensure admin: %v", err)
	}
	if err := f.svc.EnsureAdmin(context.Background(), "", ""); err != nil {
		t.Fatalf("empty bootstrap must be a no-op: %v", err)
	}

	a, err := f.repo.GetByEmail(context.Background(), "root@example.com")
	if err != nil {
		t.Fatalf("admin missing: %v", err)
	}
	if !a.IsAdmin() {
		t.Fatalf("expected admin role, got %s", a.Role)
	}
}

func TestDirectoryLookups(t *testing.T) {
	f := newFixture(t)
	reg := register(t, f.svc, "dir@example.com", "guest")

	address, name, err := f.svc.Recipient(context.Background(), reg.Account.ID)
	if err != nil || address != "dir@example.com" || name != "Laura Gómez" {
		t.Fatalf("unexpected recipient %q %q %v", address, name, err)
	}

	active, err := f.svc.IsActive(context.Background(), reg.Account.ID)
	if err != nil || !active {
		t.Fatalf("expected active account, got %v %v", active, err)
	}

	if _, err := f.svc.IsActive(context.Background(), uuid.New()); !errors.Is(err, ErrAccountNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestLoginUpgradesHashCost(t *testing.T) {
	f := newFixture(t)
	register(t, f.svc, "costs@example.com", "guest")

	jwtSvc := jwt.NewService("account-test-secret", 15*time.Minute, time.Hour)
	clk := clock.NewFake(time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC))
	stronger := NewService(f.repo, jwtSvc, f.wallets, clk, Config{BcryptCost: bcrypt.MinCost + 1})

	if _, err := stronger.Login(context.Background(), &LoginRequest{Email: "costs@example.com", Password: "password123"}); err != nil {
		t.Fatalf("login: %v", err)
	}
	a, err := f.repo.GetByEmail(context.Background(), "costs@example.com")
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	cost, err := bcrypt.Cost([]byte(a.PasswordHash))
	if err != nil {
		t.Fatalf("cost: %v", err)
	}
	if cost != bcrypt.MinCost+1 {
		t.Fatalf("expected upgraded cost %d, got %d", bcrypt.MinCost+1, cost)
	}

	// the old service still logs in with the upgraded hash
	if _, err := f.svc.Login(context.Background(), &LoginRequest{Email: "costs@example.com", Password: "password123"}); err != nil {
		t.Fatalf("login after upgrade: %v", err)
	}
}
