package account

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/bookyourstay/stay-api/internal/domain/wallet"
	"github.com/bookyourstay/stay-api/internal/pkg/clock"
	"github.com/bookyourstay/stay-api/internal/pkg/jwt"
	"github.com/bookyourstay/stay-api/internal/pkg/keylock"
	"github.com/bookyourstay/stay-api/internal/pkg/password"
)

// WalletOpener creates the prepaid wallet of a new guest.
type WalletOpener interface {
	Open(ctx context.Context, ownerID uuid.UUID) (*wallet.Wallet, error)
}

type Config struct {
	BcryptCost int
}

// Service handles registration, login and the account directory
type Service struct {
	repo       *Repository
	jwtService *jwt.Service
	wallets    WalletOpener
	clock      clock.Clock
	locks      *keylock.Locker
	cfg        Config
}

func NewService(repo *Repository, jwtService *jwt.Service, wallets WalletOpener, clk clock.Clock, cfg Config) *Service {
	if repo == nil || jwtService == nil || wallets == nil || clk == nil {
		panic("account: nil dependency")
	}
	return &Service{
		repo:       repo,
		jwtService: jwtService,
		wallets:    wallets,
		clock:      clk,
		locks:      keylock.New(),
		cfg:        cfg,
	}
}

// Register creates new account; guests get a wallet
func (s *Service) Register(ctx context.Context, req *RegisterRequest) (*AuthResponse, error) {
	if !IsValidRole(req.Role) {
		return nil, ErrInvalidRole
	}
	a, err := s.create(ctx, normalizeEmail(req.Email), req.Name, req.Password, Role(req.Role))
	if err != nil {
		return nil, err
	}
	return s.generateTokens(ctx, a)
}

func (s *Service) create(ctx context.Context, email, name, plain string, role Role) (*Account, error) {
	hash, err := password.Hash(plain, s.cfg.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := s.clock.Now()
	a := &Account{
		ID:           uuid.New(),
		Email:        email,
		Name:         name,
		PasswordHash: hash,
		Role:         role,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, err
	}

	if role == RoleGuest {
		if _, err := s.wallets.Open(ctx, a.ID); err != nil {
			// Rollback: an account without its wallet cannot book
			_ = s.repo.Delete(ctx, a)
			return nil, fmt.Errorf("open wallet: %w", err)
		}
	}

	log.Info().Str("account_id", a.ID.String()).Str("role", string(role)).Msg("account registered")
	return a, nil
}

// EnsureAdmin creates the bootstrap administrator unless the email is taken.
func (s *Service) EnsureAdmin(ctx context.Context, email, plain string) error {
	if email == "" || plain == "" {
		return nil
	}
	_, err := s.create(ctx, normalizeEmail(email), "Administrator", plain, RoleAdmin)
	if errors.Is(err, ErrEmailAlreadyExists) {
		return nil
	}
	return err
}

// Login authenticates account
func (s *Service) Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error) {
	a, err := s.repo.GetByEmail(ctx, normalizeEmail(req.Email))
	if errors.Is(err, ErrAccountNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !password.Verify(req.Password, a.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	if !a.Active {
		return nil, ErrAccountInactive
	}
	if password.NeedsRehash(a.PasswordHash, s.cfg.BcryptCost) {
		s.rehash(ctx, a, req.Password)
	}
	return s.generateTokens(ctx, a)
}

// rehash upgrades a stored hash to the configured cost. Failures only log;
// the old hash keeps working.
func (s *Service) rehash(ctx context.Context, a *Account, plain string) {
	hash, err := password.Hash(plain, s.cfg.BcryptCost)
	if err == nil {
		a.PasswordHash = hash
		a.UpdatedAt = s.clock.Now()
		err = s.repo.Update(ctx, a)
	}
	if err != nil {
		log.Warn().Err(err).Str("account_id", a.ID.String()).Msg("failed to upgrade password hash")
	}
}

// Refresh rotates a refresh token into a new token pair
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*AuthResponse, error) {
	claims, err := s.jwtService.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, ErrInvalidRefreshToken
	}

	unlock := s.locks.Lock(claims.ID)
	session, err := s.repo.TakeSession(ctx, claims.ID)
	unlock()
	if err != nil {
		return nil, err
	}
	if session.AccountID != claims.AccountID {
		return nil, ErrInvalidRefreshToken
	}

	a, err := s.repo.GetByID(ctx, claims.AccountID)
	if err != nil {
		return nil, err
	}
	if !a.Active {
		return nil, ErrAccountInactive
	}
	return s.generateTokens(ctx, a)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Account, error) {
	return s.repo.GetByID(ctx, id)
}

// IsActive reports whether the account may book.
func (s *Service) IsActive(ctx context.Context, id uuid.UUID) (bool, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return false, err
	}
	return a.Active, nil
}

// Recipient resolves the notification address of an account.
func (s *Service) Recipient(ctx context.Context, id uuid.UUID) (string, string, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return "", "", err
	}
	return a.Email, a.Name, nil
}

// SetActive enables or disables an account. Tokens issued earlier keep their
// active claim until they expire.
func (s *Service) SetActive(ctx context.Context, id uuid.UUID, active bool) (*Account, error) {
	unlock := s.locks.Lock(id.String())
	defer unlock()

	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	a.Active = active
	a.UpdatedAt = s.clock.Now()
	if err := s.repo.Update(ctx, a); err != nil {
		return nil, err
	}
	log.Info().Str("account_id", id.String()).Bool("active", active).Msg("account status changed")
	return a, nil
}

// generateTokens creates access and refresh tokens
func (s *Service) generateTokens(ctx context.Context, a *Account) (*AuthResponse, error) {
	accessToken, err := s.jwtService.GenerateAccessToken(a.ID, string(a.Role), a.Active)
	if err != nil {
		return nil, err
	}

	refreshToken, claims, err := s.jwtService.GenerateRefreshToken(a.ID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.SaveSession(ctx, refreshSession{
		TokenID:   claims.ID,
		AccountID: a.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}); err != nil {
		return nil, fmt.Errorf("store refresh session: %w", err)
	}

	return &AuthResponse{
		Account: NewAccountResponse(a),
		Tokens: TokensResponse{
			AccessToken:  accessToken,
			RefreshToken: refreshToken,
			ExpiresIn:    int(s.jwtService.AccessTTL().Seconds()),
			TokenType:    "Bearer",
		},
	}, nil
}
