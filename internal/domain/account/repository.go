package account

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/bookyourstay/stay-api/internal/pkg/store"
)

type emailIndex struct {
	Email     string    `json:"email"`
	AccountID uuid.UUID `json:"account_id"`
}

// refreshSession is one issued, not yet rotated refresh token.
type refreshSession struct {
	TokenID   string    `json:"token_id"`
	AccountID uuid.UUID `json:"account_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

type Repository struct {
	accounts store.Store[Account]
	emails   store.Store[emailIndex]
	sessions store.Store[refreshSession]
}

func NewRepository(b store.Backend) (*Repository, error) {
	accounts, err := store.Open[Account](b, "accounts")
	if err != nil {
		return nil, err
	}
	emails, err := store.Open[emailIndex](b, "account_emails")
	if err != nil {
		return nil, err
	}
	sessions, err := store.Open[refreshSession](b, "refresh_sessions")
	if err != nil {
		return nil, err
	}
	return &Repository{accounts: accounts, emails: emails, sessions: sessions}, nil
}

// Create stores the account after claiming its email.
func (r *Repository) Create(ctx context.Context, a *Account) error {
	if err := r.emails.Save(ctx, a.Email, emailIndex{Email: a.Email, AccountID: a.ID}); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return ErrEmailAlreadyExists
		}
		return err
	}
	if err := r.accounts.Save(ctx, a.ID.String(), *a); err != nil {
		_ = r.emails.Delete(ctx, a.Email)
		return err
	}
	return nil
}

// Delete removes an account and releases its email.
func (r *Repository) Delete(ctx context.Context, a *Account) error {
	if err := r.accounts.Delete(ctx, a.ID.String()); err != nil {
		return err
	}
	return r.emails.Delete(ctx, a.Email)
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Account, error) {
	a, err := r.accounts.Find(ctx, id.String())
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *Repository) GetByEmail(ctx context.Context, email string) (*Account, error) {
	idx, err := r.emails.Find(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, idx.AccountID)
}

func (r *Repository) Update(ctx context.Context, a *Account) error {
	err := r.accounts.Update(ctx, a.ID.String(), *a)
	if errors.Is(err, store.ErrNotFound) {
		return ErrAccountNotFound
	}
	return err
}

func (r *Repository) SaveSession(ctx context.Context, s refreshSession) error {
	return r.sessions.Save(ctx, s.TokenID, s)
}

// TakeSession loads and removes a refresh session so each token is used once.
func (r *Repository) TakeSession(ctx context.Context, tokenID string) (*refreshSession, error) {
	s, err := r.sessions.Find(ctx, tokenID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrInvalidRefreshToken
	}
	if err != nil {
		return nil, err
	}
	if err := r.sessions.Delete(ctx, tokenID); err != nil {
		return nil, err
	}
	return &s, nil
}
