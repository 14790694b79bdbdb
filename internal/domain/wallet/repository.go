package wallet

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/bookyourstay/stay-api/internal/pkg/store"
)

type ownerIndex struct {
	OwnerID  uuid.UUID `json:"owner_id"`
	WalletID uuid.UUID `json:"wallet_id"`
}

type Repository struct {
	wallets store.Store[Wallet]
	owners  store.Store[ownerIndex]
}

func NewRepository(b store.Backend) (*Repository, error) {
	wallets, err := store.Open[Wallet](b, "wallets")
	if err != nil {
		return nil, err
	}
	owners, err := store.Open[ownerIndex](b, "wallet_owners")
	if err != nil {
		return nil, err
	}
	return &Repository{wallets: wallets, owners: owners}, nil
}

// Create stores a new wallet and claims its owner slot.
func (r *Repository) Create(ctx context.Context, w *Wallet) error {
	idx := ownerIndex{OwnerID: w.OwnerID, WalletID: w.ID}
	if err := r.owners.Save(ctx, w.OwnerID.String(), idx); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return ErrWalletExists
		}
		return err
	}
	if err := r.wallets.Save(ctx, w.ID.String(), *w); err != nil {
		_ = r.owners.Delete(ctx, w.OwnerID.String())
		return err
	}
	return nil
}

func (r *Repository) Get(ctx context.Context, id uuid.UUID) (*Wallet, error) {
	w, err := r.wallets.Find(ctx, id.String())
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrWalletNotFound
	}
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *Repository) WalletIDForOwner(ctx context.Context, ownerID uuid.UUID) (uuid.UUID, error) {
	idx, err := r.owners.Find(ctx, ownerID.String())
	if errors.Is(err, store.ErrNotFound) {
		return uuid.Nil, ErrWalletNotFound
	}
	if err != nil {
		return uuid.Nil, err
	}
	return idx.WalletID, nil
}

func (r *Repository) Update(ctx context.Context, w *Wallet) error {
	err := r.wallets.Update(ctx, w.ID.String(), *w)
	if errors.Is(err, store.ErrNotFound) {
		return ErrWalletNotFound
	}
	return err
}
