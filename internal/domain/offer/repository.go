package offer

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/bookyourstay/stay-api/internal/pkg/store"
)

type nameIndex struct {
	Name    string    `json:"name"`
	OfferID uuid.UUID `json:"offer_id"`
}

type Repository struct {
	offers store.Store[Offer]
	names  store.Store[nameIndex]
	codes  store.Store[nameIndex]
}

func NewRepository(b store.Backend) (*Repository, error) {
	offers, err := store.Open[Offer](b, "offers")
	if err != nil {
		return nil, err
	}
	names, err := store.Open[nameIndex](b, "offer_names")
	if err != nil {
		return nil, err
	}
	codes, err := store.Open[nameIndex](b, "offer_codes")
	if err != nil {
		return nil, err
	}
	return &Repository{offers: offers, names: names, codes: codes}, nil
}

func nameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// ClaimCode reserves a promo code. It reports false when the code is taken.
func (r *Repository) ClaimCode(ctx context.Context, code string, offerID uuid.UUID) (bool, error) {
	err := r.codes.Save(ctx, code, nameIndex{Name: code, OfferID: offerID})
	if errors.Is(err, store.ErrDuplicate) {
		return false, nil
	}
	return err == nil, err
}

// Create stores an offer whose promo code was already claimed.
func (r *Repository) Create(ctx context.Context, o *Offer) error {
	if err := r.names.Save(ctx, nameKey(o.Name), nameIndex{Name: o.Name, OfferID: o.ID}); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return ErrOfferNameTaken
		}
		return err
	}
	if err := r.offers.Save(ctx, o.ID.String(), *o); err != nil {
		_ = r.names.Delete(ctx, nameKey(o.Name))
		return err
	}
	return nil
}

// ReleaseCode frees a claimed code whose offer was never stored.
func (r *Repository) ReleaseCode(ctx context.Context, code string) error {
	return r.codes.Delete(ctx, code)
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Offer, error) {
	o, err := r.offers.Find(ctx, id.String())
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrOfferNotFound
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *Repository) GetByCode(ctx context.Context, code string) (*Offer, error) {
	idx, err := r.codes.Find(ctx, strings.ToUpper(strings.TrimSpace(code)))
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrOfferNotFound
	}
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, idx.OfferID)
}

func (r *Repository) Update(ctx context.Context, o *Offer) error {
	err := r.offers.Update(ctx, o.ID.String(), *o)
	if errors.Is(err, store.ErrNotFound) {
		return ErrOfferNotFound
	}
	return err
}

func (r *Repository) List(ctx context.Context) ([]*Offer, error) {
	all, err := r.offers.List(ctx)
	if err != nil {
		return nil, err
	}
	result := make([]*Offer, len(all))
	for i := range all {
		result[i] = &all[i]
	}
	return result, nil
}
