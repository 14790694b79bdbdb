package listing

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/bookyourstay/stay-api/internal/pkg/store"
)

type Repository struct {
	listings store.Store[Listing]
}

func NewRepository(b store.Backend) (*Repository, error) {
	listings, err := store.Open[Listing](b, "listings")
	if err != nil {
		return nil, err
	}
	return &Repository{listings: listings}, nil
}

func (r *Repository) Create(ctx context.Context, l *Listing) error {
	return r.listings.Save(ctx, l.ID.String(), *l)
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Listing, error) {
	l, err := r.listings.Find(ctx, id.String())
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrListingNotFound
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *Repository) Update(ctx context.Context, l *Listing) error {
	err := r.listings.Update(ctx, l.ID.String(), *l)
	if errors.Is(err, store.ErrNotFound) {
		return ErrListingNotFound
	}
	return err
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.listings.Delete(ctx, id.String())
}

// List returns listings matching the static part of filter, best rated first.
func (r *Repository) List(ctx context.Context, filter Filter) ([]*Listing, error) {
	all, err := r.listings.List(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]*Listing, 0, len(all))
	for i := range all {
		l := &all[i]
		if filter.City != "" && !strings.EqualFold(l.City, filter.City) {
			continue
		}
		if filter.Subtype != "" && l.Subtype != filter.Subtype {
			continue
		}
		if filter.Guests > 0 && l.MaxGuests < filter.Guests {
			continue
		}
		if filter.MaxRate > 0 && l.NightlyRate > filter.MaxRate {
			continue
		}
		if filter.OwnerID != uuid.Nil && l.OwnerID != filter.OwnerID {
			continue
		}
		if filter.OnlyOpen && !l.Available {
			continue
		}
		result = append(result, l)
	}

	sort.SliceStable(result, func(i, j int) bool {
		if result[i].Rating != result[j].Rating {
			return result[i].Rating > result[j].Rating
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}
