package reservation

import (
	"context"
	"errors"
	"sort"

	"github.com/google/uuid"

	"github.com/bookyourstay/stay-api/internal/pkg/store"
)

type codeIndex struct {
	Code          string    `json:"code"`
	ReservationID uuid.UUID `json:"reservation_id"`
}

type Repository struct {
	reservations store.Store[Reservation]
	codes        store.Store[codeIndex]
}

func NewRepository(b store.Backend) (*Repository, error) {
	reservations, err := store.Open[Reservation](b, "reservations")
	if err != nil {
		return nil, err
	}
	codes, err := store.Open[codeIndex](b, "reservation_codes")
	if err != nil {
		return nil, err
	}
	return &Repository{reservations: reservations, codes: codes}, nil
}

func (r *Repository) Create(ctx context.Context, res *Reservation) error {
	return r.reservations.Save(ctx, res.ID.String(), *res)
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Reservation, error) {
	res, err := r.reservations.Find(ctx, id.String())
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrReservationNotFound
	}
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (r *Repository) Update(ctx context.Context, res *Reservation) error {
	err := r.reservations.Update(ctx, res.ID.String(), *res)
	if errors.Is(err, store.ErrNotFound) {
		return ErrReservationNotFound
	}
	return err
}

// ClaimCode reserves a confirmation code. It reports false when taken.
func (r *Repository) ClaimCode(ctx context.Context, code string, id uuid.UUID) (bool, error) {
	err := r.codes.Save(ctx, code, codeIndex{Code: code, ReservationID: id})
	if errors.Is(err, store.ErrDuplicate) {
		return false, nil
	}
	return err == nil, err
}

func (r *Repository) GetByCode(ctx context.Context, code string) (*Reservation, error) {
	idx, err := r.codes.Find(ctx, code)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrReservationNotFound
	}
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, idx.ReservationID)
}

// List returns reservations accepted by keep, ordered by check-in.
func (r *Repository) List(ctx context.Context, keep func(*Reservation) bool) ([]*Reservation, error) {
	all, err := r.reservations.List(ctx)
	if err != nil {
		return nil, err
	}
	result := make([]*Reservation, 0, len(all))
	for i := range all {
		if keep == nil || keep(&all[i]) {
			result = append(result, &all[i])
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		if !result[i].Start.Equal(result[j].Start) {
			return result[i].Start.Before(result[j].Start)
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

func (r *Repository) ListByListing(ctx context.Context, listingID uuid.UUID) ([]*Reservation, error) {
	return r.List(ctx, func(res *Reservation) bool { return res.ListingID == listingID })
}

func (r *Repository) ListByGuest(ctx context.Context, guestID uuid.UUID) ([]*Reservation, error) {
	return r.List(ctx, func(res *Reservation) bool { return res.GuestID == guestID })
}
