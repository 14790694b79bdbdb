package review

import (
	"context"
	"errors"
	"sort"

	"github.com/google/uuid"

	"github.com/bookyourstay/stay-api/internal/pkg/store"
)

type reservationIndex struct {
	ReservationID uuid.UUID `json:"reservation_id"`
	ReviewID      uuid.UUID `json:"review_id"`
}

// Repository stores reviews plus a one-review-per-reservation index.
type Repository struct {
	reviews      store.Store[Review]
	reservations store.Store[reservationIndex]
}

func NewRepository(b store.Backend) (*Repository, error) {
	reviews, err := store.Open[Review](b, "reviews")
	if err != nil {
		return nil, err
	}
	reservations, err := store.Open[reservationIndex](b, "review_reservations")
	if err != nil {
		return nil, err
	}
	return &Repository{reviews: reviews, reservations: reservations}, nil
}

// Create stores rev, failing with ErrDuplicateReview when its reservation
// was already reviewed.
func (r *Repository) Create(ctx context.Context, rev *Review) error {
	key := rev.ReservationID.String()
	err := r.reservations.Save(ctx, key, reservationIndex{ReservationID: rev.ReservationID, ReviewID: rev.ID})
	if errors.Is(err, store.ErrDuplicate) {
		return ErrDuplicateReview
	}
	if err != nil {
		return err
	}
	if err := r.reviews.Save(ctx, rev.ID.String(), *rev); err != nil {
		_ = r.reservations.Delete(ctx, key)
		return err
	}
	return nil
}

// Delete removes rev and frees its reservation for another review.
func (r *Repository) Delete(ctx context.Context, rev *Review) error {
	if err := r.reviews.Delete(ctx, rev.ID.String()); err != nil {
		return err
	}
	return r.reservations.Delete(ctx, rev.ReservationID.String())
}

// HasReview reports whether the reservation was reviewed.
func (r *Repository) HasReview(ctx context.Context, reservationID uuid.UUID) (bool, error) {
	_, err := r.reservations.Find(ctx, reservationID.String())
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Review, error) {
	rev, err := r.reviews.Find(ctx, id.String())
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrReviewNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rev, nil
}

func (r *Repository) Update(ctx context.Context, rev *Review) error {
	err := r.reviews.Update(ctx, rev.ID.String(), *rev)
	if errors.Is(err, store.ErrNotFound) {
		return ErrReviewNotFound
	}
	return err
}

// List returns the reviews accepted by keep, newest first.
func (r *Repository) List(ctx context.Context, keep func(*Review) bool) ([]*Review, error) {
	all, err := r.reviews.List(ctx)
	if err != nil {
		return nil, err
	}
	result := make([]*Review, 0, len(all))
	for i := range all {
		if keep == nil || keep(&all[i]) {
			result = append(result, &all[i])
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (r *Repository) ListByListing(ctx context.Context, listingID uuid.UUID) ([]*Review, error) {
	return r.List(ctx, func(rev *Review) bool { return rev.ListingID == listingID })
}
