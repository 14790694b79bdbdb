// Package review collects guest reviews of completed stays and keeps each
// listing's rating in step with them.
package review

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/bookyourstay/stay-api/internal/domain/reservation"
	"github.com/bookyourstay/stay-api/internal/pkg/clock"
	"github.com/bookyourstay/stay-api/internal/pkg/imaging"
	"github.com/bookyourstay/stay-api/internal/pkg/keylock"
	"github.com/bookyourstay/stay-api/internal/pkg/storage"
)

type Reservations interface {
	Get(ctx context.Context, id uuid.UUID) (*reservation.Reservation, error)
}

type Listings interface {
	UpdateRating(ctx context.Context, id uuid.UUID, average float64, count int) error
}

// PhotoProcessor resizes uploads before they are stored.
type PhotoProcessor interface {
	Process(data []byte) (*imaging.Photo, error)
}

type Service struct {
	repo         *Repository
	reservations Reservations
	listings     Listings
	storage      storage.Storage
	photos       PhotoProcessor
	clock        clock.Clock
	locks        *keylock.Locker
}

func NewService(repo *Repository, reservations Reservations, listings Listings, st storage.Storage, photos PhotoProcessor, clk clock.Clock) *Service {
	if repo == nil || reservations == nil || listings == nil || st == nil || photos == nil || clk == nil {
		panic("review: nil dependency")
	}
	return &Service{
		repo:         repo,
		reservations: reservations,
		listings:     listings,
		storage:      st,
		photos:       photos,
		clock:        clk,
		locks:        keylock.New(),
	}
}

// AddReview records guestID's review of a completed stay and refreshes the
// listing's average rating.
func (s *Service) AddReview(ctx context.Context, guestID uuid.UUID, in AddInput) (*Review, error) {
	res, err := s.reservations.Get(ctx, in.ReservationID)
	if err != nil {
		return nil, err
	}
	if res.GuestID != guestID {
		return nil, ErrNotReservationGuest
	}
	if in.ListingID != uuid.Nil && in.ListingID != res.ListingID {
		return nil, ErrListingMismatch
	}
	if res.Status != reservation.StatusCompleted {
		return nil, ErrReservationNotCompleted.Withf("reservation is %s", res.Status)
	}
	if in.Rating < MinRating || in.Rating > MaxRating {
		return nil, ErrInvalidRating
	}
	comment := strings.TrimSpace(in.Comment)
	if !validComment(comment) {
		return nil, ErrInvalidComment
	}

	unlock := s.locks.Lock(res.ListingID.String())
	defer unlock()

	reviewed, err := s.repo.HasReview(ctx, res.ID)
	if err != nil {
		return nil, err
	}
	if reviewed {
		return nil, ErrDuplicateReview
	}

	now := s.clock.Now()
	rev := &Review{
		ID:            uuid.New(),
		ReservationID: res.ID,
		ListingID:     res.ListingID,
		GuestID:       guestID,
		Rating:        in.Rating,
		Comment:       comment,
		Recommends:    in.Recommends,
		Photos:        []Photo{},
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.repo.Create(ctx, rev); err != nil {
		return nil, err
	}

	if err := s.refreshRating(ctx, res.ListingID); err != nil {
		// the review and the listing rating are stored together or not at all
		if derr := s.repo.Delete(ctx, rev); derr != nil {
			log.Error().Err(derr).AnErr("cause", err).Str("review_id", rev.ID.String()).Msg("failed to remove review after rating update error")
		}
		return nil, err
	}
	log.Info().Str("review_id", rev.ID.String()).Str("listing_id", rev.ListingID.String()).Int("rating", rev.Rating).Msg("review added")
	return rev, nil
}

// refreshRating stores the mean of all ratings on the listing. Callers hold
// the listing lock.
func (s *Service) refreshRating(ctx context.Context, listingID uuid.UUID) error {
	reviews, err := s.repo.ListByListing(ctx, listingID)
	if err != nil {
		return err
	}
	sum := summarize(listingID, reviews)
	if err := s.listings.UpdateRating(ctx, listingID, sum.Average, sum.Count); err != nil {
		return fmt.Errorf("update listing rating: %w", err)
	}
	return nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Review, error) {
	return s.repo.GetByID(ctx, id)
}

// Respond attaches the administration's answer and marks the review verified.
func (s *Service) Respond(ctx context.Context, id uuid.UUID, text string) (*Review, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyResponse
	}
	unlock := s.locks.Lock(id.String())
	defer unlock()

	rev, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rev.RespondedAt != nil {
		return nil, ErrAlreadyResponded
	}
	now := s.clock.Now()
	rev.Response = text
	rev.RespondedAt = &now
	rev.Verified = true
	rev.UpdatedAt = now
	if err := s.repo.Update(ctx, rev); err != nil {
		return nil, err
	}
	return rev, nil
}

// EditComment changes the comment of an unverified review.
func (s *Service) EditComment(ctx context.Context, id, guestID uuid.UUID, comment string) (*Review, error) {
	comment = strings.TrimSpace(comment)
	if !validComment(comment) {
		return nil, ErrInvalidComment
	}
	unlock := s.locks.Lock(id.String())
	defer unlock()

	rev, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rev.GuestID != guestID {
		return nil, ErrNotReviewAuthor
	}
	if rev.Verified {
		return nil, ErrReviewLocked
	}
	rev.Comment = comment
	rev.UpdatedAt = s.clock.Now()
	if err := s.repo.Update(ctx, rev); err != nil {
		return nil, err
	}
	return rev, nil
}

// AddPhoto resizes and stores an image and attaches it to the review.
func (s *Service) AddPhoto(ctx context.Context, id, guestID uuid.UUID, upload io.Reader) (*Review, error) {
	data, _, err := storage.ReadImage(upload, storage.MaxImageSize)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(id.String())
	defer unlock()

	rev, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rev.GuestID != guestID {
		return nil, ErrNotReviewAuthor
	}
	if len(rev.Photos) >= MaxPhotos {
		return nil, ErrTooManyPhotos
	}

	processed, err := s.photos.Process(data)
	if err != nil {
		return nil, fmt.Errorf("process photo: %w", err)
	}

	photo := Photo{ID: uuid.New(), Width: processed.Width, Height: processed.Height}
	ext := storage.ExtensionFor(processed.ContentType)
	photo.Key = fmt.Sprintf("reviews/%s/%s%s", rev.ID, photo.ID, ext)
	photo.ThumbnailKey = fmt.Sprintf("reviews/%s/%s_thumb%s", rev.ID, photo.ID, ext)

	if err := s.storage.Put(ctx, photo.Key, bytes.NewReader(processed.Full), processed.ContentType); err != nil {
		return nil, err
	}
	if err := s.storage.Put(ctx, photo.ThumbnailKey, bytes.NewReader(processed.Thumbnail), processed.ContentType); err != nil {
		s.discard(ctx, photo.Key)
		return nil, err
	}
	photo.URL = s.storage.URL(photo.Key)
	photo.ThumbnailURL = s.storage.URL(photo.ThumbnailKey)

	rev.Photos = append(rev.Photos, photo)
	rev.UpdatedAt = s.clock.Now()
	if err := s.repo.Update(ctx, rev); err != nil {
		s.discard(ctx, photo.Key, photo.ThumbnailKey)
		return nil, err
	}
	log.Info().Str("review_id", rev.ID.String()).Str("photo_id", photo.ID.String()).Msg("review photo added")
	return rev, nil
}

func (s *Service) discard(ctx context.Context, keys ...string) {
	for _, key := range keys {
		if err := s.storage.Delete(ctx, key); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("failed to remove orphaned photo")
		}
	}
}

// ListByListing returns a listing's reviews, newest first.
func (s *Service) ListByListing(ctx context.Context, listingID uuid.UUID, verifiedOnly bool) ([]*Review, error) {
	return s.repo.List(ctx, func(r *Review) bool {
		return r.ListingID == listingID && (!verifiedOnly || r.Verified)
	})
}

func (s *Service) Summary(ctx context.Context, listingID uuid.UUID) (Summary, error) {
	reviews, err := s.repo.ListByListing(ctx, listingID)
	if err != nil {
		return Summary{}, err
	}
	return summarize(listingID, reviews), nil
}

// Featured returns reviews worth highlighting, optionally for one listing.
func (s *Service) Featured(ctx context.Context, listingID uuid.UUID, limit int) ([]*Review, error) {
	featured, err := s.repo.List(ctx, func(r *Review) bool {
		return (listingID == uuid.Nil || r.ListingID == listingID) && r.IsFeatured()
	})
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(featured) > limit {
		featured = featured[:limit]
	}
	return featured, nil
}
