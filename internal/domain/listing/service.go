package listing

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/bookyourstay/stay-api/internal/pkg/clock"
	"github.com/bookyourstay/stay-api/internal/pkg/keylock"
)

// Bookings is the view of the reservation book a listing needs.
type Bookings interface {
	IsAvailable(ctx context.Context, listingID uuid.UUID, start, end time.Time) (bool, error)
	HasFutureBookings(ctx context.Context, listingID uuid.UUID) (bool, error)
}

type Service struct {
	repo     *Repository
	clock    clock.Clock
	locks    *keylock.Locker
	bookings Bookings
}

func NewService(repo *Repository, clk clock.Clock) *Service {
	if repo == nil || clk == nil {
		panic("listing: nil dependency")
	}
	return &Service{repo: repo, clock: clk, locks: keylock.New()}
}

// Locks returns the per-listing locks. Reservations book under the same
// lock so a delete cannot slip between their availability check and insert.
func (s *Service) Locks() *keylock.Locker {
	return s.locks
}

// SetBookings wires the reservation book. Reservations depend on listings,
// so it is attached after both services exist.
func (s *Service) SetBookings(bookings Bookings) {
	s.bookings = bookings
}

// Create publishes a new listing owned by ownerID
func (s *Service) Create(ctx context.Context, ownerID uuid.UUID, req *CreateListingRequest) (*Listing, error) {
	subtype := Subtype(req.Subtype)
	if !subtype.Valid() {
		return nil, ErrInvalidSubtype
	}
	if req.NightlyRate <= 0 {
		return nil, ErrInvalidRate
	}
	if req.MaxGuests <= 0 {
		return nil, ErrInvalidCapacity
	}

	now := s.clock.Now()
	l := &Listing{
		ID:          uuid.New(),
		OwnerID:     ownerID,
		Name:        strings.TrimSpace(req.Name),
		City:        strings.TrimSpace(req.City),
		Description: req.Description,
		Subtype:     subtype,
		NightlyRate: req.NightlyRate,
		MaxGuests:   req.MaxGuests,
		Amenities:   normalizeAmenities(req.Amenities),
		Available:   true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if subtype == SubtypeHouse {
		l.HasPool = req.HasPool
		l.AllowsEvents = req.AllowsEvents
	}

	if err := s.repo.Create(ctx, l); err != nil {
		return nil, fmt.Errorf("create listing: %w", err)
	}
	log.Info().Str("listing_id", l.ID.String()).Str("owner_id", ownerID.String()).Str("subtype", string(subtype)).Msg("listing created")
	return l, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Listing, error) {
	return s.repo.GetByID(ctx, id)
}

// Update applies the non-nil fields of req
func (s *Service) Update(ctx context.Context, id, ownerID uuid.UUID, req *UpdateListingRequest) (*Listing, error) {
	unlock := s.locks.Lock(id.String())
	defer unlock()

	l, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if l.OwnerID != ownerID {
		return nil, ErrNotListingOwner
	}

	if req.Name != nil {
		l.Name = strings.TrimSpace(*req.Name)
	}
	if req.City != nil {
		l.City = strings.TrimSpace(*req.City)
	}
	if req.Description != nil {
		l.Description = *req.Description
	}
	if req.NightlyRate != nil {
		if *req.NightlyRate <= 0 {
			return nil, ErrInvalidRate
		}
		l.NightlyRate = *req.NightlyRate
	}
	if req.MaxGuests != nil {
		if *req.MaxGuests <= 0 {
			return nil, ErrInvalidCapacity
		}
		l.MaxGuests = *req.MaxGuests
	}
	if req.Amenities != nil {
		l.Amenities = normalizeAmenities(req.Amenities)
	}
	if l.Subtype == SubtypeHouse {
		if req.HasPool != nil {
			l.HasPool = *req.HasPool
		}
		if req.AllowsEvents != nil {
			l.AllowsEvents = *req.AllowsEvents
		}
	}
	if req.Available != nil {
		l.Available = *req.Available
	}
	l.UpdatedAt = s.clock.Now()

	if err := s.repo.Update(ctx, l); err != nil {
		return nil, err
	}
	log.Info().Str("listing_id", id.String()).Msg("listing updated")
	return l, nil
}

// Delete removes a listing without upcoming reservations
func (s *Service) Delete(ctx context.Context, id, ownerID uuid.UUID) error {
	unlock := s.locks.Lock(id.String())
	defer unlock()

	l, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if l.OwnerID != ownerID {
		return ErrNotListingOwner
	}
	if s.bookings != nil {
		busy, err := s.bookings.HasFutureBookings(ctx, id)
		if err != nil {
			return err
		}
		if busy {
			return ErrHasFutureBookings
		}
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	log.Info().Str("listing_id", id.String()).Msg("listing deleted")
	return nil
}

// Search returns a page of listings. When filter carries dates only listings
// free for the whole range are returned.
func (s *Service) Search(ctx context.Context, filter Filter, p Pagination) ([]*Listing, int, error) {
	withDates := !filter.Start.IsZero() || !filter.End.IsZero()
	if withDates {
		filter.Start, filter.End = clock.Date(filter.Start), clock.Date(filter.End)
		if !filter.End.After(filter.Start) {
			return nil, 0, ErrInvalidDateRange
		}
		filter.OnlyOpen = true
	}

	candidates, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	if withDates && s.bookings != nil {
		free := candidates[:0]
		for _, l := range candidates {
			ok, err := s.bookings.IsAvailable(ctx, l.ID, filter.Start, filter.End)
			if err != nil {
				return nil, 0, err
			}
			if ok {
				free = append(free, l)
			}
		}
		candidates = free
	}

	total := len(candidates)
	if p.Limit <= 0 {
		return candidates, total, nil
	}
	if p.Page < 1 {
		p.Page = 1
	}
	start := (p.Page - 1) * p.Limit
	if start >= total {
		return []*Listing{}, total, nil
	}
	end := start + p.Limit
	if end > total {
		end = total
	}
	return candidates[start:end], total, nil
}

// All returns every listing.
func (s *Service) All(ctx context.Context) ([]*Listing, error) {
	return s.repo.List(ctx, Filter{})
}

// UpdateRating stores the recomputed review average of a listing
func (s *Service) UpdateRating(ctx context.Context, id uuid.UUID, average float64, count int) error {
	if average < 0 || average > 5 || count < 0 {
		return ErrInvalidRating
	}

	unlock := s.locks.Lock(id.String())
	defer unlock()

	l, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	l.Rating = average
	l.ReviewCount = count
	l.UpdatedAt = s.clock.Now()
	return s.repo.Update(ctx, l)
}

func normalizeAmenities(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, a := range in {
		a = strings.ToLower(strings.TrimSpace(a))
		if a == "" {
			continue
		}
		if _, dup := seen[a]; dup {
			continue
		}
		seen[a] = struct{}{}
		out = append(out, a)
	}
	return out
}
