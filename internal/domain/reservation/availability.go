package reservation

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/bookyourstay/stay-api/internal/pkg/clock"
)

// Checker answers calendar questions about a listing. It does not lock;
// callers that insert after checking hold the listing lock.
type Checker struct {
	repo  *Repository
	clock clock.Clock
}

func NewChecker(repo *Repository, clk clock.Clock) *Checker {
	if repo == nil || clk == nil {
		panic("reservation: nil dependency")
	}
	return &Checker{repo: repo, clock: clk}
}

// IsAvailable reports whether no pending or confirmed reservation of the
// listing overlaps [start, end).
func (c *Checker) IsAvailable(ctx context.Context, listingID uuid.UUID, start, end time.Time) (bool, error) {
	start, end = clock.Date(start), clock.Date(end)
	conflicts, err := c.repo.List(ctx, func(r *Reservation) bool {
		return r.ListingID == listingID && r.Status.Holds() && r.Overlaps(start, end)
	})
	if err != nil {
		return false, err
	}
	return len(conflicts) == 0, nil
}

// HasFutureBookings reports whether the listing has a pending or confirmed
// stay that has not ended yet.
func (c *Checker) HasFutureBookings(ctx context.Context, listingID uuid.UUID) (bool, error) {
	today := clock.Today(c.clock)
	upcoming, err := c.repo.List(ctx, func(r *Reservation) bool {
		return r.ListingID == listingID && r.Status.Holds() && r.End.After(today)
	})
	if err != nil {
		return false, err
	}
	return len(upcoming) > 0, nil
}

// BookedRanges returns the occupied ranges of a listing ending after from.
func (c *Checker) BookedRanges(ctx context.Context, listingID uuid.UUID, from time.Time) ([]DateRange, error) {
	from = clock.Date(from)
	held, err := c.repo.List(ctx, func(r *Reservation) bool {
		return r.ListingID == listingID && r.Status.Holds() && r.End.After(from)
	})
	if err != nil {
		return nil, err
	}
	ranges := make([]DateRange, len(held))
	for i, r := range held {
		ranges[i] = DateRange{Start: r.Start, End: r.End}
	}
	return ranges, nil
}

// DateRange is a half-open [Start, End) span of days.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}
