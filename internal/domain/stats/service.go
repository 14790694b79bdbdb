// Package stats reports occupancy and revenue figures for administrators.
package stats

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bookyourstay/stay-api/internal/domain/listing"
	"github.com/bookyourstay/stay-api/internal/domain/reservation"
	"github.com/bookyourstay/stay-api/internal/pkg/apperr"
	"github.com/bookyourstay/stay-api/internal/pkg/clock"
)

var ErrInvalidPeriod = apperr.New(apperr.KindValidation, "INVALID_PERIOD", "period end must be after its start")

type Reservations interface {
	All(ctx context.Context) ([]*reservation.Reservation, error)
}

type Listings interface {
	All(ctx context.Context) ([]*listing.Listing, error)
}

// CityOccupancy is the share of available listing-nights that were booked.
type CityOccupancy struct {
	City         string  `json:"city"`
	Listings     int     `json:"listings"`
	BookedNights int     `json:"booked_nights"`
	Capacity     int     `json:"capacity_nights"`
	Rate         float64 `json:"rate"`
}

// SubtypeRevenue sums the money kept per listing subtype.
type SubtypeRevenue struct {
	Subtype      listing.Subtype `json:"subtype"`
	Reservations int             `json:"reservations"`
	Revenue      int64           `json:"revenue"`
}

// MonthRevenue is the money kept for stays starting in one month.
type MonthRevenue struct {
	Month        int   `json:"month"`
	Reservations int   `json:"reservations"`
	Revenue      int64 `json:"revenue"`
}

type Service struct {
	reservations Reservations
	listings     Listings
}

func NewService(reservations Reservations, listings Listings) *Service {
	if reservations == nil || listings == nil {
		panic("stats: nil dependency")
	}
	return &Service{reservations: reservations, listings: listings}
}

// kept returns what the platform retained from r: the full total for live or
// finished stays, the non-refunded part for cancelled ones.
func kept(r *reservation.Reservation) (int64, bool) {
	switch r.Status {
	case reservation.StatusConfirmed, reservation.StatusCompleted:
		return r.Total, true
	case reservation.StatusCancelled:
		return r.Total - r.RefundedAmount, true
	default:
		return 0, false
	}
}

// Occupancy computes per-city occupancy over [from, to).
func (s *Service) Occupancy(ctx context.Context, from, to time.Time) ([]CityOccupancy, error) {
	from, to = clock.Date(from), clock.Date(to)
	days := clock.DaysBetween(from, to)
	if days <= 0 {
		return nil, ErrInvalidPeriod
	}

	listings, err := s.listings.All(ctx)
	if err != nil {
		return nil, err
	}
	reservations, err := s.reservations.All(ctx)
	if err != nil {
		return nil, err
	}

	cityOf := make(map[uuid.UUID]string, len(listings))
	byCity := make(map[string]*CityOccupancy)
	for _, l := range listings {
		key := strings.ToLower(strings.TrimSpace(l.City))
		cityOf[l.ID] = key
		occ, ok := byCity[key]
		if !ok {
			occ = &CityOccupancy{City: strings.TrimSpace(l.City)}
			byCity[key] = occ
		}
		occ.Listings++
		occ.Capacity += days
	}

	for _, r := range reservations {
		if r.Status != reservation.StatusConfirmed && r.Status != reservation.StatusCompleted {
			continue
		}
		occ, ok := byCity[cityOf[r.ListingID]]
		if !ok {
			continue
		}
		occ.BookedNights += overlapNights(r.Start, r.End, from, to)
	}

	result := make([]CityOccupancy, 0, len(byCity))
	for _, occ := range byCity {
		occ.Rate = float64(occ.BookedNights) / float64(occ.Capacity)
		result = append(result, *occ)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Rate != result[j].Rate {
			return result[i].Rate > result[j].Rate
		}
		return result[i].City < result[j].City
	})
	return result, nil
}

func overlapNights(aStart, aEnd, bStart, bEnd time.Time) int {
	start, end := aStart, aEnd
	if bStart.After(start) {
		start = bStart
	}
	if bEnd.Before(end) {
		end = bEnd
	}
	if n := clock.DaysBetween(start, end); n > 0 {
		return n
	}
	return 0
}

// RevenueBySubtype sums retained revenue per subtype for stays starting in [from, to).
func (s *Service) RevenueBySubtype(ctx context.Context, from, to time.Time) ([]SubtypeRevenue, error) {
	from, to = clock.Date(from), clock.Date(to)
	if !to.After(from) {
		return nil, ErrInvalidPeriod
	}

	listings, err := s.listings.All(ctx)
	if err != nil {
		return nil, err
	}
	reservations, err := s.reservations.All(ctx)
	if err != nil {
		return nil, err
	}

	subtypeOf := make(map[uuid.UUID]listing.Subtype, len(listings))
	for _, l := range listings {
		subtypeOf[l.ID] = l.Subtype
	}
	totals := map[listing.Subtype]*SubtypeRevenue{
		listing.SubtypeHouse:     {Subtype: listing.SubtypeHouse},
		listing.SubtypeApartment: {Subtype: listing.SubtypeApartment},
		listing.SubtypeHotel:     {Subtype: listing.SubtypeHotel},
	}
	for _, r := range reservations {
		amount, ok := kept(r)
		if !ok || r.Start.Before(from) || !r.Start.Before(to) {
			continue
		}
		t, ok := totals[subtypeOf[r.ListingID]]
		if !ok {
			continue
		}
		t.Reservations++
		t.Revenue += amount
	}

	result := []SubtypeRevenue{*totals[listing.SubtypeHouse], *totals[listing.SubtypeApartment], *totals[listing.SubtypeHotel]}
	return result, nil
}

// MonthlyRevenue returns twelve buckets of retained revenue for a year,
// keyed by check-in month.
func (s *Service) MonthlyRevenue(ctx context.Context, year int) ([]MonthRevenue, error) {
	reservations, err := s.reservations.All(ctx)
	if err != nil {
		return nil, err
	}
	months := make([]MonthRevenue, 12)
	for i := range months {
		months[i].Month = i + 1
	}
	for _, r := range reservations {
		amount, ok := kept(r)
		if !ok || r.Start.Year() != year {
			continue
		}
		m := &months[r.Start.Month()-1]
		m.Reservations++
		m.Revenue += amount
	}
	return months, nil
}
