package stats

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/bookyourstay/stay-api/internal/domain/listing"
	"github.com/bookyourstay/stay-api/internal/domain/reservation"
)

type stubReservations []*reservation.Reservation

func (s stubReservations) All(ctx context.Context) ([]*reservation.Reservation, error) {
	return s, nil
}

type stubListings []*listing.Listing

func (s stubListings) All(ctx context.Context) ([]*listing.Listing, error) {
	return s, nil
}

func day(m time.Month, d int) time.Time {
	return time.Date(2026, m, d, 0, 0, 0, 0, time.UTC)
}

func fixture() (*Service, []*listing.Listing) {
	listings := []*listing.Listing{
		{ID: uuid.New(), City: "Medellín", Subtype: listing.SubtypeHouse},
		{ID: uuid.New(), City: "medellín ", Subtype: listing.SubtypeApartment},
		{ID: uuid.New(), City: "Cartagena", Subtype: listing.SubtypeHotel},
	}
	reservations := []*reservation.Reservation{
		// 5 nights in the house, fully inside November
		{ListingID: listings[0].ID, Start: day(11, 3), End: day(11, 8), Status: reservation.StatusCompleted, Total: 900_000},
		// spans the end of October: only 2 nights fall in November
		{ListingID: listings[1].ID, Start: day(10, 30), End: day(11, 3), Status: reservation.StatusConfirmed, Total: 400_000},
		// cancelled with refund: no nights booked, 20% kept
		{ListingID: listings[2].ID, Start: day(11, 10), End: day(11, 13), Status: reservation.StatusCancelled, Total: 357_000, RefundedAmount: 285_600},
		// pending never counts
		{ListingID: listings[2].ID, Start: day(11, 20), End: day(11, 22), Status: reservation.StatusPending, Total: 238_000},
	}
	return NewService(stubReservations(reservations), stubListings(listings)), listings
}

func TestOccupancyByCity(t *testing.T) {
	svc, _ := fixture()

	got, err := svc.Occupancy(context.Background(), day(11, 1), day(12, 1))
	if err != nil {
		t.Fatalf("occupancy: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 cities, got %+v", got)
	}

	medellin := got[0]
	if medellin.Listings != 2 || medellin.BookedNights != 7 || medellin.Capacity != 60 {
		t.Fatalf("unexpected Medellín figures %+v", medellin)
	}
	if medellin.Rate != 7.0/60.0 {
		t.Fatalf("expected rate 7/60, got %f", medellin.Rate)
	}
	if got[1].City != "Cartagena" || got[1].BookedNights != 0 || got[1].Rate != 0 {
		t.Fatalf("unexpected Cartagena figures %+v", got[1])
	}

	if _, err := svc.Occupancy(context.Background(), day(11, 1), day(11, 1)); !errors.Is(err, ErrInvalidPeriod) {
		t.Fatalf("expected invalid period, got %v", err)
	}
}

func TestRevenueBySubtype(t *testing.T) {
	svc, _ := fixture()

	got, err := svc.RevenueBySubtype(context.Background(), day(11, 1), day(12, 1))
	if err != nil {
		t.Fatalf("revenue: %v", err)
	}
	want := map[listing.Subtype]int64{
		listing.SubtypeHouse:     900_000,
		listing.SubtypeApartment: 0, // checked in during October
		listing.SubtypeHotel:     71_400,
	}
	for _, row := range got {
		if row.Revenue != want[row.Subtype] {
			t.Fatalf("%s: expected %d, got %d", row.Subtype, want[row.Subtype], row.Revenue)
		}
	}
}

func TestMonthlyRevenue(t *testing.T) {
	svc, _ := fixture()

	got, err := svc.MonthlyRevenue(context.Background(), 2026)
	if err != nil {
		t.Fatalf("monthly: %v", err)
	}
	if len(got) != 12 {
		t.Fatalf("expected 12 months, got %d", len(got))
	}
	if got[9].Revenue != 400_000 || got[9].Reservations != 1 {
		t.Fatalf("unexpected October %+v", got[9])
	}
	if got[10].Revenue != 900_000+71_400 || got[10].Reservations != 2 {
		t.Fatalf("unexpected November %+v", got[10])
	}

	other, err := svc.MonthlyRevenue(context.Background(), 2025)
	if err != nil {
		t.Fatalf("monthly: %v", err)
	}
	for _, m := range other {
		if m.Revenue != 0 {
			t.Fatalf("expected empty 2025, got %+v", m)
		}
	}
}
