package pricing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/bookyourstay/stay-api/internal/domain/listing"
	"github.com/bookyourstay/stay-api/internal/domain/offer"
	"github.com/bookyourstay/stay-api/internal/pkg/apperr"
)

type stubOffers struct {
	best     *offer.Offer
	err      error
	lastSeen int64
}

func (s *stubOffers) Best(ctx context.Context, listingID uuid.UUID, price int64) (*offer.Offer, int64, error) {
	s.lastSeen = price
	if s.err != nil || s.best == nil {
		return nil, 0, s.err
	}
	return s.best, s.best.Discount(price), nil
}

var checkIn = time.Date(2026, 11, 2, 0, 0, 0, 0, time.UTC)

func hotel(rate int64) *listing.Listing {
	return &listing.Listing{ID: uuid.New(), Subtype: listing.SubtypeHotel, NightlyRate: rate, MaxGuests: 4, Available: true}
}

func TestQuoteHotelWithoutOffer(t *testing.T) {
	engine := NewEngine(&stubOffers{}, Config{TaxRateBP: DefaultTaxRateBP})

	q, err := engine.Quote(context.Background(), hotel(100_000), checkIn, checkIn.AddDate(0, 0, 3), 2)
	require.NoError(t, err)
	require.Equal(t, 3, q.Nights)
	require.Equal(t, int64(300_000), q.Subtotal)
	require.Empty(t, q.Fees)
	require.Nil(t, q.OfferID)
	require.Equal(t, int64(57_000), q.Tax)
	require.Equal(t, int64(357_000), q.Total)
}

func TestQuoteFeeSchedules(t *testing.T) {
	tests := []struct {
		name     string
		listing  listing.Listing
		wantFees int64
	}{
		{"plain house", listing.Listing{Subtype: listing.SubtypeHouse}, 200_000},
		{"house with pool", listing.Listing{Subtype: listing.SubtypeHouse, HasPool: true}, 230_000},
		{"house with pool and events", listing.Listing{Subtype: listing.SubtypeHouse, HasPool: true, AllowsEvents: true}, 300_000},
		{"apartment", listing.Listing{Subtype: listing.SubtypeApartment}, 130_000},
		{"hotel", listing.Listing{Subtype: listing.SubtypeHotel}, 0},
	}
	engine := NewEngine(&stubOffers{}, Config{TaxRateBP: DefaultTaxRateBP})

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := tt.listing
			l.ID, l.NightlyRate, l.MaxGuests = uuid.New(), 100_000, 6

			q, err := engine.Quote(context.Background(), &l, checkIn, checkIn.AddDate(0, 0, 2), 1)
			require.NoError(t, err)

			var fees int64
			for _, f := range q.Fees {
				fees += f.Amount
			}
			require.Equal(t, tt.wantFees, fees)
			require.Equal(t, 200_000+tt.wantFees, q.Subtotal)
			require.Equal(t, q.Subtotal*1900/10_000, q.Tax)
			require.Equal(t, q.Subtotal+q.Tax, q.Total)
		})
	}
}

func TestQuoteAppliesBestOffer(t *testing.T) {
	tests := []struct {
		name         string
		offer        *offer.Offer
		wantDiscount int64
	}{
		{"percentage", &offer.Offer{ID: uuid.New(), Kind: offer.KindPercentage, Value: 15}, 45_000},
		{"fixed", &offer.Offer{ID: uuid.New(), Kind: offer.KindFixedAmount, Value: 20_000}, 20_000},
		{"fixed larger than subtotal", &offer.Offer{ID: uuid.New(), Kind: offer.KindFixedAmount, Value: 1_000_000}, 300_000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			offers := &stubOffers{best: tt.offer}
			engine := NewEngine(offers, Config{TaxRateBP: DefaultTaxRateBP})

			q, err := engine.Quote(context.Background(), hotel(100_000), checkIn, checkIn.AddDate(0, 0, 3), 1)
			require.NoError(t, err)
			require.Equal(t, int64(300_000), offers.lastSeen, "offer must be chosen on the subtotal")
			require.NotNil(t, q.OfferID)
			require.Equal(t, tt.offer.ID, *q.OfferID)
			require.Equal(t, tt.wantDiscount, q.Discount)
			require.LessOrEqual(t, q.Discount, q.Subtotal)

			taxable := q.Subtotal - q.Discount
			require.Equal(t, taxable*1900/10_000, q.Tax)
			require.Equal(t, taxable+q.Tax, q.Total)
		})
	}
}

func TestQuoteRejectsInvalidStays(t *testing.T) {
	engine := NewEngine(&stubOffers{}, Config{TaxRateBP: DefaultTaxRateBP})
	l := hotel(100_000)

	for _, nights := range []int{0, -2} {
		_, err := engine.Quote(context.Background(), l, checkIn, checkIn.AddDate(0, 0, nights), 1)
		require.ErrorIs(t, err, ErrInvalidDates)
		require.ErrorIs(t, err, apperr.Validation)
	}

	_, err := engine.Quote(context.Background(), l, checkIn, checkIn.AddDate(0, 0, 1), 5)
	require.ErrorIs(t, err, ErrCapacityExceeded)
	_, err = engine.Quote(context.Background(), l, checkIn, checkIn.AddDate(0, 0, 1), 0)
	require.ErrorIs(t, err, ErrCapacityExceeded)

	_, err = engine.Quote(context.Background(), &listing.Listing{Subtype: "castle", NightlyRate: 1, MaxGuests: 1}, checkIn, checkIn.AddDate(0, 0, 1), 1)
	require.ErrorIs(t, err, ErrUnknownSubtype)
}

func TestQuoteTruncatesTimesToDates(t *testing.T) {
	engine := NewEngine(&stubOffers{}, Config{TaxRateBP: DefaultTaxRateBP})

	q, err := engine.Quote(context.Background(), hotel(100_000), checkIn.Add(15*time.Hour), checkIn.AddDate(0, 0, 1).Add(9*time.Hour), 1)
	require.NoError(t, err)
	require.Equal(t, 1, q.Nights)
	require.True(t, q.Start.Equal(checkIn))
}

func TestQuotePropagatesOfferErrors(t *testing.T) {
	boom := errors.New("offer store down")
	engine := NewEngine(&stubOffers{err: boom}, Config{TaxRateBP: DefaultTaxRateBP})

	_, err := engine.Quote(context.Background(), hotel(100_000), checkIn, checkIn.AddDate(0, 0, 1), 1)
	require.ErrorIs(t, err, boom)
}
