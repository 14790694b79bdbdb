// Package pricing computes the price of a stay: nightly lodging, the fixed
// fees of the listing subtype, the best vigente offer and tax.
//
// All amounts are whole pesos and every division floors:
//
//	subtotal = rate*nights + fees
//	tax      = (subtotal - discount) * taxBP / 10000
//	total    = subtotal - discount + tax
//
// The engine never records offer use; reservations redeem the chosen offer
// together with the wallet debit.
package pricing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/bookyourstay/stay-api/internal/domain/listing"
	"github.com/bookyourstay/stay-api/internal/domain/offer"
	"github.com/bookyourstay/stay-api/internal/pkg/clock"
)

// DefaultTaxRateBP is 19% in basis points.
const DefaultTaxRateBP int64 = 1900

// Offers picks the best discount for a listing.
type Offers interface {
	Best(ctx context.Context, listingID uuid.UUID, price int64) (*offer.Offer, int64, error)
}

type Config struct {
	TaxRateBP int64
}

// Quote is the itemized price of a stay.
type Quote struct {
	ListingID   uuid.UUID  `json:"listing_id"`
	Start       time.Time  `json:"start"`
	End         time.Time  `json:"end"`
	Nights      int        `json:"nights"`
	Guests      int        `json:"guests"`
	NightlyRate int64      `json:"nightly_rate"`
	Lodging     int64      `json:"lodging"`
	Fees        []Fee      `json:"fees"`
	Subtotal    int64      `json:"subtotal"`
	OfferID     *uuid.UUID `json:"offer_id,omitempty"`
	OfferName   string     `json:"offer_name,omitempty"`
	Discount    int64      `json:"discount"`
	TaxRateBP   int64      `json:"tax_rate_bp"`
	Tax         int64      `json:"tax"`
	Total       int64      `json:"total"`
}

type Engine struct {
	offers Offers
	cfg    Config
}

func NewEngine(offers Offers, cfg Config) *Engine {
	if offers == nil {
		panic("pricing: nil dependency")
	}
	if cfg.TaxRateBP < 0 {
		cfg.TaxRateBP = DefaultTaxRateBP
	}
	return &Engine{offers: offers, cfg: cfg}
}

// Nights counts the nights between two stay dates.
func Nights(start, end time.Time) int {
	return clock.DaysBetween(start, end)
}

// Quote prices a stay at l for guests from start to end.
func (e *Engine) Quote(ctx context.Context, l *listing.Listing, start, end time.Time, guests int) (*Quote, error) {
	start, end = clock.Date(start), clock.Date(end)
	nights := Nights(start, end)
	if nights <= 0 {
		return nil, ErrInvalidDates
	}
	if !l.Accommodates(guests) {
		return nil, ErrCapacityExceeded.Withf("listing hosts 1 to %d guests, got %d", l.MaxGuests, guests)
	}

	fees, err := feeSchedule(l)
	if err != nil {
		return nil, err
	}

	q := &Quote{
		ListingID:   l.ID,
		Start:       start,
		End:         end,
		Nights:      nights,
		Guests:      guests,
		NightlyRate: l.NightlyRate,
		Lodging:     l.NightlyRate * int64(nights),
		Fees:        fees,
		TaxRateBP:   e.cfg.TaxRateBP,
	}
	q.Subtotal = q.Lodging
	for _, f := range fees {
		q.Subtotal += f.Amount
	}

	best, discount, err := e.offers.Best(ctx, l.ID, q.Subtotal)
	if err != nil {
		return nil, fmt.Errorf("select offer: %w", err)
	}
	if best != nil && discount > 0 {
		id := best.ID
		q.OfferID = &id
		q.OfferName = best.Name
		q.Discount = discount
	}

	taxable := q.Subtotal - q.Discount
	q.Tax = taxable * e.cfg.TaxRateBP / 10_000
	q.Total = taxable + q.Tax
	return q, nil
}
