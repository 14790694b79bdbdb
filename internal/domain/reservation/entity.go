package reservation

import (
	"time"

	"github.com/google/uuid"

	"github.com/bookyourstay/stay-api/internal/domain/pricing"
	"github.com/bookyourstay/stay-api/internal/pkg/clock"
)

// Status of a reservation
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
)

// transitions lists the legal moves out of each status. Cancelled and
// completed are terminal.
var transitions = map[Status][]Status{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCancelled, StatusCompleted},
}

// CanTransition reports whether a reservation may move from one status to another.
func CanTransition(from, to Status) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Holds reports whether the status blocks the listing's calendar.
func (s Status) Holds() bool {
	return s == StatusPending || s == StatusConfirmed
}

// Reservation is a booked date range on a listing. Start and End are
// calendar days; End is the check-out day and is not occupied.
type Reservation struct {
	ID        uuid.UUID `json:"id"`
	GuestID   uuid.UUID `json:"guest_id"`
	ListingID uuid.UUID `json:"listing_id"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	Guests    int       `json:"guests"`
	Status    Status    `json:"status"`

	NightlyRate int64         `json:"nightly_rate"`
	Lodging     int64         `json:"lodging"`
	Fees        []pricing.Fee `json:"fees,omitempty"`
	Subtotal    int64         `json:"subtotal"`
	Discount    int64         `json:"discount"`
	TaxRateBP   int64         `json:"tax_rate_bp"`
	Tax         int64         `json:"tax"`
	Total       int64         `json:"total"`
	OfferID     *uuid.UUID    `json:"offer_id,omitempty"`
	OfferName   string        `json:"offer_name,omitempty"`

	ConfirmationCode     string `json:"confirmation_code,omitempty"`
	PaymentCorrelationID string `json:"payment_correlation_id,omitempty"`
	Notes                string `json:"notes,omitempty"`
	RefundedAmount       int64  `json:"refunded_amount"`

	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	ConfirmedAt *time.Time `json:"confirmed_at,omitempty"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// Nights is the length of the stay.
func (r *Reservation) Nights() int {
	return clock.DaysBetween(r.Start, r.End)
}

// Overlaps reports whether r occupies any night of [start, end).
func (r *Reservation) Overlaps(start, end time.Time) bool {
	return Overlap(r.Start, r.End, start, end)
}

// Overlap is the half-open interval test: back-to-back stays do not overlap.
func Overlap(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// transition moves r to next, stamping the matching timestamp.
func (r *Reservation) transition(next Status, now time.Time) error {
	if !CanTransition(r.Status, next) {
		return ErrInvalidStateTransition.Withf("cannot move reservation from %s to %s", r.Status, next)
	}
	r.Status = next
	r.UpdatedAt = now
	switch next {
	case StatusConfirmed:
		r.ConfirmedAt = &now
	case StatusCancelled:
		r.CancelledAt = &now
	case StatusCompleted:
		r.CompletedAt = &now
	}
	return nil
}

// appendNote adds a line to the reservation notes.
func (r *Reservation) appendNote(note string) {
	if note == "" {
		return
	}
	if r.Notes != "" {
		r.Notes += "\n"
	}
	r.Notes += note
}

// CreateInput describes a booking request.
type CreateInput struct {
	ListingID uuid.UUID
	Start     time.Time
	End       time.Time
	Guests    int
	Notes     string
}

// applyQuote copies the priced breakdown onto r.
func (r *Reservation) applyQuote(q *pricing.Quote) {
	r.NightlyRate, r.Lodging, r.Fees = q.NightlyRate, q.Lodging, q.Fees
	r.Subtotal, r.Discount, r.TaxRateBP, r.Tax, r.Total = q.Subtotal, q.Discount, q.TaxRateBP, q.Tax, q.Total
	r.OfferID, r.OfferName = q.OfferID, q.OfferName
}
