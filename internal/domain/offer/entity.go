package offer

import (
	"time"

	"github.com/google/uuid"
)

// Kind of discount
type Kind string

const (
	KindPercentage  Kind = "percentage"
	KindFixedAmount Kind = "fixed_amount"
)

func (k Kind) Valid() bool {
	return k == KindPercentage || k == KindFixedAmount
}

// Status of an offer's lifecycle
type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusActive    Status = "active"
	StatusPaused    Status = "paused"
	StatusExhausted Status = "exhausted"
	StatusExpired   Status = "expired"
)

// Offer is a promotional discount. StartsOn and EndsOn are both included in
// the validity window.
type Offer struct {
	ID          uuid.UUID   `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Kind        Kind        `json:"kind"`
	Value       int64       `json:"value"`
	StartsOn    time.Time   `json:"starts_on"`
	EndsOn      time.Time   `json:"ends_on"`
	ListingIDs  []uuid.UUID `json:"listing_ids"`
	MaxUses     int         `json:"max_uses"` // 0 = unlimited
	UseCount    int         `json:"use_count"`
	Status      Status      `json:"status"`
	PromoCode   string      `json:"promo_code"`
	CreatedBy   uuid.UUID   `json:"created_by"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// InWindow reports whether day falls inside the validity window.
func (o *Offer) InWindow(day time.Time) bool {
	return !day.Before(o.StartsOn) && !day.After(o.EndsOn)
}

// HasUsesLeft reports whether the use cap has not been reached.
func (o *Offer) HasUsesLeft() bool {
	return o.MaxUses == 0 || o.UseCount < o.MaxUses
}

// IsVigente reports whether the offer can be applied on day.
func (o *Offer) IsVigente(day time.Time) bool {
	return o.Status == StatusActive && o.InWindow(day) && o.HasUsesLeft()
}

// AppliesTo reports whether the offer covers a listing. An empty list covers all.
func (o *Offer) AppliesTo(listingID uuid.UUID) bool {
	if len(o.ListingIDs) == 0 {
		return true
	}
	for _, id := range o.ListingIDs {
		if id == listingID {
			return true
		}
	}
	return false
}

// Discount returns the amount taken off price. It never exceeds price.
func (o *Offer) Discount(price int64) int64 {
	if price <= 0 {
		return 0
	}
	var d int64
	switch o.Kind {
	case KindPercentage:
		d = price * o.Value / 100
	case KindFixedAmount:
		d = o.Value
	}
	if d > price {
		d = price
	}
	if d < 0 {
		d = 0
	}
	return d
}

// recordUse counts one redemption and flips to exhausted at the cap.
func (o *Offer) recordUse(now time.Time) {
	o.UseCount++
	if o.MaxUses > 0 && o.UseCount >= o.MaxUses {
		o.Status = StatusExhausted
	}
	o.UpdatedAt = now
}

// refresh moves the offer along its calendar. It reports whether the status
// changed.
func (o *Offer) refresh(today, now time.Time) bool {
	next := o.Status
	switch o.Status {
	case StatusScheduled:
		if today.After(o.EndsOn) {
			next = StatusExpired
		} else if !today.Before(o.StartsOn) {
			next = StatusActive
		}
	case StatusActive, StatusPaused:
		if today.After(o.EndsOn) {
			next = StatusExpired
		}
	}
	if next == o.Status {
		return false
	}
	o.Status = next
	o.UpdatedAt = now
	return true
}

// ListFilter narrows offer listings. Zero values are ignored.
type ListFilter struct {
	Status    Status
	ListingID uuid.UUID
}
