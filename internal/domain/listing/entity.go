package listing

import (
	"time"

	"github.com/google/uuid"
)

// Subtype is the closed set of lodging kinds
type Subtype string

const (
	SubtypeHouse     Subtype = "house"
	SubtypeApartment Subtype = "apartment"
	SubtypeHotel     Subtype = "hotel"
)

func (s Subtype) Valid() bool {
	switch s {
	case SubtypeHouse, SubtypeApartment, SubtypeHotel:
		return true
	}
	return false
}

// Listing is a bookable property
type Listing struct {
	ID          uuid.UUID `json:"id"`
	OwnerID     uuid.UUID `json:"owner_id"`
	Name        string    `json:"name"`
	City        string    `json:"city"`
	Description string    `json:"description"`
	Subtype     Subtype   `json:"subtype"`
	NightlyRate int64     `json:"nightly_rate"`
	MaxGuests   int       `json:"max_guests"`
	Amenities   []string  `json:"amenities"`

	// House only
	HasPool      bool `json:"has_pool"`
	AllowsEvents bool `json:"allows_events"`

	Available   bool    `json:"available"`
	Rating      float64 `json:"rating"`
	ReviewCount int     `json:"review_count"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Accommodates reports whether guests fit the listing.
func (l *Listing) Accommodates(guests int) bool {
	return guests >= 1 && guests <= l.MaxGuests
}

// Filter represents search filters. Zero values are ignored.
type Filter struct {
	City     string
	Subtype  Subtype
	Guests   int
	MaxRate  int64
	OwnerID  uuid.UUID
	Start    time.Time
	End      time.Time
	OnlyOpen bool
}

// Pagination for listing
type Pagination struct {
	Page  int
	Limit int
}
