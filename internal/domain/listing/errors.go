package listing

import "github.com/bookyourstay/stay-api/internal/pkg/apperr"

var (
	ErrListingNotFound   = apperr.New(apperr.KindNotFound, "LISTING_NOT_FOUND", "listing not found")
	ErrNotListingOwner   = apperr.New(apperr.KindPolicyViolation, "NOT_LISTING_OWNER", "you can only manage your own listings")
	ErrInvalidSubtype    = apperr.New(apperr.KindValidation, "INVALID_SUBTYPE", "subtype must be house, apartment or hotel")
	ErrInvalidRate       = apperr.New(apperr.KindValidation, "INVALID_RATE", "nightly rate must be greater than zero")
	ErrInvalidCapacity   = apperr.New(apperr.KindValidation, "INVALID_CAPACITY", "max guests must be greater than zero")
	ErrInvalidRating     = apperr.New(apperr.KindValidation, "INVALID_RATING", "rating must be between 0 and 5")
	ErrInvalidDateRange  = apperr.New(apperr.KindValidation, "INVALID_DATE_RANGE", "end date must be after start date")
	ErrHasFutureBookings = apperr.New(apperr.KindConflict, "LISTING_HAS_BOOKINGS", "listing has upcoming reservations")
)
