package pricing

import "github.com/bookyourstay/stay-api/internal/pkg/apperr"

var (
	ErrInvalidDates     = apperr.New(apperr.KindValidation, "INVALID_DATES", "check-out must be at least one night after check-in")
	ErrCapacityExceeded = apperr.New(apperr.KindValidation, "CAPACITY_EXCEEDED", "guest count is outside the listing capacity")
	ErrUnknownSubtype   = apperr.New(apperr.KindValidation, "UNKNOWN_SUBTYPE", "listing subtype has no fee schedule")
)
