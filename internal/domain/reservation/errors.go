package reservation

import "github.com/bookyourstay/stay-api/internal/pkg/apperr"

var (
	ErrReservationNotFound    = apperr.New(apperr.KindNotFound, "RESERVATION_NOT_FOUND", "reservation not found")
	ErrInvalidStateTransition = apperr.New(apperr.KindState, "INVALID_STATE_TRANSITION", "reservation cannot change to that status")
	ErrStartInPast            = apperr.New(apperr.KindValidation, "START_IN_PAST", "check-in cannot be in the past")
	ErrListingUnavailable     = apperr.New(apperr.KindConflict, "LISTING_UNAVAILABLE", "listing is already booked for those dates")
	ErrListingClosed          = apperr.New(apperr.KindConflict, "LISTING_CLOSED", "listing is not accepting reservations")
	ErrInsufficientFunds      = apperr.New(apperr.KindInsufficientFunds, "INSUFFICIENT_FUNDS", "wallet balance does not cover the reservation total")
	ErrAccountInactive        = apperr.New(apperr.KindPolicyViolation, "ACCOUNT_INACTIVE", "inactive accounts cannot book")
	ErrTooLateToCancel        = apperr.New(apperr.KindPolicyViolation, "TOO_LATE_TO_CANCEL", "reservations cannot be cancelled this close to check-in")
	ErrStayNotEnded           = apperr.New(apperr.KindState, "STAY_NOT_ENDED", "reservation cannot be completed before its check-out day")
	ErrNotReservationParty    = apperr.New(apperr.KindPolicyViolation, "NOT_RESERVATION_PARTY", "reservation belongs to another account")
)
