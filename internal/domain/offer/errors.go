package offer

import "github.com/bookyourstay/stay-api/internal/pkg/apperr"

var (
	ErrOfferNotFound       = apperr.New(apperr.KindNotFound, "OFFER_NOT_FOUND", "offer not found")
	ErrOfferNameTaken      = apperr.New(apperr.KindConflict, "OFFER_NAME_TAKEN", "an offer with this name already exists")
	ErrInvalidKind         = apperr.New(apperr.KindValidation, "INVALID_OFFER_KIND", "kind must be percentage or fixed_amount")
	ErrInvalidValue        = apperr.New(apperr.KindValidation, "INVALID_OFFER_VALUE", "discount value must be positive and a percentage at most 100")
	ErrInvalidWindow       = apperr.New(apperr.KindValidation, "INVALID_OFFER_WINDOW", "offer must start on or before its end date")
	ErrStartInPast         = apperr.New(apperr.KindValidation, "OFFER_START_IN_PAST", "offer cannot start in the past")
	ErrInvalidMaxUses      = apperr.New(apperr.KindValidation, "INVALID_MAX_USES", "max uses cannot be negative or below current uses")
	ErrInvalidListingID    = apperr.New(apperr.KindValidation, "INVALID_LISTING_ID", "invalid listing id")
	ErrInvalidPrice        = apperr.New(apperr.KindValidation, "INVALID_PRICE", "price must be greater than zero")
	ErrInvalidStatusChange = apperr.New(apperr.KindState, "INVALID_OFFER_STATUS_CHANGE", "offer status cannot change this way")
	ErrOfferNotVigente     = apperr.New(apperr.KindPolicyViolation, "OFFER_NOT_VIGENTE", "offer is not currently valid")
	ErrOfferExhausted      = apperr.New(apperr.KindPolicyViolation, "OFFER_EXHAUSTED", "offer has no uses left")
	ErrOfferNotApplicable  = apperr.New(apperr.KindPolicyViolation, "OFFER_NOT_APPLICABLE", "offer does not apply to this listing")
)
