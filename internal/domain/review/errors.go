package review

import "github.com/bookyourstay/stay-api/internal/pkg/apperr"

var (
	ErrReviewNotFound          = apperr.New(apperr.KindNotFound, "REVIEW_NOT_FOUND", "review not found")
	ErrReservationNotCompleted = apperr.New(apperr.KindState, "RESERVATION_NOT_COMPLETED", "only completed stays can be reviewed")
	ErrNotReservationGuest     = apperr.New(apperr.KindPolicyViolation, "NOT_RESERVATION_GUEST", "only the guest of the stay can review it")
	ErrListingMismatch         = apperr.New(apperr.KindValidation, "LISTING_MISMATCH", "reservation does not belong to this listing")
	ErrInvalidRating           = apperr.New(apperr.KindValidation, "INVALID_RATING", "rating must be between 1 and 5")
	ErrInvalidComment          = apperr.New(apperr.KindValidation, "INVALID_COMMENT", "comment must have between 20 and 500 characters")
	ErrDuplicateReview         = apperr.New(apperr.KindPolicyViolation, "DUPLICATE_REVIEW", "this stay has already been reviewed")
	ErrAlreadyResponded        = apperr.New(apperr.KindState, "REVIEW_ALREADY_RESPONDED", "review already has a response")
	ErrEmptyResponse           = apperr.New(apperr.KindValidation, "EMPTY_RESPONSE", "response cannot be empty")
	ErrReviewLocked            = apperr.New(apperr.KindState, "REVIEW_LOCKED", "verified reviews cannot be edited")
	ErrNotReviewAuthor         = apperr.New(apperr.KindPolicyViolation, "NOT_REVIEW_AUTHOR", "review belongs to another guest")
	ErrTooManyPhotos           = apperr.New(apperr.KindPolicyViolation, "TOO_MANY_PHOTOS", "a review can have at most 5 photos")
)
