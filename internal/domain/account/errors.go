package account

import "github.com/bookyourstay/stay-api/internal/pkg/apperr"

var (
	ErrEmailAlreadyExists  = apperr.New(apperr.KindConflict, "EMAIL_EXISTS", "email already registered")
	ErrInvalidCredentials  = apperr.New(apperr.KindValidation, "INVALID_CREDENTIALS", "invalid email or password")
	ErrInvalidRole         = apperr.New(apperr.KindValidation, "INVALID_ROLE", "role must be 'guest' or 'owner'")
	ErrInvalidRefreshToken = apperr.New(apperr.KindValidation, "INVALID_REFRESH_TOKEN", "invalid or expired refresh token")
	ErrAccountNotFound     = apperr.New(apperr.KindNotFound, "ACCOUNT_NOT_FOUND", "account not found")
	ErrAccountInactive     = apperr.New(apperr.KindPolicyViolation, "ACCOUNT_INACTIVE", "account is inactive")
)
