package errorhandler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/bookyourstay/stay-api/internal/pkg/apperr"
	"github.com/bookyourstay/stay-api/internal/pkg/logger"
	"github.com/bookyourstay/stay-api/internal/pkg/response"
)

// StatusFor maps an error kind onto an HTTP status.
func StatusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindState, apperr.KindConflict:
		return http.StatusConflict
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindInsufficientFunds:
		return http.StatusPaymentRequired
	case apperr.KindWalletInactive:
		return http.StatusForbidden
	case apperr.KindPolicyViolation:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// HandleDomainError writes a typed business error, or a 500 for anything else.
func HandleDomainError(ctx context.Context, w http.ResponseWriter, err error) {
	var appErr *apperr.Error
	if !errors.As(err, &appErr) {
		HandleError(ctx, w, http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred", err)
		return
	}

	status := StatusFor(appErr.Kind)
	logger.FromContext(ctx).Warn().
		Str("error_kind", string(appErr.Kind)).
		Str("error_code", apperr.CodeOf(err)).
		Int("status_code", status).
		Msg(appErr.Error())

	response.Error(w, status, apperr.CodeOf(err), appErr.Error())
}

// HandleError logs err with request context and sends a formatted error response
func HandleError(ctx context.Context, w http.ResponseWriter, status int, code, message string, err error) {
	event := logger.FromContext(ctx).Error().
		Str("error_code", code).
		Str("error_message", message).
		Int("status_code", status)

	if err != nil {
		event.Err(err)
	}

	event.Msg("Request error")

	response.Error(w, status, code, message)
}

// HandleValidation logs field errors and sends a 422 response
func HandleValidation(ctx context.Context, w http.ResponseWriter, fieldErrors map[string]string) {
	errJSON, _ := json.Marshal(fieldErrors)
	logger.FromContext(ctx).Warn().
		RawJSON("validation_errors", errJSON).
		Msg("Validation error")

	response.ValidationError(w, fieldErrors)
}
