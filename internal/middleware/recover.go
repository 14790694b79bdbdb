package middleware

import (
	"errors"
	"net/http"
	"runtime/debug"

	"github.com/google/uuid"

	"github.com/bookyourstay/stay-api/internal/pkg/logger"
	"github.com/bookyourstay/stay-api/internal/pkg/response"
)

// Recover turns a handler panic into a 500 envelope. http.ErrAbortHandler
// is re-raised so net/http can drop the connection quietly.
func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if err, ok := rec.(error); ok && errors.Is(err, http.ErrAbortHandler) {
				panic(rec)
			}

			event := logger.FromContext(r.Context()).Error().
				Interface("panic", rec).
				Bytes("stack", debug.Stack()).
				Str("method", r.Method).
				Str("path", r.URL.Path)
			if t := traceFrom(r.Context()); t != nil && t.accountID != uuid.Nil {
				event = event.Str("account_id", t.accountID.String())
			}
			event.Msg("Panic recovered")

			response.InternalError(w)
		}()

		next.ServeHTTP(w, r)
	})
}
