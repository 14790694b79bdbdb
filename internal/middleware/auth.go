package middleware

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/bookyourstay/stay-api/internal/pkg/jwt"
	"github.com/bookyourstay/stay-api/internal/pkg/response"
)

type callerKey struct{}

type caller struct {
	accountID uuid.UUID
	role      string
}

// Auth requires a valid access token and puts the caller on the context.
// Tokens of deactivated accounts are refused with 403.
func Auth(jwtService *jwt.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, msg := bearerToken(r)
			if msg != "" {
				response.Unauthorized(w, msg)
				return
			}

			claims, err := jwtService.ValidateAccessToken(raw)
			switch {
			case errors.Is(err, jwt.ErrExpiredToken):
				response.Unauthorized(w, "Token expired")
				return
			case err != nil:
				response.Unauthorized(w, "Invalid token")
				return
			case !claims.Active:
				response.Forbidden(w, "Your account is inactive")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithAccount(r.Context(), claims.AccountID, claims.Role)))
		})
	}
}

func bearerToken(r *http.Request) (string, string) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", "Missing authorization header"
	}
	scheme, token, ok := strings.Cut(header, " ")
	token = strings.TrimSpace(token)
	if !ok || !strings.EqualFold(scheme, "bearer") || token == "" || strings.Contains(token, " ") {
		return "", "Invalid authorization header format"
	}
	return token, ""
}

// WithAccount stores the caller identity in ctx.
func WithAccount(ctx context.Context, accountID uuid.UUID, role string) context.Context {
	if t := traceFrom(ctx); t != nil {
		t.accountID, t.role = accountID, role
	}
	return context.WithValue(ctx, callerKey{}, caller{accountID: accountID, role: role})
}

// GetAccountID returns the authenticated account, or uuid.Nil.
func GetAccountID(ctx context.Context) uuid.UUID {
	c, _ := ctx.Value(callerKey{}).(caller)
	return c.accountID
}

func GetRole(ctx context.Context) string {
	c, _ := ctx.Value(callerKey{}).(caller)
	return c.role
}

// RequireRole lets through callers holding one of roles.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !slices.Contains(roles, GetRole(r.Context())) {
				response.Forbidden(w, "Insufficient permissions")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireOwner allows listing owners and admins.
func RequireOwner() func(http.Handler) http.Handler {
	return RequireRole("owner", "admin")
}

func RequireAdmin() func(http.Handler) http.Handler {
	return RequireRole("admin")
}
