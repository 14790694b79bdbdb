package account

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/bookyourstay/stay-api/internal/middleware"
)

func newAuthRouter(t *testing.T) (http.Handler, fixture) {
	t.Helper()
	f := newFixture(t)
	r := chi.NewRouter()
	r.Mount("/api/v1/auth", NewHandler(f.svc).Routes(middleware.Auth(f.svc.jwtService)))
	return r, f
}

func postJSON(t *testing.T, h http.Handler, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestAuthHandlers(t *testing.T) {
	r, _ := newAuthRouter(t)

	w := postJSON(t, r, "/api/v1/auth/register", "", map[string]string{
		"email": "guest@example.com", "name": "Guest", "password": "password123", "role": "guest",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d (%s)", w.Code, w.Body.String())
	}
	var reg struct {
		Data AuthResponse `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &reg); err != nil {
		t.Fatalf("decode register: %v", err)
	}

	tests := []struct {
		name string
		path string
		body interface{}
		want int
	}{
		{"register duplicate", "/api/v1/auth/register", map[string]string{"email": "guest@example.com", "name": "Guest", "password": "password123", "role": "guest"}, http.StatusConflict},
		{"register invalid role", "/api/v1/auth/register", map[string]string{"email": "x@example.com", "name": "X", "password": "password123", "role": "admin"}, http.StatusUnprocessableEntity},
		{"login ok", "/api/v1/auth/login", map[string]string{"email": "guest@example.com", "password": "password123"}, http.StatusOK},
		{"login wrong password", "/api/v1/auth/login", map[string]string{"email": "guest@example.com", "password": "wrong-password"}, http.StatusUnauthorized},
		{"refresh garbage", "/api/v1/auth/refresh", map[string]string{"refresh_token": "nope"}, http.StatusUnauthorized},
		{"refresh ok", "/api/v1/auth/refresh", map[string]string{"refresh_token": reg.Data.Tokens.RefreshToken}, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := postJSON(t, r, tt.path, "", tt.body).Code; got != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, got)
			}
		})
	}

	t.Run("me", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
		req.Header.Set("Authorization", "Bearer "+reg.Data.Tokens.AccessToken)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "guest@example.com") {
			t.Fatalf("unexpected me response %d %s", w.Code, w.Body.String())
		}
	})

	t.Run("set active requires admin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPatch, "/api/v1/auth/accounts/"+reg.Data.Account.ID.String()+"/active", strings.NewReader(`{"active":false}`))
		req.Header.Set("Authorization", "Bearer "+reg.Data.Tokens.AccessToken)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", w.Code)
		}
	})
}
