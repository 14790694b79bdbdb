package stats

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/bookyourstay/stay-api/internal/middleware"
	"github.com/bookyourstay/stay-api/internal/pkg/clock"
	"github.com/bookyourstay/stay-api/internal/pkg/jwt"
)

func TestStatsEndpoints(t *testing.T) {
	svc, _ := fixture()
	jwtSvc := jwt.NewService("stats-handler-secret", time.Hour, 24*time.Hour)
	adminToken, _ := jwtSvc.GenerateAccessToken(uuid.New(), "admin", true)
	ownerToken, _ := jwtSvc.GenerateAccessToken(uuid.New(), "owner", true)

	r := chi.NewRouter()
	r.Mount("/stats", NewHandler(svc, clock.NewFake(day(11, 20))).Routes(middleware.Auth(jwtSvc)))

	get := func(path, token string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		return rec
	}

	tests := []struct {
		name  string
		path  string
		token string
		want  int
	}{
		{"no token", "/stats/occupancy", "", http.StatusUnauthorized},
		{"not admin", "/stats/occupancy", ownerToken, http.StatusForbidden},
		{"occupancy default period", "/stats/occupancy", adminToken, http.StatusOK},
		{"occupancy explicit period", "/stats/occupancy?from=2026-11-01&to=2026-12-01", adminToken, http.StatusOK},
		{"occupancy bad date", "/stats/occupancy?from=noviembre", adminToken, http.StatusBadRequest},
		{"occupancy reversed period", "/stats/occupancy?from=2026-12-01&to=2026-11-01", adminToken, http.StatusBadRequest},
		{"revenue", "/stats/revenue?from=2026-11-01&to=2026-12-01", adminToken, http.StatusOK},
		{"monthly", "/stats/monthly?year=2026", adminToken, http.StatusOK},
		{"monthly bad year", "/stats/monthly?year=26", adminToken, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if rec := get(tt.path, tt.token); rec.Code != tt.want {
				t.Fatalf("expected %d, got %d: %s", tt.want, rec.Code, rec.Body.String())
			}
		})
	}

	t.Run("monthly has twelve months", func(t *testing.T) {
		rec := get("/stats/monthly", adminToken)
		var env struct {
			Data []MonthRevenue `json:"data"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if len(env.Data) != 12 {
			t.Fatalf("expected 12 months, got %d", len(env.Data))
		}
	})
}
