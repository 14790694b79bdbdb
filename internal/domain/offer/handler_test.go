package offer

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/bookyourstay/stay-api/internal/middleware"
	"github.com/bookyourstay/stay-api/internal/pkg/jwt"
)

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code string `json:"code"`
	} `json:"error"`
}

func call(t *testing.T, h http.Handler, token, method, path string, body interface{}) (int, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return rec.Code, env
}

func TestOfferEndpoints(t *testing.T) {
	svc, _ := newTestService(t)
	jwtSvc := jwt.NewService("offer-handler-secret", time.Hour, 24*time.Hour)
	adminToken, err := jwtSvc.GenerateAccessToken(uuid.New(), "admin", true)
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	guestToken, err := jwtSvc.GenerateAccessToken(uuid.New(), "guest", true)
	if err != nil {
		t.Fatalf("token: %v", err)
	}

	r := chi.NewRouter()
	r.Mount("/offers", NewHandler(svc).Routes(middleware.Auth(jwtSvc)))

	listingID := uuid.New()
	var created Offer

	t.Run("POST is admin only", func(t *testing.T) {
		code, _ := call(t, r, guestToken, http.MethodPost, "/offers/", map[string]interface{}{
			"name": "Temporada Baja", "kind": "percentage", "value": 10,
			"starts_on": day(0), "ends_on": day(30),
		})
		if code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", code)
		}
	})

	t.Run("POST validates kind and dates", func(t *testing.T) {
		code, _ := call(t, r, adminToken, http.MethodPost, "/offers/", map[string]interface{}{
			"name": "Temporada Baja", "kind": "bogo", "value": 10,
			"starts_on": "mañana", "ends_on": day(30),
		})
		if code != http.StatusUnprocessableEntity {
			t.Fatalf("expected 422, got %d", code)
		}
	})

	t.Run("POST creates with promo code", func(t *testing.T) {
		code, env := call(t, r, adminToken, http.MethodPost, "/offers/", map[string]interface{}{
			"name": "Temporada Baja", "kind": "percentage", "value": 10,
			"starts_on": day(0), "ends_on": day(30), "max_uses": 1,
			"listing_ids": []string{listingID.String()},
		})
		if code != http.StatusCreated {
			t.Fatalf("expected 201, got %d", code)
		}
		if err := json.Unmarshal(env.Data, &created); err != nil {
			t.Fatalf("decode offer: %v", err)
		}
		if created.Status != StatusActive || created.PromoCode == "" {
			t.Fatalf("unexpected offer %+v", created)
		}
	})

	t.Run("POST duplicate name conflicts", func(t *testing.T) {
		code, env := call(t, r, adminToken, http.MethodPost, "/offers/", map[string]interface{}{
			"name": "Temporada Baja", "kind": "fixed_amount", "value": 5000,
			"starts_on": day(0), "ends_on": day(30),
		})
		if code != http.StatusConflict || env.Error.Code != "OFFER_NAME_TAKEN" {
			t.Fatalf("expected 409 OFFER_NAME_TAKEN, got %d %+v", code, env.Error)
		}
	})

	t.Run("GET by id and code", func(t *testing.T) {
		if code, _ := call(t, r, "", http.MethodGet, "/offers/"+created.ID.String(), nil); code != http.StatusOK {
			t.Fatalf("expected 200, got %d", code)
		}
		code, env := call(t, r, "", http.MethodGet, "/offers/code/"+created.PromoCode, nil)
		if code != http.StatusOK {
			t.Fatalf("expected 200, got %d", code)
		}
		var byCode Offer
		if err := json.Unmarshal(env.Data, &byCode); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if byCode.ID != created.ID {
			t.Fatalf("code lookup returned %s", byCode.ID)
		}
	})

	t.Run("PATCH status pauses and blocks apply", func(t *testing.T) {
		path := "/offers/" + created.ID.String()
		if code, _ := call(t, r, adminToken, http.MethodPatch, path+"/status", map[string]string{"status": "paused"}); code != http.StatusOK {
			t.Fatalf("pause: expected 200, got %d", code)
		}
		code, env := call(t, r, guestToken, http.MethodPost, path+"/apply", map[string]interface{}{
			"listing_id": listingID.String(), "price": 357000,
		})
		if code != http.StatusUnprocessableEntity || env.Error.Code != "OFFER_NOT_VIGENTE" {
			t.Fatalf("expected 422 OFFER_NOT_VIGENTE, got %d %+v", code, env.Error)
		}
		if code, _ := call(t, r, adminToken, http.MethodPatch, path+"/status", map[string]string{"status": "active"}); code != http.StatusOK {
			t.Fatalf("resume: expected 200, got %d", code)
		}
	})

	t.Run("POST apply discounts, records use, then exhausts", func(t *testing.T) {
		path := "/offers/" + created.ID.String() + "/apply"
		if code, env := call(t, r, guestToken, http.MethodPost, path, map[string]interface{}{
			"listing_id": uuid.NewString(), "price": 357000,
		}); code != http.StatusUnprocessableEntity || env.Error.Code != "OFFER_NOT_APPLICABLE" {
			t.Fatalf("expected 422 OFFER_NOT_APPLICABLE, got %d %+v", code, env.Error)
		}

		code, env := call(t, r, guestToken, http.MethodPost, path, map[string]interface{}{
			"listing_id": listingID.String(), "price": 357000,
		})
		if code != http.StatusOK {
			t.Fatalf("expected 200, got %d", code)
		}
		var applied ApplyOfferResponse
		if err := json.Unmarshal(env.Data, &applied); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if applied.Discount != 35700 || applied.FinalPrice != 321300 || applied.UsesLeft == nil || *applied.UsesLeft != 0 {
			t.Fatalf("unexpected apply result %+v", applied)
		}

		code, env = call(t, r, guestToken, http.MethodPost, path, map[string]interface{}{
			"listing_id": listingID.String(), "price": 357000,
		})
		if code != http.StatusUnprocessableEntity || env.Error.Code != "OFFER_EXHAUSTED" {
			t.Fatalf("expected 422 OFFER_EXHAUSTED, got %d %+v", code, env.Error)
		}
	})

	t.Run("GET list filters by status", func(t *testing.T) {
		code, env := call(t, r, "", http.MethodGet, "/offers/?status=exhausted", nil)
		if code != http.StatusOK {
			t.Fatalf("expected 200, got %d", code)
		}
		var offers []Offer
		if err := json.Unmarshal(env.Data, &offers); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if len(offers) != 1 || offers[0].ID != created.ID {
			t.Fatalf("expected the exhausted offer, got %+v", offers)
		}
	})
}
