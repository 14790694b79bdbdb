package wallet_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/bookyourstay/stay-api/internal/domain/wallet"
	"github.com/bookyourstay/stay-api/internal/middleware"
	"github.com/bookyourstay/stay-api/internal/pkg/jwt"
)

type walletAPIResponse struct {
	Success bool `json:"success"`
	Data    struct {
		Balance       int64  `json:"balance"`
		CorrelationID string `json:"correlation_id"`
	} `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func TestWalletEndpoints(t *testing.T) {
	svc := newTestService(t)
	guest, friend := uuid.New(), uuid.New()
	if _, err := svc.Open(t.Context(), guest); err != nil {
		t.Fatalf("open guest wallet: %v", err)
	}
	if _, err := svc.Open(t.Context(), friend); err != nil {
		t.Fatalf("open friend wallet: %v", err)
	}

	jwtSvc := jwt.NewService("wallet-handler-secret", time.Hour, 24*time.Hour)
	token, err := jwtSvc.GenerateAccessToken(guest, "guest", true)
	if err != nil {
		t.Fatalf("generate token failed: %v", err)
	}

	r := chi.NewRouter()
	r.Mount("/api/v1/wallet", wallet.NewHandler(svc).Routes(middleware.Auth(jwtSvc)))

	t.Run("GET / initial", func(t *testing.T) {
		resp := performWalletRequest(t, r, token, http.MethodGet, "/api/v1/wallet/", nil)
		if resp.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", resp.Code)
		}
		body := decodeWalletResponse(t, resp)
		if !body.Success || body.Data.Balance != 0 {
			t.Fatalf("expected balance=0, got %+v", body)
		}
	})

	t.Run("POST /recharge", func(t *testing.T) {
		resp := performWalletRequest(t, r, token, http.MethodPost, "/api/v1/wallet/recharge", map[string]interface{}{
			"amount": 500_000,
			"method": "card",
		})
		if resp.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", resp.Code)
		}
		if body := decodeWalletResponse(t, resp); body.Data.Balance != 500_000 {
			t.Fatalf("expected balance=500000, got %d", body.Data.Balance)
		}
	})

	t.Run("POST /recharge validation", func(t *testing.T) {
		resp := performWalletRequest(t, r, token, http.MethodPost, "/api/v1/wallet/recharge", map[string]interface{}{
			"amount": 0,
			"method": "bitcoin",
		})
		if resp.Code != http.StatusUnprocessableEntity {
			t.Fatalf("expected 422, got %d", resp.Code)
		}
	})

	t.Run("POST /recharge over limit", func(t *testing.T) {
		resp := performWalletRequest(t, r, token, http.MethodPost, "/api/v1/wallet/recharge", map[string]interface{}{
			"amount": 20_000_000,
			"method": "card",
		})
		if resp.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", resp.Code)
		}
		if body := decodeWalletResponse(t, resp); body.Error == nil || body.Error.Code != "RECHARGE_LIMIT_EXCEEDED" {
			t.Fatalf("unexpected error body %+v", body.Error)
		}
	})

	t.Run("POST /transfer", func(t *testing.T) {
		resp := performWalletRequest(t, r, token, http.MethodPost, "/api/v1/wallet/transfer", map[string]interface{}{
			"to_account_id": friend.String(),
			"amount":        100_000,
			"reason":        "split",
		})
		if resp.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", resp.Code)
		}
		body := decodeWalletResponse(t, resp)
		if body.Data.Balance != 400_000 || body.Data.CorrelationID == "" {
			t.Fatalf("unexpected transfer body %+v", body.Data)
		}
	})

	t.Run("POST /transfer insufficient", func(t *testing.T) {
		resp := performWalletRequest(t, r, token, http.MethodPost, "/api/v1/wallet/transfer", map[string]interface{}{
			"to_account_id": friend.String(),
			"amount":        900_000,
		})
		if resp.Code != http.StatusPaymentRequired {
			t.Fatalf("expected 402, got %d", resp.Code)
		}
	})

	t.Run("GET /transactions", func(t *testing.T) {
		resp := performWalletRequest(t, r, token, http.MethodGet, "/api/v1/wallet/transactions?type=TRANSFER_OUT", nil)
		if resp.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", resp.Code)
		}
		var body struct {
			Data []wallet.Transaction `json:"data"`
			Meta struct {
				Total int `json:"total"`
			} `json:"meta"`
		}
		if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if body.Meta.Total != 1 || len(body.Data) != 1 || body.Data[0].Amount != -100_000 {
			t.Fatalf("unexpected transactions %+v", body)
		}
	})

	t.Run("PATCH /{id}/active requires admin", func(t *testing.T) {
		resp := performWalletRequest(t, r, token, http.MethodPatch, "/api/v1/wallet/"+uuid.NewString()+"/active", map[string]interface{}{"active": false})
		if resp.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", resp.Code)
		}
	})

	t.Run("missing token", func(t *testing.T) {
		resp := performWalletRequest(t, r, "", http.MethodGet, "/api/v1/wallet/", nil)
		if resp.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", resp.Code)
		}
	})
}

func performWalletRequest(t *testing.T, h http.Handler, token, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeWalletResponse(t *testing.T, rec *httptest.ResponseRecorder) walletAPIResponse {
	t.Helper()
	var resp walletAPIResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response failed: %v; body=%s", err, rec.Body.String())
	}
	return resp
}
