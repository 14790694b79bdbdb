package response

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestNewMeta(t *testing.T) {
	tests := []struct {
		total, page, limit int
		want               Meta
	}{
		{45, 1, 20, Meta{Total: 45, Page: 1, Limit: 20, Pages: 3, HasNext: true}},
		{45, 3, 20, Meta{Total: 45, Page: 3, Limit: 20, Pages: 3, HasPrev: true}},
		{0, 1, 20, Meta{Total: 0, Page: 1, Limit: 20, Pages: 1}},
		{7, 1, 0, Meta{Total: 7, Page: 1, Limit: 7, Pages: 1}},
	}
	for _, tt := range tests {
		if got := NewMeta(tt.total, tt.page, tt.limit); got != tt.want {
			t.Fatalf("NewMeta(%d, %d, %d) = %+v, want %+v", tt.total, tt.page, tt.limit, got, tt.want)
		}
	}
}

func TestDecodeJSON(t *testing.T) {
	var v struct {
		Name string `json:"name"`
	}
	body := func(s string) io.ReadCloser { return io.NopCloser(strings.NewReader(s)) }

	if err := DecodeJSON(body(`{"name":"Casa"}`), &v); err != nil || v.Name != "Casa" {
		t.Fatalf("expected decode, got %v %+v", err, v)
	}
	if err := DecodeJSON(body(""), &v); !errors.Is(err, ErrEmptyBody) {
		t.Fatalf("expected ErrEmptyBody, got %v", err)
	}
	if err := DecodeJSON(body(`{"name":"a"} {"name":"b"}`), &v); err == nil {
		t.Fatal("expected trailing data to be rejected")
	}
	if err := DecodeJSON(body(`{"name":`), &v); err == nil {
		t.Fatal("expected malformed JSON error")
	}
}

func TestEnvelopes(t *testing.T) {
	rec := httptest.NewRecorder()
	ValidationError(rec, map[string]string{"guests": "must be at least 1"})

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
	var resp Response
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Success || resp.Error == nil || resp.Error.Code != "VALIDATION_ERROR" || resp.Error.Details["guests"] == "" {
		t.Fatalf("unexpected envelope %+v", resp)
	}

	rec = httptest.NewRecorder()
	OK(rec, map[string]int{"balance": 10})
	if !strings.Contains(rec.Body.String(), `"success":true`) || !strings.Contains(rec.Body.String(), `"balance":10`) {
		t.Fatalf("unexpected body %s", rec.Body.String())
	}
}
