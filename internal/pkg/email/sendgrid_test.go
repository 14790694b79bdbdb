package email

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestSendGridClientSendsAttachment(t *testing.T) {
	var got sendGridRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer key-123" {
			t.Errorf("unexpected auth header %q", r.Header.Get("Authorization"))
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode: %v", err)
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	c := NewSendGridClient(SendGridConfig{APIKey: "key-123", FromEmail: "no-reply@test", Endpoint: srv.URL})
	err := c.Send(context.Background(), &EmailMessage{
		To:          "guest@test",
		Subject:     "Reserva confirmada",
		TextContent: "hola",
		HTMLContent: "<p>hola</p>",
		Attachments: []Attachment{{Filename: "code.txt", ContentType: "text/plain", Content: []byte("ABC123")}},
	})
	if err != nil {
		t.Fatalf("send failed: %v", err)
	}

	if len(got.Content) != 2 || got.Content[0].Type != "text/plain" {
		t.Fatalf("unexpected content %+v", got.Content)
	}
	if len(got.Attachments) != 1 || got.Attachments[0].Content != "QUJDMTIz" {
		t.Fatalf("unexpected attachments %+v", got.Attachments)
	}
}

func TestSendGridClientReportsHTTPFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	c := NewSendGridClient(SendGridConfig{Endpoint: srv.URL})
	if err := c.Send(context.Background(), &EmailMessage{To: "x@test"}); err == nil {
		t.Fatal("expected error for 400 response")
	}
}

func TestRenderNoticeEscapesBody(t *testing.T) {
	html, err := RenderNotice("Ana", "Reserva", "<script>x</script>")
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if strings.Contains(html, "<script>") {
		t.Fatal("body must be escaped")
	}
	if !strings.Contains(html, "Hola Ana") {
		t.Fatal("expected greeting in output")
	}
}
