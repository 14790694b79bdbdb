package storage

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 4, 4))); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func TestLocalStoragePutDelete(t *testing.T) {
	dir := t.TempDir()
	st, err := New(context.Background(), Config{Driver: DriverLocal, LocalPath: dir, LocalBaseURL: "http://localhost:8080/uploads/"})
	if err != nil {
		t.Fatalf("new storage: %v", err)
	}

	key := "reviews/r1/photo.png"
	if err := st.Put(context.Background(), key, bytes.NewReader([]byte("data")), "image/png"); err != nil {
		t.Fatalf("put: %v", err)
	}
	got, err := os.ReadFile(filepath.Join(dir, "reviews", "r1", "photo.png"))
	if err != nil || string(got) != "data" {
		t.Fatalf("stored file = %q, %v", got, err)
	}
	if url := st.URL(key); url != "http://localhost:8080/uploads/reviews/r1/photo.png" {
		t.Fatalf("unexpected url %q", url)
	}

	if err := st.Delete(context.Background(), key); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := st.Delete(context.Background(), key); err != nil {
		t.Fatalf("second delete should be a no-op, got %v", err)
	}
}

func TestLocalStorageRejectsEscapingKeys(t *testing.T) {
	st, err := NewLocalStorage(t.TempDir(), "")
	if err != nil {
		t.Fatalf("new storage: %v", err)
	}
	for _, key := range []string{"../outside.png", "a/../../b.png", ""} {
		if err := st.Put(context.Background(), key, strings.NewReader("x"), "image/png"); err == nil {
			t.Fatalf("expected key %q to be rejected", key)
		}
	}
}

func TestUnknownDriver(t *testing.T) {
	if _, err := New(context.Background(), Config{Driver: "ftp"}); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}

func TestReadImage(t *testing.T) {
	img := pngBytes(t)

	data, mime, err := ReadImage(bytes.NewReader(img), 0)
	if err != nil {
		t.Fatalf("read image: %v", err)
	}
	if mime != "image/png" || len(data) != len(img) || ExtensionFor(mime) != ".png" {
		t.Fatalf("unexpected result mime=%s len=%d", mime, len(data))
	}

	tests := []struct {
		name    string
		data    []byte
		max     int64
		wantErr error
	}{
		{"empty", nil, 0, ErrEmptyFile},
		{"too large", img, int64(len(img) - 1), ErrFileTooLarge},
		{"not an image", []byte("%PDF-1.4 hello"), 0, ErrInvalidMimeType},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := ReadImage(bytes.NewReader(tt.data), tt.max)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}
