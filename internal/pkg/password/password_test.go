package password

import (
	"errors"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestHashAndVerify(t *testing.T) {
	hash, err := Hash("correct horse battery", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	if hash == "correct horse battery" {
		t.Fatal("hash must not equal the plain password")
	}
	if !Verify("correct horse battery", hash) {
		t.Fatal("expected password to verify")
	}
	if Verify("wrong horse battery", hash) {
		t.Fatal("expected wrong password to be rejected")
	}
	if Verify("correct horse battery", "not-a-hash") {
		t.Fatal("expected garbage hash to be rejected")
	}
}

func TestHashRejectsOverlongPassword(t *testing.T) {
	if _, err := Hash(strings.Repeat("a", 73), bcrypt.MinCost); !errors.Is(err, ErrTooLong) {
		t.Fatalf("expected ErrTooLong, got %v", err)
	}
}

func TestNeedsRehash(t *testing.T) {
	hash, err := Hash("secret-password", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}

	tests := []struct {
		name string
		hash string
		cost int
		want bool
	}{
		{"same cost", hash, bcrypt.MinCost, false},
		{"higher configured cost", hash, bcrypt.MinCost + 1, true},
		{"invalid cost means default", hash, 99, true},
		{"unparseable hash", "plain", bcrypt.MinCost, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NeedsRehash(tt.hash, tt.cost); got != tt.want {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
		})
	}
}
