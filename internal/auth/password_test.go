package auth

import (
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasher(t *testing.T) {
	h, err := NewBcryptHasher(bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hasher: %v", err)
	}

	hash, err := h.Hash("correct horse")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hash == "correct horse" {
		t.Fatalf("hash must not equal plaintext")
	}
	if !h.Compare(hash, "correct horse") {
		t.Fatalf("expected match")
	}
	if h.Compare(hash, "battery staple") {
		t.Fatalf("expected mismatch")
	}
	h.CompareDummy("anything")
}

func TestNewBcryptHasher_RejectsBadCost(t *testing.T) {
	if _, err := NewBcryptHasher(bcrypt.MaxCost + 1); err == nil {
		t.Fatalf("expected error")
	}
}
