package credential

import (
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestHashAndVerify(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)

	first, err := h.Hash("password123")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	second, err := h.Hash("password123")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if first == second {
		t.Fatal("expected salted hashes to differ")
	}
	if strings.Contains(first, "password123") {
		t.Fatal("hash must not contain the plaintext")
	}

	for _, hash := range []string{first, second} {
		if !h.Verify("password123", hash) {
			t.Fatal("expected password to verify")
		}
	}
	if h.Verify("password124", first) {
		t.Fatal("expected wrong password to fail")
	}
}

func TestVerifyMalformedHash(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)
	for _, hash := range []string{"", "not-a-hash", "$2a$04$short"} {
		if h.Verify("password123", hash) {
			t.Fatalf("expected malformed hash %q to fail", hash)
		}
	}
}

func TestNewHasherClampsCost(t *testing.T) {
	if got := NewHasher(0).cost; got != bcrypt.DefaultCost {
		t.Fatalf("expected default cost, got %d", got)
	}
	if got := NewHasher(bcrypt.MaxCost + 1).cost; got != bcrypt.DefaultCost {
		t.Fatalf("expected default cost, got %d", got)
	}
}
