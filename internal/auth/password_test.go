package auth

import (
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestHashAndVerify(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost)

	hash, err := h.Hash("correct horse battery staple")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if !h.Verify("correct horse battery staple", hash) {
		t.Fatal("expected password to verify against its own hash")
	}
	if h.Verify("wrong password", hash) {
		t.Fatal("expected wrong password to fail verification")
	}
}

func TestHashIsSaltedPerCall(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost)

	h1, err := h.Hash("same password")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	h2, err := h.Hash("same password")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if h1 == h2 {
		t.Fatal("two hashes of the same password must differ")
	}
	if !h.Verify("same password", h1) || !h.Verify("same password", h2) {
		t.Fatal("both hashes must verify against the password")
	}
}

func TestVerifyMalformedHashIsJustFalse(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost)

	for _, malformed := range []string{"", "not-a-bcrypt-hash", "$2a$xx$garbage"} {
		if h.Verify("anything", malformed) {
			t.Fatalf("malformed hash %q must not verify", malformed)
		}
	}
}

func TestHasherClampsInvalidCost(t *testing.T) {
	h := NewPasswordHasher(1000)

	hash, err := h.Hash("pw")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	cost, err := bcrypt.Cost([]byte(hash))
	if err != nil {
		t.Fatalf("Cost: %v", err)
	}
	if cost != bcrypt.DefaultCost {
		t.Fatalf("expected default cost %d, got %d", bcrypt.DefaultCost, cost)
	}
}
