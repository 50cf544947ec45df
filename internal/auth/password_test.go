package auth

import (
	"strings"
	"testing"
)

func TestHashPassword_VerifyRoundTrip(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}

	if !strings.HasPrefix(hash, "$2") {
		t.Errorf("expected bcrypt hash, got %q", hash)
	}

	if !VerifyPassword("correct horse battery staple", hash) {
		t.Error("expected password to verify")
	}

	if VerifyPassword("wrong password", hash) {
		t.Error("expected wrong password to fail")
	}
}

func TestHashPassword_DifferentSalts(t *testing.T) {
	h1, err := HashPassword("same password")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	h2, err := HashPassword("same password")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}

	if h1 == h2 {
		t.Error("expected different hashes for same password")
	}
}

func TestHashPassword_TooLong(t *testing.T) {
	_, err := HashPassword(strings.Repeat("a", 73))
	if err != ErrPasswordTooLong {
		t.Errorf("expected ErrPasswordTooLong, got %v", err)
	}
}

func TestQuickHash_Deterministic(t *testing.T) {
	h1 := QuickHash("some-token")
	h2 := QuickHash("some-token")

	if h1 != h2 {
		t.Error("expected deterministic hash")
	}
	if len(h1) != 32 {
		t.Errorf("expected 32 hex chars, got %d", len(h1))
	}
	if QuickHash("other-token") == h1 {
		t.Error("expected different inputs to hash differently")
	}
}
