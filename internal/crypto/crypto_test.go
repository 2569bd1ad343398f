package crypto

import (
	"encoding/base64"
	"strings"
	"testing"
	"time"
)

func testKey() string {
	return base64.StdEncoding.EncodeToString([]byte("0123456789abcdef0123456789abcdef"))
}

func TestNewTokenCodecKeyValidation(t *testing.T) {
	if _, err := NewTokenCodec(""); err == nil {
		t.Error("expected error for empty key")
	}
	if _, err := NewTokenCodec("not-base64!!!"); err == nil {
		t.Error("expected error for invalid base64")
	}
	short := base64.StdEncoding.EncodeToString([]byte("too-short"))
	if _, err := NewTokenCodec(short); err == nil {
		t.Error("expected error for short key")
	}
	if _, err := NewTokenCodec(testKey()); err != nil {
		t.Errorf("valid key rejected: %v", err)
	}
}

func TestIssueAndVerifyRoundTrip(t *testing.T) {
	codec, err := NewTokenCodec(testKey())
	if err != nil {
		t.Fatalf("NewTokenCodec() error: %v", err)
	}

	token, err := codec.Issue(123456789)
	if err != nil {
		t.Fatalf("Issue() error: %v", err)
	}

	userID, err := codec.Verify(token)
	if err != nil {
		t.Fatalf("Verify() error: %v", err)
	}
	if userID != 123456789 {
		t.Errorf("Verify() = %d, want 123456789", userID)
	}

	// Each token gets a fresh nonce
	second, err := codec.Issue(123456789)
	if err != nil {
		t.Fatalf("Issue() error: %v", err)
	}
	if second == token {
		t.Error("two tokens for the same user should differ")
	}
}

func TestVerifyRejectsTamperedTokens(t *testing.T) {
	codec, err := NewTokenCodec(testKey())
	if err != nil {
		t.Fatalf("NewTokenCodec() error: %v", err)
	}

	token, err := codec.Issue(42)
	if err != nil {
		t.Fatalf("Issue() error: %v", err)
	}

	// Flip a character in the ciphertext
	tampered := []byte(token)
	if tampered[len(tampered)-1] == 'A' {
		tampered[len(tampered)-1] = 'B'
	} else {
		tampered[len(tampered)-1] = 'A'
	}
	if _, err := codec.Verify(string(tampered)); err == nil {
		t.Error("expected error for tampered token")
	}

	if _, err := codec.Verify("not-a-token"); err == nil {
		t.Error("expected error for garbage token")
	}
	if _, err := codec.Verify(""); err == nil {
		t.Error("expected error for empty token")
	}
}

func TestVerifyRejectsExpiredTokens(t *testing.T) {
	codec, err := NewTokenCodec(testKey())
	if err != nil {
		t.Fatalf("NewTokenCodec() error: %v", err)
	}
	codec.ttl = -time.Hour

	token, err := codec.Issue(42)
	if err != nil {
		t.Fatalf("Issue() error: %v", err)
	}
	if _, err := codec.Verify(token); err == nil || !strings.Contains(err.Error(), "expired") {
		t.Errorf("expected expiry error, got %v", err)
	}
}

func TestVerifyRejectsForeignKeyTokens(t *testing.T) {
	a, _ := NewTokenCodec(testKey())
	otherKey := base64.StdEncoding.EncodeToString([]byte("fedcba9876543210fedcba9876543210"))
	b, _ := NewTokenCodec(otherKey)

	token, err := a.Issue(42)
	if err != nil {
		t.Fatalf("Issue() error: %v", err)
	}
	if _, err := b.Verify(token); err == nil {
		t.Error("token should not verify under a different key")
	}
}
