package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// TokenCodec issues and verifies opaque bearer tokens using AES-256-GCM.
// A token is base64(nonce || ciphertext) over "userID|unixExpiry", so it
// carries its own expiry and needs no server-side session row.
type TokenCodec struct {
	gcm cipher.AEAD
	ttl time.Duration
}

// DefaultTokenTTL is how long issued bearer tokens stay valid.
const DefaultTokenTTL = 30 * 24 * time.Hour

// NewTokenCodec creates a TokenCodec with the provided base64-encoded key.
// The key must be exactly 32 bytes (AES-256) after base64 decoding.
func NewTokenCodec(base64Key string) (*TokenCodec, error) {
	if base64Key == "" {
		return nil, fmt.Errorf("encryption key is required")
	}

	key, err := base64.StdEncoding.DecodeString(base64Key)
	if err != nil {
		return nil, fmt.Errorf("failed to decode encryption key: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("encryption key must be 32 bytes for AES-256, got %d bytes", len(key))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher block: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM mode: %w", err)
	}

	return &TokenCodec{gcm: gcm, ttl: DefaultTokenTTL}, nil
}

// Issue mints a bearer token for the user, valid for the codec's TTL.
func (c *TokenCodec) Issue(userID int64) (string, error) {
	payload := fmt.Sprintf("%d|%d", userID, time.Now().Add(c.ttl).Unix())

	nonce := make([]byte, c.gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	ciphertext := c.gcm.Seal(nonce, nonce, []byte(payload), nil)
	return base64.RawURLEncoding.EncodeToString(ciphertext), nil
}

// Verify decrypts a bearer token and returns the user ID it was issued for.
// Expired, malformed, and tampered tokens all fail the same way so callers
// can treat any error as "not authenticated".
func (c *TokenCodec) Verify(token string) (int64, error) {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return 0, fmt.Errorf("failed to decode token: %w", err)
	}

	nonceSize := c.gcm.NonceSize()
	if len(raw) < nonceSize {
		return 0, fmt.Errorf("token too short")
	}
	nonce, ciphertext := raw[:nonceSize], raw[nonceSize:]

	payload, err := c.gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to decrypt token: %w", err)
	}

	parts := strings.SplitN(string(payload), "|", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("malformed token payload")
	}
	userID, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("malformed token user id: %w", err)
	}
	expiry, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("malformed token expiry: %w", err)
	}
	if time.Now().Unix() > expiry {
		return 0, fmt.Errorf("token expired")
	}
	return userID, nil
}
