package crypto

import (
	"crypto/sha256"
	"errors"
	"io"

	"golang.org/x/crypto/hkdf"
)

const (
	keyLength = 32
	keyInfo   = "meal-mafia session signing key v1"
)

var ErrEmptySecret = errors.New("token secret must not be empty")

// DeriveSigningKey expands the configured secret into a fixed-length HMAC key.
// The same secret always yields the same key.
func DeriveSigningKey(secret string) ([]byte, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}

	key := make([]byte, keyLength)
	r := hkdf.New(sha256.New, []byte(secret), nil, []byte(keyInfo))
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, err
	}
	return key, nil
}
