package service

import (
	"errors"
	"strings"
	"time"

	"github.com/mealmafia/mealmafia-go/internal/crypto"
	"github.com/mealmafia/mealmafia-go/internal/model"
)

// SessionService issues and verifies session tokens.
type SessionService struct {
	key    []byte
	expiry time.Duration
}

// NewSessionService derives the signing key from secret.
func NewSessionService(secret string, expiry time.Duration) (*SessionService, error) {
	key, err := crypto.DeriveSigningKey(secret)
	if err != nil {
		return nil, err
	}
	return &SessionService{key: key, expiry: expiry}, nil
}

// Issue signs a token for the identity in req and returns it with its expiry.
func (s *SessionService) Issue(req model.SessionRequest) (string, time.Time, error) {
	email := strings.TrimSpace(req.Email)
	if email == "" {
		return "", time.Time{}, ErrEmailRequired
	}
	return crypto.GenerateToken(email, s.key, s.expiry)
}

// Verify checks a token and returns its claims. The returned error wraps both
// ErrInvalidSession and the underlying cause.
func (s *SessionService) Verify(token string) (*crypto.Claims, error) {
	claims, err := crypto.ValidateToken(token, s.key)
	if err != nil {
		return nil, errors.Join(ErrInvalidSession, err)
	}
	return claims, nil
}
