package auth

import (
	"fmt"
	"time"

	"github.com/caasmo/accounts/crypto"
)

// Tokens mints and parses session tokens with a secret fixed at startup.
type Tokens struct {
	secret   []byte
	duration time.Duration
}

func NewTokens(secret string, duration time.Duration) (*Tokens, error) {
	if len(secret) < crypto.MinKeyLength {
		return nil, crypto.ErrJwtInvalidSecretLength
	}
	if duration <= 0 {
		return nil, fmt.Errorf("token duration must be positive, got %v", duration)
	}
	return &Tokens{secret: []byte(secret), duration: duration}, nil
}

// Issue returns a signed token for userID.
func (t *Tokens) Issue(userID string) (string, error) {
	token, _, err := crypto.NewJwtSessionToken(userID, t.secret, t.duration)
	return token, err
}

// Parse returns the user id of a valid token. Every failure is
// crypto.ErrJwtInvalidToken.
func (t *Tokens) Parse(token string) (string, error) {
	return crypto.ParseJwtSessionToken(token, t.secret)
}

func (t *Tokens) Duration() time.Duration {
	return t.duration
}
