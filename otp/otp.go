// Package otp issues and verifies the one-time codes used for password resets.
//
// A user is in one of three states: no code, a pending code, or an expired
// code. Issue moves any state to pending by overwriting the stored hash.
// Verify never changes state; the code is consumed only by the store's
// reset operation.
package otp

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/caasmo/accounts/crypto"
	"github.com/caasmo/accounts/db"
)

// DefaultTTL is how long an issued code stays valid.
const DefaultTTL = 10 * time.Minute

var (
	ErrNoPendingOtp = errors.New("no pending otp")
	ErrExpired      = errors.New("otp expired")
	ErrMismatch     = errors.New("otp mismatch")
)

// PasswordHasher hashes and verifies secrets.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, hash string) bool
}

// OtpStore persists the otp fields of a user.
type OtpStore interface {
	SetOtp(ctx context.Context, userID string, otpHash string, expires time.Time) error
}

type Issuer struct {
	store    OtpStore
	hasher   PasswordHasher
	ttl      time.Duration
	now      func() time.Time
	generate func() (string, error)
}

type Option func(*Issuer)

// WithNow replaces the clock.
func WithNow(now func() time.Time) Option {
	return func(i *Issuer) {
		i.now = now
	}
}

// WithTTL sets the code lifetime.
func WithTTL(ttl time.Duration) Option {
	return func(i *Issuer) {
		if ttl > 0 {
			i.ttl = ttl
		}
	}
}

// WithGenerator replaces the code generator.
func WithGenerator(g func() (string, error)) Option {
	return func(i *Issuer) {
		i.generate = g
	}
}

func NewIssuer(store OtpStore, hasher PasswordHasher, opts ...Option) *Issuer {
	i := &Issuer{
		store:    store,
		hasher:   hasher,
		ttl:      DefaultTTL,
		now:      time.Now,
		generate: crypto.NewOtp,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// TTL returns the code lifetime.
func (i *Issuer) TTL() time.Duration {
	return i.ttl
}

// Now returns the current time of the issuer clock.
func (i *Issuer) Now() time.Time {
	return i.now()
}

// Issue generates a code for user, stores its hash and expiry and returns
// the plaintext code. Any previously pending code stops validating.
func (i *Issuer) Issue(ctx context.Context, user *db.User) (string, error) {
	code, err := i.generate()
	if err != nil {
		return "", err
	}

	hash, err := i.hasher.Hash(code)
	if err != nil {
		return "", fmt.Errorf("failed to hash otp: %w", err)
	}

	expires := i.now().Add(i.ttl)
	if err := i.store.SetOtp(ctx, user.ID, hash, expires); err != nil {
		return "", fmt.Errorf("failed to store otp: %w", err)
	}

	return code, nil
}

// Verify checks code against the pending otp of user. Expiry is checked
// before the hash comparison.
func (i *Issuer) Verify(user *db.User, code string) error {
	if !user.HasPendingOtp() {
		return ErrNoPendingOtp
	}
	if i.now().After(user.OtpExpires) {
		return ErrExpired
	}
	if !i.hasher.Verify(code, user.OtpHash) {
		return ErrMismatch
	}
	return nil
}
