package db

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrUserNotFound is returned when no user matches the lookup key.
	ErrUserNotFound = errors.New("user not found")
	// ErrEmailConflict is returned when a write would duplicate an existing email.
	ErrEmailConflict = errors.New("email already registered")
	// ErrOtpConflict is returned by ResetPassword when the stored otp hash no
	// longer matches the expected one.
	ErrOtpConflict = errors.New("otp changed or cleared")
)

// DbAuth holds the credential operations used by the authentication flows.
// Every method is a single atomic statement against one user row.
type DbAuth interface {
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	GetUserById(ctx context.Context, id string) (*User, error)

	// CreateUser inserts user and returns the stored record with its
	// generated id and timestamps.
	CreateUser(ctx context.Context, user User) (*User, error)

	// SetOtp stores the otp hash and expiry together, replacing any pending otp.
	SetOtp(ctx context.Context, userID string, otpHash string, expires time.Time) error

	// ResetPassword sets passwordHash and clears both otp fields only if the
	// stored otp hash still equals expectedOtpHash and has not expired at now.
	ResetPassword(ctx context.Context, userID string, expectedOtpHash string, passwordHash string, now time.Time) error
}

// DbUsers holds the administrative user operations.
type DbUsers interface {
	ListUsers(ctx context.Context) ([]*User, error)

	// UpdateUser writes the non nil fields of patch to user id in one
	// statement and returns the stored record. Otp fields are not touched.
	UpdateUser(ctx context.Context, id string, patch UserPatch) (*User, error)

	DeleteUser(ctx context.Context, id string) error
}

// DbApp is the full store the application needs. The concrete
// implementations (zombiezen sqlite, postgres) satisfy it.
type DbApp interface {
	DbAuth
	DbUsers
	Close() error
}
