package auth

import "errors"

// Validation errors.
var (
	ErrEmailRequired       = errors.New("email is required")
	ErrPasswordRequired    = errors.New("password is required")
	ErrInvalidEmail        = errors.New("invalid email format")
	ErrOtpRequired         = errors.New("otp is required")
	ErrNewPasswordRequired = errors.New("new password is required")
	ErrPasswordTooLong     = errors.New("password exceeds 72 bytes")
)

var (
	ErrEmailTaken = errors.New("email already registered")

	// ErrInvalidCredentials covers both an unknown email and a wrong
	// password.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrOtpInvalidOrExpired covers an unknown email, no pending code, an
	// expired code, a wrong code and a code consumed concurrently.
	ErrOtpInvalidOrExpired = errors.New("invalid or expired otp")
)
