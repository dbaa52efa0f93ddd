package crypto

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// MinKeyLength is the minimum required length for JWT signing keys.
	// 32 bytes (256 bits) is the minimum recommended length for HMAC-SHA256 keys.
	MinKeyLength = 32

	ClaimIssuedAt  = "iat"
	ClaimExpiresAt = "exp"
	ClaimUserID    = "user_id"
)

var (
	// ErrJwtTokenExpired is returned by ParseJwt when the token has expired
	ErrJwtTokenExpired = errors.New("token expired")
	// ErrJwtInvalidToken is returned when the token is invalid
	ErrJwtInvalidToken = errors.New("invalid token")
	// ErrJwtInvalidSecretLength is returned for signing keys shorter than MinKeyLength
	ErrJwtInvalidSecretLength = errors.New("invalid secret length")
)

// ParseJwt verifies an HS256 token and returns its claims.
func ParseJwt(token string, verificationKey []byte) (jwt.MapClaims, error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{"HS256"}), jwt.WithExpirationRequired())

	parsedToken, err := parser.Parse(token, func(t *jwt.Token) (any, error) {
		return verificationKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrJwtTokenExpired
		}
		return nil, fmt.Errorf("%w: %w", ErrJwtInvalidToken, err)
	}

	if claims, ok := parsedToken.Claims.(jwt.MapClaims); ok && parsedToken.Valid {
		return claims, nil
	}

	return nil, ErrJwtInvalidToken
}

// NewJwt signs payload with HS256 after setting iat and exp.
// It returns the token and its expiration time.
func NewJwt(payload jwt.MapClaims, signingKey []byte, duration time.Duration) (string, time.Time, error) {
	if len(signingKey) < MinKeyLength {
		return "", time.Time{}, ErrJwtInvalidSecretLength
	}

	now := time.Now()
	expirationTime := now.Add(duration)
	payload[ClaimIssuedAt] = now.Unix()
	payload[ClaimExpiresAt] = expirationTime.Unix()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, payload)
	tokenString, err := token.SignedString(signingKey)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, expirationTime, nil
}

// NewJwtSessionToken issues a session token bound to userID.
func NewJwtSessionToken(userID string, secret []byte, duration time.Duration) (string, time.Time, error) {
	if userID == "" {
		return "", time.Time{}, ErrJwtInvalidToken
	}
	return NewJwt(jwt.MapClaims{ClaimUserID: userID}, secret, duration)
}

// ParseJwtSessionToken returns the user id of a valid session token.
// Every failure, expiry included, is reported as ErrJwtInvalidToken.
func ParseJwtSessionToken(token string, secret []byte) (string, error) {
	if len(secret) < MinKeyLength {
		return "", ErrJwtInvalidToken
	}

	claims, err := ParseJwt(token, secret)
	if err != nil {
		return "", ErrJwtInvalidToken
	}

	userID, ok := claims[ClaimUserID].(string)
	if !ok || userID == "" {
		return "", ErrJwtInvalidToken
	}

	return userID, nil
}
