package crypto

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var testSecret = []byte("test_secret_32_bytes_long_xxxxxx")

func signClaims(t *testing.T, method jwt.SigningMethod, claims jwt.MapClaims, key any) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString(key)
	if err != nil {
		t.Fatalf("SignedString() error = %v", err)
	}
	return s
}

func TestSessionTokenRoundTrip(t *testing.T) {
	token, exp, err := NewJwtSessionToken("user-123", testSecret, time.Hour)
	if err != nil {
		t.Fatalf("NewJwtSessionToken() error = %v", err)
	}

	if d := time.Until(exp); d < 59*time.Minute || d > time.Hour {
		t.Errorf("expiry in %v, want about 1h", d)
	}

	userID, err := ParseJwtSessionToken(token, testSecret)
	if err != nil {
		t.Fatalf("ParseJwtSessionToken() error = %v", err)
	}
	if userID != "user-123" {
		t.Errorf("userID = %q, want %q", userID, "user-123")
	}
}

func TestNewJwtShortSecret(t *testing.T) {
	_, _, err := NewJwt(jwt.MapClaims{}, []byte("short"), time.Minute)
	if !errors.Is(err, ErrJwtInvalidSecretLength) {
		t.Errorf("NewJwt() error = %v, want %v", err, ErrJwtInvalidSecretLength)
	}
}

func TestParseJwtExpired(t *testing.T) {
	token := signClaims(t, jwt.SigningMethodHS256, jwt.MapClaims{
		ClaimUserID:    "user-123",
		ClaimIssuedAt:  time.Now().Add(-2 * time.Hour).Unix(),
		ClaimExpiresAt: time.Now().Add(-time.Hour).Unix(),
	}, testSecret)

	if _, err := ParseJwt(token, testSecret); !errors.Is(err, ErrJwtTokenExpired) {
		t.Errorf("ParseJwt() error = %v, want %v", err, ErrJwtTokenExpired)
	}
}

func TestParseJwtSessionTokenFailuresAreIndistinguishable(t *testing.T) {
	valid, _, err := NewJwtSessionToken("user-123", testSecret, time.Hour)
	if err != nil {
		t.Fatalf("NewJwtSessionToken() error = %v", err)
	}

	parts := strings.Split(valid, ".")
	tampered := parts[0] + "." + parts[1] + "x." + parts[2]

	testCases := []struct {
		name   string
		token  string
		secret []byte
	}{
		{
			name: "expired",
			token: signClaims(t, jwt.SigningMethodHS256, jwt.MapClaims{
				ClaimUserID:    "user-123",
				ClaimExpiresAt: time.Now().Add(-time.Second).Unix(),
			}, testSecret),
			secret: testSecret,
		},
		{
			name:   "wrong secret",
			token:  valid,
			secret: []byte("another_secret_32_bytes_long_xxx"),
		},
		{
			name:   "tampered payload",
			token:  tampered,
			secret: testSecret,
		},
		{
			name: "none algorithm",
			token: signClaims(t, jwt.SigningMethodNone, jwt.MapClaims{
				ClaimUserID:    "user-123",
				ClaimExpiresAt: time.Now().Add(time.Hour).Unix(),
			}, jwt.UnsafeAllowNoneSignatureType),
			secret: testSecret,
		},
		{
			name: "missing user id",
			token: signClaims(t, jwt.SigningMethodHS256, jwt.MapClaims{
				ClaimExpiresAt: time.Now().Add(time.Hour).Unix(),
			}, testSecret),
			secret: testSecret,
		},
		{
			name: "missing expiry",
			token: signClaims(t, jwt.SigningMethodHS256, jwt.MapClaims{
				ClaimUserID: "user-123",
			}, testSecret),
			secret: testSecret,
		},
		{
			name:   "malformed",
			token:  "malformed.token.string",
			secret: testSecret,
		},
		{
			name:   "empty",
			token:  "",
			secret: testSecret,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			userID, err := ParseJwtSessionToken(tc.token, tc.secret)
			if err != ErrJwtInvalidToken {
				t.Errorf("ParseJwtSessionToken() error = %v, want exactly %v", err, ErrJwtInvalidToken)
			}
			if userID != "" {
				t.Errorf("userID = %q, want empty", userID)
			}
		})
	}
}
