package crypto

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const (
	AlphanumericAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	// OtpLength is the number of digits in a one-time code.
	OtpLength = 6
)

var otpUpperBound = big.NewInt(1_000_000)

// RandomString returns a string of length characters drawn uniformly from
// alphabet using crypto/rand. It panics if the system randomness source fails.
func RandomString(length int, alphabet string) string {
	max := big.NewInt(int64(len(alphabet)))
	b := make([]byte, length)
	for i := range b {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			panic(fmt.Sprintf("crypto/rand failure: %v", err))
		}
		b[i] = alphabet[n.Int64()]
	}
	return string(b)
}

// NewOtp returns a uniformly distributed 6 digit code in [000000, 999999].
// Leading zeros are kept.
func NewOtp() (string, error) {
	n, err := rand.Int(rand.Reader, otpUpperBound)
	if err != nil {
		return "", fmt.Errorf("failed to generate otp: %w", err)
	}
	return fmt.Sprintf("%0*d", OtpLength, n.Int64()), nil
}
