package crypto

import (
	"strings"
	"testing"
)

func TestRandomString(t *testing.T) {
	testCases := []struct {
		name     string
		length   int
		alphabet string
	}{
		{"alphanumeric", 32, AlphanumericAlphabet},
		{"digits", 64, "0123456789"},
		{"single", 8, "x"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s := RandomString(tc.length, tc.alphabet)
			if len(s) != tc.length {
				t.Errorf("RandomString() length = %d, want %d", len(s), tc.length)
			}
			for _, c := range s {
				if !strings.ContainsRune(tc.alphabet, c) {
					t.Errorf("RandomString() char %q not in alphabet", c)
				}
			}
		})
	}
}

func TestNewOtp(t *testing.T) {
	for i := 0; i < 500; i++ {
		code, err := NewOtp()
		if err != nil {
			t.Fatalf("NewOtp() error = %v", err)
		}
		if len(code) != OtpLength {
			t.Fatalf("NewOtp() = %q, want %d digits", code, OtpLength)
		}
		for _, c := range code {
			if c < '0' || c > '9' {
				t.Fatalf("NewOtp() = %q contains non digit %q", code, c)
			}
		}
	}
}

func TestNewOtpVaries(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 50; i++ {
		code, err := NewOtp()
		if err != nil {
			t.Fatalf("NewOtp() error = %v", err)
		}
		seen[code] = struct{}{}
	}
	// 50 draws from a million values collide with negligible probability.
	if len(seen) < 45 {
		t.Errorf("NewOtp() produced only %d distinct codes in 50 draws", len(seen))
	}
}
