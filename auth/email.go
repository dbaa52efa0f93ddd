package auth

import (
	"net/mail"
	"strings"
)

// ValidEmail reports whether email is a bare addr-spec such as
// "user@example.com", without display name or angle brackets.
func ValidEmail(email string) bool {
	if email == "" || strings.ContainsAny(email, " \t\r\n<>") {
		return false
	}
	addr, err := mail.ParseAddress(email)
	if err != nil {
		return false
	}
	if addr.Address != email {
		return false
	}
	at := strings.LastIndexByte(email, '@')
	return at > 0 && at < len(email)-1
}
