package auth

// MaxPasswordBytes is the longest password bcrypt accepts, in bytes.
const MaxPasswordBytes = 72

// ValidPasswordLength reports whether password fits in MaxPasswordBytes.
func ValidPasswordLength(password string) bool {
	return len(password) <= MaxPasswordBytes
}
