package db

import "time"

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// User represents a user from the database.
// Timestamps use RFC3339 format in UTC timezone.
type User struct {
	ID    string
	Name  string
	Email string
	// Password is the bcrypt hash of the current password.
	Password string
	Role     Role
	// OtpHash and OtpExpires are both set while a password reset is pending
	// and both empty otherwise.
	OtpHash    string
	OtpExpires time.Time
	Avatar     string
	Created    time.Time
	Updated    time.Time
}

// UserPatch holds the fields UpdateUser writes. A nil field keeps the
// stored value, so concurrent writers of other columns are not overwritten.
type UserPatch struct {
	Name     *string
	Email    *string
	Password *string
	Role     *Role
	Avatar   *string
}

// HasPendingOtp reports whether a one-time code is stored, expired or not.
func (u *User) HasPendingOtp() bool {
	return u.OtpHash != "" && !u.OtpExpires.IsZero()
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
