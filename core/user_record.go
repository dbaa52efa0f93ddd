package core

import "github.com/caasmo/accounts/db"

// UserRecord is the user as returned by the API. It never carries the
// password hash or the pending otp.
type UserRecord struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Role    string `json:"role"`
	Avatar  string `json:"avatar,omitempty"`
	Created string `json:"created"`
	Updated string `json:"updated"`
}

func NewUserRecord(u *db.User) UserRecord {
	return UserRecord{
		ID:      u.ID,
		Name:    u.Name,
		Email:   u.Email,
		Role:    string(u.Role),
		Avatar:  u.Avatar,
		Created: db.TimeFormat(u.Created),
		Updated: db.TimeFormat(u.Updated),
	}
}

func newUserRecords(users []*db.User) []UserRecord {
	records := make([]UserRecord, 0, len(users))
	for _, u := range users {
		records = append(records, NewUserRecord(u))
	}
	return records
}
