package mock

import (
	"context"
	"time"

	"github.com/caasmo/accounts/db"
)

// Compile-time check to ensure Db implements the DbApp interface
var _ db.DbApp = (*Db)(nil)

// Db implements db.DbApp for testing purposes.
// Use function fields to allow overriding behavior in specific tests.
type Db struct {
	// --- DbAuth ---
	GetUserByEmailFunc func(email string) (*db.User, error)
	GetUserByIdFunc    func(id string) (*db.User, error)
	CreateUserFunc     func(user db.User) (*db.User, error)
	SetOtpFunc         func(userID, otpHash string, expires time.Time) error
	ResetPasswordFunc  func(userID, expectedOtpHash, passwordHash string, now time.Time) error

	// --- DbUsers ---
	ListUsersFunc  func() ([]*db.User, error)
	UpdateUserFunc func(id string, patch db.UserPatch) (*db.User, error)
	DeleteUserFunc func(id string) error
}

func (m *Db) GetUserByEmail(ctx context.Context, email string) (*db.User, error) {
	if m.GetUserByEmailFunc != nil {
		return m.GetUserByEmailFunc(email)
	}
	return nil, db.ErrUserNotFound
}

func (m *Db) GetUserById(ctx context.Context, id string) (*db.User, error) {
	if m.GetUserByIdFunc != nil {
		return m.GetUserByIdFunc(id)
	}
	return nil, db.ErrUserNotFound
}

func (m *Db) CreateUser(ctx context.Context, user db.User) (*db.User, error) {
	if m.CreateUserFunc != nil {
		return m.CreateUserFunc(user)
	}
	// Default: return the user passed in with a mock id
	user.ID = "mock-user-id"
	if user.Role == "" {
		user.Role = db.RoleUser
	}
	return &user, nil
}

func (m *Db) SetOtp(ctx context.Context, userID, otpHash string, expires time.Time) error {
	if m.SetOtpFunc != nil {
		return m.SetOtpFunc(userID, otpHash, expires)
	}
	return nil
}

func (m *Db) ResetPassword(ctx context.Context, userID, expectedOtpHash, passwordHash string, now time.Time) error {
	if m.ResetPasswordFunc != nil {
		return m.ResetPasswordFunc(userID, expectedOtpHash, passwordHash, now)
	}
	return nil
}

func (m *Db) ListUsers(ctx context.Context) ([]*db.User, error) {
	if m.ListUsersFunc != nil {
		return m.ListUsersFunc()
	}
	return []*db.User{}, nil
}

func (m *Db) UpdateUser(ctx context.Context, id string, patch db.UserPatch) (*db.User, error) {
	if m.UpdateUserFunc != nil {
		return m.UpdateUserFunc(id, patch)
	}
	// Default: the patch applied to an empty user
	user := db.User{ID: id, Role: db.RoleUser}
	if patch.Name != nil {
		user.Name = *patch.Name
	}
	if patch.Email != nil {
		user.Email = *patch.Email
	}
	if patch.Password != nil {
		user.Password = *patch.Password
	}
	if patch.Role != nil {
		user.Role = *patch.Role
	}
	if patch.Avatar != nil {
		user.Avatar = *patch.Avatar
	}
	return &user, nil
}

func (m *Db) DeleteUser(ctx context.Context, id string) error {
	if m.DeleteUserFunc != nil {
		return m.DeleteUserFunc(id)
	}
	return nil
}

func (m *Db) Close() error {
	return nil
}
