package accounts

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/caasmo/accounts/auth"
	"github.com/caasmo/accounts/db"
)

var ErrInvalidAdminSpec = errors.New("admin must be given as email:password")

// ParseAdminSpec splits an "email:password" pair. The password may contain
// colons.
func ParseAdminSpec(spec string) (email, password string, err error) {
	email, password, ok := strings.Cut(spec, ":")
	email = strings.TrimSpace(email)
	if !ok || email == "" || password == "" {
		return "", "", ErrInvalidAdminSpec
	}
	return email, password, nil
}

// EnsureAdmin creates an admin account, or promotes the existing account
// with that email. The password of an existing account is left unchanged.
// It reports whether a new account was created.
func EnsureAdmin(ctx context.Context, store db.DbApp, hasher auth.PasswordHasher, email, password string) (*db.User, bool, error) {
	if !auth.ValidEmail(email) {
		return nil, false, auth.ErrInvalidEmail
	}
	if !auth.ValidPasswordLength(password) {
		return nil, false, auth.ErrPasswordTooLong
	}

	existing, err := store.GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		if existing.IsAdmin() {
			return existing, false, nil
		}
		admin := db.RoleAdmin
		u, err := store.UpdateUser(ctx, existing.ID, db.UserPatch{Role: &admin})
		if err != nil {
			return nil, false, fmt.Errorf("promote %s: %w", email, err)
		}
		return u, false, nil
	case !errors.Is(err, db.ErrUserNotFound):
		return nil, false, fmt.Errorf("lookup %s: %w", email, err)
	}

	hash, err := hasher.Hash(password)
	if err != nil {
		return nil, false, err
	}
	u, err := store.CreateUser(ctx, db.User{
		Name:     "Admin",
		Email:    email,
		Password: hash,
		Role:     db.RoleAdmin,
	})
	if err != nil {
		return nil, false, fmt.Errorf("create %s: %w", email, err)
	}
	return u, true, nil
}
