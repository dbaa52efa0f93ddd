package core

import (
	"context"
	"net/http"

	"github.com/caasmo/accounts/db"
)

type contextKey string

const userKey contextKey = "user"

// UserFromContext returns the user stored by RequireAuth.
func UserFromContext(ctx context.Context) (*db.User, bool) {
	user, ok := ctx.Value(userKey).(*db.User)
	return user, ok && user != nil
}

// RequireAuth authenticates the request and stores the user in its
// context. The stored record is shared with the cache and must not be
// modified.
func (a *App) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, resp, err := a.Auth().Authenticate(r)
		if err != nil {
			writeJsonError(w, resp)
			return
		}

		ctx := context.WithValue(r.Context(), userKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin authenticates the request and answers 403 unless the user
// holds the admin role.
func (a *App) RequireAdmin(next http.Handler) http.Handler {
	return a.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, _ := UserFromContext(r.Context())
		if !user.IsAdmin() {
			writeJsonError(w, errorForbidden)
			return
		}
		next.ServeHTTP(w, r)
	}))
}
