package core

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/caasmo/accounts/auth"
	"github.com/caasmo/accounts/cache"
	"github.com/caasmo/accounts/db"
)

var errAuth = errors.New("authentication failed")

// Authenticator resolves the bearer token of a request to its user.
type Authenticator interface {
	Authenticate(r *http.Request) (*db.User, jsonResponse, error)
}

// DefaultAuthenticator verifies the session token and loads the user,
// through the cache when one is set.
type DefaultAuthenticator struct {
	store  db.DbAuth
	tokens *auth.Tokens
	cache  cache.Cache[string, *db.User]
	ttl    time.Duration
	logger *slog.Logger
}

// NewDefaultAuthenticator creates a new DefaultAuthenticator instance. c may
// be nil, then every request reads the store.
func NewDefaultAuthenticator(store db.DbAuth, tokens *auth.Tokens, c cache.Cache[string, *db.User], ttl time.Duration, logger *slog.Logger) *DefaultAuthenticator {
	return &DefaultAuthenticator{
		store:  store,
		tokens: tokens,
		cache:  c,
		ttl:    ttl,
		logger: logger,
	}
}

// Authenticate implements the Authenticator interface. Expired, tampered and
// orphaned tokens all answer errorJwtInvalidToken.
func (a *DefaultAuthenticator) Authenticate(r *http.Request) (*db.User, jsonResponse, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return nil, errorNoAuthHeader, errAuth
	}

	tokenString := strings.TrimPrefix(authHeader, "Bearer ")
	if tokenString == authHeader || tokenString == "" {
		return nil, errorInvalidTokenFormat, errAuth
	}

	userID, err := a.tokens.Parse(tokenString)
	if err != nil {
		return nil, errorJwtInvalidToken, errAuth
	}

	if a.cache != nil {
		if user, ok := a.cache.Get(userID); ok {
			return user, jsonResponse{}, nil
		}
	}

	user, err := a.store.GetUserById(r.Context(), userID)
	if err != nil {
		if errors.Is(err, db.ErrUserNotFound) {
			return nil, errorJwtInvalidToken, errAuth
		}
		a.logger.Error("failed to load authenticated user", "user_id", userID, "error", err)
		return nil, errorInternal, err
	}

	if a.cache != nil {
		a.cache.SetWithTTL(userID, user, 1, a.ttl)
	}

	return user, jsonResponse{}, nil
}
