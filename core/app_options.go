package core

import (
	"log/slog"

	"github.com/caasmo/accounts/auth"
	"github.com/caasmo/accounts/cache"
	"github.com/caasmo/accounts/config"
	"github.com/caasmo/accounts/db"
	"github.com/caasmo/accounts/notify"
	"github.com/caasmo/accounts/router"
	"github.com/caasmo/accounts/storage"
	"github.com/prometheus/client_golang/prometheus"
)

type Option func(*App)

// WithDbApp sets the store
func WithDbApp(store db.DbApp) Option {
	return func(a *App) {
		a.store = store
	}
}

// WithHasher sets the hasher used by the admin and profile handlers that
// write passwords.
func WithHasher(h auth.PasswordHasher) Option {
	return func(a *App) {
		a.hasher = h
	}
}

// WithCache sets the cache of authenticated users
func WithCache(c cache.Cache[string, *db.User]) Option {
	return func(a *App) {
		a.cache = c
	}
}

// WithRouter sets the router implementation
func WithRouter(r router.Router) Option {
	return func(a *App) {
		a.router = r
	}
}

// WithParamGeter sets how path parameters are read from a request
func WithParamGeter(pg router.ParamGeter) Option {
	return func(a *App) {
		a.paramGeter = pg
	}
}

// WithConfigProvider sets the application's configuration provider.
func WithConfigProvider(p *config.Provider) Option {
	return func(a *App) {
		a.configProvider = p
	}
}

// WithLogger sets the logger implementation
func WithLogger(l *slog.Logger) Option {
	return func(a *App) {
		a.logger = l
	}
}

func WithNotifier(n notify.Notifier) Option {
	return func(a *App) {
		a.notifier = n
	}
}

func WithAuthenticator(au Authenticator) Option {
	return func(a *App) {
		a.authenticator = au
	}
}

func WithValidator(v Validator) Option {
	return func(a *App) {
		a.validator = v
	}
}

// WithStorage sets the avatar object storage
func WithStorage(s storage.Storage) Option {
	return func(a *App) {
		a.storage = s
	}
}

// WithGatherer sets the registry served by MetricsHandler. Defaults to the
// prometheus default gatherer.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(a *App) {
		a.gatherer = g
	}
}
