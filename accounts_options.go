package accounts

import (
	"log/slog"

	"github.com/caasmo/accounts/auth"
	"github.com/caasmo/accounts/db"
	"github.com/caasmo/accounts/notify"
	"github.com/caasmo/accounts/router"
	"github.com/caasmo/accounts/storage"
	"github.com/prometheus/client_golang/prometheus"
)

type Option func(*initializer)

// WithDbApp sets the store. The caller keeps ownership and closes it.
func WithDbApp(store db.DbApp) Option {
	return func(i *initializer) {
		if store == nil {
			panic("DbApp cannot be nil")
		}
		i.store = store
	}
}

// WithRouter sets the router and the way handlers read its path params.
func WithRouter(r router.Router, pg router.ParamGeter) Option {
	return func(i *initializer) {
		i.router = r
		i.paramGeter = pg
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(i *initializer) {
		i.logger = l
	}
}

// WithNotifier sets the operator alarm channel, replacing the discord
// notifier built from config.
func WithNotifier(n notify.Notifier) Option {
	return func(i *initializer) {
		i.notifier = n
	}
}

// WithDispatcher sets how one-time codes reach users, replacing the mailer
// built from config.
func WithDispatcher(d auth.Dispatcher) Option {
	return func(i *initializer) {
		i.dispatcher = d
	}
}

func WithStorage(s storage.Storage) Option {
	return func(i *initializer) {
		i.storage = s
	}
}

// WithRegistry sets where metrics are registered and gathered from,
// instead of the prometheus default registry.
func WithRegistry(reg *prometheus.Registry) Option {
	return func(i *initializer) {
		i.registerer = reg
		i.gatherer = reg
	}
}

// WithReload sets the function the server runs on SIGHUP.
func WithReload(fn func() error) Option {
	return func(i *initializer) {
		i.reload = fn
	}
}
