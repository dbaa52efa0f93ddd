package core

import (
	"errors"
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

// App is the application wide context: the store, the auth flows and the
// long lived services the handlers need.
//
// All handlers and middleware have App as receiver.
type App struct {
	store          db.DbApp
	auth           *auth.Service
	hasher         auth.PasswordHasher
	router         router.Router
	paramGeter     router.ParamGeter
	cache          cache.Cache[string, *db.User]
	configProvider *config.Provider
	logger         *slog.Logger
	notifier       notify.Notifier
	authenticator  Authenticator
	validator      Validator
	storage        storage.Storage
	gatherer       prometheus.Gatherer
}

func NewApp(opts ...Option) (*App, error) {
	a := &App{}
	for _, opt := range opts {
		opt(a)
	}

	if a.store == nil {
		return nil, errors.New("core: store is required (use WithDbApp)")
	}
	if a.configProvider == nil {
		return nil, errors.New("core: config provider is required (use WithConfigProvider)")
	}
	if a.hasher == nil {
		return nil, errors.New("core: password hasher is required (use WithHasher)")
	}
	if a.logger == nil {
		a.logger = slog.Default()
	}
	if a.notifier == nil {
		a.notifier = notify.NewNilNotifier()
	}
	if a.validator == nil {
		a.validator = NewValidator()
	}
	if a.gatherer == nil {
		a.gatherer = prometheus.DefaultGatherer
	}

	return a, nil
}

// Router returns the application's router instance
func (a *App) Router() router.Router {
	return a.router
}

func (a *App) SetRouter(r router.Router) {
	a.router = r
}

func (a *App) SetParamGeter(pg router.ParamGeter) {
	a.paramGeter = pg
}

func (a *App) Db() db.DbApp {
	return a.store
}

// SetDb sets the store used by the handlers
func (a *App) SetDb(store db.DbApp) {
	if store == nil {
		panic("DbApp cannot be nil")
	}
	a.store = store
}

// AuthService returns the account flows.
func (a *App) AuthService() *auth.Service {
	return a.auth
}

// SetAuthService sets the account flows. It is set after NewApp because
// the service evicts cached users through EvictUser.
func (a *App) SetAuthService(s *auth.Service) {
	a.auth = s
}

func (a *App) Logger() *slog.Logger {
	return a.logger
}

func (a *App) SetLogger(l *slog.Logger) {
	a.logger = l
}

func (a *App) SetCache(c cache.Cache[string, *db.User]) {
	a.cache = c
}

func (a *App) Cache() cache.Cache[string, *db.User] {
	return a.cache
}

// EvictUser drops the cached authenticated record of userID. Every user
// mutation calls it.
func (a *App) EvictUser(userID string) {
	if a.cache != nil {
		a.cache.Del(userID)
	}
}

func (a *App) Config() *config.Config {
	return a.configProvider.Get()
}

func (a *App) SetConfigProvider(provider *config.Provider) {
	a.configProvider = provider
}

func (a *App) Notifier() notify.Notifier {
	return a.notifier
}

func (a *App) SetNotifier(n notify.Notifier) {
	a.notifier = n
}

// SetAuthenticator sets the authenticator implementation
func (a *App) SetAuthenticator(auth Authenticator) {
	a.authenticator = auth
}

func (a *App) Auth() Authenticator {
	return a.authenticator
}

// SetValidator sets the validator implementation
func (a *App) SetValidator(v Validator) {
	a.validator = v
}

// Validator returns the validator instance
func (a *App) Validator() Validator {
	return a.validator
}

// Storage returns the avatar object storage, nil when not configured.
func (a *App) Storage() storage.Storage {
	return a.storage
}

func (a *App) SetStorage(s storage.Storage) {
	a.storage = s
}
