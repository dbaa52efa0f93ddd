package accounts

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/caasmo/accounts/auth"
	"github.com/caasmo/accounts/cache/ristretto"
	"github.com/caasmo/accounts/config"
	"github.com/caasmo/accounts/core"
	"github.com/caasmo/accounts/core/prerouter"
	"github.com/caasmo/accounts/crypto"
	"github.com/caasmo/accounts/db"
	"github.com/caasmo/accounts/log"
	"github.com/caasmo/accounts/mail"
	"github.com/caasmo/accounts/notify"
	"github.com/caasmo/accounts/notify/discord"
	"github.com/caasmo/accounts/otp"
	"github.com/caasmo/accounts/router"
	"github.com/caasmo/accounts/router/httprouter"
	"github.com/caasmo/accounts/server"
	"github.com/caasmo/accounts/storage"
	"github.com/prometheus/client_golang/prometheus"
)

// initializer collects the dependencies given as options and builds the
// missing ones from the config.
type initializer struct {
	ctx            context.Context
	configProvider *config.Provider
	logger         *slog.Logger

	store      db.DbApp
	ownsStore  bool
	hasher     *crypto.Hasher
	userCache  *ristretto.Cache[*db.User]
	router     router.Router
	paramGeter router.ParamGeter
	dispatcher auth.Dispatcher
	notifier   notify.Notifier
	storage    storage.Storage
	registerer prometheus.Registerer
	gatherer   prometheus.Gatherer
	reload     func() error

	daemons []server.Daemon
}

// New builds the application and its server from the live config. Every
// dependency not given as an option is created from the config: the store,
// the avatar storage, the mail dispatcher and the operator notifier.
func New(ctx context.Context, provider *config.Provider, opts ...Option) (*core.App, *server.Server, error) {
	if provider == nil {
		return nil, nil, fmt.Errorf("accounts: config provider is required")
	}
	init := &initializer{ctx: ctx, configProvider: provider}
	for _, opt := range opts {
		opt(init)
	}
	cfg := provider.Get()

	if err := config.Validate(cfg); err != nil {
		return nil, nil, err
	}

	init.setupDefaultLogger()
	init.setupDefaultMetrics()
	init.setupDefaultRouter()

	steps := []struct {
		name string
		fn   func(*config.Config) error
	}{
		{"store", init.setupDefaultDb},
		{"hasher", init.setupHasher},
		{"cache", init.setupDefaultCache},
		{"storage", init.setupDefaultStorage},
		{"notifier", init.setupDefaultNotifier},
		{"dispatcher", init.setupDefaultDispatcher},
	}
	for _, step := range steps {
		if err := step.fn(cfg); err != nil {
			init.cleanup()
			return nil, nil, fmt.Errorf("accounts: %s setup failed: %w", step.name, err)
		}
	}

	tokens, err := auth.NewTokens(cfg.Jwt.AuthSecret, cfg.Jwt.AuthTokenDuration.Duration)
	if err != nil {
		init.cleanup()
		return nil, nil, fmt.Errorf("accounts: %w", err)
	}

	app, err := core.NewApp(
		core.WithDbApp(init.store),
		core.WithHasher(init.hasher),
		core.WithCache(init.userCache),
		core.WithConfigProvider(provider),
		core.WithLogger(init.logger),
		core.WithNotifier(init.notifier),
		core.WithRouter(init.router),
		core.WithParamGeter(init.paramGeter),
		core.WithStorage(init.storage),
		core.WithGatherer(init.gatherer),
		core.WithAuthenticator(core.NewDefaultAuthenticator(init.store, tokens, init.userCache, cfg.Cache.UserTTL.Duration, init.logger)),
	)
	if err != nil {
		init.cleanup()
		return nil, nil, err
	}

	svc, err := init.setupAuthService(cfg, app, tokens)
	if err != nil {
		init.cleanup()
		return nil, nil, err
	}
	app.SetAuthService(svc)

	route(cfg, app)

	handler, err := init.preRouter(app)
	if err != nil {
		init.cleanup()
		return nil, nil, err
	}

	srv := server.NewServer(provider, handler, init.logger, init.reload)
	srv.AddDaemon(&dispatchDaemon{svc: svc})
	for _, d := range init.daemons {
		srv.AddDaemon(d)
	}
	return app, srv, nil
}

func (i *initializer) setupDefaultLogger() {
	if i.logger == nil {
		i.logger = log.New(i.configProvider, os.Stderr)
	}
}

func (i *initializer) setupDefaultMetrics() {
	if i.registerer == nil {
		i.registerer = prometheus.DefaultRegisterer
	}
	if i.gatherer == nil {
		i.gatherer = prometheus.DefaultGatherer
	}
}

func (i *initializer) setupDefaultRouter() {
	if i.router == nil {
		i.router = httprouter.New()
		i.paramGeter = httprouter.NewParamGeter()
	}
}

func (i *initializer) setupDefaultDb(cfg *config.Config) error {
	if i.store != nil {
		return nil
	}
	store, err := OpenStore(i.ctx, cfg.Store)
	if err != nil {
		return err
	}
	i.store = store
	i.ownsStore = true
	i.daemons = append(i.daemons, &closerDaemon{name: "store", close: store.Close})
	i.logger.Info("store opened", "driver", cfg.Store.Driver)
	return nil
}

func (i *initializer) setupHasher(cfg *config.Config) error {
	h, err := crypto.NewHasher(cfg.Auth.BcryptCost)
	if err != nil {
		return err
	}
	i.hasher = h
	return nil
}

func (i *initializer) setupDefaultCache(cfg *config.Config) error {
	c, err := ristretto.New[*db.User](cfg.Cache.Level)
	if err != nil {
		return err
	}
	i.userCache = c
	i.daemons = append(i.daemons, &closerDaemon{name: "user cache", close: func() error {
		c.Close()
		return nil
	}})
	return nil
}

func (i *initializer) setupDefaultStorage(cfg *config.Config) error {
	if i.storage != nil {
		return nil
	}
	s, err := OpenStorage(i.ctx, cfg.Storage)
	if err != nil {
		return err
	}
	i.storage = s
	return nil
}

func (i *initializer) setupDefaultNotifier(cfg *config.Config) error {
	if i.notifier != nil {
		return nil
	}
	if !cfg.Notifier.Discord.Activated {
		i.notifier = notify.NewNilNotifier()
		return nil
	}
	d, err := discord.New(cfg.Notifier.Discord, i.logger)
	if err != nil {
		return err
	}
	i.notifier = notify.NewMultiNotifier(d)
	return nil
}

func (i *initializer) setupDefaultDispatcher(cfg *config.Config) error {
	if i.dispatcher != nil {
		return nil
	}
	if !cfg.Smtp.Enabled {
		i.logger.Warn("smtp disabled, one-time codes are only previewed in the log")
		i.dispatcher = mail.NewLogSender(cfg.Smtp.FromName, i.logger)
		return nil
	}
	m, err := mail.New(cfg.Smtp, i.logger)
	if err != nil {
		return err
	}
	i.dispatcher = m
	return nil
}

func (i *initializer) setupAuthService(cfg *config.Config, app *core.App, tokens *auth.Tokens) (*auth.Service, error) {
	metrics, err := auth.NewMetrics(i.registerer)
	if err != nil {
		return nil, fmt.Errorf("accounts: auth metrics: %w", err)
	}
	issuer := otp.NewIssuer(i.store, i.hasher, otp.WithTTL(cfg.Auth.OtpTTL.Duration))
	return auth.NewService(i.store, i.hasher, issuer, tokens, i.dispatcher,
		auth.WithLogger(i.logger),
		auth.WithNotifier(i.notifier),
		auth.WithMetrics(metrics),
		auth.WithSendTimeout(cfg.Smtp.SendTimeout.Duration),
		auth.WithUserChanged(app.EvictUser),
	)
}

// preRouter wraps the router with the middlewares that run on every request,
// matched route or not.
func (i *initializer) preRouter(app *core.App) (http.Handler, error) {
	metrics, err := prerouter.NewMetrics(app, i.registerer)
	if err != nil {
		return nil, err
	}
	return router.NewChain(app.Router()).WithMiddleware(
		prerouter.NewRecorder(app).Execute,
		prerouter.NewRequestLog(app).Execute,
		metrics.Execute,
		prerouter.NewBlockRequestBody(app).Execute,
	).Handler(), nil
}

// cleanup releases what New opened when a later step fails.
func (i *initializer) cleanup() {
	if i.ownsStore && i.store != nil {
		i.store.Close()
	}
	if i.userCache != nil {
		i.userCache.Close()
	}
}
