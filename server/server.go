package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caasmo/accounts/config"
	"golang.org/x/sync/errgroup"
)

// Daemon is a component that lives as long as the server: it is started
// before the listener accepts requests and stopped after it drains.
type Daemon interface {
	Name() string
	Start() error
	Stop(ctx context.Context) error
}

type Server struct {
	configProvider *config.Provider
	handler        http.Handler
	logger         *slog.Logger
	daemons        []Daemon
	reload         func() error

	// ready receives the bound address once the listener is up.
	ready chan string
}

// NewServer builds a server over handler. reload is called on SIGHUP and may
// be nil.
func NewServer(provider *config.Provider, handler http.Handler, logger *slog.Logger, reload func() error) *Server {
	return &Server{
		configProvider: provider,
		handler:        handler,
		logger:         logger,
		reload:         reload,
		ready:          make(chan string, 1),
	}
}

func (s *Server) AddDaemon(d Daemon) {
	s.daemons = append(s.daemons, d)
}

// Run serves until ctx is done, SIGINT or SIGTERM arrive, or the listener
// fails. It then shuts down the http server and stops the daemons within
// the configured graceful timeout.
func (s *Server) Run(ctx context.Context) error {
	cfg := s.configProvider.Get().Server

	s.logger.Info("server configuration",
		"addr", cfg.Addr,
		"read_timeout", cfg.ReadTimeout.Duration,
		"read_header_timeout", cfg.ReadHeaderTimeout.Duration,
		"write_timeout", cfg.WriteTimeout.Duration,
		"idle_timeout", cfg.IdleTimeout.Duration,
		"shutdown_timeout", cfg.ShutdownGracefulTimeout.Duration,
	)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.handler,
		ReadTimeout:       cfg.ReadTimeout.Duration,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout.Duration,
		WriteTimeout:      cfg.WriteTimeout.Duration,
		IdleTimeout:       cfg.IdleTimeout.Duration,
		ErrorLog:          slog.NewLogLogger(s.logger.Handler(), slog.LevelWarn),
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)

	started := make([]Daemon, 0, len(s.daemons))
	for _, d := range s.daemons {
		s.logger.Info("starting daemon", "name", d.Name())
		if err := d.Start(); err != nil {
			s.logger.Error("daemon failed to start", "name", d.Name(), "err", err)
			s.stopDaemons(cfg.ShutdownGracefulTimeout.Duration, started)
			return fmt.Errorf("start %s: %w", d.Name(), err)
		}
		started = append(started, d)
	}

	ln, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		s.stopDaemons(cfg.ShutdownGracefulTimeout.Duration, started)
		return fmt.Errorf("listen %s: %w", cfg.Addr, err)
	}

	serverError := make(chan error, 1)
	go func() {
		s.logger.Info("starting http server", "addr", ln.Addr().String())
		if err := srv.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
			serverError <- err
		}
	}()
	s.ready <- ln.Addr().String()

	var runErr error
loop:
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("received shutdown signal, gracefully shutting down")
			break loop
		case err := <-serverError:
			s.logger.Error("server error, initiating shutdown", "err", err)
			runErr = err
			break loop
		case <-hup:
			s.handleReload()
		}
	}

	gracefulCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownGracefulTimeout.Duration)
	defer cancel()

	if err := srv.Shutdown(gracefulCtx); err != nil {
		s.logger.Error("http server shutdown error", "err", err)
		runErr = errors.Join(runErr, err)
	} else {
		s.logger.Info("http server stopped gracefully")
	}

	if err := s.stopDaemonsCtx(gracefulCtx, started); err != nil {
		runErr = errors.Join(runErr, err)
	}

	if runErr == nil {
		s.logger.Info("all systems stopped gracefully")
	}
	return runErr
}

// Ready returns a channel receiving the listener address once serving.
func (s *Server) Ready() <-chan string {
	return s.ready
}

func (s *Server) handleReload() {
	if s.reload == nil {
		s.logger.Info("SIGHUP received, no reload configured")
		return
	}
	s.logger.Info("SIGHUP received, reloading configuration")
	if err := s.reload(); err != nil {
		s.logger.Error("configuration reload failed", "err", err)
		return
	}
	s.logger.Info("configuration reloaded")
}

func (s *Server) stopDaemons(timeout time.Duration, daemons []Daemon) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	s.stopDaemonsCtx(ctx, daemons)
}

func (s *Server) stopDaemonsCtx(ctx context.Context, daemons []Daemon) error {
	var g errgroup.Group
	for _, d := range daemons {
		g.Go(func() error {
			s.logger.Info("stopping daemon", "name", d.Name())
			if err := d.Stop(ctx); err != nil {
				s.logger.Error("daemon stop error", "name", d.Name(), "err", err)
				return fmt.Errorf("stop %s: %w", d.Name(), err)
			}
			return nil
		})
	}
	return g.Wait()
}
