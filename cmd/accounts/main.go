package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/caasmo/accounts"
	"github.com/caasmo/accounts/config"
	"github.com/caasmo/accounts/crypto"
	"github.com/caasmo/accounts/log"
	"github.com/joho/godotenv"
)

var (
	ErrInvalidFlag  = errors.New("invalid flag provided")
	ErrLoadEnv      = errors.New("failed to load env file")
	ErrLoadConfig   = errors.New("failed to load config")
	ErrCreateAdmin  = errors.New("failed to create admin")
	ErrInitAccounts = errors.New("failed to initialize accounts")
)

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, output io.Writer) error {
	fs := flag.NewFlagSet("accounts", flag.ContinueOnError)
	fs.SetOutput(output)

	configPath := fs.String("config", "", "Path to the TOML config file (defaults only when empty)")
	envPath := fs.String("env", "", "Path to a .env file loaded before reading the config")
	createAdmin := fs.String("create-admin", "", "Create or promote an admin as email:password, then exit")

	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidFlag, err)
	}

	if *envPath != "" {
		if err := godotenv.Load(*envPath); err != nil {
			return fmt.Errorf("%w (%s): %v", ErrLoadEnv, *envPath, err)
		}
	}

	cfg, err := config.LoadFile(*configPath)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}
	provider := config.NewProvider(cfg)
	logger := log.New(provider, output)
	msg := log.NewMessageFormatter().WithComponent("accounts", "👤")

	if *createAdmin != "" {
		if err := bootstrapAdmin(ctx, cfg, *createAdmin); err != nil {
			logger.Error(msg.Fail("admin bootstrap failed"), "err", err)
			return fmt.Errorf("%w: %v", ErrCreateAdmin, err)
		}
		logger.Info(msg.Ok("admin ready"))
		return nil
	}

	reload := func() error {
		if *configPath == "" {
			return errors.New("no config file to reload")
		}
		next, err := config.LoadFile(*configPath)
		if err != nil {
			return err
		}
		provider.Update(next)
		return nil
	}

	_, srv, err := accounts.New(ctx, provider, accounts.WithLogger(logger), accounts.WithReload(reload))
	if err != nil {
		logger.Error(msg.Fail("initialization failed"), "err", err)
		return fmt.Errorf("%w: %v", ErrInitAccounts, err)
	}

	logger.Info(msg.Start("starting"), "config", cfg.Source)
	return srv.Run(ctx)
}

func bootstrapAdmin(ctx context.Context, cfg *config.Config, spec string) error {
	email, password, err := accounts.ParseAdminSpec(spec)
	if err != nil {
		return err
	}
	store, err := accounts.OpenStore(ctx, cfg.Store)
	if err != nil {
		return err
	}
	defer store.Close()

	hasher, err := crypto.NewHasher(cfg.Auth.BcryptCost)
	if err != nil {
		return err
	}
	_, _, err = accounts.EnsureAdmin(ctx, store, hasher, email, password)
	return err
}
