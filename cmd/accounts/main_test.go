package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/caasmo/accounts/config"
	"github.com/caasmo/accounts/db/zombiezen"
)

func writeConfig(t *testing.T, mutate func(*config.Config)) string {
	t.Helper()
	cfg := config.NewDefaultConfig()
	dir := t.TempDir()
	cfg.Store.SqlitePath = filepath.Join(dir, "accounts.db")
	cfg.Storage.LocalDir = filepath.Join(dir, "uploads")
	cfg.Auth.BcryptCost = 4
	if mutate != nil {
		mutate(cfg)
	}
	data, err := config.Marshal(cfg)
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "accounts.toml")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRun_InvalidFlag(t *testing.T) {
	err := run(context.Background(), []string{"-nope"}, &bytes.Buffer{})
	if !errors.Is(err, ErrInvalidFlag) {
		t.Fatalf("expected ErrInvalidFlag, got %v", err)
	}
}

func TestRun_MissingEnvFile(t *testing.T) {
	err := run(context.Background(), []string{"-env", filepath.Join(t.TempDir(), "missing.env")}, &bytes.Buffer{})
	if !errors.Is(err, ErrLoadEnv) {
		t.Fatalf("expected ErrLoadEnv, got %v", err)
	}
}

func TestRun_InvalidConfig(t *testing.T) {
	path := writeConfig(t, func(c *config.Config) { c.Store.Driver = "mysql" })
	err := run(context.Background(), []string{"-config", path}, &bytes.Buffer{})
	if !errors.Is(err, ErrLoadConfig) {
		t.Fatalf("expected ErrLoadConfig, got %v", err)
	}
}

func TestRun_CreateAdmin(t *testing.T) {
	path := writeConfig(t, nil)
	out := &bytes.Buffer{}

	if err := run(context.Background(), []string{"-config", path, "-create-admin", "root@x.com:Admin1"}, out); err != nil {
		t.Fatalf("run() error = %v\n%s", err, out.String())
	}
	if strings.Contains(out.String(), "Admin1") {
		t.Error("admin password written to the log")
	}

	cfg, err := config.LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	store, err := zombiezen.Open(context.Background(), cfg.Store.SqlitePath, 1)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()
	u, err := store.GetUserByEmail(context.Background(), "root@x.com")
	if err != nil {
		t.Fatalf("admin not created: %v", err)
	}
	if !u.IsAdmin() {
		t.Errorf("expected admin role, got %q", u.Role)
	}
}

func TestRun_CreateAdminBadSpec(t *testing.T) {
	path := writeConfig(t, nil)
	err := run(context.Background(), []string{"-config", path, "-create-admin", "root@x.com"}, &bytes.Buffer{})
	if !errors.Is(err, ErrCreateAdmin) {
		t.Fatalf("expected ErrCreateAdmin, got %v", err)
	}
}

func TestRun_EnvFileOverridesSecret(t *testing.T) {
	path := writeConfig(t, func(c *config.Config) { c.Jwt.AuthSecret = "short" })
	env := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(env, []byte(config.EnvJwtSecret+"=0123456789abcdef0123456789abcdef\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Unsetenv(config.EnvJwtSecret) })

	err := run(context.Background(), []string{"-env", env, "-config", path, "-create-admin", "root@x.com:Admin1"}, &bytes.Buffer{})
	if err != nil {
		t.Fatalf("run() error = %v", err)
	}
}
