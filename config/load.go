package config

import (
	"bytes"
	"fmt"
	"os"

	toml "github.com/pelletier/go-toml/v2"
)

// Environment variables that override secrets from the config file.
const (
	EnvJwtSecret    = "ACCOUNTS_JWT_SECRET"
	EnvSmtpPassword = "ACCOUNTS_SMTP_PASSWORD"
	EnvS3SecretKey  = "ACCOUNTS_S3_SECRET_KEY"
	EnvPostgresDSN  = "ACCOUNTS_POSTGRES_DSN"
)

// Decode overlays TOML data onto the defaults. Unknown keys are an error.
func Decode(data []byte) (*Config, error) {
	cfg := NewDefaultConfig()
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}

// LoadFile reads the TOML file at path, applies environment overrides and
// validates the result. An empty path yields the defaults.
func LoadFile(path string) (*Config, error) {
	cfg := NewDefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		cfg, err = Decode(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		cfg.Source = path
	}

	ApplyEnv(cfg, os.LookupEnv)

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv sets secrets from the environment, lookup follows os.LookupEnv.
func ApplyEnv(cfg *Config, lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvJwtSecret); ok && v != "" {
		cfg.Jwt.AuthSecret = v
	}
	if v, ok := lookup(EnvSmtpPassword); ok && v != "" {
		cfg.Smtp.Password = v
	}
	if v, ok := lookup(EnvS3SecretKey); ok && v != "" {
		cfg.Storage.S3.SecretKey = v
	}
	if v, ok := lookup(EnvPostgresDSN); ok && v != "" {
		cfg.Store.PostgresDSN = v
	}
}

// Marshal encodes the config as TOML.
func Marshal(cfg *Config) ([]byte, error) {
	return toml.Marshal(cfg)
}
