package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"

	"github.com/caasmo/accounts/crypto"
	"golang.org/x/crypto/bcrypt"
)

func Validate(cfg *Config) error {
	if err := validateServer(&cfg.Server); err != nil {
		return fmt.Errorf("server config validation failed: %w", err)
	}
	if err := validateJwt(&cfg.Jwt); err != nil {
		return fmt.Errorf("jwt config validation failed: %w", err)
	}
	if err := validateAuth(&cfg.Auth); err != nil {
		return fmt.Errorf("auth config validation failed: %w", err)
	}
	if err := validateStore(&cfg.Store); err != nil {
		return fmt.Errorf("store config validation failed: %w", err)
	}
	if err := validateSmtp(&cfg.Smtp); err != nil {
		return fmt.Errorf("smtp config validation failed: %w", err)
	}
	if err := validateStorage(&cfg.Storage); err != nil {
		return fmt.Errorf("storage config validation failed: %w", err)
	}
	if err := validateCache(&cfg.Cache); err != nil {
		return fmt.Errorf("cache config validation failed: %w", err)
	}
	if err := validateMetrics(&cfg.Metrics); err != nil {
		return fmt.Errorf("metrics config validation failed: %w", err)
	}
	if err := validateLog(&cfg.Log); err != nil {
		return fmt.Errorf("log config validation failed: %w", err)
	}
	if err := validateNotifier(&cfg.Notifier); err != nil {
		return fmt.Errorf("notifier config validation failed: %w", err)
	}
	if err := validateEndpoints(&cfg.Endpoints); err != nil {
		return fmt.Errorf("endpoints config validation failed: %w", err)
	}
	if cfg.BlockRequestBody.Activated && cfg.BlockRequestBody.Limit <= 0 {
		return fmt.Errorf("block_request_body config validation failed: limit must be positive, got %d", cfg.BlockRequestBody.Limit)
	}
	return nil
}

// validateServer checks the Addr field is a host:port or :port. A bare
// port gets localhost as host.
func validateServer(server *Server) error {
	if server.Addr == "" {
		return errors.New("server address (Addr) cannot be empty")
	}

	host, port, err := net.SplitHostPort(server.Addr)
	if err != nil {
		if strings.HasPrefix(server.Addr, ":") {
			port = strings.TrimPrefix(server.Addr, ":")
			host = "localhost"
		} else {
			return fmt.Errorf("invalid server address format '%s': %w", server.Addr, err)
		}
	}
	if port == "" {
		return fmt.Errorf("server address '%s' must include a port", server.Addr)
	}
	if host == "" {
		host = "localhost"
	}
	server.Addr = net.JoinHostPort(host, port)

	if _, err := net.LookupPort("tcp", port); err != nil {
		return fmt.Errorf("invalid port '%s' in server address '%s': %w", port, server.Addr, err)
	}
	return nil
}

func validateJwt(jwt *Jwt) error {
	if len(jwt.AuthSecret) < crypto.MinKeyLength {
		return fmt.Errorf("auth_secret must be at least %d bytes", crypto.MinKeyLength)
	}
	if jwt.AuthTokenDuration.Duration <= 0 {
		return errors.New("auth_token_duration must be positive")
	}
	return nil
}

func validateAuth(auth *Auth) error {
	if auth.BcryptCost != 0 && (auth.BcryptCost < bcrypt.MinCost || auth.BcryptCost > bcrypt.MaxCost) {
		return fmt.Errorf("bcrypt_cost %d out of range [%d, %d]", auth.BcryptCost, bcrypt.MinCost, bcrypt.MaxCost)
	}
	if auth.OtpTTL.Duration <= 0 {
		return errors.New("otp_ttl must be positive")
	}
	return nil
}

func validateStore(store *Store) error {
	switch store.Driver {
	case StoreSqlite:
		if store.SqlitePath == "" {
			return errors.New("sqlite_path cannot be empty")
		}
		if store.SqlitePoolSize < 1 {
			return errors.New("sqlite_pool_size must be at least 1")
		}
	case StorePostgres:
		if store.PostgresDSN == "" {
			return errors.New("postgres_dsn cannot be empty")
		}
	default:
		return fmt.Errorf("unknown driver %q", store.Driver)
	}
	return nil
}

func validateSmtp(smtp *Smtp) error {
	if !smtp.Enabled {
		return nil
	}
	if smtp.Host == "" {
		return errors.New("host cannot be empty when smtp is enabled")
	}
	if smtp.Port <= 0 || smtp.Port > 65535 {
		return fmt.Errorf("invalid port %d", smtp.Port)
	}
	if smtp.FromAddress == "" {
		return errors.New("from_address cannot be empty when smtp is enabled")
	}
	if smtp.SendTimeout.Duration <= 0 {
		return errors.New("send_timeout must be positive")
	}
	if smtp.RateLimit <= 0 || smtp.Burst < 1 {
		return errors.New("rate_limit must be positive and burst at least 1")
	}
	return nil
}

func validateStorage(storage *Storage) error {
	if storage.MaxAvatarBytes <= 0 {
		return errors.New("max_avatar_bytes must be positive")
	}
	switch storage.Backend {
	case StorageLocal:
		if storage.LocalDir == "" {
			return errors.New("local_dir cannot be empty")
		}
	case StorageS3:
		if storage.S3.Bucket == "" {
			return errors.New("s3 bucket cannot be empty")
		}
		if storage.S3.Region == "" {
			return errors.New("s3 region cannot be empty")
		}
		if storage.S3.Endpoint != "" {
			if _, err := url.ParseRequestURI(storage.S3.Endpoint); err != nil {
				return fmt.Errorf("invalid s3 endpoint: %w", err)
			}
		}
	default:
		return fmt.Errorf("unknown backend %q", storage.Backend)
	}
	return nil
}

func validateCache(cache *Cache) error {
	switch cache.Level {
	case "small", "medium", "large", "very-large":
	default:
		return fmt.Errorf("unknown level %q", cache.Level)
	}
	if cache.UserTTL.Duration < 0 {
		return errors.New("user_ttl cannot be negative")
	}
	return nil
}

func validateMetrics(metrics *Metrics) error {
	if !metrics.Enabled {
		return nil
	}
	for _, ip := range metrics.AllowedIPs {
		if net.ParseIP(ip) == nil {
			return fmt.Errorf("invalid ip %q in allowed_ips", ip)
		}
	}
	return nil
}

func validateLog(log *Log) error {
	switch log.Format {
	case LogFormatText, LogFormatJson:
	default:
		return fmt.Errorf("unknown format %q", log.Format)
	}
	l := log.Request.Limits
	if l.URILength < 0 || l.UserAgentLength < 0 || l.RefererLength < 0 || l.RemoteIPLength < 0 {
		return errors.New("request limits cannot be negative")
	}
	return nil
}

func validateNotifier(notifier *Notifier) error {
	d := notifier.Discord
	if !d.Activated {
		return nil
	}
	if d.WebhookURL == "" {
		return errors.New("discord webhook_url cannot be empty when activated")
	}
	u, err := url.ParseRequestURI(d.WebhookURL)
	if err != nil || (u.Scheme != "https" && u.Scheme != "http") {
		return fmt.Errorf("invalid discord webhook_url %q", d.WebhookURL)
	}
	return nil
}

func validateEndpoints(e *Endpoints) error {
	all := map[string]string{
		"register":        e.Register,
		"login":           e.Login,
		"forgot_password": e.ForgotPassword,
		"reset_password":  e.ResetPassword,
		"verify_otp":      e.VerifyOtp,
		"profile":         e.Profile,
		"update_profile":  e.UpdateProfile,
		"upload_avatar":   e.UploadAvatar,
		"create_user":     e.CreateUser,
		"list_users":      e.ListUsers,
		"get_user":        e.GetUser,
		"update_user":     e.UpdateUser,
		"delete_user":     e.DeleteUser,
		"metrics":         e.Metrics,
		"list_endpoints":  e.ListEndpoints,
	}
	for name, def := range all {
		method, path := Split(def)
		if method == "" || !strings.HasPrefix(path, "/") {
			return fmt.Errorf("invalid endpoint %s: %q", name, def)
		}
	}
	return nil
}
