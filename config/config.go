package config

import (
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"
)

const (
	StoreSqlite   = "sqlite"
	StorePostgres = "postgres"

	StorageLocal = "local"
	StorageS3    = "s3"

	LogFormatText = "text"
	LogFormatJson = "json"
)

type Config struct {
	Server    Server    `toml:"server"`
	Jwt       Jwt       `toml:"jwt"`
	Auth      Auth      `toml:"auth"`
	Store     Store     `toml:"store"`
	Smtp      Smtp      `toml:"smtp"`
	Storage   Storage   `toml:"storage"`
	Cache     Cache     `toml:"cache"`
	Metrics   Metrics   `toml:"metrics"`
	Log       Log       `toml:"log"`
	Notifier  Notifier  `toml:"notifier"`
	Endpoints Endpoints `toml:"endpoints"`

	BlockRequestBody BlockRequestBody `toml:"block_request_body"`

	// Source is the file the config was read from, empty for defaults.
	Source string `toml:"-"`
}

type Server struct {
	Addr                    string   `toml:"addr"`
	ShutdownGracefulTimeout Duration `toml:"shutdown_graceful_timeout"`
	ReadTimeout             Duration `toml:"read_timeout"`
	ReadHeaderTimeout       Duration `toml:"read_header_timeout"`
	WriteTimeout            Duration `toml:"write_timeout"`
	IdleTimeout             Duration `toml:"idle_timeout"`
	// ClientIpProxyHeader names the header holding the client ip when
	// running behind a reverse proxy, e.g. "X-Forwarded-For".
	ClientIpProxyHeader string `toml:"client_ip_proxy_header"`
}

// BlockRequestBody caps request bodies before routing. Routes with their own
// limit, like the avatar upload, are listed in ExcludedPaths.
type BlockRequestBody struct {
	Activated     bool     `toml:"activated"`
	Limit         int64    `toml:"limit"`
	ExcludedPaths []string `toml:"excluded_paths"`
}

type Jwt struct {
	AuthSecret        string   `toml:"auth_secret"`
	AuthTokenDuration Duration `toml:"auth_token_duration"`
}

type Auth struct {
	BcryptCost int      `toml:"bcrypt_cost"`
	OtpTTL     Duration `toml:"otp_ttl"`
}

type Store struct {
	Driver         string `toml:"driver"`
	SqlitePath     string `toml:"sqlite_path"`
	SqlitePoolSize int    `toml:"sqlite_pool_size"`
	PostgresDSN    string `toml:"postgres_dsn"`
}

type Smtp struct {
	Enabled     bool     `toml:"enabled"`
	Host        string   `toml:"host"`
	Port        int      `toml:"port"`
	Username    string   `toml:"username"`
	Password    string   `toml:"password"`
	FromName    string   `toml:"from_name"`
	FromAddress string   `toml:"from_address"`
	SendTimeout Duration `toml:"send_timeout"`
	// RateLimit is the sustained outbound messages per second, Burst the
	// number allowed at once.
	RateLimit float64 `toml:"rate_limit"`
	Burst     int     `toml:"burst"`
}

type Storage struct {
	Backend        string `toml:"backend"`
	LocalDir       string `toml:"local_dir"`
	MaxAvatarBytes int64  `toml:"max_avatar_bytes"`
	S3             S3     `toml:"s3"`
}

type S3 struct {
	Bucket       string `toml:"bucket"`
	Region       string `toml:"region"`
	Endpoint     string `toml:"endpoint"`
	AccessKey    string `toml:"access_key"`
	SecretKey    string `toml:"secret_key"`
	UsePathStyle bool   `toml:"use_path_style"`
}

type Cache struct {
	// Level is one of small, medium, large, very-large.
	Level   string   `toml:"level"`
	UserTTL Duration `toml:"user_ttl"`
}

type Metrics struct {
	Enabled    bool     `toml:"enabled"`
	AllowedIPs []string `toml:"allowed_ips"`
}

type Log struct {
	Level   LogLevel   `toml:"level"`
	Format  string     `toml:"format"`
	Request LogRequest `toml:"request"`
}

type LogRequest struct {
	Activated bool             `toml:"activated"`
	Limits    LogRequestLimits `toml:"limits"`
}

type LogRequestLimits struct {
	URILength       int `toml:"uri_length"`
	UserAgentLength int `toml:"user_agent_length"`
	RefererLength   int `toml:"referer_length"`
	RemoteIPLength  int `toml:"remote_ip_length"`
}

type Notifier struct {
	Discord Discord `toml:"discord"`
}

type Discord struct {
	Activated   bool     `toml:"activated"`
	WebhookURL  string   `toml:"webhook_url"`
	SendTimeout Duration `toml:"send_timeout"`
}

// Endpoints holds "METHOD /path" route definitions.
type Endpoints struct {
	Register       string `toml:"register"`
	Login          string `toml:"login"`
	ForgotPassword string `toml:"forgot_password"`
	ResetPassword  string `toml:"reset_password"`
	VerifyOtp      string `toml:"verify_otp"`
	Profile        string `toml:"profile"`
	UpdateProfile  string `toml:"update_profile"`
	UploadAvatar   string `toml:"upload_avatar"`
	CreateUser     string `toml:"create_user"`
	ListUsers      string `toml:"list_users"`
	GetUser        string `toml:"get_user"`
	UpdateUser     string `toml:"update_user"`
	DeleteUser     string `toml:"delete_user"`
	Metrics        string `toml:"metrics"`
	ListEndpoints  string `toml:"list_endpoints"`
}

// Split returns the method and path of an endpoint definition.
func Split(endpoint string) (method, path string) {
	method, path, ok := strings.Cut(strings.TrimSpace(endpoint), " ")
	if !ok {
		return "", ""
	}
	return method, strings.TrimSpace(path)
}

// Duration wraps time.Duration for TOML text encoding.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// LogLevel wraps slog.Level for TOML text encoding.
type LogLevel struct {
	Level slog.Level
}

func (l *LogLevel) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "debug":
		l.Level = slog.LevelDebug
	case "info":
		l.Level = slog.LevelInfo
	case "warn":
		l.Level = slog.LevelWarn
	case "error":
		l.Level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q", string(text))
	}
	return nil
}

func (l LogLevel) MarshalText() ([]byte, error) {
	return []byte(l.Level.String()), nil
}

// Provider gives concurrent safe access to the current config.
type Provider struct {
	value atomic.Pointer[Config]
}

func NewProvider(cfg *Config) *Provider {
	if cfg == nil {
		panic("config cannot be nil")
	}
	p := &Provider{}
	p.value.Store(cfg)
	return p
}

func (p *Provider) Get() *Config {
	return p.value.Load()
}

func (p *Provider) Update(cfg *Config) {
	if cfg == nil {
		return
	}
	p.value.Store(cfg)
}
