package config

import (
	"time"

	"github.com/caasmo/accounts/crypto"
)

const (
	DefaultAuthTokenDuration = time.Hour
	DefaultOtpTTL            = 10 * time.Minute
	DefaultMaxAvatarBytes    = 2 << 20
)

// NewDefaultConfig returns a config ready to run a local sqlite instance.
// The jwt secret is random, so tokens do not survive a restart unless a
// secret is configured.
func NewDefaultConfig() *Config {
	return &Config{
		Server: Server{
			Addr:                    ":8080",
			ShutdownGracefulTimeout: Duration{15 * time.Second},
			ReadTimeout:             Duration{2 * time.Second},
			ReadHeaderTimeout:       Duration{2 * time.Second},
			WriteTimeout:            Duration{3 * time.Second},
			IdleTimeout:             Duration{1 * time.Minute},
		},
		Jwt: Jwt{
			AuthSecret:        crypto.RandomString(crypto.MinKeyLength, crypto.AlphanumericAlphabet),
			AuthTokenDuration: Duration{DefaultAuthTokenDuration},
		},
		Auth: Auth{
			BcryptCost: 0,
			OtpTTL:     Duration{DefaultOtpTTL},
		},
		Store: Store{
			Driver:         StoreSqlite,
			SqlitePath:     "accounts.db",
			SqlitePoolSize: 4,
		},
		Smtp: Smtp{
			Enabled:     false,
			Port:        587,
			FromName:    "Accounts",
			SendTimeout: Duration{10 * time.Second},
			RateLimit:   1,
			Burst:       5,
		},
		Storage: Storage{
			Backend:        StorageLocal,
			LocalDir:       "uploads",
			MaxAvatarBytes: DefaultMaxAvatarBytes,
			S3: S3{
				Region: "us-east-1",
			},
		},
		Cache: Cache{
			Level:   "small",
			UserTTL: Duration{time.Minute},
		},
		Metrics: Metrics{
			Enabled:    false,
			AllowedIPs: []string{"127.0.0.1"},
		},
		Log: Log{
			Format: LogFormatText,
			Request: LogRequest{
				Activated: true,
				Limits: LogRequestLimits{
					URILength:       512,
					UserAgentLength: 256,
					RefererLength:   512,
					RemoteIPLength:  64,
				},
			},
		},
		Notifier: Notifier{
			Discord: Discord{
				SendTimeout: Duration{5 * time.Second},
			},
		},
		Endpoints: Endpoints{
			Register:       "POST /api/auth/register",
			Login:          "POST /api/auth/login",
			ForgotPassword: "POST /api/auth/forgot-password",
			ResetPassword:  "POST /api/auth/reset-password",
			VerifyOtp:      "POST /api/auth/verify-otp",
			Profile:        "GET /api/auth/profile",
			UpdateProfile:  "PUT /api/auth/profile",
			UploadAvatar:   "POST /api/auth/profile/avatar",
			CreateUser:     "POST /api/users",
			ListUsers:      "GET /api/users",
			GetUser:        "GET /api/users/:id",
			UpdateUser:     "PUT /api/users/:id",
			DeleteUser:     "DELETE /api/users/:id",
			Metrics:        "GET /metrics",
			ListEndpoints:  "GET /api/endpoints",
		},
		BlockRequestBody: BlockRequestBody{
			Activated:     true,
			Limit:         64 << 10,
			ExcludedPaths: []string{"/api/auth/profile/avatar"},
		},
	}
}
