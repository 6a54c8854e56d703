package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"

	"modernmen-backend/utils"
)

type ServerConfig struct {
	Port        string   `env:"PORT,default=8080"`
	Env         string   `env:"APP_ENV,default=development"`
	CORSOrigins []string `env:"CORS_ORIGINS,default=http://localhost:3000"`
}

type DatabaseConfig struct {
	Driver          string        `env:"DB_DRIVER,default=postgres"`
	URL             string        `env:"DB_URL"`
	MaxIdleConns    int           `env:"DB_MAX_IDLE_CONNS,default=10"`
	MaxOpenConns    int           `env:"DB_MAX_OPEN_CONNS,default=100"`
	ConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME,default=1h"`
	SlowQuery       time.Duration `env:"DB_SLOW_QUERY,default=200ms"`
}

type AuthConfig struct {
	JWTSecret    string `env:"JWT_SECRET"`
	ExpiryHours  int    `env:"JWT_EXPIRY_HOURS,default=24"`
	CookieName   string `env:"AUTH_COOKIE_NAME,default=token"`
	CookieSecure bool   `env:"AUTH_COOKIE_SECURE,default=false"`
	OIDCIssuer   string `env:"OIDC_ISSUER"`
	OIDCClientID string `env:"OIDC_CLIENT_ID"`
}

func (a AuthConfig) TokenTTL() time.Duration {
	return time.Duration(a.ExpiryHours) * time.Hour
}

func (a AuthConfig) OIDCEnabled() bool {
	return a.OIDCIssuer != "" && a.OIDCClientID != ""
}

type SMTPConfig struct {
	Host     string `env:"SMTP_HOST"`
	Port     int    `env:"SMTP_PORT,default=587"`
	User     string `env:"SMTP_USER"`
	Password string `env:"SMTP_PASSWORD"`
	From     string `env:"SMTP_FROM,default=no-reply@modernmen.local"`
}

type TwilioConfig struct {
	AccountSID string `env:"TWILIO_ACCOUNT_SID"`
	AuthToken  string `env:"TWILIO_AUTH_TOKEN"`
	FromNumber string `env:"TWILIO_PHONE_NUMBER"`
}

func (t TwilioConfig) Enabled() bool {
	return t.AccountSID != "" && t.AuthToken != "" && t.FromNumber != ""
}

type RateLimitConfig struct {
	Requests int           `env:"RATE_LIMIT_REQUESTS,default=100"`
	Window   time.Duration `env:"RATE_LIMIT_WINDOW,default=15m"`
	RedisURL string        `env:"REDIS_URL"`
}

type ReminderConfig struct {
	Enabled  bool   `env:"REMINDERS_ENABLED,default=true"`
	Schedule string `env:"REMINDER_SCHEDULE,default=0 9 * * *"`
}

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Auth      AuthConfig
	SMTP      SMTPConfig
	Twilio    TwilioConfig
	RateLimit RateLimitConfig
	Reminders ReminderConfig
	MediaDir  string `env:"MEDIA_DIR,default=./uploads"`
	LogLevel  string `env:"LOG_LEVEL,default=info"`
	LogFormat string `env:"LOG_FORMAT,default=text"`
}

// App is the loaded configuration, set by Load.
var App *Config

// Load reads .env (if any) and decodes the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		utils.Log.Debug("No .env file found")
	}

	cfg := &Config{}
	if err := envdecode.Decode(cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return nil, fmt.Errorf("decode environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	utils.ConfigureLogger(cfg.LogLevel, cfg.LogFormat)
	App = cfg
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "postgres":
		if c.Database.URL == "" {
			return errors.New("DB_URL is required for the postgres driver")
		}
	case "sqlite":
		if c.Database.URL == "" {
			c.Database.URL = "modernmen.db"
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.Database.Driver)
	}

	if c.Auth.JWTSecret == "" {
		if c.IsProduction() {
			return errors.New("JWT_SECRET is required in production")
		}
		c.Auth.JWTSecret = utils.GenerateJWTSecret()
		utils.Log.Warn("JWT_SECRET not set, using an ephemeral secret")
	}
	if c.RateLimit.Requests <= 0 || c.RateLimit.Window <= 0 {
		return errors.New("rate limit requests and window must be positive")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}
