package config

import (
	"fmt"
	"net/netip"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Auth     AuthConfig
	Storage  StorageConfig
	Jobs     JobsConfig
	App      AppConfig
}

type ServerConfig struct {
	Port               string        `env:"PORT" envDefault:"8080"`
	CORSAllowedOrigins []string      `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`
	ShutdownTimeout    time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	// TrustedProxies lists the IPs/CIDRs allowed to set X-Forwarded-For.
	// Empty means the peer address is the client IP.
	TrustedProxies []string `env:"TRUSTED_PROXIES" envSeparator:","`
}

type DatabaseConfig struct {
	DSN         string `env:"DATABASE_URL"`
	AutoMigrate bool   `env:"DB_AUTO_MIGRATE" envDefault:"false"`
	MaxConns    int32  `env:"DB_MAX_CONNS" envDefault:"10"`
}

type RedisConfig struct {
	// URL is optional; token revocation falls back to a no-op store without it.
	URL string `env:"REDIS_URL"`
}

type AuthConfig struct {
	JWTSecret       string        `env:"JWT_SECRET"`
	Issuer          string        `env:"JWT_ISSUER" envDefault:"buildboard"`
	TokenTTL        time.Duration `env:"JWT_TTL" envDefault:"12h"`
	CookieName      string        `env:"AUTH_COOKIE_NAME" envDefault:"access_token"`
	CookieDomain    string        `env:"AUTH_COOKIE_DOMAIN"`
	CookieSecure    bool          `env:"AUTH_COOKIE_SECURE" envDefault:"false"`
	AllowSignup     bool          `env:"ALLOW_SIGNUP" envDefault:"false"`
	LoginRatePerMin int           `env:"LOGIN_RATE_PER_MIN" envDefault:"10"`
	LoginRateBurst  int           `env:"LOGIN_RATE_BURST" envDefault:"5"`
}

type StorageConfig struct {
	S3Bucket   string        `env:"S3_BUCKET"`
	S3Region   string        `env:"S3_REGION" envDefault:"us-east-1"`
	S3Endpoint string        `env:"S3_ENDPOINT"`
	PresignTTL time.Duration `env:"S3_PRESIGN_TTL" envDefault:"15m"`
}

type JobsConfig struct {
	PurgeSchedule  string        `env:"PURGE_SCHEDULE" envDefault:"0 0 3 * * *"`
	PurgeRetention time.Duration `env:"PURGE_RETENTION" envDefault:"720h"`
	// JobTimeout bounds a single run of any scheduled job.
	JobTimeout time.Duration `env:"JOB_TIMEOUT" envDefault:"10m"`
}

type AppConfig struct {
	Environment string `env:"APP_ENV" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	Version     string `env:"APP_VERSION" envDefault:"1.0.0"`
	ServiceName string `env:"SERVICE_NAME" envDefault:"buildboard-api"`
}

func Load() (*Config, error) {
	// Load .env file if it exists (ignore error in production)
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("no .env file found, using environment variables")
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	for _, p := range c.Server.TrustedProxies {
		if !validProxy(p) {
			return fmt.Errorf("TRUSTED_PROXIES: %q is not an IP or CIDR", p)
		}
	}

	if strings.TrimSpace(c.Database.DSN) == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.IsProduction() && len(c.Auth.JWTSecret) < 32 {
		return fmt.Errorf("JWT_SECRET must be at least 32 characters in production")
	}

	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("JWT_TTL must be positive")
	}

	if c.Auth.LoginRatePerMin <= 0 || c.Auth.LoginRateBurst <= 0 {
		return fmt.Errorf("LOGIN_RATE_PER_MIN and LOGIN_RATE_BURST must be positive")
	}

	if c.Jobs.JobTimeout <= 0 {
		return fmt.Errorf("JOB_TIMEOUT must be positive")
	}

	return nil
}

func validProxy(s string) bool {
	if _, err := netip.ParsePrefix(s); err == nil {
		return true
	}
	_, err := netip.ParseAddr(s)
	return err == nil
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}
