package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Auth modes select how the request guard resolves identities.
const (
	AuthModeToken   = "token"
	AuthModeSession = "session"
)

type Config struct {
	Port     string `env:"PORT" envDefault:"8080"`
	AuthMode string `env:"AUTH_MODE" envDefault:"token"`

	JWTSecret        string        `env:"JWT_SECRET"`
	RefreshSecret    string        `env:"REFRESH_SECRET"`
	JWTAccessExpiry  time.Duration `env:"JWT_ACCESS_EXPIRY" envDefault:"15m"`
	JWTRefreshExpiry time.Duration `env:"JWT_REFRESH_EXPIRY" envDefault:"168h"`
	RefreshRotation  bool          `env:"REFRESH_ROTATION" envDefault:"true"`

	EncryptionKey string `env:"ENCRYPTION_KEY"`

	DBDriver    string `env:"DB_DRIVER" envDefault:"postgres"`
	DatabaseURL string `env:"DATABASE_URL"`
	SQLitePath  string `env:"SQLITE_PATH" envDefault:"questlog.db"`

	GoogleClientID     string `env:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `env:"GOOGLE_CLIENT_SECRET"`
	GoogleCallbackURL  string `env:"GOOGLE_CALLBACK_URL" envDefault:"http://localhost:8080/auth/google/callback"`

	MailFrom               string `env:"MAIL_FROM"`
	MailGoogleRefreshToken string `env:"MAIL_GOOGLE_REFRESH_TOKEN"`

	// MailLogSecrets prints reset links in full when mail is only logged.
	// Local development only.
	MailLogSecrets bool `env:"MAIL_LOG_SECRETS" envDefault:"false"`

	GoogleProjectID     string `env:"GOOGLE_PROJECT_ID"`
	PubSubTopic         string `env:"PUBSUB_TOPIC" envDefault:"auth-events"`
	GoogleCredentials   string `env:"GOOGLE_CREDENTIALS"`
	FirebaseCredentials string `env:"FIREBASE_CREDENTIALS"`

	LoginRateLimit  int           `env:"LOGIN_RATE_LIMIT" envDefault:"5"`
	LoginRateWindow time.Duration `env:"LOGIN_RATE_WINDOW" envDefault:"15m"`
	SessionTTL      time.Duration `env:"SESSION_TTL" envDefault:"24h"`
	ResetTokenTTL   time.Duration `env:"RESET_TOKEN_TTL" envDefault:"1h"`
	CleanupInterval time.Duration `env:"CLEANUP_INTERVAL" envDefault:"10m"`

	CookieSecure       bool     `env:"COOKIE_SECURE" envDefault:"true"`
	CSRFExemptPaths    []string `env:"CSRF_EXEMPT_PATHS" envSeparator:"," envDefault:"/auth/logout"`
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`
	PublicBaseURL      string   `env:"PUBLIC_BASE_URL"`

	// TrustedProxies lists proxy addresses whose X-Forwarded-For is honored
	// when resolving the client IP for rate limiting. Empty trusts none.
	TrustedProxies []string `env:"TRUSTED_PROXIES" envSeparator:","`

	TLSCertFile string `env:"TLS_CERT_FILE"`
	TLSKeyFile  string `env:"TLS_KEY_FILE"`
}

// Load reads an optional .env file (or the given files) and parses the
// environment into a Config.
func Load(envFiles ...string) (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(envFiles...); err != nil && len(envFiles) > 0 {
		return nil, fmt.Errorf("load env files: %w", err)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	cfg.CSRFExemptPaths = trimCSV(cfg.CSRFExemptPaths)
	cfg.CORSAllowedOrigins = trimCSV(cfg.CORSAllowedOrigins)
	cfg.TrustedProxies = trimCSV(cfg.TrustedProxies)
	cfg.AuthMode = strings.ToLower(strings.TrimSpace(cfg.AuthMode))
	cfg.DBDriver = strings.ToLower(strings.TrimSpace(cfg.DBDriver))

	if !cfg.CookieSecure {
		log.Printf("[WARN] COOKIE_SECURE is disabled, auth cookies will be sent over plain HTTP")
	}
	return &cfg, nil
}

// Validate reports configuration that would make the server unusable.
func (c *Config) Validate() error {
	var errs []error
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.RefreshSecret == "" {
		errs = append(errs, errors.New("REFRESH_SECRET is required"))
	}
	if c.JWTSecret != "" && c.JWTSecret == c.RefreshSecret {
		errs = append(errs, errors.New("JWT_SECRET and REFRESH_SECRET must differ"))
	}
	if c.EncryptionKey == "" {
		errs = append(errs, errors.New("ENCRYPTION_KEY is required"))
	}
	switch c.AuthMode {
	case AuthModeToken, AuthModeSession:
	default:
		errs = append(errs, fmt.Errorf("unknown AUTH_MODE %q", c.AuthMode))
	}
	switch c.DBDriver {
	case "postgres":
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for the postgres driver"))
		}
	case "sqlite":
	default:
		errs = append(errs, fmt.Errorf("unknown DB_DRIVER %q", c.DBDriver))
	}
	if c.LoginRateLimit <= 0 || c.LoginRateWindow <= 0 {
		errs = append(errs, errors.New("LOGIN_RATE_LIMIT and LOGIN_RATE_WINDOW must be positive"))
	}
	for _, d := range []struct {
		key   string
		value time.Duration
	}{
		{"JWT_ACCESS_EXPIRY", c.JWTAccessExpiry},
		{"JWT_REFRESH_EXPIRY", c.JWTRefreshExpiry},
		{"SESSION_TTL", c.SessionTTL},
		{"RESET_TOKEN_TTL", c.ResetTokenTTL},
		{"CLEANUP_INTERVAL", c.CleanupInterval},
	} {
		if d.value <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %s", d.key, d.value))
		}
	}
	return errors.Join(errs...)
}

// GoogleOAuthEnabled reports whether the Google sign-in routes can be served.
func (c *Config) GoogleOAuthEnabled() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != ""
}

// trimCSV removes empty entries from a string slice.
func trimCSV(values []string) []string {
	result := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v != "" {
			result = append(result, v)
		}
	}
	if len(result) == 0 {
		return nil
	}
	return result
}
