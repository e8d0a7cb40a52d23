package config

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	pkgconfig "github.com/mobydigital/login-service/pkg/config"
)

// Config holds all configuration for the login service.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort int `env:"LOGIN_HTTP_PORT" envDefault:"8080"`

	// Google OAuth / OpenID Connect
	GoogleClientID     string `env:"GOOGLE_CLIENT_ID,required"`
	GoogleClientSecret string `env:"GOOGLE_CLIENT_SECRET,required"`
	GoogleRedirectURI  string `env:"GOOGLE_REDIRECT_URI,required"`
	GoogleIssuer       string `env:"GOOGLE_ISSUER" envDefault:"https://accounts.google.com"`

	// Frontend base URL for post-login redirects
	LoginRedirectBase string `env:"LOGIN_REDIRECT_BASE,required"`

	// Email domain policy
	AllowedEmailDomain string `env:"ALLOWED_EMAIL_DOMAIN" envDefault:"moby.com"`

	// Upstream intranet services
	DirectoryBaseURL string `env:"DIRECTORY_BASE_URL,required"`
	RosterCheckURL   string `env:"ROSTER_CHECK_URL,required"`

	// Per-call timeouts for upstream requests. ProviderTimeout bounds
	// Google traffic (discovery, JWKS, token exchange); UpstreamTimeout is
	// the whole-request bound of the shared directory/roster client.
	ProviderTimeout  time.Duration `env:"PROVIDER_TIMEOUT" envDefault:"10s"`
	UpstreamTimeout  time.Duration `env:"UPSTREAM_TIMEOUT" envDefault:"10s"`
	DirectoryTimeout time.Duration `env:"DIRECTORY_TIMEOUT" envDefault:"5s"`
	RosterTimeout    time.Duration `env:"ROSTER_TIMEOUT" envDefault:"5s"`
	HTTPMaxRetries   int           `env:"HTTP_MAX_RETRIES" envDefault:"2"`

	// Redis session store
	RedisAddr string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPass string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB   int    `env:"REDIS_DB" envDefault:"0"`

	// Session lifetime and cookie attributes
	SessionTTL     time.Duration `env:"SESSION_TTL" envDefault:"1h"`
	CookieSecure   bool          `env:"COOKIE_SECURE" envDefault:"false"`
	CookieSameSite string        `env:"COOKIE_SAME_SITE" envDefault:"lax"`

	// Kafka
	KafkaBrokers []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`

	// Tracing
	OTLPEndpoint    string  `env:"OTLP_ENDPOINT" envDefault:"localhost:4318"`
	TraceSampleRate float64 `env:"TRACE_SAMPLE_RATE" envDefault:"1.0"`
	TracingEnabled  bool    `env:"TRACING_ENABLED" envDefault:"false"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load login config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate checks configuration invariants.
func (c *Config) validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("session TTL must be positive, got %s", c.SessionTTL)
	}
	if c.AllowedEmailDomain == "" {
		return fmt.Errorf("allowed email domain must not be empty")
	}
	if _, err := parseSameSite(c.CookieSameSite); err != nil {
		return err
	}
	return nil
}

// SameSite returns the cookie SameSite mode configured via COOKIE_SAME_SITE.
func (c *Config) SameSite() http.SameSite {
	mode, err := parseSameSite(c.CookieSameSite)
	if err != nil {
		return http.SameSiteLaxMode
	}
	return mode
}

func parseSameSite(v string) (http.SameSite, error) {
	switch strings.ToLower(v) {
	case "lax":
		return http.SameSiteLaxMode, nil
	case "strict":
		return http.SameSiteStrictMode, nil
	case "none":
		return http.SameSiteNoneMode, nil
	default:
		return 0, fmt.Errorf("invalid cookie SameSite mode: %q", v)
	}
}
