package config

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Setenv("GOOGLE_CLIENT_ID", "client-id")
	t.Setenv("GOOGLE_CLIENT_SECRET", "client-secret")
	t.Setenv("GOOGLE_REDIRECT_URI", "http://localhost:8080/api/auth/google/callback")
	t.Setenv("LOGIN_REDIRECT_BASE", "http://intranet.moby.com")
	t.Setenv("DIRECTORY_BASE_URL", "http://directory:8081")
	t.Setenv("ROSTER_CHECK_URL", "http://roster:8082/check/")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, 8080, cfg.HTTPPort)
	assert.Equal(t, "https://accounts.google.com", cfg.GoogleIssuer)
	assert.Equal(t, "moby.com", cfg.AllowedEmailDomain)
	assert.Equal(t, time.Hour, cfg.SessionTTL)
	assert.Equal(t, 10*time.Second, cfg.ProviderTimeout)
	assert.Equal(t, 10*time.Second, cfg.UpstreamTimeout)
	assert.Equal(t, 5*time.Second, cfg.DirectoryTimeout)
	assert.False(t, cfg.CookieSecure)
	assert.Equal(t, http.SameSiteLaxMode, cfg.SameSite())
	assert.Equal(t, []string{"localhost:9092"}, cfg.KafkaBrokers)
}

func TestLoad_MissingRequired(t *testing.T) {
	t.Setenv("GOOGLE_CLIENT_ID", "")

	_, err := Load()
	require.Error(t, err)
}

func TestLoad_Overrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("SESSION_TTL", "30m")
	t.Setenv("COOKIE_SECURE", "true")
	t.Setenv("COOKIE_SAME_SITE", "strict")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092,kafka-2:9092")
	t.Setenv("ALLOWED_EMAIL_DOMAIN", "example.org")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 30*time.Minute, cfg.SessionTTL)
	assert.True(t, cfg.CookieSecure)
	assert.Equal(t, http.SameSiteStrictMode, cfg.SameSite())
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "example.org", cfg.AllowedEmailDomain)
}

func TestLoad_InvalidPort(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("LOGIN_HTTP_PORT", "70000")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid HTTP port")
}

func TestLoad_InvalidSameSite(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("COOKIE_SAME_SITE", "bogus")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SameSite")
}

func TestLoad_NonPositiveSessionTTL(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("SESSION_TTL", "0s")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "session TTL")
}
