package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testConfig struct {
	Port    int           `env:"LOADER_TEST_PORT" envDefault:"8080"`
	Suffix  string        `env:"LOADER_TEST_SUFFIX" envDefault:"@example.com"`
	Timeout time.Duration `env:"LOADER_TEST_TIMEOUT" envDefault:"5s"`
	Secure  bool          `env:"LOADER_TEST_SECURE" envDefault:"false"`
}

func TestLoad_Defaults(t *testing.T) {
	var cfg testConfig
	err := Load(&cfg)

	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "@example.com", cfg.Suffix)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.False(t, cfg.Secure)
}

func TestLoad_FromEnvVars(t *testing.T) {
	t.Setenv("LOADER_TEST_PORT", "9001")
	t.Setenv("LOADER_TEST_SUFFIX", "@corp.io")
	t.Setenv("LOADER_TEST_TIMEOUT", "750ms")
	t.Setenv("LOADER_TEST_SECURE", "true")

	var cfg testConfig
	err := Load(&cfg)

	require.NoError(t, err)
	assert.Equal(t, 9001, cfg.Port)
	assert.Equal(t, "@corp.io", cfg.Suffix)
	assert.Equal(t, 750*time.Millisecond, cfg.Timeout)
	assert.True(t, cfg.Secure)
}

type requiredConfig struct {
	ClientSecret string `env:"LOADER_TEST_CLIENT_SECRET,required"`
}

func TestLoad_RequiredFieldMissing(t *testing.T) {
	var cfg requiredConfig
	err := Load(&cfg)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")
}

func TestLoad_InvalidValue(t *testing.T) {
	t.Setenv("LOADER_TEST_PORT", "not-a-number")

	var cfg testConfig
	err := Load(&cfg)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")
}
