package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testConfig struct {
	CommonConfig `yaml:",inline"`
	Http         HTTPServerConfig `yaml:"http,inline"`
	Metrics      MetricsConfig    `yaml:"metrics,inline"`

	BotToken string        `env:"TEST_BOT_TOKEN" yaml:"bot_token" required:"true"`
	BaseURL  string        `env:"TEST_BASE_URL" yaml:"base_url" default:"http://localhost:8000"`
	Timeout  time.Duration `env:"TEST_TIMEOUT" yaml:"timeout" default:"60s"`
	Debug    bool          `env:"TEST_DEBUG" yaml:"debug" default:"false"`
	Tags     []string      `env:"TEST_TAGS" yaml:"tags"`
}

// Validate implements the Validator interface to validate embedded structs
func (c testConfig) Validate() error {
	if err := c.CommonConfig.Validate(); err != nil {
		return err
	}
	if err := c.Http.Validate(); err != nil {
		return err
	}
	return c.Metrics.Validate()
}

func setEnv(t *testing.T, vars map[string]string) {
	t.Helper()
	for k, v := range vars {
		t.Setenv(k, v)
	}
}

func TestGetConfigFromEnvVars(t *testing.T) {
	t.Run("defaults applied, required satisfied", func(t *testing.T) {
		setEnv(t, map[string]string{"TEST_BOT_TOKEN": "123:abc"})

		var cfg testConfig
		require.NoError(t, GetConfigFromEnvVars(&cfg))

		assert.Equal(t, "123:abc", cfg.BotToken)
		assert.Equal(t, "http://localhost:8000", cfg.BaseURL)
		assert.Equal(t, 60*time.Second, cfg.Timeout)
		assert.Equal(t, "info", cfg.LogLevel)
		assert.Equal(t, "json", cfg.LogFormat)
		assert.Equal(t, 8080, cfg.Http.Port)
		assert.Equal(t, 9090, cfg.Metrics.Port)
		assert.False(t, cfg.Debug)
	})

	t.Run("environment overrides defaults", func(t *testing.T) {
		setEnv(t, map[string]string{
			"TEST_BOT_TOKEN": "123:abc",
			"TEST_BASE_URL":  "https://compass.example.com",
			"TEST_TIMEOUT":   "5s",
			"TEST_DEBUG":     "true",
			"TEST_TAGS":      "art, culture ,events",
			"LOG_LEVEL":      "debug",
			"HTTP_PORT":      "9999",
		})

		var cfg testConfig
		require.NoError(t, GetConfigFromEnvVars(&cfg))

		assert.Equal(t, "https://compass.example.com", cfg.BaseURL)
		assert.Equal(t, 5*time.Second, cfg.Timeout)
		assert.True(t, cfg.Debug)
		assert.Equal(t, []string{"art", "culture", "events"}, cfg.Tags)
		assert.Equal(t, "debug", cfg.LogLevel)
		assert.Equal(t, 9999, cfg.Http.Port)
	})

	t.Run("missing required field fails and resets config", func(t *testing.T) {
		var cfg testConfig
		err := GetConfigFromEnvVars(&cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "TEST_BOT_TOKEN")
		assert.Empty(t, cfg.BaseURL) // no partial loads
	})

	t.Run("invalid value type fails", func(t *testing.T) {
		setEnv(t, map[string]string{
			"TEST_BOT_TOKEN": "123:abc",
			"TEST_TIMEOUT":   "not-a-duration",
		})

		var cfg testConfig
		require.Error(t, GetConfigFromEnvVars(&cfg))
	})

	t.Run("validator failure is reported", func(t *testing.T) {
		setEnv(t, map[string]string{
			"TEST_BOT_TOKEN": "123:abc",
			"LOG_LEVEL":      "loud",
		})

		var cfg testConfig
		err := GetConfigFromEnvVars(&cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "log_level")
	})
}

func TestGetConfigWithYAMLOverlay(t *testing.T) {
	yamlContent := "bot_token: from-file\nbase_url: http://file.example.com\n"
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yamlContent), 0o600))

	t.Run("file values used when env unset", func(t *testing.T) {
		var cfg testConfig
		require.NoError(t, GetConfig(&cfg, path, false))
		assert.Equal(t, "from-file", cfg.BotToken)
		assert.Equal(t, "http://file.example.com", cfg.BaseURL)
	})

	t.Run("env overrides file", func(t *testing.T) {
		t.Setenv("TEST_BASE_URL", "http://env.example.com")

		var cfg testConfig
		require.NoError(t, GetConfig(&cfg, path, false))
		assert.Equal(t, "from-file", cfg.BotToken)
		assert.Equal(t, "http://env.example.com", cfg.BaseURL)
	})

	t.Run("missing file falls back to env when allowed", func(t *testing.T) {
		t.Setenv("TEST_BOT_TOKEN", "123:abc")

		var cfg testConfig
		require.NoError(t, GetConfig(&cfg, "/does/not/exist.yaml", true))
		assert.Equal(t, "123:abc", cfg.BotToken)
	})

	t.Run("missing file is an error when not allowed", func(t *testing.T) {
		var cfg testConfig
		require.Error(t, GetConfig(&cfg, "/does/not/exist.yaml", false))
	})
}
