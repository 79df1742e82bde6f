package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bcn-art-compass/telegram-bot/pkg/logger"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "123456:test-token")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "123456:test-token", cfg.Telegram.BotToken)
	assert.Equal(t, "http://localhost:8000", cfg.Orchestrator.BaseURL)
	assert.Equal(t, 60*time.Second, cfg.Orchestrator.Timeout)
	assert.Equal(t, "response", cfg.Orchestrator.ReplyField)
	assert.NotEmpty(t, cfg.Orchestrator.FallbackMessage)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.Equal(t, 9090, cfg.Metrics.Port)
	assert.Equal(t, 3, cfg.Monitoring.HealthFailureThreshold)
}

func TestLoadFailsWithoutToken(t *testing.T) {
	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TELEGRAM_BOT_TOKEN")
}

func TestLoadFailsOnInvalidBaseURL(t *testing.T) {
	testCases := []struct {
		name    string
		baseURL string
	}{
		{"relative URL", "localhost:8000"},
		{"unsupported scheme", "ftp://example.com"},
		{"missing host", "http://"},
		{"only slashes", "///"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("TELEGRAM_BOT_TOKEN", "123456:test-token")
			t.Setenv("ORCHESTRATOR_BASE_URL", tc.baseURL)

			_, err := Load("")
			require.Error(t, err)
			assert.Contains(t, err.Error(), "base_url")
		})
	}
}

func TestLoadFailsOnNonPositiveTimeout(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "123456:test-token")
	t.Setenv("ORCHESTRATOR_TIMEOUT", "-5s")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timeout")
}

func TestOrchestratorURLStripsTrailingSlash(t *testing.T) {
	o := OrchestratorConfig{BaseURL: "https://compass.example.com/"}
	u, err := o.URL()
	require.NoError(t, err)
	assert.Equal(t, "https://compass.example.com", u)
}

func TestGetLogLevel(t *testing.T) {
	testCases := map[string]logger.Level{
		"debug":   logger.DebugLevel,
		"info":    logger.InfoLevel,
		"warn":    logger.WarnLevel,
		"error":   logger.ErrorLevel,
		"unknown": logger.InfoLevel,
	}

	for input, want := range testCases {
		cfg := AppConfig{}
		cfg.LogLevel = input
		assert.Equal(t, want, cfg.GetLogLevel(), "level %q", input)
	}
}
