// Package config defines the application configuration for the Telegram
// relay bot. All settings load from the environment (optionally overlaid
// on a YAML file) and are validated once at startup; the resulting value
// is passed by reference into the components and never mutated afterwards.
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"

	pkgconfig "github.com/bcn-art-compass/telegram-bot/pkg/config"
	"github.com/bcn-art-compass/telegram-bot/pkg/logger"
)

// AppConfig holds all application configuration
type AppConfig struct {
	// Service identification
	ServiceName string `env:"SERVICE_NAME" yaml:"service_name" default:"bcn-art-compass-telegram-bot"`
	Version     string `env:"VERSION" yaml:"version" default:"dev"`

	// Telegram connector configuration
	Telegram TelegramConfig `yaml:"telegram,inline"`

	// Orchestrator relay configuration
	Orchestrator OrchestratorConfig `yaml:"orchestrator,inline"`

	// Shared logging settings
	pkgconfig.CommonConfig `yaml:",inline"`

	// Ops HTTP server (health endpoints)
	HTTP pkgconfig.HTTPServerConfig `yaml:"http,inline"`

	// Prometheus exposure
	Metrics pkgconfig.MetricsConfig `yaml:"metrics,inline"`

	// Health check behavior
	Monitoring MonitoringConfig `yaml:"monitoring,inline"`
}

// TelegramConfig holds Telegram-specific configuration
type TelegramConfig struct {
	BotToken string `env:"TELEGRAM_BOT_TOKEN" yaml:"bot_token" required:"true"`
	Debug    bool   `env:"TELEGRAM_DEBUG" yaml:"debug"`
}

// OrchestratorConfig holds settings for the orchestrator /chat endpoint.
type OrchestratorConfig struct {
	// BaseURL is the orchestrator root; "/chat" is appended per request.
	BaseURL string `env:"ORCHESTRATOR_BASE_URL" yaml:"base_url" default:"http://localhost:8000"`

	// Timeout bounds each /chat request. Must be finite and positive.
	Timeout time.Duration `env:"ORCHESTRATOR_TIMEOUT" yaml:"timeout" default:"60s"`

	// ReplyField is the JSON field carrying the reply text in the
	// orchestrator response body.
	ReplyField string `env:"ORCHESTRATOR_REPLY_FIELD" yaml:"reply_field" default:"response"`

	// FallbackMessage is sent to the user whenever the orchestrator
	// call fails for any reason.
	FallbackMessage string `env:"ORCHESTRATOR_FALLBACK_MESSAGE" yaml:"fallback_message" default:"I couldn't reach the BCN Art Compass backend right now. Please try again in a moment."`
}

// MonitoringConfig holds health check configuration
type MonitoringConfig struct {
	HealthCheckTimeout     time.Duration `env:"HEALTH_CHECK_TIMEOUT" yaml:"health_check_timeout" default:"10s"`
	HealthFailureThreshold int           `env:"HEALTH_FAILURE_THRESHOLD" yaml:"health_failure_threshold" default:"3"`
}

// Load reads configuration from the given YAML file (optional) and the
// environment, applying defaults and validation.
func Load(configFile string) (*AppConfig, error) {
	var cfg AppConfig
	if err := pkgconfig.GetConfig(&cfg, configFile, true); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate validates the configuration and returns an error if invalid
func (c AppConfig) Validate() error {
	var result error

	if err := c.CommonConfig.Validate(); err != nil {
		result = multierror.Append(result, err)
	}
	if err := c.HTTP.Validate(); err != nil {
		result = multierror.Append(result, err)
	}
	if err := c.Metrics.Validate(); err != nil {
		result = multierror.Append(result, err)
	}

	if _, err := c.Orchestrator.URL(); err != nil {
		result = multierror.Append(result, err)
	}
	if c.Orchestrator.Timeout <= 0 {
		result = multierror.Append(result, fmt.Errorf("orchestrator timeout must be greater than 0, got %s", c.Orchestrator.Timeout))
	}
	if c.Orchestrator.ReplyField == "" {
		result = multierror.Append(result, fmt.Errorf("orchestrator reply_field must not be empty"))
	}
	if c.Orchestrator.FallbackMessage == "" {
		result = multierror.Append(result, fmt.Errorf("orchestrator fallback_message must not be empty"))
	}

	if c.Monitoring.HealthCheckTimeout <= 0 {
		result = multierror.Append(result, fmt.Errorf("health_check_timeout must be greater than 0"))
	}
	if c.Monitoring.HealthFailureThreshold < 1 {
		result = multierror.Append(result, fmt.Errorf("health_failure_threshold must be >= 1"))
	}

	return result
}

// URL parses and normalizes the base URL: it must be an absolute http or
// https URL; a trailing slash is stripped so paths can be appended.
func (o OrchestratorConfig) URL() (string, error) {
	raw := strings.TrimRight(o.BaseURL, "/")
	if raw == "" {
		return "", fmt.Errorf("orchestrator base_url must not be empty")
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("orchestrator base_url is not a valid URL: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", fmt.Errorf("orchestrator base_url must use http or https, got %q", o.BaseURL)
	}
	if parsed.Host == "" {
		return "", fmt.Errorf("orchestrator base_url must be absolute, got %q", o.BaseURL)
	}

	return raw, nil
}

// GetLogLevel returns the parsed logger level
func (c AppConfig) GetLogLevel() logger.Level {
	return logger.ParseLevel(strings.ToLower(c.LogLevel))
}

// LogConfig logs the current configuration (without sensitive data)
func (c AppConfig) LogConfig(log logger.Logger) {
	log.Info("Application configuration loaded",
		logger.StringField("service_name", c.ServiceName),
		logger.StringField("version", c.Version),
		logger.StringField("orchestrator_base_url", c.Orchestrator.BaseURL),
		logger.DurationField("orchestrator_timeout", c.Orchestrator.Timeout),
		logger.StringField("orchestrator_reply_field", c.Orchestrator.ReplyField),
		logger.StringField("log_level", c.LogLevel),
		logger.StringField("log_format", c.LogFormat),
		logger.BoolField("telegram_debug", c.Telegram.Debug),
		logger.BoolField("metrics_exposed", c.Metrics.ExposeMetrics),
		logger.IntField("http_port", c.HTTP.Port),
	)
}
