// Package config loads the client configuration from the environment.
//
// The loading sequence is:
//  1. Load a .env file via godotenv (non-fatal if absent; it never overrides
//     variables that are already set).
//  2. Use envconfig to populate Config from WEATHER_* variables.
//  3. Validate the struct using go-playground/validator.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all configuration for the client
type Config struct {
	APIKey  string        `envconfig:"WEATHER_API_KEY" validate:"required"`
	BaseURL string        `envconfig:"WEATHER_BASE_URL" default:"https://api.openweathermap.org/data/2.5" validate:"required,url"`
	Timeout time.Duration `envconfig:"WEATHER_HTTP_TIMEOUT" default:"0s" validate:"gte=0"` // 0 leaves the transport default

	// PrefsPath is the SQLite file holding preferences; empty keeps them in memory
	PrefsPath string `envconfig:"WEATHER_PREFS_PATH" default:"weather-prefs.db"`

	Geo     GeoConfig
	Breaker BreakerConfig
	Log     LogConfig

	ListenAddr string `envconfig:"WEATHER_LISTEN_ADDR" default:":8080"`
}

// GeoConfig holds geolocation settings
type GeoConfig struct {
	Enabled bool          `envconfig:"WEATHER_GEO_ENABLED" default:"true"`
	URL     string        `envconfig:"WEATHER_GEO_URL" default:"http://ip-api.com/json/" validate:"required,url"`
	Timeout time.Duration `envconfig:"WEATHER_GEO_TIMEOUT" default:"10s" validate:"gte=0"`
}

// BreakerConfig holds the circuit breaker settings of the weather API client
type BreakerConfig struct {
	MaxFailures uint32        `envconfig:"WEATHER_BREAKER_MAX_FAILURES" default:"5" validate:"gte=1"`
	Cooldown    time.Duration `envconfig:"WEATHER_BREAKER_COOLDOWN" default:"30s"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `envconfig:"WEATHER_LOG_LEVEL" default:"info" validate:"oneof=debug info warn warning error"`
	Format string `envconfig:"WEATHER_LOG_FORMAT" default:"text" validate:"oneof=text json"`
}

// ConfigErrorType categorises a load failure.
type ConfigErrorType string

const (
	ErrParsing    ConfigErrorType = "PARSING"
	ErrValidation ConfigErrorType = "VALIDATION"
)

// ConfigError is returned by Load.
type ConfigError struct {
	Type    ConfigErrorType
	Message string
	Err     error
}

func (e *ConfigError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// Load reads configuration from .env and the environment
func Load() (*Config, error) {
	_ = godotenv.Load()
	return load()
}

func load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, &ConfigError{
			Type:    ErrParsing,
			Message: "failed to process environment configuration",
			Err:     err,
		}
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, &ConfigError{
			Type:    ErrValidation,
			Message: "configuration validation failed",
			Err:     err,
		}
	}

	return &cfg, nil
}

// NewLogger creates a slog.Logger writing to stderr based on the configuration
func (c *Config) NewLogger() *slog.Logger {
	var level slog.Level
	switch strings.ToLower(c.Log.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	var handler slog.Handler
	switch strings.ToLower(c.Log.Format) {
	case "json":
		handler = slog.NewJSONHandler(os.Stderr, opts)
	default:
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	return slog.New(handler)
}
