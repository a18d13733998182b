package unimailer

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"

	"github.com/spf13/viper"

	"github.com/lattiq/unimailer/internal/providers"
)

// Config holds the complete mailer configuration.
type Config struct {
	// Backend is the untyped backend selection, typically decoded from a
	// config file. An unrecognized Type is not a configuration error; Send
	// reports it as an invalid selection.
	Backend BackendConfig `mapstructure:"backend"`

	// Selected is the typed backend selection. It takes precedence over Backend.
	Selected Backend `mapstructure:"-"`

	// Locale selects the translation table for localized messages.
	Locale string `mapstructure:"locale"`

	// Tracing contains distributed tracing configuration.
	Tracing TracingConfig `mapstructure:"tracing"`

	// Logging contains logging configuration.
	Logging LoggingConfig `mapstructure:"logging"`

	logger *slog.Logger
	hooks  providers.Options
}

// BackendConfig is the serialized form of a backend selection.
type BackendConfig struct {
	// Type names the backend: smtp, sendgrid, mailgun or aws_ses.
	Type string `mapstructure:"type"`

	// Settings carries the backend credentials, e.g. api_key, domain, host.
	Settings Settings `mapstructure:"settings"`
}

// TracingConfig contains distributed tracing configuration.
type TracingConfig struct {
	// Enabled indicates whether spans are recorded through the global tracer provider.
	Enabled bool `mapstructure:"enabled"`

	// ServiceName is the instrumentation scope name.
	ServiceName string `mapstructure:"service_name"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the logging level (debug, info, warn, error).
	Level string `mapstructure:"level"`

	// Format is the log format (json, text).
	Format string `mapstructure:"format"`

	// Output is where to write logs (stdout, stderr, or file path).
	// Empty disables logging.
	Output string `mapstructure:"output"`
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Locale: defaultLocale,
		Tracing: TracingConfig{
			Enabled:     true,
			ServiceName: "github.com/lattiq/unimailer",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Validate checks if the configuration is valid and complete.
func (c *Config) Validate() error {
	if _, err := parseLevel(c.Logging.Level); err != nil {
		return &ValidationError{
			Field:   "logging.level",
			Message: "unsupported log level: " + c.Logging.Level,
		}
	}

	switch strings.ToLower(c.Logging.Format) {
	case "", "json", "text":
	default:
		return &ValidationError{
			Field:   "logging.format",
			Message: "unsupported log format: " + c.Logging.Format,
		}
	}

	if c.Tracing.Enabled && c.Tracing.ServiceName == "" {
		return &ValidationError{
			Field:   "tracing.service_name",
			Message: "service name is required when tracing is enabled",
		}
	}

	return nil
}

// LoadConfig reads configuration from a YAML, JSON or TOML file. Values may be
// overridden by UNIMAILER_* environment variables, e.g. UNIMAILER_BACKEND_TYPE.
func LoadConfig(path string) (Config, error) {
	v := newViper()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, err
	}
	return decodeConfig(v)
}

// LoadConfigFromBytes reads configuration from memory. configType should be a
// format supported by viper (e.g. "yaml", "json", "toml").
func LoadConfigFromBytes(configType string, data []byte) (Config, error) {
	if strings.TrimSpace(configType) == "" {
		return Config{}, errors.New("config type is required")
	}

	v := newViper()
	v.SetConfigType(configType)

	if err := v.ReadConfig(bytes.NewReader(data)); err != nil {
		return Config{}, err
	}
	return decodeConfig(v)
}

func newViper() *viper.Viper {
	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault("backend.type", "")
	v.SetDefault("locale", defaults.Locale)
	v.SetDefault("tracing.enabled", defaults.Tracing.Enabled)
	v.SetDefault("tracing.service_name", defaults.Tracing.ServiceName)
	v.SetDefault("logging.level", defaults.Logging.Level)
	v.SetDefault("logging.format", defaults.Logging.Format)
	v.SetDefault("logging.output", defaults.Logging.Output)

	v.SetEnvPrefix("UNIMAILER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

func decodeConfig(v *viper.Viper) (Config, error) {
	cfg := DefaultConfig()
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
