// Package config provides configuration loading from environment variables.
package config

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/sethvargo/go-envconfig"
)

// ErrInvalidConfig is returned when a loaded value is out of range.
var ErrInvalidConfig = errors.New("config: invalid configuration")

// Config holds all configuration for the application.
type Config struct {
	// Server settings
	Port           int      `env:"PORT, default=8080" json:"port" validate:"min=1,max=65535"`
	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS, default=*" json:"allowed_origins"`

	// Output settings
	OutputDir string `env:"OUTPUT_DIR, default=/tmp/videoeditor" json:"output_dir" validate:"required"`

	// Media tool settings
	FFmpegPath              string `env:"FFMPEG_PATH, default=ffmpeg" json:"ffmpeg_path" validate:"required"`
	FFprobePath             string `env:"FFPROBE_PATH, default=ffprobe" json:"ffprobe_path" validate:"required"`
	MaxConcurrentOperations int    `env:"MAX_CONCURRENT_OPERATIONS, default=2" json:"max_concurrent_operations" validate:"min=1,max=64"`
	EncodingProfile         string `env:"ENCODING_PROFILE" json:"encoding_profile,omitempty"` // Optional YAML file

	// Optional S3 settings
	S3Bucket           string `env:"S3_BUCKET" json:"s3_bucket,omitempty"`
	S3Region           string `env:"S3_REGION" json:"s3_region,omitempty"`
	S3Endpoint         string `env:"S3_ENDPOINT" json:"s3_endpoint,omitempty" validate:"omitempty,url"`
	AWSAccessKeyID     string `env:"AWS_ACCESS_KEY_ID" json:"-"`     // Masked in JSON
	AWSSecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY" json:"-"` // Masked in JSON

	// Tracing settings
	OTelEndpoint string `env:"OTEL_ENDPOINT" json:"otel_endpoint,omitempty" validate:"omitempty,url"`

	// Logging settings
	LogFormat string `env:"LOG_FORMAT, default=text" json:"log_format" validate:"oneof=json text JSON TEXT"`
	LogLevel  string `env:"LOG_LEVEL, default=info" json:"log_level"` // "debug", "info", "warn", "error"
}

// S3Enabled returns true if S3 configuration is provided.
func (c *Config) S3Enabled() bool {
	return c.S3Bucket != "" && c.S3Region != ""
}

// Load reads configuration from environment variables using go-envconfig
// and validates it.
func Load() (*Config, error) {
	return LoadWithLookuper(envconfig.OsLookuper())
}

// LoadWithLookuper is Load reading variables from l instead of the process
// environment.
func LoadWithLookuper(l envconfig.Lookuper) (*Config, error) {
	cfg := &Config{}

	if err := envconfig.ProcessWith(context.Background(), &envconfig.Config{
		Target:   cfg,
		Lookuper: l,
	}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges using the struct's validate tags.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("%w: %s failed %q (value %v)", ErrInvalidConfig, fe.Field(), fe.Tag(), fe.Value())
		}
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// NewLogger creates a structured logger based on the configuration.
// When LogFormat is "json", it outputs JSON logs suitable for production.
// Otherwise, it outputs human-readable text logs.
func (c *Config) NewLogger() *slog.Logger {
	return c.NewLoggerTo(os.Stdout)
}

// NewLoggerTo is NewLogger writing to w.
func (c *Config) NewLoggerTo(w io.Writer) *slog.Logger {
	level := parseLogLevel(c.LogLevel)

	var handler slog.Handler
	if strings.ToLower(c.LogFormat) == "json" {
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{
			Level: level,
		})
	} else {
		handler = slog.NewTextHandler(w, &slog.HandlerOptions{
			Level: level,
		})
	}

	return slog.New(handler)
}

// String returns a string representation of the config with sensitive values masked.
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{Port: %d, OutputDir: %s, FFmpegPath: %s, FFprobePath: %s, MaxConcurrentOperations: %d, EncodingProfile: %s, S3Bucket: %s, S3Region: %s, S3Endpoint: %s, AWSAccessKeyID: %s, OTelEndpoint: %s, LogFormat: %s, LogLevel: %s}",
		c.Port,
		c.OutputDir,
		c.FFmpegPath,
		c.FFprobePath,
		c.MaxConcurrentOperations,
		c.EncodingProfile,
		c.S3Bucket,
		c.S3Region,
		c.S3Endpoint,
		mask(c.AWSAccessKeyID),
		c.OTelEndpoint,
		c.LogFormat,
		c.LogLevel,
	)
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	return "****"
}

// parseLogLevel converts a string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
