// Package config provides configuration loading from environment variables.
package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Deployment modes selected by APP_ENV.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Static errors for configuration validation.
var (
	// ErrS3EndpointRequired is returned when S3_ENDPOINT is not set.
	ErrS3EndpointRequired = errors.New("config: S3_ENDPOINT is required")
	// ErrS3BucketRequired is returned when S3_BUCKET is not set.
	ErrS3BucketRequired = errors.New("config: S3_BUCKET is required")
	// ErrS3CredentialsRequired is returned when the S3 access key pair is incomplete.
	ErrS3CredentialsRequired = errors.New("config: S3_ACCESS_KEY_ID and S3_SECRET_ACCESS_KEY are required")
	// ErrDatabaseURLRequired is returned when DATABASE_URL is not set.
	ErrDatabaseURLRequired = errors.New("config: DATABASE_URL is required")
	// ErrUnsupportedDatabaseURL is returned for a DATABASE_URL scheme with no record store.
	ErrUnsupportedDatabaseURL = errors.New("config: DATABASE_URL scheme must be postgres, postgresql, sqlite or memory")
	// ErrInvalidAppEnv is returned when APP_ENV is neither development nor production.
	ErrInvalidAppEnv = errors.New("config: APP_ENV must be development or production")
	// ErrProdOriginsRequired is returned when production runs without CORS_PROD_ORIGINS.
	ErrProdOriginsRequired = errors.New("config: CORS_PROD_ORIGINS is required in production")
	// ErrWildcardOrigin is returned when a production origin list contains "*".
	ErrWildcardOrigin = errors.New("config: wildcard origin is not allowed in production")
	// ErrInvalidSourceMode is returned when SOURCE_VIDEO_MODE is not local or url.
	ErrInvalidSourceMode = errors.New("config: SOURCE_VIDEO_MODE must be local or url")
	// ErrInvalidLimit is returned for non-positive sizes, durations or timeouts.
	ErrInvalidLimit = errors.New("config: invalid limit")
	// ErrWriteTimeoutTooShort is returned when HTTP_WRITE_TIMEOUT cannot cover
	// generation and mixing, leaving no time to upload and respond.
	ErrWriteTimeoutTooShort = errors.New("config: HTTP_WRITE_TIMEOUT must exceed GENERATION_TIMEOUT plus MIXING_TIMEOUT")
)

// requiredVars maps envconfig's missing-value errors to domain errors.
var requiredVars = []struct {
	name string
	err  error
}{
	{"S3_ENDPOINT", ErrS3EndpointRequired},
	{"S3_BUCKET", ErrS3BucketRequired},
	{"S3_ACCESS_KEY_ID", ErrS3CredentialsRequired},
	{"S3_SECRET_ACCESS_KEY", ErrS3CredentialsRequired},
	{"DATABASE_URL", ErrDatabaseURLRequired},
}

// Config holds all configuration for the application.
type Config struct {
	// Server settings
	Port             int           `env:"PORT, default=8080" json:"port"`
	AppEnv           string        `env:"APP_ENV, default=development" json:"app_env"`
	HTTPWriteTimeout time.Duration `env:"HTTP_WRITE_TIMEOUT, default=20m" json:"http_write_timeout"`
	CORSDevOrigins   []string      `env:"CORS_DEV_ORIGINS, default=http://localhost:3000" json:"cors_dev_origins"`
	CORSProdOrigins  []string      `env:"CORS_PROD_ORIGINS" json:"cors_prod_origins,omitempty"`

	// Storage settings
	TempDir           string `env:"TEMP_DIR" json:"temp_dir,omitempty"`
	S3Endpoint        string `env:"S3_ENDPOINT, required" json:"s3_endpoint"`
	S3Bucket          string `env:"S3_BUCKET, required" json:"s3_bucket"`
	S3Region          string `env:"S3_REGION, default=us-east-1" json:"s3_region"`
	S3AccessKeyID     string `env:"S3_ACCESS_KEY_ID, required" json:"-"`     // Masked in JSON
	S3SecretAccessKey string `env:"S3_SECRET_ACCESS_KEY, required" json:"-"` // Masked in JSON
	S3PublicBaseURL   string `env:"S3_PUBLIC_BASE_URL" json:"s3_public_base_url,omitempty"`

	// Record store
	DatabaseURL string `env:"DATABASE_URL, required" json:"-"` // May embed credentials

	// Generation settings
	GeneratorCommand  string        `env:"GENERATOR_COMMAND, default=python3" json:"generator_command"`
	GeneratorArgs     []string      `env:"GENERATOR_ARGS, default=./MMAudioDir/demo.py" json:"generator_args"`
	GeneratorDir      string        `env:"GENERATOR_DIR" json:"generator_dir,omitempty"`
	GenerationTimeout time.Duration `env:"GENERATION_TIMEOUT, default=10m" json:"generation_timeout"`
	DefaultDuration   int           `env:"DEFAULT_DURATION, default=8" json:"default_duration"`
	SourceVideoMode   string        `env:"SOURCE_VIDEO_MODE, default=local" json:"source_video_mode"`
	MaxUploadBytes    int64         `env:"MAX_UPLOAD_BYTES, default=104857600" json:"max_upload_bytes"`
	AllowedVideoTypes []string      `env:"ALLOWED_VIDEO_TYPES" json:"allowed_video_types,omitempty"`

	// Mixing settings
	MixingEnabled bool          `env:"MIXING_ENABLED, default=false" json:"mixing_enabled"`
	FFmpegPath    string        `env:"FFMPEG_PATH, default=ffmpeg" json:"ffmpeg_path"`
	MixingTimeout time.Duration `env:"MIXING_TIMEOUT, default=5m" json:"mixing_timeout"`

	// Logging settings
	LogFormat string `env:"LOG_FORMAT, default=text" json:"log_format"` // "json" or "text"
	LogLevel  string `env:"LOG_LEVEL, default=info" json:"log_level"`   // "debug", "info", "warn", "error"
}

// Load reads configuration from environment variables using go-envconfig
// and validates it. Startup should abort on any error.
func Load() (*Config, error) {
	return load(context.Background(), nil)
}

// load processes cfg from lookuper, or from the process environment when
// lookuper is nil.
func load(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	cfg := &Config{}

	ecfg := &envconfig.Config{Target: cfg, Lookuper: lookuper}
	if lookuper == nil {
		ecfg.Lookuper = envconfig.OsLookuper()
	}
	if err := envconfig.ProcessWith(ctx, ecfg); err != nil {
		// Map envconfig errors to our domain errors for required fields
		for _, rv := range requiredVars {
			if strings.Contains(err.Error(), rv.name) && errors.Is(err, envconfig.ErrMissingRequired) {
				return nil, rv.err
			}
		}
		return nil, fmt.Errorf("config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the configuration is complete and consistent.
func (c *Config) Validate() error {
	switch {
	case c.S3Endpoint == "":
		return ErrS3EndpointRequired
	case c.S3Bucket == "":
		return ErrS3BucketRequired
	case c.S3AccessKeyID == "" || c.S3SecretAccessKey == "":
		return ErrS3CredentialsRequired
	case c.DatabaseURL == "":
		return ErrDatabaseURLRequired
	}

	if _, err := c.DatabaseKind(); err != nil {
		return err
	}

	switch c.AppEnv {
	case EnvDevelopment:
	case EnvProduction:
		if len(c.AllowedOrigins()) == 0 {
			return ErrProdOriginsRequired
		}
		for _, o := range c.AllowedOrigins() {
			if o == "*" {
				return ErrWildcardOrigin
			}
		}
	default:
		return fmt.Errorf("%w: %q", ErrInvalidAppEnv, c.AppEnv)
	}

	if c.SourceVideoMode != "local" && c.SourceVideoMode != "url" {
		return fmt.Errorf("%w: %q", ErrInvalidSourceMode, c.SourceVideoMode)
	}
	if c.DefaultDuration <= 0 {
		return fmt.Errorf("%w: DEFAULT_DURATION must be positive", ErrInvalidLimit)
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("%w: MAX_UPLOAD_BYTES must be positive", ErrInvalidLimit)
	}
	if c.GenerationTimeout < 0 || c.MixingTimeout < 0 || c.HTTPWriteTimeout < 0 {
		return fmt.Errorf("%w: timeouts cannot be negative", ErrInvalidLimit)
	}
	if c.HTTPWriteTimeout > 0 {
		budget := c.ProcessingBudget()
		if budget == 0 || c.HTTPWriteTimeout <= budget {
			return fmt.Errorf("%w: write timeout %s, processing budget %s", ErrWriteTimeoutTooShort, c.HTTPWriteTimeout, budget)
		}
	}
	return nil
}

// ProcessingBudget is the longest a request can spend in subprocesses:
// the generation timeout plus the mixing timeout when mixing is enabled.
// Zero means generation is unbounded.
func (c *Config) ProcessingBudget() time.Duration {
	if c.GenerationTimeout == 0 {
		return 0
	}
	budget := c.GenerationTimeout
	if c.MixingEnabled {
		if c.MixingTimeout == 0 {
			return 0
		}
		budget += c.MixingTimeout
	}
	return budget
}

// Database kinds returned by DatabaseKind.
const (
	DatabasePostgres = "postgres"
	DatabaseSQLite   = "sqlite"
	DatabaseMemory   = "memory"
)

// DatabaseKind returns the record store selected by the DATABASE_URL scheme.
func (c *Config) DatabaseKind() (string, error) {
	scheme, _, ok := strings.Cut(c.DatabaseURL, "://")
	if !ok {
		return "", ErrUnsupportedDatabaseURL
	}
	switch strings.ToLower(scheme) {
	case "postgres", "postgresql":
		return DatabasePostgres, nil
	case "sqlite":
		return DatabaseSQLite, nil
	case "memory":
		return DatabaseMemory, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedDatabaseURL, scheme)
	}
}

// SQLitePath returns the database file path of a sqlite:// DATABASE_URL.
func (c *Config) SQLitePath() string {
	_, path, _ := strings.Cut(c.DatabaseURL, "://")
	return path
}

// AllowedOrigins returns the CORS allow-list for the deployment mode.
func (c *Config) AllowedOrigins() []string {
	src := c.CORSDevOrigins
	if c.AppEnv == EnvProduction {
		src = c.CORSProdOrigins
	}
	origins := make([]string, 0, len(src))
	for _, o := range src {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, strings.TrimSuffix(o, "/"))
		}
	}
	return origins
}

// NewLogger creates a structured logger based on the configuration.
// When LogFormat is "json", it outputs JSON logs suitable for production.
// Otherwise, it outputs human-readable text logs.
func (c *Config) NewLogger() *slog.Logger {
	level := parseLogLevel(c.LogLevel)

	var handler slog.Handler
	if strings.ToLower(c.LogFormat) == "json" {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		})
	} else {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		})
	}

	return slog.New(handler)
}

// String returns a string representation of the config with sensitive values masked.
func (c *Config) String() string {
	kind, _ := c.DatabaseKind()
	return fmt.Sprintf(
		"Config{Port: %d, AppEnv: %s, S3Endpoint: %s, S3Bucket: %s, S3Region: %s, Database: %s, GeneratorCommand: %s, SourceVideoMode: %s, MixingEnabled: %t, LogFormat: %s, LogLevel: %s}",
		c.Port,
		c.AppEnv,
		c.S3Endpoint,
		c.S3Bucket,
		c.S3Region,
		kind,
		c.GeneratorCommand,
		c.SourceVideoMode,
		c.MixingEnabled,
		c.LogFormat,
		c.LogLevel,
	)
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
