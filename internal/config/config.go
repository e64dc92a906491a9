package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kapu/youtube-data-go/internal/constants"
)

const (
	AuthModeAPIKey = "apikey"
	AuthModeOAuth  = "oauth"

	ExportSinkNone = "none"
	ExportSinkDir  = "dir"
	ExportSinkGCS  = "gcs"
)

type Config struct {
	YouTube   YouTubeConfig
	Collector CollectorConfig
	Redis     RedisConfig
	Postgres  PostgresConfig
	Export    ExportConfig
	Logging   LoggingConfig
}

type YouTubeConfig struct {
	APIKey          string
	AuthMode        string
	CredentialsFile string
	TokenFile       string
	DailyQuota      int
}

type CollectorConfig struct {
	MaxPages         int
	BatchConcurrency int
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
	TTL      time.Duration
}

type PostgresConfig struct {
	Enabled  bool
	Host     string
	Port     int
	User     string
	Password string
	Database string
}

type ExportConfig struct {
	Sink      string
	Dir       string
	GCSBucket string
}

type LoggingConfig struct {
	Level string
	File  string
}

// Load reads and validates the full configuration.
func Load() (*Config, error) {
	cfg := read()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// LoadWithoutCredentials is Load for commands that never call the API, such
// as cache-clear and auth. YouTube credentials are not checked.
func LoadWithoutCredentials() (*Config, error) {
	cfg := read()
	if err := cfg.validateSettings(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

func read() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		YouTube: YouTubeConfig{
			APIKey:          getEnv("YOUTUBE_API_KEY", ""),
			AuthMode:        strings.ToLower(getEnv("YOUTUBE_AUTH_MODE", AuthModeAPIKey)),
			CredentialsFile: getEnv("YOUTUBE_CREDENTIALS_FILE", "credentials.json"),
			TokenFile:       getEnv("YOUTUBE_TOKEN_FILE", "token.json"),
			DailyQuota:      getEnvInt("YOUTUBE_DAILY_QUOTA", constants.QuotaConfig.DailyLimit),
		},
		Collector: CollectorConfig{
			MaxPages:         getEnvInt("COLLECTOR_MAX_PAGES", constants.PaginationConfig.DefaultMaxPages),
			BatchConcurrency: getEnvInt("COLLECTOR_BATCH_CONCURRENCY", constants.BatchConfig.DefaultConcurrency),
		},
		Redis: RedisConfig{
			Enabled:  getEnvBool("REDIS_ENABLED", false),
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
			TTL:      getEnvDuration("CACHE_TTL", constants.CacheTTL.Report),
		},
		Postgres: PostgresConfig{
			Enabled:  getEnvBool("POSTGRES_ENABLED", false),
			Host:     getEnv("POSTGRES_HOST", "localhost"),
			Port:     getEnvInt("POSTGRES_PORT", 5432),
			User:     getEnv("POSTGRES_USER", "ytdata"),
			Password: getEnv("POSTGRES_PASSWORD", ""),
			Database: getEnv("POSTGRES_DB", "ytdata"),
		},
		Export: ExportConfig{
			Sink:      strings.ToLower(getEnv("EXPORT_SINK", ExportSinkNone)),
			Dir:       getEnv("EXPORT_DIR", "exports"),
			GCSBucket: getEnv("GCS_BUCKET_NAME", ""),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
			File:  getEnv("LOG_FILE", ""),
		},
	}

	return cfg
}

func (c *Config) Validate() error {
	if err := c.validateCredentials(); err != nil {
		return err
	}
	return c.validateSettings()
}

func (c *Config) validateCredentials() error {
	switch c.YouTube.AuthMode {
	case AuthModeAPIKey:
		if c.YouTube.APIKey == "" {
			return fmt.Errorf("YOUTUBE_API_KEY is required")
		}
	case AuthModeOAuth:
		if c.YouTube.CredentialsFile == "" {
			return fmt.Errorf("YOUTUBE_CREDENTIALS_FILE is required for oauth mode")
		}
	default:
		return fmt.Errorf("YOUTUBE_AUTH_MODE must be %q or %q, got %q", AuthModeAPIKey, AuthModeOAuth, c.YouTube.AuthMode)
	}
	return nil
}

func (c *Config) validateSettings() error {
	if c.YouTube.DailyQuota < 0 {
		return fmt.Errorf("YOUTUBE_DAILY_QUOTA must not be negative")
	}
	if c.Collector.MaxPages <= 0 {
		return fmt.Errorf("COLLECTOR_MAX_PAGES must be positive")
	}
	if c.Collector.BatchConcurrency <= 0 {
		return fmt.Errorf("COLLECTOR_BATCH_CONCURRENCY must be positive")
	}
	switch c.Export.Sink {
	case ExportSinkNone:
	case ExportSinkDir:
		if c.Export.Dir == "" {
			return fmt.Errorf("EXPORT_DIR is required for dir sink")
		}
	case ExportSinkGCS:
		if c.Export.GCSBucket == "" {
			return fmt.Errorf("GCS_BUCKET_NAME is required for gcs sink")
		}
	default:
		return fmt.Errorf("EXPORT_SINK must be one of none, dir, gcs, got %q", c.Export.Sink)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
