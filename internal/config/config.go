// Package config loads service settings from the environment and the
// reader profile from disk.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix is prepended to every environment variable name.
const EnvPrefix = "GAMEBOOK"

// Content and progress backends.
const (
	ContentSourceFS = "fs"
	ContentSourceS3 = "s3"

	ProgressStoreSQLite   = "sqlite"
	ProgressStorePostgres = "postgres"
	ProgressStoreRedis    = "redis"
)

// Settings holds process-wide configuration read from GAMEBOOK_* variables.
type Settings struct {
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
	LogEncoding string `envconfig:"LOG_ENCODING" default:"console"`
	LogOutput   string `envconfig:"LOG_OUTPUT"`

	BooksDir         string `envconfig:"BOOKS_DIR" default:"books"`
	ContentSource    string `envconfig:"CONTENT_SOURCE" default:"fs"`
	ContentCacheSize int    `envconfig:"CONTENT_CACHE_SIZE" default:"16"`
	S3Bucket         string `envconfig:"S3_BUCKET"`
	S3Prefix         string `envconfig:"S3_PREFIX" default:"books"`
	S3Region         string `envconfig:"S3_REGION" default:"us-east-1"`
	S3Endpoint       string `envconfig:"S3_ENDPOINT"`

	ProgressStore    string        `envconfig:"PROGRESS_STORE" default:"sqlite"`
	SQLitePath       string        `envconfig:"SQLITE_PATH"`
	PostgresDSN      string        `envconfig:"POSTGRES_DSN"`
	PostgresMaxConns int32         `envconfig:"POSTGRES_MAX_CONNS" default:"10"`
	RedisAddr        string        `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisPassword    string        `envconfig:"REDIS_PASSWORD"`
	RedisDB          int           `envconfig:"REDIS_DB" default:"0"`
	RedisTTL         time.Duration `envconfig:"REDIS_TTL" default:"0s"`

	AMQPURL   string `envconfig:"AMQP_URL"`
	AMQPQueue string `envconfig:"AMQP_QUEUE" default:"gamebook_progress_events"`

	HTTPAddr string `envconfig:"HTTP_ADDR" default:":8080"`
}

// LoadSettings reads an optional .env file and then the environment.
func LoadSettings() (*Settings, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	var s Settings
	if err := envconfig.Process(EnvPrefix, &s); err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks that the selected backends have what they need.
func (s *Settings) Validate() error {
	switch s.ContentSource {
	case ContentSourceFS:
	case ContentSourceS3:
		if s.S3Bucket == "" {
			return fmt.Errorf("%s_S3_BUCKET is required when CONTENT_SOURCE=s3", EnvPrefix)
		}
	default:
		return fmt.Errorf("unknown content source %q", s.ContentSource)
	}

	switch s.ProgressStore {
	case ProgressStoreSQLite, ProgressStoreRedis:
	case ProgressStorePostgres:
		if s.PostgresDSN == "" {
			return fmt.Errorf("%s_POSTGRES_DSN is required when PROGRESS_STORE=postgres", EnvPrefix)
		}
	default:
		return fmt.Errorf("unknown progress store %q", s.ProgressStore)
	}

	return nil
}

// DataDir returns ~/.gamebook, the home of the profile and local database.
func DataDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".gamebook"), nil
}

// ResolveSQLitePath returns the configured SQLite path or the default under DataDir.
func (s *Settings) ResolveSQLitePath() (string, error) {
	if s.SQLitePath != "" {
		return s.SQLitePath, nil
	}
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "progress.db"), nil
}
