// Package wire provides dependency injection for the gamebook application.
// It creates singleton services with lazy initialization.
package wire

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"sync"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/example/gamebook/internal/adapters/amqp"
	"github.com/example/gamebook/internal/adapters/cache"
	cliadapter "github.com/example/gamebook/internal/adapters/cli"
	"github.com/example/gamebook/internal/adapters/filesystem"
	"github.com/example/gamebook/internal/adapters/httpapi"
	"github.com/example/gamebook/internal/adapters/postgres"
	"github.com/example/gamebook/internal/adapters/redis"
	"github.com/example/gamebook/internal/adapters/s3"
	"github.com/example/gamebook/internal/adapters/sqlite"
	"github.com/example/gamebook/internal/app"
	"github.com/example/gamebook/internal/config"
	"github.com/example/gamebook/internal/db"
	"github.com/example/gamebook/internal/logger"
	"github.com/example/gamebook/internal/ports/primary"
	"github.com/example/gamebook/internal/ports/secondary"
)

var (
	settings       *config.Settings
	zapLogger      *zap.Logger
	readerService  primary.ReaderService
	libraryService primary.LibraryService
	closers        []func() error
	once           sync.Once
)

// Settings returns the process settings.
func Settings() *config.Settings {
	once.Do(initServices)
	return settings
}

// Logger returns the shared logger.
func Logger() *zap.Logger {
	once.Do(initServices)
	return zapLogger
}

// ReaderService returns the singleton ReaderService instance.
func ReaderService() primary.ReaderService {
	once.Do(initServices)
	return readerService
}

// LibraryService returns the singleton LibraryService instance.
func LibraryService() primary.LibraryService {
	once.Do(initServices)
	return libraryService
}

// initServices initializes all services and their dependencies.
// This is called once via sync.Once.
func initServices() {
	ctx := context.Background()

	s, err := config.LoadSettings()
	if err != nil {
		log.Fatalf("failed to load settings: %v", err)
	}
	settings = s

	zapLogger, err = logger.New(logger.Config{
		Level:      s.LogLevel,
		Encoding:   s.LogEncoding,
		OutputPath: s.LogOutput,
	})
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}

	content, err := newContentStore(ctx, s, zapLogger)
	if err != nil {
		zapLogger.Fatal("failed to initialize content store", zap.Error(err))
	}

	progressRepo, err := newProgressRepository(ctx, s, zapLogger)
	if err != nil {
		zapLogger.Fatal("failed to initialize progress store", zap.Error(err))
	}

	events, err := newEventPublisher(s, zapLogger)
	if err != nil {
		zapLogger.Fatal("failed to initialize event publisher", zap.Error(err))
	}

	tracker := app.NewProgressTracker(progressRepo, zapLogger)
	readerService = app.NewReaderService(content, tracker, events, zapLogger)
	libraryService = app.NewLibraryService(content)
}

func newContentStore(ctx context.Context, s *config.Settings, l *zap.Logger) (secondary.ContentStore, error) {
	var store secondary.ContentStore
	switch s.ContentSource {
	case config.ContentSourceS3:
		client, err := s3.NewClient(ctx, s.S3Region, s.S3Endpoint)
		if err != nil {
			return nil, err
		}
		store = s3.NewContentStore(client, s.S3Bucket, s.S3Prefix, l)
	default:
		store = filesystem.NewContentStore(s.BooksDir, l)
	}

	if s.ContentCacheSize <= 0 {
		return store, nil
	}
	return cache.NewContentCache(store, s.ContentCacheSize, l)
}

func newProgressRepository(ctx context.Context, s *config.Settings, l *zap.Logger) (secondary.ProgressRepository, error) {
	switch s.ProgressStore {
	case config.ProgressStorePostgres:
		pool, err := postgres.Connect(ctx, s.PostgresDSN, s.PostgresMaxConns)
		if err != nil {
			return nil, err
		}
		if err := postgres.NewMigrator(pool, l).Up(ctx); err != nil {
			pool.Close()
			return nil, err
		}
		closers = append(closers, func() error { pool.Close(); return nil })
		return postgres.NewProgressRepository(pool, l), nil

	case config.ProgressStoreRedis:
		client := goredis.NewClient(&goredis.Options{
			Addr:     s.RedisAddr,
			Password: s.RedisPassword,
			DB:       s.RedisDB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		closers = append(closers, client.Close)
		return redis.NewProgressRepository(client, s.RedisTTL, l), nil

	default:
		path, err := s.ResolveSQLitePath()
		if err != nil {
			return nil, err
		}
		database, err := db.Open(path)
		if err != nil {
			return nil, err
		}
		closers = append(closers, database.Close)
		return sqlite.NewProgressRepository(database), nil
	}
}

func newEventPublisher(s *config.Settings, l *zap.Logger) (secondary.EventPublisher, error) {
	if s.AMQPURL == "" {
		return app.NoopPublisher{}, nil
	}
	pub, err := amqp.Dial(s.AMQPURL, s.AMQPQueue, l)
	if err != nil {
		return nil, err
	}
	closers = append(closers, pub.Close)
	return pub, nil
}

// Close releases connections opened during initialization.
func Close() error {
	var errs []error
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	closers = nil
	if zapLogger != nil {
		_ = zapLogger.Sync()
	}
	return errors.Join(errs...)
}

// ReaderAdapter returns a new ReaderAdapter writing to stdout.
func ReaderAdapter() *cliadapter.ReaderAdapter {
	return ReaderAdapterWithOutput(os.Stdout)
}

// ReaderAdapterWithOutput returns a new ReaderAdapter writing to the given output.
func ReaderAdapterWithOutput(out io.Writer) *cliadapter.ReaderAdapter {
	once.Do(initServices)
	return cliadapter.NewReaderAdapter(readerService, out)
}

// LibraryAdapter returns a new LibraryAdapter writing to stdout.
func LibraryAdapter() *cliadapter.LibraryAdapter {
	return LibraryAdapterWithOutput(os.Stdout)
}

// LibraryAdapterWithOutput returns a new LibraryAdapter writing to the given output.
func LibraryAdapterWithOutput(out io.Writer) *cliadapter.LibraryAdapter {
	once.Do(initServices)
	return cliadapter.NewLibraryAdapter(libraryService, out)
}

// HTTPServer returns a new HTTP server over the singleton services.
// Images are served from disk only when content comes from the filesystem.
func HTTPServer() *httpapi.Server {
	once.Do(initServices)
	var opts httpapi.Options
	if settings.ContentSource == config.ContentSourceFS {
		opts.ImageRoot = settings.BooksDir
	}
	return httpapi.NewServer(readerService, libraryService, opts, zapLogger)
}
