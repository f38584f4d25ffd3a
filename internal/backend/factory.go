package backend

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tally/internal/amqp"
	"tally/internal/cache"
	"tally/internal/log"
	"tally/internal/storage"
	"tally/internal/storage/memory"
)

const (
	defaultStatsCacheSize = 500
	defaultStatsCacheTTL  = 5 * time.Minute
	redisKeyPrefix        = "tally:stats:"
)

type DefaultFactory struct {
	logger *log.Logger
}

func NewFactory(logger *log.Logger) Factory {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &DefaultFactory{logger: logger.WithComponent(log.ComponentBackend)}
}

// CreateBackend opens the storage backend, the stats cache and, when configured, the
// AMQP publisher. A broker that cannot be reached is logged and skipped.
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	res := &BackendResult{}
	var closers []func() error

	switch config.Type {
	case MemoryBackend:
		store := memory.New()
		res.Expenses, res.Incomes, res.Ping = store.Expenses(), store.Incomes(), store.Ping
		closers = append(closers, store.Close)
		f.logger.Info("Initialized memory backend")
	case SQLiteBackend, PostgresBackend:
		dialect, dsn := storage.DialectSQLite, config.SQLiteDBPath
		if config.Type == PostgresBackend {
			dialect, dsn = storage.DialectPostgres, config.DatabaseURL
		}
		store, err := storage.Open(ctx, dialect, dsn)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize %s backend: %w", config.Type, err)
		}
		res.Expenses, res.Incomes, res.Ping = store.Expenses(), store.Incomes(), store.Ping
		closers = append(closers, store.Close)
		f.logger.Info("Initialized SQL backend", "dialect", dialect)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}

	statsStore, closeStats, err := f.createStatsCache(ctx, config)
	if err != nil {
		_ = runClosers(closers)
		return nil, err
	}
	res.Stats = statsStore
	closers = append(closers, closeStats)

	if config.AMQPURL != "" {
		client, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
		if err != nil {
			f.logger.Warn("Failed to initialize AMQP client, continuing without ledger events", "error", err)
		} else {
			res.Events = client
			closers = append(closers, client.Close)
			f.logger.Info("Initialized AMQP client",
				"exchange", config.AMQPExchange,
				"queue", config.AMQPQueue)
		}
	}

	res.Cleanup = func() error { return runClosers(closers) }
	return res, nil
}

// createStatsCache prefers Redis when a URL is configured and falls back to an in-process LRU.
func (f *DefaultFactory) createStatsCache(ctx context.Context, config Config) (cache.GroupStore, func() error, error) {
	ttl := config.StatsCacheTTL
	if ttl <= 0 {
		ttl = defaultStatsCacheTTL
	}

	if config.RedisURL != "" {
		client, err := cache.NewRedisClient(ctx, config.RedisURL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize redis stats cache: %w", err)
		}
		groups := cache.NewRedisGroups(client, redisKeyPrefix, ttl)
		f.logger.Info("Initialized redis stats cache", "ttl", ttl.String())
		return groups, groups.Close, nil
	}

	size := config.StatsCacheSize
	if size <= 0 {
		size = defaultStatsCacheSize
	}
	lru := cache.NewLRUCache[[]byte](size, ttl)
	manager := cache.NewManager()
	manager.Register(lru)
	manager.StartCleanup(ttl)
	f.logger.Info("Initialized in-process stats cache", "size", size, "ttl", ttl.String())
	return cache.NewLocalGroups(lru), func() error { manager.Stop(); return nil }, nil
}

// runClosers closes in reverse order of acquisition and joins the errors.
func runClosers(closers []func() error) error {
	var errs []error
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
