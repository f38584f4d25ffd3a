// Package backend assembles the storage, cache and event backends selected by configuration.
package backend

import (
	"context"
	"time"

	"tally/internal/cache"
	"tally/internal/services"
	"tally/internal/stats"
)

type BackendType string

const (
	MemoryBackend   BackendType = "memory"
	SQLiteBackend   BackendType = "sqlite"
	PostgresBackend BackendType = "postgres"
)

func (t BackendType) IsValid() bool {
	switch t {
	case MemoryBackend, SQLiteBackend, PostgresBackend:
		return true
	}
	return false
}

func (t BackendType) String() string {
	return string(t)
}

// ExpenseStore is the expense repository as seen by both the services and the stats engine.
type ExpenseStore interface {
	services.ExpenseRepository
	stats.ExpenseSums
}

type IncomeStore interface {
	services.IncomeRepository
	stats.IncomeReader
}

// CleanupFunc releases the resources held by a backend.
type CleanupFunc func() error

// BackendResult holds everything the binaries wire into services. Events is nil when no
// broker is configured.
type BackendResult struct {
	Expenses ExpenseStore
	Incomes  IncomeStore
	Stats    cache.GroupStore
	Events   services.EventPublisher
	Ping     func(ctx context.Context) error
	Cleanup  CleanupFunc
}

type Config struct {
	Type         BackendType
	SQLiteDBPath string
	DatabaseURL  string

	RedisURL       string
	StatsCacheSize int
	StatsCacheTTL  time.Duration

	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}

// Factory creates backends based on configuration.
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}
