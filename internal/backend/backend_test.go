package backend

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"tally/internal/config"
	"tally/internal/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromAppConfig(t *testing.T) {
	_, err := FromAppConfig(nil)
	assert.Error(t, err)

	_, err = FromAppConfig(&config.Config{DataBackend: "sheets"})
	assert.Error(t, err)

	cfg, err := FromAppConfig(&config.Config{DataBackend: "postgres", DatabaseURL: "postgres://x", StatsCacheSize: 10})
	require.NoError(t, err)
	assert.Equal(t, PostgresBackend, cfg.Type)
	assert.Equal(t, 10, cfg.StatsCacheSize)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"memory", Config{Type: MemoryBackend}, false},
		{"sqlite without path", Config{Type: SQLiteBackend}, true},
		{"postgres without url", Config{Type: PostgresBackend}, true},
		{"amqp without queue", Config{Type: MemoryBackend, AMQPURL: "amqp://x", AMQPExchange: "e"}, true},
		{"unknown", Config{Type: "mongo"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCreateMemoryBackend(t *testing.T) {
	ctx := context.Background()
	res, err := NewFactory(nil).CreateBackend(ctx, Config{Type: MemoryBackend, StatsCacheTTL: time.Minute})
	require.NoError(t, err)
	defer func() { assert.NoError(t, res.Cleanup()) }()

	assert.Nil(t, res.Events)
	require.NoError(t, res.Ping(ctx))

	_, err = res.Expenses.Create(ctx, core.Expense{
		ID: "e1", UserID: "u", Amount: core.Money{Cents: 10}, Category: core.CategoryOther, Date: core.NewDate(2025, 1, 1),
	})
	require.NoError(t, err)
	sums, err := res.Expenses.SumByYear(ctx, "u")
	require.NoError(t, err)
	assert.Equal(t, map[int]int64{2025: 10}, sums)

	gen, ok := res.Stats.Generation(ctx, "u")
	require.True(t, ok)
	res.Stats.Set(ctx, "u", "k", gen, []byte("v"))
	v, ok := res.Stats.Get(ctx, "u", "k")
	require.True(t, ok)
	assert.Equal(t, "v", string(v))
}

func TestCreateSQLiteBackend(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "tally.db")
	res, err := NewFactory(nil).CreateBackend(ctx, Config{Type: SQLiteBackend, SQLiteDBPath: path})
	require.NoError(t, err)
	defer func() { assert.NoError(t, res.Cleanup()) }()

	saved, err := res.Incomes.Upsert(ctx, core.MonthlyIncome{UserID: "u", Year: 2025, Month: 2, Amount: core.Money{Cents: 99}})
	require.NoError(t, err)
	assert.Equal(t, int64(99), saved.Amount.Cents)
	assert.NoError(t, res.Ping(ctx))
}

func TestRedisKeyPrefixEndsWithSeparator(t *testing.T) {
	assert.Equal(t, "tally:stats:", redisKeyPrefix)
}
