package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Store owns the database handle shared by the expense and income repositories.
type Store struct {
	db       *sql.DB
	def      dialectDef
	dialect  Dialect
	expenses *ExpenseRepository
	incomes  *IncomeRepository
	now      func() time.Time
}

// Open connects to the database, applies migrations and returns a ready Store.
// For sqlite the dsn is a file path; its directory is created when missing.
func Open(ctx context.Context, d Dialect, dsn string) (*Store, error) {
	def, err := d.def()
	if err != nil {
		return nil, err
	}

	if d == DialectSQLite {
		if err := os.MkdirAll(filepath.Dir(dsn), 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := def.open(dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", d, err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(d, dsn); err != nil {
		db.Close()
		return nil, err
	}

	s := &Store{db: db, def: def, dialect: d, now: time.Now}
	s.expenses = &ExpenseRepository{store: s}
	s.incomes = &IncomeRepository{store: s}
	return s, nil
}

func (s *Store) Expenses() *ExpenseRepository { return s.expenses }

func (s *Store) Incomes() *IncomeRepository { return s.incomes }

func (s *Store) Dialect() Dialect { return s.dialect }

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *Store) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}
