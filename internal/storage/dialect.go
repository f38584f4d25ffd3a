package storage

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"tally/internal/core"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// Dialect selects the SQL flavour a Store talks.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

type dialectDef struct {
	open func(dsn string) (*sql.DB, error)
	// positional placeholders ($1, $2, ...) instead of ?
	numbered  bool
	yearExpr  string
	monthExpr string
	dateArg   func(core.Date) any
}

var dialects = map[Dialect]dialectDef{
	DialectSQLite: {
		open:      openSQLite,
		yearExpr:  "CAST(strftime('%Y', date) AS INTEGER)",
		monthExpr: "CAST(strftime('%m', date) AS INTEGER)",
		dateArg:   func(d core.Date) any { return d.String() },
	},
	DialectPostgres: {
		open:      openPostgres,
		numbered:  true,
		yearExpr:  "CAST(EXTRACT(YEAR FROM date) AS INTEGER)",
		monthExpr: "CAST(EXTRACT(MONTH FROM date) AS INTEGER)",
		dateArg:   func(d core.Date) any { return d.Time },
	},
}

func (d Dialect) def() (dialectDef, error) {
	s, ok := dialects[d]
	if !ok {
		return dialectDef{}, fmt.Errorf("unsupported dialect %q", d)
	}
	return s, nil
}

// rebind rewrites ? placeholders for dialects that number them.
func (s dialectDef) rebind(query string) string {
	if !s.numbered {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func openSQLite(path string) (*sql.DB, error) {
	dsn := path
	if !strings.Contains(dsn, "?") {
		dsn += "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	}
	return sql.Open("sqlite", dsn)
}

func openPostgres(url string) (*sql.DB, error) {
	config, err := pgx.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	return stdlib.OpenDB(*config), nil
}

// sqlDate scans DATE columns, which arrive as time.Time from postgres and as text from sqlite.
type sqlDate struct {
	core.Date
}

func (d *sqlDate) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		d.Date = core.DateOf(v)
		return nil
	case string:
		parsed, err := core.ParseDate(v)
		d.Date = parsed
		return err
	case []byte:
		parsed, err := core.ParseDate(string(v))
		d.Date = parsed
		return err
	default:
		return fmt.Errorf("cannot scan %T into date", src)
	}
}

var timestampLayouts = []string{
	"2006-01-02 15:04:05.999999999-07:00",
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
}

// sqlTime scans timestamps regardless of how the driver hands them over.
type sqlTime struct {
	time.Time
}

func (t *sqlTime) Scan(src any) error {
	var s string
	switch v := src.(type) {
	case time.Time:
		t.Time = v.UTC()
		return nil
	case string:
		s = v
	case []byte:
		s = string(v)
	default:
		return fmt.Errorf("cannot scan %T into timestamp", src)
	}
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed.UTC()
			return nil
		}
	}
	return fmt.Errorf("cannot parse timestamp %q", s)
}
