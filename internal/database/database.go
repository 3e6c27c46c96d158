package database

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

const (
	// DriverSQLite is the embedded SQLite driver.
	DriverSQLite = "sqlite3"
	// DriverPostgres is the PostgreSQL driver.
	DriverPostgres = "postgres"
)

// sqliteTimeLayout sorts lexicographically in the same order as the instants it encodes.
const sqliteTimeLayout = "2006-01-02 15:04:05.999999999"

// Config describes how to reach the price store.
type Config struct {
	Driver  string
	DSN     string
	Migrate bool
}

// DB wraps the database connection and provides methods for data access.
type DB struct {
	conn    *sql.DB
	dialect dialect
}

// dialect captures the differences between the supported SQL engines.
type dialect struct {
	name        string
	placeholder func(n int) string
	timeArg     func(t time.Time) any
}

var dialects = map[string]dialect{
	DriverSQLite: {
		name:        DriverSQLite,
		placeholder: func(int) string { return "?" },
		timeArg:     func(t time.Time) any { return t.UTC().Format(sqliteTimeLayout) },
	},
	DriverPostgres: {
		name:        DriverPostgres,
		placeholder: func(n int) string { return "$" + strconv.Itoa(n) },
		timeArg:     func(t time.Time) any { return t.UTC() },
	},
}

// rebind rewrites '?' placeholders into the dialect's positional form.
func (d dialect) rebind(query string) string {
	if d.name != DriverPostgres {
		return query
	}

	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString(d.placeholder(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Open connects to the configured store and, if requested, applies migrations.
func Open(ctx context.Context, cfg Config) (*DB, error) {
	d, ok := dialects[cfg.Driver]
	if !ok {
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	dsn := cfg.DSN
	if d.name == DriverSQLite && !strings.Contains(dsn, "?") {
		dsn += "?_foreign_keys=1"
	}

	conn, err := sql.Open(d.name, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db := &DB{conn: conn, dialect: d}

	if cfg.Migrate {
		if err := db.Migrate(); err != nil {
			conn.Close()
			return nil, err
		}
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Ping verifies the store is reachable.
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}
