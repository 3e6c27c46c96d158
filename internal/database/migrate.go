package database

import (
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratedb "github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations
var migrations embed.FS

// Migrate applies all pending schema migrations for the connection's driver.
func (db *DB) Migrate() error {
	src, err := iofs.New(migrations, "migrations/"+db.dialect.name)
	if err != nil {
		return fmt.Errorf("failed to load migrations: %w", err)
	}

	var driver migratedb.Driver
	switch db.dialect.name {
	case DriverPostgres:
		driver, err = postgres.WithInstance(db.conn, &postgres.Config{})
	default:
		driver, err = sqlite3.WithInstance(db.conn, &sqlite3.Config{})
	}
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, db.dialect.name, driver)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}
