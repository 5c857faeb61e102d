package database

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/tasknest/core/internal/infrastructure/config"
)

//go:embed migrations
var migrationsFS embed.FS

// column is a forward-compatible column added to pre-existing tables
type column struct {
	table      string
	name       string
	definition string
}

// Columns that older databases may lack. Added, never dropped.
var additiveColumns = []column{
	{"users", "name", "TEXT"},
	{"users", "passwordPlain", "TEXT"},
	{"folders", "color", "TEXT"},
	{"folders", "pinned", "INTEGER DEFAULT 0"},
	{"tags", "color", "TEXT"},
	{"tags", "pinned", "INTEGER DEFAULT 0"},
	{"tags", "folderId", "INTEGER"},
	{"tasks", "dueDate", "TEXT"},
	{"tasks", "dueTime", "TEXT"},
	{"tasks", "tagId", "INTEGER"},
	{"tasks", "image", "TEXT"},
}

// Migrate applies pending migrations and reconciles additive columns
func (db *DB) Migrate(ctx context.Context) error {
	m, err := db.NewMigrator()
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return db.EnsureColumns(ctx)
}

// NewMigrator builds a migrate instance over a dedicated connection so that
// closing it leaves the shared pool open.
func (db *DB) NewMigrator() (*migrate.Migrate, error) {
	source, err := iofs.New(migrationsFS, "migrations/"+db.config.Driver)
	if err != nil {
		return nil, fmt.Errorf("failed to load migrations: %w", err)
	}

	conn, err := sql.Open(db.config.Driver, connectionString(db.config.Driver, db.config.DSN))
	if err != nil {
		return nil, fmt.Errorf("failed to open migration connection: %w", err)
	}

	var driver database.Driver
	switch db.config.Driver {
	case config.DriverSQLite:
		driver, err = sqlite3.WithInstance(conn, &sqlite3.Config{})
	case config.DriverPostgres:
		driver, err = postgres.WithInstance(conn, &postgres.Config{})
	default:
		err = fmt.Errorf("unsupported driver %q", db.config.Driver)
	}
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, db.config.Driver, driver)
	if err != nil {
		driver.Close()
		return nil, fmt.Errorf("failed to create migration instance: %w", err)
	}

	return m, nil
}

// EnsureColumns adds any missing forward-compatible column
func (db *DB) EnsureColumns(ctx context.Context) error {
	for _, col := range additiveColumns {
		exists, err := db.columnExists(ctx, col.table, col.name)
		if err != nil {
			return fmt.Errorf("inspect %s.%s: %w", col.table, col.name, err)
		}
		if exists {
			continue
		}

		stmt := fmt.Sprintf(`ALTER TABLE %s ADD COLUMN "%s" %s`, col.table, col.name, col.definition)
		if _, err := db.DB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("add column %s.%s: %w", col.table, col.name, err)
		}
	}

	return nil
}

func (db *DB) columnExists(ctx context.Context, table, name string) (bool, error) {
	var query string
	switch db.config.Driver {
	case config.DriverPostgres:
		query = `SELECT COUNT(*) FROM information_schema.columns
			WHERE table_schema = current_schema() AND table_name = ? AND column_name = ?`
	default:
		query = `SELECT COUNT(*) FROM pragma_table_info(?) WHERE name = ?`
	}

	var count int
	if err := db.DB.GetContext(ctx, &count, db.DB.Rebind(query), table, name); err != nil {
		return false, err
	}

	return count > 0, nil
}
