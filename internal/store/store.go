// Package store implements the gateway's persistence collaborator
// (SPEC_FULL A3): a SQLite-backed node/sensor descriptor table plus a
// sample table the fetcher writes to. Opening and migrating the database
// is grounded on the teacher pack's ClusterCockpit-cc-backend
// (internal/repository/dbConnection.go, migration.go): sqlx over
// mattn/go-sqlite3, schema versioned with golang-migrate against an
// embedded migrations/ directory.
package store

import (
	"embed"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed migrations/sqlite3
var migrationFiles embed.FS

// Store wraps the database handle shared by the registry bootstrap, the
// fetcher, the HTTP surface, and the CLI admin tool.
type Store struct {
	DB *sqlx.DB
}

// Open connects to the sqlite database at path, applying any pending
// migrations before returning.
func Open(path string) (*Store, error) {
	db, err := sqlx.Connect("sqlite3", fmt.Sprintf("%s?_foreign_keys=on", path))
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}
	if err := migrateUp(db, path); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{DB: db}, nil
}

func migrateUp(db *sqlx.DB, path string) error {
	driver, err := sqlite3.WithInstance(db.DB, &sqlite3.Config{})
	if err != nil {
		return fmt.Errorf("store: migration driver: %w", err)
	}
	src, err := iofs.New(migrationFiles, "migrations/sqlite3")
	if err != nil {
		return fmt.Errorf("store: migration source: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite3", driver)
	if err != nil {
		return fmt.Errorf("store: migrate instance: %w", err)
	}
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("store: migrate up: %w", err)
	}
	return nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error { return s.DB.Close() }
