package migration

import (
	"database/sql"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"gorm.io/gorm"
)

// DriverFunc creates a migrate database driver from sql.DB. Callers
// pick the driver matching their database, so this package stays
// driver-agnostic.
//
// Example for SQLite:
//
//	import migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite3"
//	driver := func(db *sql.DB) (database.Driver, error) {
//		return migratesqlite.WithInstance(db, &migratesqlite.Config{})
//	}
//
// Example for PostgreSQL:
//
//	import migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
//	driver := func(db *sql.DB) (database.Driver, error) {
//		return migratepg.WithInstance(db, &migratepg.Config{})
//	}
type DriverFunc func(*sql.DB) (database.Driver, error)

// ApplyFiles runs all pending versioned schema migrations found under
// path in the given filesystem. Files follow the golang-migrate naming
// convention VERSION_name.up.sql / VERSION_name.down.sql. A run with
// nothing to apply is not an error.
func ApplyFiles(gormDB *gorm.DB, files fs.FS, path string, driver DriverFunc) error {
	m, err := newMigrator(gormDB, files, path, driver)
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("apply schema migrations: %w", err)
	}
	return nil
}

// RollbackFiles rolls back every applied versioned schema migration.
// Use StepFiles for partial rollback.
func RollbackFiles(gormDB *gorm.DB, files fs.FS, path string, driver DriverFunc) error {
	m, err := newMigrator(gormDB, files, path, driver)
	if err != nil {
		return err
	}
	if err := m.Down(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("roll back schema migrations: %w", err)
	}
	return nil
}

// StepFiles applies n schema migrations: positive n forward, negative
// n backward.
func StepFiles(gormDB *gorm.DB, files fs.FS, path string, n int, driver DriverFunc) error {
	m, err := newMigrator(gormDB, files, path, driver)
	if err != nil {
		return err
	}
	if err := m.Steps(n); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("step schema migrations: %w", err)
	}
	return nil
}

// FileVersion returns the current schema migration version and dirty
// flag.
func FileVersion(gormDB *gorm.DB, files fs.FS, path string, driver DriverFunc) (version uint, dirty bool, err error) {
	m, err := newMigrator(gormDB, files, path, driver)
	if err != nil {
		return 0, false, err
	}
	return m.Version()
}

// newMigrator creates a golang-migrate instance backed by the given
// filesystem. Callers must NOT call m.Close(), it would close the
// shared sql.DB.
func newMigrator(gormDB *gorm.DB, files fs.FS, path string, driver DriverFunc) (*migrate.Migrate, error) {
	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}

	dbDriver, err := driver(sqlDB)
	if err != nil {
		return nil, fmt.Errorf("create database driver: %w", err)
	}

	source, err := iofs.New(files, path)
	if err != nil {
		return nil, fmt.Errorf("create iofs source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "database", dbDriver)
	if err != nil {
		return nil, fmt.Errorf("create migrator: %w", err)
	}
	return m, nil
}
