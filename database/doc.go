// Package database provides a GORM-based database component with connection
// pooling, health checks, transactions, and sequence maintenance.
//
// # Architecture
//
// The package follows the component pattern with a driver-agnostic design.
// SQLite is the default driver; supply another via WithDriver(), keeping the
// package free of hard driver choices.
//
// # Quick Start
//
// Register the database component with the component registry:
//
//	import (
//	    "github.com/kbukum/fixturekit/component"
//	    "github.com/kbukum/fixturekit/database"
//	    "gorm.io/driver/postgres"
//	)
//
//	cfg := database.Config{Enabled: true, Driver: "postgres", DSN: "host=localhost user=app dbname=shop"}
//	db := database.NewComponent(cfg, log).WithDriver(func(dsn string) gorm.Dialector {
//	    return postgres.Open(dsn)
//	})
//
//	reg := component.NewRegistry(log)
//	reg.Register(db)
//	reg.StartAll(ctx)
//
// # Sequence Maintenance
//
// Loading rows with explicit primary keys leaves auto-increment counters
// behind the data on some dialects. ResetSequences realigns them:
//
//	n, err := database.ResetSequences(ctx, db.DB().GormDB, &Egg{}, &Crate{})
//
// Only integer-keyed models are touched; each table is reset once.
//
// # Optional Component
//
// The component respects the Enabled flag in configuration. When disabled,
// Start() returns immediately without connecting and Health() reports the
// component as disabled.
package database
