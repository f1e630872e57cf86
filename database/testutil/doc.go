// Package testutil provides testing utilities for the database module.
//
// It includes an in-memory SQLite test component implementing both
// component.Component and testutil.TestComponent, plus raw-row seeding
// helpers for schema tests that should not depend on registered models.
//
// # Quick Start
//
// Create a test database with automatic cleanup:
//
//	db := testutil.NewComponent()
//	testutil.T(t).Setup(db)
//
//	// Use db.DB() to access *gorm.DB
//	db.DB().Exec("CREATE TABLE eggs (id INTEGER PRIMARY KEY, name TEXT)")
//
// # Auto-Migration
//
// Register models for automatic migration on Start():
//
//	type Egg struct {
//	    ID   uint   `gorm:"primarykey"`
//	    Name string
//	}
//
//	db := testutil.NewComponent().WithModels(&Egg{})
//	testutil.T(t).Setup(db)
//
// # State Management
//
// Use Reset, Snapshot, and Restore for test isolation:
//
//	// Reset clears all data
//	testutil.T(t).Reset(db)
//
//	// Snapshot captures current state
//	snapshot := testutil.T(t).Snapshot(db)
//
//	// Restore returns to snapshot
//	testutil.T(t).Restore(db, snapshot)
//
// # Raw Seeding
//
// Seed tables without going through model binding:
//
//	MustLoadFixture(t, db.DB(), "eggs", []map[string]interface{}{
//	    {"name": "golden"},
//	    {"name": "speckled"},
//	})
//
//	AssertRowCount(t, db.DB(), "eggs", 2)
package testutil
