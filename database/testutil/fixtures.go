package testutil

import (
	"fmt"
	"testing"

	"gorm.io/gorm"
)

// LoadFixture seeds a table from raw rows, one map per row keyed by
// column name. Unlike the fixture package this writes straight through
// GORM with no model binding, which keeps schema tests independent of
// any registered model.
func LoadFixture(db *gorm.DB, table string, rows []map[string]interface{}) error {
	for _, row := range rows {
		if err := db.Table(table).Create(row).Error; err != nil {
			return fmt.Errorf("failed to insert fixture row into %s: %w", table, err)
		}
	}
	return nil
}

// MustLoadFixture is LoadFixture that fails the test on error.
func MustLoadFixture(t *testing.T, db *gorm.DB, table string, rows []map[string]interface{}) {
	t.Helper()
	if err := LoadFixture(db, table, rows); err != nil {
		t.Fatalf("LoadFixture failed: %v", err)
	}
}

// TruncateTable removes all rows from a table.
func TruncateTable(db *gorm.DB, table string) error {
	return db.Exec("DELETE FROM " + table).Error
}

// TruncateAllTables removes all rows from every non-system table.
func TruncateAllTables(db *gorm.DB) error {
	tables, err := GetTableNames(db)
	if err != nil {
		return err
	}
	for _, table := range tables {
		if err := TruncateTable(db, table); err != nil {
			return err
		}
	}
	return nil
}

// TableExists reports whether the table exists.
func TableExists(db *gorm.DB, table string) bool {
	return db.Migrator().HasTable(table)
}

// GetTableNames lists every non-system table in the SQLite database.
func GetTableNames(db *gorm.DB) ([]string, error) {
	var tables []string
	err := db.Raw("SELECT name FROM sqlite_master WHERE type='table' AND name NOT LIKE 'sqlite_%'").
		Scan(&tables).Error
	return tables, err
}

// CountRows returns the number of rows in a table.
func CountRows(db *gorm.DB, table string) (int64, error) {
	var count int64
	err := db.Raw("SELECT COUNT(*) FROM " + table).Scan(&count).Error
	return count, err
}

// MaxID returns the largest value in the table's id column, or zero
// for an empty table. Sequence-realignment tests compare it against
// the next auto-assigned key.
func MaxID(db *gorm.DB, table string) (int64, error) {
	var max int64
	err := db.Raw("SELECT COALESCE(MAX(id), 0) FROM " + table).Scan(&max).Error
	return max, err
}

// AssertRowCount fails the test if the table's row count differs from
// expected.
func AssertRowCount(t *testing.T, db *gorm.DB, table string, expected int64) {
	t.Helper()
	count, err := CountRows(db, table)
	if err != nil {
		t.Fatalf("failed to count rows in %s: %v", table, err)
	}
	if count != expected {
		t.Errorf("table %s row count = %d, want %d", table, count, expected)
	}
}

// AssertTableEmpty fails the test if the table has any rows.
func AssertTableEmpty(t *testing.T, db *gorm.DB, table string) {
	t.Helper()
	AssertRowCount(t, db, table, 0)
}
