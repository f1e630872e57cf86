package database

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/schema"

	"github.com/kbukum/fixturekit/logger"
)

// SequenceTarget identifies an auto-increment primary key column whose
// sequence may drift when rows are inserted with explicit key values.
type SequenceTarget struct {
	Table  string
	Column string
}

// SequenceResetSQL returns the dialect-specific statements that realign
// auto-increment counters with the current maximum key of each target table.
//
// PostgreSQL sequences do not advance when rows carry explicit primary keys,
// so the next generated key would collide with loaded data. SQLite tracks
// AUTOINCREMENT counters in the sqlite_sequence table. Dialects without
// sequence drift (or without a known reset statement) yield no statements.
func SequenceResetSQL(dialect string, targets []SequenceTarget) []string {
	if len(targets) == 0 {
		return nil
	}

	var stmts []string
	switch dialect {
	case "postgres":
		for _, t := range targets {
			stmts = append(stmts, fmt.Sprintf(
				"SELECT setval(pg_get_serial_sequence('%s', '%s'), coalesce(max(%s), 1), max(%s) IS NOT NULL) FROM %s",
				t.Table, t.Column, t.Column, t.Column, t.Table,
			))
		}
	case "sqlite":
		for _, t := range targets {
			stmts = append(stmts, fmt.Sprintf(
				"UPDATE sqlite_sequence SET seq = (SELECT coalesce(max(%s), 0) FROM %s) WHERE name = '%s'",
				t.Column, t.Table, t.Table,
			))
		}
	}
	return stmts
}

// SequenceTargetFor resolves the reset target for a model, or reports that
// the model is not sequence-backed. Only models whose prioritized primary
// key is an integer column are eligible; string and UUID keys never drift.
func SequenceTargetFor(db *gorm.DB, model interface{}) (SequenceTarget, bool, error) {
	stmt := &gorm.Statement{DB: db}
	if err := stmt.Parse(model); err != nil {
		return SequenceTarget{}, false, fmt.Errorf("parse model schema for %T: %w", model, err)
	}

	pk := stmt.Schema.PrioritizedPrimaryField
	if pk == nil {
		return SequenceTarget{}, false, nil
	}
	if pk.DataType != schema.Int && pk.DataType != schema.Uint {
		return SequenceTarget{}, false, nil
	}

	return SequenceTarget{Table: stmt.Schema.Table, Column: pk.DBName}, true, nil
}

// ResetSequences realigns the auto-increment counters for the given models,
// skipping models without an integer primary key. Each eligible table is
// reset exactly once even if named by several models. It returns the number
// of statements executed.
func ResetSequences(ctx context.Context, db *gorm.DB, models ...interface{}) (int, error) {
	seen := make(map[string]bool, len(models))
	var targets []SequenceTarget

	for _, model := range models {
		target, ok, err := SequenceTargetFor(db, model)
		if err != nil {
			return 0, err
		}
		if !ok || seen[target.Table] {
			continue
		}
		seen[target.Table] = true
		targets = append(targets, target)
	}

	dialect := db.Dialector.Name()
	stmts := SequenceResetSQL(dialect, targets)
	if len(stmts) == 0 {
		return 0, nil
	}

	// SQLite only materializes sqlite_sequence once a table declares
	// AUTOINCREMENT; without it rowid counters cannot drift.
	if dialect == "sqlite" {
		var n int64
		if err := db.WithContext(ctx).
			Raw("SELECT count(*) FROM sqlite_master WHERE type = 'table' AND name = 'sqlite_sequence'").
			Scan(&n).Error; err != nil {
			return 0, fmt.Errorf("check sqlite_sequence: %w", err)
		}
		if n == 0 {
			return 0, nil
		}
	}

	for _, stmt := range stmts {
		if err := db.WithContext(ctx).Exec(stmt).Error; err != nil {
			return 0, fmt.Errorf("reset sequence: %w", err)
		}
	}

	logger.Debug("Sequences reset", logger.Fields(
		"dialect", dialect,
		"tables", len(targets),
	))
	return len(stmts), nil
}
