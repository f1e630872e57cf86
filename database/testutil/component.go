package testutil

import (
	"context"
	"fmt"
	"sync"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/kbukum/fixturekit/component"
	"github.com/kbukum/fixturekit/testutil"
)

// Component is an in-memory SQLite database for tests. It implements
// component.Component for lifecycle wiring and testutil.TestComponent
// for reset/snapshot/restore between cases. Query logging is silent so
// test output stays readable.
type Component struct {
	mu      sync.RWMutex
	db      *gorm.DB
	models  []interface{}
	started bool
}

var (
	_ component.Component    = (*Component)(nil)
	_ testutil.TestComponent = (*Component)(nil)
)

// NewComponent creates an unstarted test database.
func NewComponent() *Component {
	return &Component{}
}

// WithModels registers models to auto-migrate on Start, so tests get
// their tables without running migrations.
func (c *Component) WithModels(models ...interface{}) *Component {
	c.models = append(c.models, models...)
	return c
}

// DB returns the GORM handle, or nil before Start.
func (c *Component) DB() *gorm.DB {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.db
}

// Name returns the component name.
func (c *Component) Name() string { return "database-test" }

// Start opens the in-memory database and migrates registered models.
func (c *Component) Start(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.started {
		return fmt.Errorf("test database already started")
	}

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return fmt.Errorf("open test database: %w", err)
	}
	if len(c.models) > 0 {
		if err := db.AutoMigrate(c.models...); err != nil {
			return fmt.Errorf("migrate test models: %w", err)
		}
	}

	c.db = db
	c.started = true
	return nil
}

// Stop closes the database. The in-memory schema dies with it.
func (c *Component) Stop(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.started {
		return nil
	}
	sqlDB, err := c.db.DB()
	if err != nil {
		return err
	}
	c.started = false
	return sqlDB.Close()
}

// Health pings the open database.
func (c *Component) Health(ctx context.Context) component.Health {
	c.mu.RLock()
	defer c.mu.RUnlock()

	h := component.Health{Name: c.Name(), Status: component.StatusHealthy}
	if !c.started {
		h.Status = component.StatusUnhealthy
		h.Message = "database not started"
		return h
	}
	sqlDB, err := c.db.DB()
	if err == nil {
		err = sqlDB.PingContext(ctx)
	}
	if err != nil {
		h.Status = component.StatusUnhealthy
		h.Message = err.Error()
	}
	return h
}

// Reset clears every table while keeping the schema.
func (c *Component) Reset(_ context.Context) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.started {
		return fmt.Errorf("test database not started")
	}
	return TruncateAllTables(c.db)
}

// Snapshot captures every table's rows, keyed by table name. The
// result feeds Restore.
func (c *Component) Snapshot(_ context.Context) (interface{}, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.started {
		return nil, fmt.Errorf("test database not started")
	}

	tables, err := GetTableNames(c.db)
	if err != nil {
		return nil, err
	}
	snap := make(map[string][]map[string]interface{}, len(tables))
	for _, table := range tables {
		var rows []map[string]interface{}
		if err := c.db.Table(table).Find(&rows).Error; err != nil {
			return nil, fmt.Errorf("snapshot table %s: %w", table, err)
		}
		snap[table] = rows
	}
	return snap, nil
}

// Restore clears the database and re-inserts a Snapshot's rows.
func (c *Component) Restore(ctx context.Context, snap interface{}) error {
	rows, ok := snap.(map[string][]map[string]interface{})
	if !ok {
		return fmt.Errorf("snapshot of type %T was not produced by Snapshot", snap)
	}
	if err := c.Reset(ctx); err != nil {
		return err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	for table, tableRows := range rows {
		if err := LoadFixture(c.db, table, tableRows); err != nil {
			return fmt.Errorf("restore table %s: %w", table, err)
		}
	}
	return nil
}
