package database

import (
	"context"
	"fmt"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/kbukum/fixturekit/logger"
)

// DB wraps a GORM handle with the config it was opened from and a
// structured logger.
type DB struct {
	GormDB *gorm.DB
	log    *logger.Logger
	cfg    Config

	mu     sync.Mutex
	closed bool
}

// Open connects to the database described by cfg, retrying transient
// failures with a growing backoff until the connection pings or the
// attempts run out. The context cancels both the attempts and the
// waits between them.
func Open(ctx context.Context, dialector gorm.Dialector, cfg Config, log *logger.Logger) (*DB, error) {
	cfg.ApplyDefaults()
	if log == nil {
		log = logger.Default()
	}

	slowThreshold, _ := time.ParseDuration(cfg.SlowQueryThreshold)
	gormCfg := &gorm.Config{
		Logger: newGormLogger(log, slowThreshold, parseLogLevel(cfg.LogLevel)),
	}

	var lastErr error
	for attempt := 1; attempt <= cfg.MaxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("database connection canceled: %w", err)
		}

		gdb, err := connect(ctx, dialector, gormCfg, cfg)
		if err == nil {
			log.Info("Database connection established", logger.Fields(
				logger.FieldDialect, gdb.Dialector.Name(),
				"attempt", attempt,
			))
			return &DB{GormDB: gdb, log: log, cfg: cfg}, nil
		}
		lastErr = err

		// Retrying a malformed DSN or a missing database file cannot
		// succeed; only transient failures earn another attempt.
		if !IsRetryableError(err) {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}

		if attempt < cfg.MaxRetries {
			backoff := time.Duration(attempt) * time.Second
			log.Warn("Database connection attempt failed, retrying", logger.Fields(
				"attempt", attempt,
				"backoff", backoff.String(),
				logger.FieldError, err.Error(),
			))
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("database connection canceled during retry: %w", ctx.Err())
			case <-time.After(backoff):
			}
		}
	}
	return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", cfg.MaxRetries, lastErr)
}

// connect performs one open-ping-configure cycle.
func connect(ctx context.Context, dialector gorm.Dialector, gormCfg *gorm.Config, cfg Config) (*gorm.DB, error) {
	gdb, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		return nil, err
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, err
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, err
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	if lifetime, err := time.ParseDuration(cfg.ConnMaxLifetime); err == nil {
		sqlDB.SetConnMaxLifetime(lifetime)
	}
	if idle, err := time.ParseDuration(cfg.ConnMaxIdleTime); err == nil {
		sqlDB.SetConnMaxIdleTime(idle)
	}
	return gdb, nil
}

// Close closes the connection pool. Safe to call more than once.
func (d *DB) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil
	}

	sqlDB, err := d.GormDB.DB()
	if err != nil {
		return err
	}
	d.log.Info("Closing database connection")
	d.closed = true
	return sqlDB.Close()
}

// PingContext verifies the connection is alive.
func (d *DB) PingContext(ctx context.Context) error {
	sqlDB, err := d.GormDB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Ping verifies the connection is alive without a context.
func (d *DB) Ping() error {
	return d.PingContext(context.Background())
}

// Dialect returns the connected dialect name ("sqlite", "postgres").
func (d *DB) Dialect() string {
	return d.GormDB.Dialector.Name()
}

// WithContext returns a GORM session scoped to the context.
func (d *DB) WithContext(ctx context.Context) *gorm.DB {
	return d.GormDB.WithContext(ctx)
}

// AutoMigrate creates or updates the tables for the given models.
func (d *DB) AutoMigrate(models ...interface{}) error {
	for _, model := range models {
		if err := d.GormDB.AutoMigrate(model); err != nil {
			return fmt.Errorf("migrate %T: %w", model, err)
		}
	}
	d.log.Debug("Auto-migration completed", logger.Fields("models", len(models)))
	return nil
}

// Transaction runs fn inside a database transaction.
func (d *DB) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return d.GormDB.WithContext(ctx).Transaction(fn)
}
