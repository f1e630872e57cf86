package database

import (
	"fmt"
	"time"

	"github.com/kbukum/fixturekit/validation"
)

// Config holds database connection configuration.
type Config struct {
	// Enabled controls whether the database component is active.
	Enabled bool `mapstructure:"enabled"`

	// Name identifies this connection (e.g. "default"). Used in logs and health output.
	Name string `mapstructure:"name"`

	// Driver selects the database driver ("sqlite" or "postgres").
	Driver string `mapstructure:"driver"`

	// DSN is the connection string, in the form the selected driver expects.
	DSN string `mapstructure:"dsn"`

	// MaxOpenConns sets the maximum number of open connections to the database.
	MaxOpenConns int `mapstructure:"max_open_conns"`

	// MaxIdleConns sets the maximum number of idle connections in the pool.
	MaxIdleConns int `mapstructure:"max_idle_conns"`

	// ConnMaxLifetime is the maximum time a connection may be reused (e.g. "1h", "30m").
	ConnMaxLifetime string `mapstructure:"conn_max_lifetime"`

	// ConnMaxIdleTime is the maximum time a connection may sit idle (e.g. "5m", "10m").
	// If empty, no idle timeout is set.
	ConnMaxIdleTime string `mapstructure:"conn_max_idle_time"`

	// MaxRetries is the number of connection attempts before giving up.
	MaxRetries int `mapstructure:"max_retries"`

	// AutoMigrate controls whether GORM auto-migration runs on startup.
	AutoMigrate bool `mapstructure:"auto_migrate"`

	// SlowQueryThreshold is the duration above which queries are logged as slow (e.g. "200ms").
	SlowQueryThreshold string `mapstructure:"slow_query_threshold"`

	// LogLevel controls GORM query logging: silent, error, warn, or info.
	LogLevel string `mapstructure:"log_level"`
}

// ApplyDefaults sets sensible defaults for zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = "default"
	}
	if c.Driver == "" {
		c.Driver = "sqlite"
	}
	if c.MaxOpenConns <= 0 {
		c.MaxOpenConns = 25
	}
	if c.MaxIdleConns <= 0 {
		c.MaxIdleConns = 5
	}
	if c.ConnMaxLifetime == "" {
		c.ConnMaxLifetime = "1h"
	}
	if c.ConnMaxIdleTime == "" {
		c.ConnMaxIdleTime = "5m"
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = 5
	}
	if c.SlowQueryThreshold == "" {
		c.SlowQueryThreshold = "200ms"
	}
	if c.LogLevel == "" {
		c.LogLevel = "warn"
	}
}

// Validate checks that the configuration is usable, collecting every
// problem rather than stopping at the first.
func (c *Config) Validate() error {
	if !c.Enabled {
		return nil // skip validation when disabled
	}

	v := validation.New()
	v.Required("dsn", c.DSN)
	v.OneOf("driver", c.Driver, []string{"sqlite", "postgres"})
	v.OneOf("log_level", c.LogLevel, []string{"silent", "error", "warn", "info"})
	v.Min("max_open_conns", c.MaxOpenConns, 1)
	v.Min("max_idle_conns", c.MaxIdleConns, 1)
	v.Min("max_retries", c.MaxRetries, 1)
	v.Custom(c.MaxIdleConns <= c.MaxOpenConns, "max_idle_conns",
		fmt.Sprintf("must not exceed max_open_conns (%d)", c.MaxOpenConns))
	checkDuration(v, "conn_max_lifetime", c.ConnMaxLifetime, false)
	checkDuration(v, "conn_max_idle_time", c.ConnMaxIdleTime, true)
	checkDuration(v, "slow_query_threshold", c.SlowQueryThreshold, false)

	if appErr := v.Validate(); appErr != nil {
		return appErr
	}
	return nil
}

func checkDuration(v *validation.Validator, field, value string, optional bool) {
	if optional && value == "" {
		return
	}
	if _, err := time.ParseDuration(value); err != nil {
		v.AddError(field, fmt.Sprintf("%q is not a duration", value))
	}
}
