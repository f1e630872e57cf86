package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/kbukum/fixturekit/logger"
)

// parseLogLevel maps the config's log_level string to GORM's levels.
func parseLogLevel(level string) gormlogger.LogLevel {
	switch strings.ToLower(level) {
	case "silent":
		return gormlogger.Silent
	case "error":
		return gormlogger.Error
	case "warn":
		return gormlogger.Warn
	default:
		return gormlogger.Info
	}
}

// queryLogger routes GORM's query log through the house logger, with
// slow-query promotion to warn level.
type queryLogger struct {
	log   *logger.Logger
	level gormlogger.LogLevel
	slow  time.Duration
}

func newGormLogger(log *logger.Logger, slow time.Duration, level gormlogger.LogLevel) gormlogger.Interface {
	return &queryLogger{log: log.WithComponent("gorm"), level: level, slow: slow}
}

func (l *queryLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	return &queryLogger{log: l.log, level: level, slow: l.slow}
}

func (l *queryLogger) Info(_ context.Context, msg string, data ...interface{}) {
	if l.level >= gormlogger.Info {
		l.log.Info(fmt.Sprintf(msg, data...))
	}
}

func (l *queryLogger) Warn(_ context.Context, msg string, data ...interface{}) {
	if l.level >= gormlogger.Warn {
		l.log.Warn(fmt.Sprintf(msg, data...))
	}
}

func (l *queryLogger) Error(_ context.Context, msg string, data ...interface{}) {
	if l.level >= gormlogger.Error {
		l.log.Error(fmt.Sprintf(msg, data...))
	}
}

// Trace logs one executed statement. Not-found results are routine for
// fixture lookups and stay out of the error log.
func (l *queryLogger) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= gormlogger.Silent {
		return
	}

	elapsed := time.Since(begin)
	sql, rows := fc()
	fields := logger.Fields(
		"sql", sql,
		"rows", rows,
		logger.FieldDuration, elapsed.String(),
	)

	switch {
	case err != nil && err != gorm.ErrRecordNotFound:
		fields[logger.FieldError] = err.Error()
		l.log.Error("Query failed", fields)
	case l.slow > 0 && elapsed > l.slow:
		l.log.Warn("Slow query", fields)
	case l.level >= gormlogger.Info:
		l.log.Debug("Query", fields)
	}
}
