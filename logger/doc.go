// Package logger provides structured logging for fixturekit
// using zerolog.
//
// It supports multiple output formats (JSON, console), log level
// configuration, and component-scoped loggers with structured fields.
//
// # Configuration
//
//	logger:
//	  level: "info"
//	  format: "json"
//
// # Usage
//
//	log := logger.Get("migration")
//	log.Info("applied", logger.Fields("migration", "0002_eggs"))
package logger
