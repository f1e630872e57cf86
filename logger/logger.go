package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// Logger wraps a zerolog.Logger with the field helpers and component
// scoping the rest of fixturekit logs through.
type Logger struct {
	zl      zerolog.Logger
	service string
}

// New creates a logger from config. The service name tags console
// output and travels into component-scoped children.
func New(cfg *Config, serviceName string) *Logger {
	cfg.ApplyDefaults()

	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}

	var zl zerolog.Logger
	switch strings.ToLower(cfg.Format) {
	case "console", "pretty":
		zl = zerolog.New(consoleWriter(cfg, serviceName))
	default:
		zl = zerolog.New(outputWriter(cfg.Output))
	}
	zl = zl.Level(level)

	if cfg.Timestamp {
		zl = zl.With().Timestamp().Logger()
	}
	if cfg.Caller {
		zl = zl.With().Caller().Logger()
	}

	return &Logger{zl: zl, service: serviceName}
}

// NewDefault creates a console logger at info level.
func NewDefault(serviceName string) *Logger {
	return New(&Config{}, serviceName)
}

// WithComponent returns a child logger tagged with a component name.
func (l *Logger) WithComponent(name string) *Logger {
	return &Logger{
		zl:      l.zl.With().Str(FieldComponent, name).Logger(),
		service: l.service,
	}
}

// WithFields returns a child logger carrying the fields on every event.
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	zc := l.zl.With()
	for k, v := range fields {
		zc = zc.Interface(k, v)
	}
	return &Logger{zl: zc.Logger(), service: l.service}
}

// WithError returns a child logger carrying the error on every event.
func (l *Logger) WithError(err error) *Logger {
	return &Logger{zl: l.zl.With().Err(err).Logger(), service: l.service}
}

// Debug logs a debug message.
func (l *Logger) Debug(msg string, fields ...map[string]interface{}) {
	l.emit(l.zl.Debug(), msg, fields)
}

// Info logs an info message.
func (l *Logger) Info(msg string, fields ...map[string]interface{}) {
	l.emit(l.zl.Info(), msg, fields)
}

// Warn logs a warning message.
func (l *Logger) Warn(msg string, fields ...map[string]interface{}) {
	l.emit(l.zl.Warn(), msg, fields)
}

// Error logs an error message.
func (l *Logger) Error(msg string, fields ...map[string]interface{}) {
	l.emit(l.zl.Error(), msg, fields)
}

func (l *Logger) emit(event *zerolog.Event, msg string, fields []map[string]interface{}) {
	for _, fm := range fields {
		for k, v := range fm {
			event = event.Interface(k, v)
		}
	}
	event.Msg(msg)
}

// Zerolog returns the wrapped zerolog.Logger for callers that need the
// raw API.
func (l *Logger) Zerolog() zerolog.Logger { return l.zl }

// --- package default ---

var (
	defaultMu     sync.RWMutex
	defaultLogger *Logger
)

// SetDefault replaces the package default logger. Hosts call it once
// at startup; until then Default lazily builds a console logger.
func SetDefault(l *Logger) {
	defaultMu.Lock()
	defaultLogger = l
	defaultMu.Unlock()
}

// Default returns the package default logger.
func Default() *Logger {
	defaultMu.RLock()
	l := defaultLogger
	defaultMu.RUnlock()
	if l != nil {
		return l
	}

	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultLogger == nil {
		defaultLogger = NewDefault("fixturekit")
	}
	return defaultLogger
}

// Debug logs a debug message through the package default.
func Debug(msg string, fields ...map[string]interface{}) { Default().Debug(msg, fields...) }

// Info logs an info message through the package default.
func Info(msg string, fields ...map[string]interface{}) { Default().Info(msg, fields...) }

// Warn logs a warning message through the package default.
func Warn(msg string, fields ...map[string]interface{}) { Default().Warn(msg, fields...) }

// Error logs an error message through the package default.
func Error(msg string, fields ...map[string]interface{}) { Default().Error(msg, fields...) }

// --- output ---

func outputWriter(output string) io.Writer {
	if strings.ToLower(output) == "stderr" {
		return os.Stderr
	}
	return os.Stdout
}

var levelTags = map[string]string{
	"debug": "DBG",
	"info":  "INF",
	"warn":  "WRN",
	"error": "ERR",
	"fatal": "FTL",
}

func consoleWriter(cfg *Config, serviceName string) zerolog.ConsoleWriter {
	return zerolog.ConsoleWriter{
		Out:        outputWriter(cfg.Output),
		TimeFormat: "15:04:05",
		NoColor:    cfg.NoColor,
		FormatLevel: func(i interface{}) string {
			lvl := strings.ToLower(fmt.Sprintf("%s", i))
			tag, ok := levelTags[lvl]
			if !ok {
				tag = strings.ToUpper(lvl)
			}
			if serviceName != "" {
				return fmt.Sprintf("%s [%s]", serviceName, tag)
			}
			return "[" + tag + "]"
		},
	}
}
