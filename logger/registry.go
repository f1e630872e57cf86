package logger

import "sync"

// Named loggers let a host hand individual components their own output,
// level, or format without threading Logger values through every
// constructor. The fixture package resolves its default logger through
// Get, so registering one under "fixture" redirects it.

var registry = struct {
	mu      sync.RWMutex
	loggers map[string]*Logger
}{loggers: make(map[string]*Logger)}

// Register stores a named logger. A later registration under the same
// name replaces the earlier one.
func Register(name string, l *Logger) {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	registry.loggers[name] = l
}

// Get returns the logger registered under name. When none is
// registered it falls back to the package default tagged with name as
// its component.
func Get(name string) *Logger {
	registry.mu.RLock()
	l, ok := registry.loggers[name]
	registry.mu.RUnlock()
	if ok {
		return l
	}
	return Default().WithComponent(name)
}
