package component

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/kbukum/fixturekit/logger"
)

// stopTimeout bounds how long one component gets to shut down before
// the registry moves on to the next.
const stopTimeout = 10 * time.Second

type entry struct {
	component Component
	started   bool
}

// Registry owns a set of components and drives their lifecycle in a
// deterministic order: Start in registration order, Stop in reverse.
// Register dependencies first.
type Registry struct {
	entries []*entry
	lookup  map[string]*entry
	log     *logger.Logger
	mu      sync.RWMutex
}

// NewRegistry creates an empty registry logging through log. A nil
// log falls back to the package default.
func NewRegistry(log *logger.Logger) *Registry {
	if log == nil {
		log = logger.Default()
	}
	return &Registry{
		lookup: make(map[string]*entry),
		log:    log.WithComponent("registry"),
	}
}

// Register adds a component. Names must be unique.
func (r *Registry) Register(c Component) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := c.Name()
	if _, exists := r.lookup[name]; exists {
		return fmt.Errorf("component %s already registered", name)
	}

	e := &entry{component: c}
	r.entries = append(r.entries, e)
	r.lookup[name] = e

	r.log.Debug("component registered", logger.Fields(logger.FieldComponent, name))
	return nil
}

// StartAll starts every component in registration order. The first
// failure aborts the sequence; components started so far stay up and
// should be torn down with StopAll.
func (r *Registry) StartAll(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, e := range r.entries {
		name := e.component.Name()
		if err := e.component.Start(ctx); err != nil {
			r.log.Error("component start failed", logger.Fields(
				logger.FieldComponent, name,
				logger.FieldError, err.Error(),
			))
			return fmt.Errorf("start %s: %w", name, err)
		}
		e.started = true
		r.log.Debug("component started", logger.Fields(logger.FieldComponent, name))
	}
	return nil
}

// StopAll stops started components in reverse registration order.
// Each component gets its own timeout; a failing stop does not block
// the rest, and all failures come back joined.
func (r *Registry) StopAll(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var errs []error
	for i := len(r.entries) - 1; i >= 0; i-- {
		e := r.entries[i]
		if !e.started {
			continue
		}
		name := e.component.Name()

		stopCtx, cancel := context.WithTimeout(ctx, stopTimeout)
		err := e.component.Stop(stopCtx)
		cancel()
		e.started = false

		if err != nil {
			errs = append(errs, fmt.Errorf("stop %s: %w", name, err))
			r.log.Error("component stop failed", logger.Fields(
				logger.FieldComponent, name,
				logger.FieldError, err.Error(),
			))
			continue
		}
		r.log.Debug("component stopped", logger.Fields(logger.FieldComponent, name))
	}
	return errors.Join(errs...)
}

// HealthAll collects health reports in registration order.
func (r *Registry) HealthAll(ctx context.Context) []Health {
	r.mu.RLock()
	defer r.mu.RUnlock()

	results := make([]Health, 0, len(r.entries))
	for _, e := range r.entries {
		results = append(results, e.component.Health(ctx))
	}
	return results
}

// Get returns the component registered under name, nil when absent.
func (r *Registry) Get(name string) Component {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if e, ok := r.lookup[name]; ok {
		return e.component
	}
	return nil
}

// All returns the components in registration order.
func (r *Registry) All() []Component {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Component, 0, len(r.entries))
	for _, e := range r.entries {
		result = append(result, e.component)
	}
	return result
}
