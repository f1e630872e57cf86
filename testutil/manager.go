package testutil

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Manager drives the lifecycle of several test components together:
// start in order, stop in reverse, reset between cases.
type Manager struct {
	ctx        context.Context
	components []TestComponent
	mu         sync.RWMutex
}

// NewManager creates an empty manager bound to ctx.
func NewManager(ctx context.Context) *Manager {
	return &Manager{ctx: ctx}
}

// Add registers a test component with the manager.
func (m *Manager) Add(component TestComponent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.components = append(m.components, component)
}

// Components returns all registered components in registration order.
func (m *Manager) Components() []TestComponent {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]TestComponent, len(m.components))
	copy(result, m.components)
	return result
}

// Get retrieves a component by name, nil when absent.
func (m *Manager) Get(name string) TestComponent {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, comp := range m.components {
		if comp.Name() == name {
			return comp
		}
	}
	return nil
}

// StartAll starts every component in registration order, stopping at
// the first failure.
func (m *Manager) StartAll() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, comp := range m.components {
		if err := comp.Start(m.ctx); err != nil {
			return fmt.Errorf("failed to start component %s: %w", comp.Name(), err)
		}
	}
	return nil
}

// StopAll stops every component in reverse order. A failing stop does
// not block the rest; all failures come back joined.
func (m *Manager) StopAll() error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var errs []error
	for i := len(m.components) - 1; i >= 0; i-- {
		comp := m.components[i]
		if err := comp.Stop(m.ctx); err != nil {
			errs = append(errs, fmt.Errorf("failed to stop component %s: %w", comp.Name(), err))
		}
	}
	return errors.Join(errs...)
}

// ResetAll resets every component in registration order, stopping at
// the first failure.
func (m *Manager) ResetAll() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, comp := range m.components {
		if err := comp.Reset(m.ctx); err != nil {
			return fmt.Errorf("failed to reset component %s: %w", comp.Name(), err)
		}
	}
	return nil
}

// Cleanup is StopAll under a name that reads well with defer.
func (m *Manager) Cleanup() error {
	return m.StopAll()
}
