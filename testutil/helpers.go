package testutil

import (
	"context"
	"testing"
)

// CleanupFunc stops whatever its Setup started.
type CleanupFunc func() error

// Setup starts a test component and returns the matching cleanup
// function, meant for defer.
//
//	cleanup, err := testutil.Setup(dbComponent)
//	if err != nil {
//	    t.Fatal(err)
//	}
//	defer cleanup()
func Setup(component TestComponent) (CleanupFunc, error) {
	return SetupWithContext(context.Background(), component)
}

// SetupWithContext is Setup with a caller-supplied context.
func SetupWithContext(ctx context.Context, component TestComponent) (CleanupFunc, error) {
	if err := component.Start(ctx); err != nil {
		return nil, err
	}
	return func() error { return component.Stop(ctx) }, nil
}

// Teardown stops a test component, the inverse of Setup.
func Teardown(component TestComponent) error {
	return TeardownWithContext(context.Background(), component)
}

// TeardownWithContext is Teardown with a caller-supplied context.
func TeardownWithContext(ctx context.Context, component TestComponent) error {
	return component.Stop(ctx)
}

// ResetComponent restores a test component to its initial state.
func ResetComponent(component TestComponent) error {
	return ResetComponentWithContext(context.Background(), component)
}

// ResetComponentWithContext is ResetComponent with a caller-supplied
// context.
func ResetComponentWithContext(ctx context.Context, component TestComponent) error {
	return component.Reset(ctx)
}

// THelper binds component lifecycle to a testing.T, so started
// components stop when the test ends and failures fail the test.
type THelper struct {
	t   *testing.T
	ctx context.Context
}

// T wraps a testing.T for component setup with automatic cleanup.
//
//	func TestMyFeature(t *testing.T) {
//	    testutil.T(t).Setup(dbComponent)
//	}
func T(t *testing.T) *THelper {
	return &THelper{t: t, ctx: context.Background()}
}

// WithContext sets a custom context for the helper.
func (h *THelper) WithContext(ctx context.Context) *THelper {
	h.ctx = ctx
	return h
}

// Setup starts a component and registers its stop with t.Cleanup.
func (h *THelper) Setup(component TestComponent) {
	if err := component.Start(h.ctx); err != nil {
		h.t.Fatalf("failed to start component %s: %v", component.Name(), err)
	}
	h.t.Cleanup(func() {
		if err := component.Stop(h.ctx); err != nil {
			h.t.Errorf("failed to stop component %s: %v", component.Name(), err)
		}
	})
}

// Reset resets a component, failing the test on error.
func (h *THelper) Reset(component TestComponent) {
	if err := component.Reset(h.ctx); err != nil {
		h.t.Fatalf("failed to reset component %s: %v", component.Name(), err)
	}
}

// Snapshot captures the component's current state.
func (h *THelper) Snapshot(component TestComponent) interface{} {
	snapshot, err := component.Snapshot(h.ctx)
	if err != nil {
		h.t.Fatalf("failed to snapshot component %s: %v", component.Name(), err)
	}
	return snapshot
}

// Restore returns a component to a previously captured state.
func (h *THelper) Restore(component TestComponent, snapshot interface{}) {
	if err := component.Restore(h.ctx, snapshot); err != nil {
		h.t.Fatalf("failed to restore component %s: %v", component.Name(), err)
	}
}
