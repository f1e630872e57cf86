package testutil

import (
	"context"

	"github.com/kbukum/fixturekit/component"
)

// TestComponent is a component.Component that tests can additionally
// reset between cases and snapshot/restore for isolation. A
// TestComponent still registers in a production component registry
// unchanged.
type TestComponent interface {
	component.Component

	// Reset returns the component to its initial state.
	Reset(ctx context.Context) error

	// Snapshot captures the current state. The returned value is
	// opaque to callers and only meaningful to Restore.
	Snapshot(ctx context.Context) (interface{}, error)

	// Restore returns the component to a state captured by Snapshot.
	Restore(ctx context.Context, snapshot interface{}) error
}
