// Package testutil provides testing infrastructure for fixturekit
// components.
//
// It extends the component lifecycle pattern with testing-specific
// capabilities: setup with automatic teardown, state reset between
// cases, and snapshot/restore for test isolation.
//
// # Quick Start
//
// Basic usage with automatic cleanup:
//
//	func TestMyFeature(t *testing.T) {
//	    testutil.T(t).Setup(myComponent)
//	    // stopped automatically when the test ends
//	}
//
// Manual cleanup:
//
//	cleanup, err := testutil.Setup(myComponent)
//	if err != nil {
//	    t.Fatal(err)
//	}
//	defer cleanup()
//
// Managing multiple components:
//
//	manager := testutil.NewManager(ctx)
//	manager.Add(dbComponent)
//	manager.Add(runnerComponent)
//	manager.StartAll()
//	defer manager.Cleanup()
//
// # Architecture
//
// TestComponent extends component.Component with three methods:
//
//   - Reset(ctx): restore the component to its initial state
//   - Snapshot(ctx): capture the current state
//   - Restore(ctx, snapshot): return to a captured state
//
// A TestComponent therefore registers in a production component
// registry unchanged, while tests get the extra state control.
//
// All Manager operations are safe for concurrent use; individual
// TestComponent implementations guard their own state.
package testutil
