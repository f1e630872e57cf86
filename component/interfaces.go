package component

import "context"

// HealthStatus classifies a component's health.
type HealthStatus string

const (
	StatusHealthy   HealthStatus = "healthy"
	StatusUnhealthy HealthStatus = "unhealthy"
	StatusDegraded  HealthStatus = "degraded"
)

// Health is one component's health report.
type Health struct {
	Name    string       `json:"name"`
	Status  HealthStatus `json:"status"`
	Message string       `json:"message,omitempty"`
}

// Component is a lifecycle-managed infrastructure service. The
// database connection implements it, as does the in-memory test
// database, so a Registry can bring them up and down in order.
type Component interface {
	// Name is the unique registration name.
	Name() string

	// Start brings the component up. It must be safe to call Stop
	// after a failed Start.
	Start(ctx context.Context) error

	// Stop shuts the component down and releases its resources.
	Stop(ctx context.Context) error

	// Health reports the component's current state.
	Health(ctx context.Context) Health
}

// Description is what a component self-reports for startup display.
type Description struct {
	// Name is the display name, e.g. "SQLite". Falls back to the
	// component's Name() when empty.
	Name string
	// Type categorizes the component: "database", "migration", etc.
	Type string
	// Details is a one-liner such as "localhost:5432 pool=25/5".
	Details string
}

// Describable is optionally implemented by components that can
// summarize their configuration.
type Describable interface {
	Describe() Description
}
