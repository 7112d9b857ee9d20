package component

import "context"

// HealthStatus represents the health state of a component.
type HealthStatus string

const (
	StatusHealthy   HealthStatus = "healthy"
	StatusUnhealthy HealthStatus = "unhealthy"
	StatusDegraded  HealthStatus = "degraded"
)

// Health holds health information for a component.
type Health struct {
	Name    string            `json:"name"`
	Status  HealthStatus      `json:"status"`
	Message string            `json:"message,omitempty"`
	Details map[string]string `json:"details,omitempty"`
}

// Healthy reports whether the status is StatusHealthy.
func (h Health) Healthy() bool {
	return h.Status == StatusHealthy
}

// Component represents a lifecycle-managed service.
type Component interface {
	// Name returns the unique name of the component.
	Name() string

	// Start prepares the component for use.
	Start(ctx context.Context) error

	// Stop shuts the component down and releases what it owns.
	Stop(ctx context.Context) error

	// Health returns the current health status of the component.
	Health(ctx context.Context) Health
}

// Description holds summary information about a component.
type Description struct {
	// Name is the human-readable display name. Empty means Component.Name().
	Name string
	// Type categorizes the component, e.g. "spawner".
	Type string
	// Details is a one-liner such as "env=merge preexec=skip live=3".
	Details string
}

// Describable is optionally implemented by Components to report how they
// are configured.
type Describable interface {
	Describe() Description
}
