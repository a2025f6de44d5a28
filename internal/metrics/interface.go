package metrics

// Metrics defines the interface for collecting application metrics.
// This decouples the application from the specific metrics implementation (e.g., Prometheus).
type Metrics interface {
	IncResultsProcessed()
	IncDeltasApplied()
	IncDeltasSuppressed()
	ObserveUpdateDuration(duration float64)
	IncImportRuns()
	SetStartupTime(duration float64)
}

// MetricsStore persists a few engine counters across restarts, independent of
// the Prometheus registry lifetime.
type MetricsStore interface {
	Increment(key string)
	GetAll() (map[string]int, error)
}
