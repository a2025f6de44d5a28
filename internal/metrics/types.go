package metrics

import "github.com/prometheus/client_golang/prometheus"

// Service holds all the Prometheus metrics for the application.
// By defining them all in one place, we ensure consistency in naming and labeling.
type Service struct {
	ResultsProcessed   prometheus.Counter
	DeltasApplied      prometheus.Counter
	DeltasSuppressed   prometheus.Counter
	UpdateDuration     prometheus.Histogram
	ImportRuns         prometheus.Counter
	StartupTimeSeconds prometheus.Gauge
}

// Persisted counter keys for the MetricsStore.
const (
	KeyResultsProcessed = "results_processed"
	KeyDeltasApplied    = "deltas_applied"
	KeyDeltasSuppressed = "deltas_suppressed"
	KeyImportRuns       = "import_runs"
)
