package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var _ Metrics = (*Service)(nil)

// NewMetricsHandler returns an http.Handler for the given Gatherer.
// If no gatherer is provided, it uses the default one.
func NewMetricsHandler(gatherer ...prometheus.Gatherer) http.Handler {
	gath := prometheus.DefaultGatherer
	if len(gatherer) > 0 {
		gath = gatherer[0]
	}
	return promhttp.HandlerFor(gath, promhttp.HandlerOpts{})
}

// NewService creates and registers the Prometheus metrics.
// If no registerer is provided, it uses the default Prometheus registerer.
func NewService(registerer ...prometheus.Registerer) *Service {
	reg := prometheus.DefaultRegisterer
	if len(registerer) > 0 {
		reg = registerer[0]
	}

	s := &Service{
		ResultsProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "padel_results_processed_total",
			Help: "The total number of match results run through the rating engine.",
		}),
		DeltasApplied: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "padel_rating_deltas_applied_total",
			Help: "The total number of rating deltas written to the store.",
		}),
		DeltasSuppressed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "padel_rating_deltas_suppressed_total",
			Help: "The total number of results whose deltas were suppressed (friendly or interrupted).",
		}),
		UpdateDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "padel_rating_update_duration_seconds",
			Help:    "The duration of individual rating updates.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		ImportRuns: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "padel_import_runs_total",
			Help: "The total number of times the Playtomic importer has run.",
		}),
		StartupTimeSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "padel_startup_duration_seconds",
			Help: "The duration of the application startup in seconds.",
		}),
	}

	reg.MustRegister(
		s.ResultsProcessed,
		s.DeltasApplied,
		s.DeltasSuppressed,
		s.UpdateDuration,
		s.ImportRuns,
		s.StartupTimeSeconds,
	)

	return s
}

func (s *Service) IncResultsProcessed() {
	s.ResultsProcessed.Inc()
}

func (s *Service) IncDeltasApplied() {
	s.DeltasApplied.Inc()
}

func (s *Service) IncDeltasSuppressed() {
	s.DeltasSuppressed.Inc()
}

func (s *Service) ObserveUpdateDuration(duration float64) {
	s.UpdateDuration.Observe(duration)
}

func (s *Service) IncImportRuns() {
	s.ImportRuns.Inc()
}

func (s *Service) SetStartupTime(duration float64) {
	s.StartupTimeSeconds.Set(duration)
}
