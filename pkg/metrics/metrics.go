// Package metrics exposes the Prometheus counters, gauges, and histograms
// the scout/weave/materialize orchestration loop updates, grounded on
// jordigilh-kubernaut's package-level promauto registration style.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ScoutRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rootsignal_scout_runs_total",
		Help: "Scout Pipeline runs, by region and outcome.",
	}, []string{"region", "outcome"})

	ScoutRunDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "rootsignal_scout_run_duration_seconds",
		Help:    "Wall-clock duration of one Scout Pipeline run.",
		Buckets: prometheus.DefBuckets,
	}, []string{"region"})

	ScoutSourcesProcessed = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "rootsignal_scout_sources_processed",
		Help: "Sources processed in the most recent Scout Pipeline run.",
	}, []string{"region"})

	ScoutSignalsDiscoveredTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rootsignal_scout_signals_discovered_total",
		Help: "Signals discovered across all Scout Pipeline runs, by region.",
	}, []string{"region"})

	// ScoutLLMBudgetRequestsPerRun reflects the configured per-run LLM call
	// ceiling the scheduler checks spent calls against; a checkpoint gauge
	// rather than a live counter since the budget itself lives inside one
	// run and is never retained between runs.
	ScoutLLMBudgetRequestsPerRun = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "rootsignal_scout_llm_budget_requests_per_run",
		Help: "Configured LLM call budget the Scout Pipeline checks against per run.",
	})

	WeaveRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rootsignal_weave_runs_total",
		Help: "Situation Weaver runs, by outcome.",
	}, []string{"outcome"})

	WeaveDispatchesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rootsignal_weave_dispatches_total",
		Help: "Dispatches produced by the Situation Weaver.",
	})

	MaterializePhaseDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "rootsignal_materialize_phase_duration_seconds",
		Help:    "Duration of a Story Materializer run, by outcome.",
		Buckets: prometheus.DefBuckets,
	}, []string{"outcome"})

	ReapEntitiesExpiredTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rootsignal_reap_entities_expired_total",
		Help: "Entities expired by the Reaper across all sweeps.",
	})
)

// Handler serves the registered collectors in the Prometheus exposition
// format, mounted at /metrics alongside the read/submission API.
func Handler() http.Handler {
	return promhttp.Handler()
}
