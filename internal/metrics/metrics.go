package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	Operations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wfeditor_operations_total",
		Help: "Editor operations applied, labelled by operation and status (ok, stale, error).",
	}, []string{"op", "status"})

	ConflictsDetected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wfeditor_conflicts_detected_total",
		Help: "Conflict scans that found at least one edge-type conflict.",
	})

	Fetches = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wfeditor_fetches_total",
		Help: "Detail fetches, labelled by kind (template, credential, inventory) and status.",
	}, []string{"kind", "status"})

	StaleResultsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wfeditor_stale_results_dropped_total",
		Help: "Fetch results discarded because their node was deleted or left edit mode.",
	})

	SessionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "wfeditor_sessions_active",
		Help: "Editing sessions currently open.",
	})

	FetchQueueUtilization = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "wfeditor_fetch_queue_utilization_ratio",
		Help: "Current fetch queue utilization (0–1).",
	})
)
