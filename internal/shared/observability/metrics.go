// # internal/shared/observability/metrics.go
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics definitions
var (
	ExtractDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "depmap_extract_seconds",
		Help:    "Time spent extracting dependencies from a source file.",
		Buckets: prometheus.DefBuckets,
	}, []string{"language"})

	AnalysisDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "depmap_analysis_seconds",
		Help:    "Time spent on analysis phases.",
		Buckets: prometheus.DefBuckets,
	}, []string{"phase"})

	GraphModules = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "depmap_graph_modules_total",
		Help: "Number of modules in the finalized module map.",
	})

	GraphEdges = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "depmap_graph_edges_total",
		Help: "Number of valid dependency edges in the finalized module map.",
	})

	FilesSkippedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "depmap_files_skipped_total",
		Help: "Total number of files skipped because they could not be read.",
	})

	WatcherEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "depmap_watcher_events_total",
		Help: "Total number of file system events received by the watcher.",
	}, []string{"op"})

	RenderDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "depmap_render_seconds",
		Help:    "Time spent rendering an output format.",
		Buckets: prometheus.DefBuckets,
	}, []string{"format"})
)
