// Package metrics exposes Prometheus instrumentation for the pipeline and
// the insight layer.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PipelineRuns counts pipeline recomputations by outcome.
	PipelineRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mktintel",
		Subsystem: "pipeline",
		Name:      "runs_total",
		Help:      "Pipeline recomputations grouped by outcome.",
	}, []string{"outcome"})

	// RowsRejected counts rows excluded during parsing.
	RowsRejected = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "mktintel",
		Subsystem: "pipeline",
		Name:      "rows_rejected_total",
		Help:      "Source rows rejected during parsing.",
	})

	// CacheLookups counts result-cache lookups by result.
	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mktintel",
		Subsystem: "cache",
		Name:      "lookups_total",
		Help:      "Result cache lookups grouped by hit or miss.",
	}, []string{"result"})

	// InsightRequests counts insight generations by provider.
	InsightRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mktintel",
		Subsystem: "insights",
		Name:      "requests_total",
		Help:      "Insight requests grouped by provider and outcome.",
	}, []string{"provider", "outcome"})

	// PipelineDuration observes how long a full recomputation takes.
	PipelineDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "mktintel",
		Subsystem: "pipeline",
		Name:      "run_duration_seconds",
		Help:      "Duration of a full pipeline recomputation.",
		Buckets:   prometheus.DefBuckets,
	})
)
