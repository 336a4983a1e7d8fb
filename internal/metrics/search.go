package metrics

import "github.com/prometheus/client_golang/prometheus"

// Search Prometheus metrics.
var (
	SearchRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "qseq",
			Name:      "search_runs_total",
			Help:      "Total number of search runs",
		},
		[]string{"predicate", "symmetry", "status"}, // "complete" / "truncated" / "cancelled" / "cached"
	)

	SearchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "qseq",
			Name:      "search_duration_seconds",
			Help:      "Search run duration in seconds",
			Buckets:   []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 30, 120, 600, 3600},
		},
		[]string{"predicate", "symmetry"},
	)

	SearchLeavesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "qseq",
			Name:      "search_leaves_total",
			Help:      "Total complete assignments evaluated",
		},
		[]string{"predicate", "symmetry"},
	)

	SearchSolutionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "qseq",
			Name:      "search_solutions_total",
			Help:      "Total solutions found",
		},
		[]string{"predicate", "symmetry"},
	)

	SearchLargestSize = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "qseq",
			Name:      "search_largest_complete_size",
			Help:      "Largest sequence length searched to completion",
		},
		[]string{"predicate", "symmetry"},
	)

	ResultCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "qseq",
			Name:      "result_cache_total",
			Help:      "Search result cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)
)

var searchMetricsRegistered bool

// SearchCollectors returns the search metric collectors.
func SearchCollectors() []prometheus.Collector {
	return []prometheus.Collector{
		SearchRunsTotal,
		SearchDuration,
		SearchLeavesTotal,
		SearchSolutionsTotal,
		SearchLargestSize,
		ResultCacheTotal,
	}
}

// RegisterSearchMetrics registers Prometheus search metrics. Must be called once from main.
func RegisterSearchMetrics() {
	if searchMetricsRegistered {
		return
	}
	prometheus.MustRegister(SearchCollectors()...)
	searchMetricsRegistered = true
}
