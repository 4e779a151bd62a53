package metrics

import "github.com/prometheus/client_golang/prometheus"

// Search Prometheus metrics.
var (
	SearchRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "geodex",
			Name:      "search_requests_total",
			Help:      "Total number of hybrid search requests",
		},
		[]string{"strategy", "status"},
	)

	SearchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "geodex",
			Name:      "search_duration_seconds",
			Help:      "End-to-end search duration in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"strategy"},
	)

	SearchHitsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "geodex",
			Name:      "search_hits_total",
			Help:      "Raw hits retrieved per source before the merge pipeline",
		},
		[]string{"source"}, // "vector_store" / "web_search"
	)

	SearchSourceErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "geodex",
			Name:      "search_source_errors_total",
			Help:      "Per-source failures degraded to zero hits",
		},
		[]string{"source"},
	)

	WebSearchFragmentsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "geodex",
			Name:      "web_search_fragments_total",
			Help:      "Total fragments produced from web search responses",
		},
	)
)

var searchMetricsRegistered bool

// RegisterSearchMetrics registers Prometheus search metrics. Must be called once from main.
func RegisterSearchMetrics() {
	if searchMetricsRegistered {
		return
	}
	prometheus.MustRegister(SearchRequestsTotal)
	prometheus.MustRegister(SearchDuration)
	prometheus.MustRegister(SearchHitsTotal)
	prometheus.MustRegister(SearchSourceErrorsTotal)
	prometheus.MustRegister(WebSearchFragmentsTotal)
	searchMetricsRegistered = true
}
