package metrics

import "github.com/prometheus/client_golang/prometheus"

// Vector store and search Prometheus metrics.
var (
	VectorStoreRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "vector_store_requests_total",
			Help:      "Total number of vector store requests",
		},
		[]string{"driver", "op", "status"},
	)

	VectorStoreRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "vector_store_request_duration_seconds",
			Help:      "Vector store request duration in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"driver", "op"},
	)

	SearchResultsCount = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_results_count",
			Help:      "Number of results returned per search",
			Buckets:   []float64{0, 1, 2, 5, 10},
		},
	)
)

var storeMetricsRegistered bool

// RegisterStoreMetrics registers vector store and search metrics. Must be called once from main.
func RegisterStoreMetrics() {
	if storeMetricsRegistered {
		return
	}
	prometheus.MustRegister(VectorStoreRequestsTotal)
	prometheus.MustRegister(VectorStoreRequestDuration)
	prometheus.MustRegister(SearchResultsCount)
	storeMetricsRegistered = true
}

// StoreStatus is the status label for a vector store call outcome.
func StoreStatus(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
