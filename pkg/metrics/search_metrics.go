// Package metrics provides Prometheus metrics for the meeting search pipeline.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Search pipeline metrics
var (
	// sourceFetchTotal records the total number of page fetches against the
	// remote meeting-records API.
	// Labels:
	//   - status: Fetch outcome (e.g., "success", "http_401", "network_error")
	sourceFetchTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "meeting_source_fetches_total",
			Help: "Total number of page fetches against the remote meeting source",
		},
		[]string{"status"},
	)

	// sourceFetchDuration records the duration of individual page fetches.
	// Buckets: 50ms to 30s
	sourceFetchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "meeting_source_fetch_duration_seconds",
			Help:    "Duration of individual page fetches in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
	)

	// searchTotal records the total number of search requests handled.
	// Labels:
	//   - status: Search outcome (e.g., "success", "invalid_request", "source_unavailable")
	searchTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "meeting_searches_total",
			Help: "Total number of meeting search requests",
		},
		[]string{"status"},
	)

	// searchRecordsScanned records how many candidate records each search
	// aggregated before safety filtering and matching.
	searchRecordsScanned = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "meeting_search_records_scanned",
			Help:    "Number of candidate records aggregated per search",
			Buckets: []float64{10, 25, 50, 100, 250, 500, 1000},
		},
	)

	// aggregationTruncatedTotal counts searches that hit the aggregation cap.
	aggregationTruncatedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "meeting_search_aggregation_truncated_total",
			Help: "Total number of searches truncated at the aggregation record cap",
		},
	)
)

func init() {
	prometheus.MustRegister(sourceFetchTotal)
	prometheus.MustRegister(sourceFetchDuration)
	prometheus.MustRegister(searchTotal)
	prometheus.MustRegister(searchRecordsScanned)
	prometheus.MustRegister(aggregationTruncatedTotal)
}

// RecordSourceFetch records one page fetch against the remote source.
// Parameters:
//   - status: Fetch outcome (e.g., "success", "http_429")
//   - durationSeconds: Fetch duration in seconds
func RecordSourceFetch(status string, durationSeconds float64) {
	sourceFetchTotal.WithLabelValues(status).Inc()
	sourceFetchDuration.Observe(durationSeconds)
}

// RecordSearch records the outcome of one search request.
// Parameters:
//   - status: Search outcome (e.g., "success", "source_rate_limited")
func RecordSearch(status string) {
	searchTotal.WithLabelValues(status).Inc()
}

// RecordRecordsScanned records the aggregated candidate set size of a search.
func RecordRecordsScanned(count int) {
	searchRecordsScanned.Observe(float64(count))
}

// RecordAggregationTruncated records a search that hit the aggregation cap.
func RecordAggregationTruncated() {
	aggregationTruncatedTotal.Inc()
}
