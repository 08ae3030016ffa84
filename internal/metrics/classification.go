package metrics

import "github.com/prometheus/client_golang/prometheus"

// Classification Prometheus metrics.
var (
	ClassificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "claimdex",
			Name:      "classifications_total",
			Help:      "Total number of claim classifications by verdict",
		},
		[]string{"verdict"},
	)

	ClassificationScanDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "claimdex",
			Name:      "classification_scan_duration_seconds",
			Help:      "Duration of the history scan during classification",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
	)

	ClassificationRecordsScanned = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "claimdex",
			Name:      "classification_records_scanned",
			Help:      "Number of historical records examined per classification",
			Buckets:   []float64{1, 10, 100, 1_000, 10_000, 100_000},
		},
	)

	ClassificationSkippedRecords = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "claimdex",
			Name:      "classification_skipped_records_total",
			Help:      "Historical records skipped during scans, by reason",
		},
		[]string{"reason"}, // "dim_mismatch" / "degenerate_vector" / "corrupt_row"
	)
)

var classMetricsRegistered bool

// RegisterClassificationMetrics registers classifier metrics. Must be called once from main.
func RegisterClassificationMetrics() {
	if classMetricsRegistered {
		return
	}
	prometheus.MustRegister(ClassificationsTotal)
	prometheus.MustRegister(ClassificationScanDuration)
	prometheus.MustRegister(ClassificationRecordsScanned)
	prometheus.MustRegister(ClassificationSkippedRecords)
	classMetricsRegistered = true
}
