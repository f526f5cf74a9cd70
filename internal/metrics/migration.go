package metrics

import "github.com/prometheus/client_golang/prometheus"

// Migration pipeline Prometheus metrics.
var (
	MigrationDocumentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fuza",
			Name:      "migration_documents_total",
			Help:      "Documents processed by the migration pipeline",
		},
		[]string{"status"}, // "embedded" / "skipped"
	)

	MigrationSkippedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fuza",
			Name:      "migration_skipped_total",
			Help:      "Documents skipped by the migration pipeline, by reason",
		},
		[]string{"reason"},
	)

	MigrationBatchesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "fuza",
			Name:      "migration_batches_total",
			Help:      "Upsert batches sent to the store",
		},
	)

	MigrationBatchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "fuza",
			Name:      "migration_batch_duration_seconds",
			Help:      "Batch upsert duration",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
	)
)

var migMetricsRegistered bool

// RegisterMigrationMetrics registers migration metrics. Must be called once from main.
func RegisterMigrationMetrics() {
	if migMetricsRegistered {
		return
	}
	prometheus.MustRegister(
		MigrationDocumentsTotal,
		MigrationSkippedTotal,
		MigrationBatchesTotal,
		MigrationBatchDuration,
	)
	migMetricsRegistered = true
}
