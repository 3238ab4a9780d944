package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// DBQueryDuration tracks repository statements by operation and table.
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "taskboard_db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"operation", "table"},
	)

	// DBQueryErrors counts failed repository statements.
	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taskboard_db_query_errors_total",
			Help: "Total number of failed database queries",
		},
		[]string{"operation", "table"},
	)

	// HTTPRequestDuration tracks admin requests by route template.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "taskboard_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		},
		[]string{"method", "route", "status"},
	)

	// SeededRows counts rows created by the seeding commands.
	SeededRows = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taskboard_seeded_rows_total",
			Help: "Total number of rows inserted by seeding",
		},
		[]string{"table"},
	)
)

func RecordDBQuery(operation, table string, duration time.Duration, failed bool) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
	if failed {
		DBQueryErrors.WithLabelValues(operation, table).Inc()
	}
}

func RecordHTTPRequest(method, route, status string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, route, status).Observe(duration.Seconds())
}

func AddSeededRows(table string, n int) {
	SeededRows.WithLabelValues(table).Add(float64(n))
}

// Collector adapts the package metrics to the ORM middleware interface.
type Collector struct{}

func (Collector) RecordOperation(operation, table string, duration time.Duration, failed bool) {
	RecordDBQuery(operation, table, duration, failed)
}
