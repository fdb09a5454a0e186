package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"handler", "method", "status_code"},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"handler", "method", "status_code"},
	)
)

var (
	AdmissionResultsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "seckill_admission_results_total",
			Help: "Admission gate decisions by result",
		},
		[]string{"result"},
	)

	FulfillmentOutcomesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "seckill_fulfillment_outcomes_total",
			Help: "Fulfillment transaction outcomes by kind",
		},
		[]string{"outcome"},
	)

	FulfillmentDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "seckill_fulfillment_duration_seconds",
			Help:    "Duration of the fulfillment transaction including lock acquisition",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
	)

	QueuePendingEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "seckill_queue_pending_entries",
			Help: "Entries delivered to the consumer group but not yet acknowledged",
		},
	)

	StockDriftGauge = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "seckill_stock_drift",
			Help: "Cached stock counter minus persisted stock per voucher",
		},
		[]string{"voucher_id"},
	)
)

var (
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Duration of database queries in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"query_type", "table"},
	)

	DBConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_connections_active",
			Help: "Number of active database connections",
		},
	)

	DBConnectionsIdle = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_connections_idle",
			Help: "Number of idle database connections",
		},
	)
)

var (
	RedisCommandDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "redis_command_duration_seconds",
			Help:    "Duration of Redis commands in seconds",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"command"},
	)

	RedisLockAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "redis_lock_attempts_total",
			Help: "Total number of distributed lock attempts",
		},
		[]string{"lock_type"},
	)

	RedisLockSuccessTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "redis_lock_success_total",
			Help: "Total number of successful lock acquisitions",
		},
		[]string{"lock_type"},
	)

	RedisLockFailureTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "redis_lock_failure_total",
			Help: "Total number of failed lock acquisitions",
		},
		[]string{"lock_type", "reason"},
	)
)

func RecordAdmission(result string) {
	AdmissionResultsTotal.WithLabelValues(result).Inc()
}

func RecordFulfillment(outcome string) {
	FulfillmentOutcomesTotal.WithLabelValues(outcome).Inc()
}

func TimeFulfillment() func() {
	start := time.Now()
	return func() {
		FulfillmentDuration.Observe(time.Since(start).Seconds())
	}
}

func TimeDBQuery(queryType, table string) func() {
	start := time.Now()
	return func() {
		DBQueryDuration.WithLabelValues(queryType, table).Observe(time.Since(start).Seconds())
	}
}
