package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Namespace prefixes every metric exported by the service.
const Namespace = "salesdesk"

// QueryMetrics tracks latency and failures of read operations against the row store.
type QueryMetrics struct {
	duration *prometheus.HistogramVec
	failure  *prometheus.CounterVec
	rows     *prometheus.HistogramVec
}

// NewQueryMetrics registers the query metrics on the provided registerer.
func NewQueryMetrics(reg prometheus.Registerer) *QueryMetrics {
	if reg == nil {
		return &QueryMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: Namespace,
		Name:      "query_duration_seconds",
		Help:      "Duration of sales queries in seconds.",
		Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
	}, []string{"operation"})
	failure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "query_failure_total",
		Help:      "Failed sales queries.",
	}, []string{"operation"})
	rows := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: Namespace,
		Name:      "query_rows_returned",
		Help:      "Rows returned per sales query page.",
		Buckets:   []float64{0, 1, 10, 50, 100, 500, 1000},
	}, []string{"operation"})
	reg.MustRegister(duration, failure, rows)
	return &QueryMetrics{duration: duration, failure: failure, rows: rows}
}

// Observe records one finished operation.
func (q *QueryMetrics) Observe(operation string, took time.Duration, rows int, err error) {
	if q == nil || q.duration == nil {
		return
	}
	op := normalizeLabel(operation)
	q.duration.WithLabelValues(op).Observe(took.Seconds())
	if err != nil {
		q.failure.WithLabelValues(op).Inc()
		return
	}
	q.rows.WithLabelValues(op).Observe(float64(rows))
}
