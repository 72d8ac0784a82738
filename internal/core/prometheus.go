package core

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusMetricsRecorder exports operation latency and outcomes as
// prometheus collectors.
type PrometheusMetricsRecorder struct {
	duration *prometheus.HistogramVec
	total    *prometheus.CounterVec
}

// NewPrometheusMetricsRecorder registers the collectors with reg.
func NewPrometheusMetricsRecorder(reg prometheus.Registerer) (*PrometheusMetricsRecorder, error) {
	r := &PrometheusMetricsRecorder{
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "immunizetrack",
			Subsystem: "service",
			Name:      "operation_duration_seconds",
			Help:      "Latency of record store operations.",
			Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1},
		}, []string{"operation"}),
		total: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "immunizetrack",
			Subsystem: "service",
			Name:      "operations_total",
			Help:      "Record store operations by outcome.",
		}, []string{"operation", "status"}),
	}
	for _, c := range []prometheus.Collector{r.duration, r.total} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Observe implements MetricsRecorder.
func (r *PrometheusMetricsRecorder) Observe(_ context.Context, operation string, success bool, duration time.Duration) {
	status := "error"
	if success {
		status = "success"
	}
	r.duration.WithLabelValues(operation).Observe(duration.Seconds())
	r.total.WithLabelValues(operation, status).Inc()
}

// MultiMetrics fans observations out to several recorders.
type MultiMetrics []MetricsRecorder

// Observe implements MetricsRecorder.
func (m MultiMetrics) Observe(ctx context.Context, operation string, success bool, duration time.Duration) {
	for _, r := range m {
		if r != nil {
			r.Observe(ctx, operation, success, duration)
		}
	}
}
