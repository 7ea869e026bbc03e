// Package middleware provides cross-cutting concerns for the comparison
// service: Prometheus metrics and OpenTelemetry tracing.
package middleware

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/ahrav/go-compare/internal/ports"
)

const metricsNamespace = "comparer"

// PrometheusMetrics implements the MetricsCollector interface using Prometheus.
// It tracks recompute throughput and latency, degenerate-input warnings, and
// the shape of scored comparatives.
type PrometheusMetrics struct {
	recomputeTotal   *prometheus.CounterVec
	warningsTotal    *prometheus.CounterVec
	itemsScored      *prometheus.HistogramVec
	winnerScore      *prometheus.HistogramVec
	executionLatency *prometheus.HistogramVec
	operationCounter *prometheus.CounterVec
	systemGauges     *prometheus.GaugeVec
}

// NewPrometheusMetrics creates a new PrometheusMetrics instance and registers
// all metrics with reg. A nil reg selects the global default registerer.
func NewPrometheusMetrics(reg prometheus.Registerer) *PrometheusMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &PrometheusMetrics{
		recomputeTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      ports.MetricRecomputeTotal,
				Help:      "Total number of recompute attempts by scoring method and outcome.",
			},
			[]string{ports.LabelMethod, ports.LabelStatus},
		),
		warningsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      ports.MetricDegenerateWarnings,
				Help:      "Degenerate-input warnings surfaced by the scoring engine.",
			},
			[]string{ports.LabelCode},
		),
		itemsScored: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Name:      ports.MetricItemsScored,
				Help:      "Number of items scored per recompute.",
				Buckets:   []float64{1, 2, 5, 10, 20, 50, 100, 250, 1000},
			},
			[]string{ports.LabelMethod},
		),
		winnerScore: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Name:      ports.MetricWinnerScore,
				Help:      "Composite score of the rank-1 item.",
				Buckets:   prometheus.LinearBuckets(0, 10, 11),
			},
			[]string{ports.LabelMethod},
		),

		// General execution metrics for comprehensive observability.
		executionLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Name:      "operation_duration_seconds",
				Help:      "Execution time of comparative service operations.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{ports.LabelOperation, ports.LabelMethod},
		),
		operationCounter: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "operations_total",
				Help:      "Total number of other counted events.",
			},
			[]string{ports.LabelOperation, ports.LabelStatus},
		),
		systemGauges: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Name:      "system_state",
				Help:      "Current system state values for the comparative service.",
			},
			[]string{"metric"},
		),
	}
}

// label returns labels[key], or "unknown" when it is missing or empty.
func label(labels map[string]string, key string) string {
	if v := labels[key]; v != "" {
		return v
	}
	return "unknown"
}

// RecordLatency implements the MetricsCollector interface by recording
// execution latency in a Prometheus histogram.
func (pm *PrometheusMetrics) RecordLatency(
	operation string,
	duration time.Duration,
	labels map[string]string,
) {
	pm.executionLatency.WithLabelValues(operation, label(labels, ports.LabelMethod)).Observe(duration.Seconds())
}

// RecordCounter implements the MetricsCollector interface by incrementing
// Prometheus counters.
func (pm *PrometheusMetrics) RecordCounter(
	metric string, value float64, labels map[string]string,
) {
	switch metric {
	case ports.MetricRecomputeTotal:
		pm.recomputeTotal.WithLabelValues(
			label(labels, ports.LabelMethod),
			label(labels, ports.LabelStatus),
		).Add(value)
	case ports.MetricDegenerateWarnings:
		pm.warningsTotal.WithLabelValues(label(labels, ports.LabelCode)).Add(value)
	default:
		status := labels[ports.LabelStatus]
		if status == "" {
			status = ports.StatusSuccess
		}
		pm.operationCounter.WithLabelValues(metric, status).Add(value)
	}
}

// RecordGauge implements the MetricsCollector interface by setting
// Prometheus gauge values.
func (pm *PrometheusMetrics) RecordGauge(
	metric string, value float64, _ map[string]string,
) {
	pm.systemGauges.WithLabelValues(metric).Set(value)
}

// RecordHistogram implements the MetricsCollector interface by recording
// values in a Prometheus histogram.
func (pm *PrometheusMetrics) RecordHistogram(
	metric string, value float64, labels map[string]string,
) {
	method := label(labels, ports.LabelMethod)
	switch metric {
	case ports.MetricItemsScored:
		pm.itemsScored.WithLabelValues(method).Observe(value)
	case ports.MetricWinnerScore:
		pm.winnerScore.WithLabelValues(method).Observe(value)
	default:
		pm.executionLatency.WithLabelValues(metric, method).Observe(value)
	}
}

// Compile-time verification that PrometheusMetrics implements MetricsCollector.
var _ ports.MetricsCollector = (*PrometheusMetrics)(nil)
