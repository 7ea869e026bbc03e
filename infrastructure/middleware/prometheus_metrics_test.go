package middleware

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-compare/internal/ports"
)

// newTestMetrics registers the collectors in a private registry so tests do
// not collide on the global one.
func newTestMetrics(t *testing.T) (*PrometheusMetrics, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	return NewPrometheusMetrics(reg), reg
}

func TestNewPrometheusMetrics(t *testing.T) {
	pm, reg := newTestMetrics(t)

	assert.NotNil(t, pm.recomputeTotal, "recomputeTotal should be initialized")
	assert.NotNil(t, pm.warningsTotal, "warningsTotal should be initialized")
	assert.NotNil(t, pm.itemsScored, "itemsScored should be initialized")
	assert.NotNil(t, pm.winnerScore, "winnerScore should be initialized")
	assert.NotNil(t, pm.executionLatency, "executionLatency should be initialized")
	assert.NotNil(t, pm.operationCounter, "operationCounter should be initialized")
	assert.NotNil(t, pm.systemGauges, "systemGauges should be initialized")

	var _ ports.MetricsCollector = pm

	assert.Panics(t, func() { NewPrometheusMetrics(reg) }, "duplicate registration must panic")
}

func TestPrometheusMetrics_RecordCounter(t *testing.T) {
	pm, _ := newTestMetrics(t)

	pm.RecordCounter(ports.MetricRecomputeTotal, 1, map[string]string{
		ports.LabelMethod: "weighted_average",
		ports.LabelStatus: ports.StatusSuccess,
	})
	pm.RecordCounter(ports.MetricRecomputeTotal, 2, map[string]string{
		ports.LabelMethod: "weighted_average",
		ports.LabelStatus: ports.StatusSuccess,
	})
	pm.RecordCounter(ports.MetricRecomputeTotal, 1, map[string]string{ports.LabelStatus: ports.StatusConflict})
	pm.RecordCounter(ports.MetricDegenerateWarnings, 1, map[string]string{ports.LabelCode: "zero_total_weight"})
	pm.RecordCounter("template_saved", 1, nil)

	assert.Equal(t, 3.0, testutil.ToFloat64(pm.recomputeTotal.WithLabelValues("weighted_average", ports.StatusSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(pm.recomputeTotal.WithLabelValues("unknown", ports.StatusConflict)))
	assert.Equal(t, 1.0, testutil.ToFloat64(pm.warningsTotal.WithLabelValues("zero_total_weight")))
	assert.Equal(t, 1.0, testutil.ToFloat64(pm.operationCounter.WithLabelValues("template_saved", ports.StatusSuccess)))
}

func TestPrometheusMetrics_RecordGauge(t *testing.T) {
	pm, _ := newTestMetrics(t)

	pm.RecordGauge(ports.MetricRecomputeInFlight, 4, nil)
	pm.RecordGauge(ports.MetricRecomputeInFlight, 2, nil)

	assert.Equal(t, 2.0, testutil.ToFloat64(pm.systemGauges.WithLabelValues(ports.MetricRecomputeInFlight)))
}

func TestPrometheusMetrics_Histograms(t *testing.T) {
	pm, reg := newTestMetrics(t)
	labels := map[string]string{ports.LabelMethod: "sum"}

	pm.RecordLatency("Recompute", 120*time.Millisecond, labels)
	pm.RecordHistogram(ports.MetricItemsScored, 12, labels)
	pm.RecordHistogram(ports.MetricWinnerScore, 87.5, labels)
	pm.RecordHistogram("custom_distribution", 3, nil)

	count, err := testutil.GatherAndCount(reg,
		"comparer_operation_duration_seconds",
		"comparer_items_scored",
		"comparer_winner_score",
	)
	require.NoError(t, err)
	// Two latency series (Recompute/sum and custom_distribution/unknown)
	// plus one series each for items and winner score.
	assert.Equal(t, 4, count)
}
