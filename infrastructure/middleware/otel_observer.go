package middleware

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/ahrav/go-compare/internal/domain"
	"github.com/ahrav/go-compare/internal/ports"
)

const tracerName = "github.com/ahrav/go-compare/comparative-service"

var _ ports.RecomputeObserver = (*OTelRecomputeObserver)(nil)

// OTelRecomputeObserver implements observability for recompute operations
// using OpenTelemetry tracing. It opens a span per operation, annotates it
// with the scoring outcome, records an event per degenerate-input warning,
// and forwards the same data to a MetricsCollector.
type OTelRecomputeObserver struct {
	metrics  ports.MetricsCollector
	tracer   trace.Tracer
	inFlight atomic.Int64
}

// NewOTelRecomputeObserver creates an observer that uses the global tracer
// provider. metrics may be nil.
func NewOTelRecomputeObserver(metrics ports.MetricsCollector) *OTelRecomputeObserver {
	return &OTelRecomputeObserver{
		metrics: metrics,
		tracer:  otel.Tracer(tracerName),
	}
}

// PreRecompute implements ports.RecomputeObserver. It starts a span and
// bumps the in-flight gauge.
func (o *OTelRecomputeObserver) PreRecompute(ctx context.Context, operation, comparativeID string) context.Context {
	ctx, _ = o.tracer.Start(ctx, "ComparativeService."+operation,
		trace.WithAttributes(attribute.String("comparative.id", comparativeID)),
	)

	n := o.inFlight.Add(1)
	if o.metrics != nil {
		o.metrics.RecordGauge(ports.MetricRecomputeInFlight, float64(n), nil)
	}
	return ctx
}

// PostRecompute implements ports.RecomputeObserver. It finalizes the span,
// records metrics, and handles any error conditions that occurred.
func (o *OTelRecomputeObserver) PostRecompute(
	ctx context.Context,
	operation string,
	c domain.Comparative,
	res domain.ScoreResult,
	elapsed time.Duration,
	err error,
) {
	span := trace.SpanFromContext(ctx)
	defer span.End()

	n := o.inFlight.Add(-1)
	labels := map[string]string{
		ports.LabelMethod: string(c.ScoringMethod),
		ports.LabelStatus: statusFor(err),
	}
	if o.metrics != nil {
		o.metrics.RecordGauge(ports.MetricRecomputeInFlight, float64(n), nil)
		o.metrics.RecordLatency(operation, elapsed, labels)
		o.metrics.RecordCounter(ports.MetricRecomputeTotal, 1, labels)
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(attribute.String("recompute.status", labels[ports.LabelStatus]))
		return
	}

	o.addSpanAttributes(span, c, res)
	o.recordWarnings(span, res.Warnings)

	if o.metrics != nil {
		o.metrics.RecordHistogram(ports.MetricItemsScored, float64(len(res.Items)), labels)
		if len(res.Items) > 0 {
			o.metrics.RecordHistogram(ports.MetricWinnerScore, res.Items[0].Score, labels)
		}
	}
	span.SetStatus(codes.Ok, "recompute completed")
}

// addSpanAttributes describes the scored comparative on the span.
func (o *OTelRecomputeObserver) addSpanAttributes(span trace.Span, c domain.Comparative, res domain.ScoreResult) {
	span.SetAttributes(
		attribute.String("recompute.status", ports.StatusSuccess),
		attribute.String("scoring.method", string(c.ScoringMethod)),
		attribute.Int("scoring.criteria", len(c.Criteria)),
		attribute.Int("scoring.items", len(res.Items)),
		attribute.Int64("comparative.version", c.Version),
		attribute.Int("scoring.warnings", len(res.Warnings)),
	)
	if res.WinnerID != "" {
		span.SetAttributes(attribute.String("scoring.winner_id", res.WinnerID))
	}
}

// recordWarnings adds one span event and one counter increment per warning.
func (o *OTelRecomputeObserver) recordWarnings(span trace.Span, warnings []domain.DegenerateInputWarning) {
	for _, w := range warnings {
		span.AddEvent("scoring.degenerate_input", trace.WithAttributes(
			attribute.String("code", string(w.Code)),
			attribute.String("message", w.Message),
		))
		if o.metrics != nil {
			o.metrics.RecordCounter(ports.MetricDegenerateWarnings, 1,
				map[string]string{ports.LabelCode: string(w.Code)})
		}
	}
}

// statusFor maps an operation error onto the status label.
func statusFor(err error) string {
	switch {
	case err == nil:
		return ports.StatusSuccess
	case errors.Is(err, domain.ErrVersionConflict):
		return ports.StatusConflict
	case errors.Is(err, domain.ErrLockNotAcquired):
		return ports.StatusLocked
	case domain.IsValidationError(err):
		return ports.StatusInvalid
	case errors.Is(err, ports.ErrServiceUnavailable), errors.Is(err, ports.ErrTimeout):
		return ports.StatusUnavailable
	default:
		return ports.StatusError
	}
}

// InFlight returns the number of operations between PreRecompute and
// PostRecompute.
func (o *OTelRecomputeObserver) InFlight() int64 { return o.inFlight.Load() }
