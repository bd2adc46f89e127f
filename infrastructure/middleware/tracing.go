package middleware

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/ahrav/go-heat/internal/domain"
	"github.com/ahrav/go-heat/internal/ports"
)

const tracerName = "heat-engine"

var _ ports.Unit = (*TracedUnit)(nil)

// TracedUnit wraps a pipeline stage in an OpenTelemetry span and reports
// its latency and outcome to an optional metrics collector. It is
// stateless and thread-safe.
type TracedUnit struct {
	next    ports.Unit
	metrics ports.MetricsCollector
}

// NewTracedUnit decorates next. metrics may be nil.
func NewTracedUnit(next ports.Unit, metrics ports.MetricsCollector) *TracedUnit {
	if next == nil {
		panic("traced unit: next unit is required")
	}
	return &TracedUnit{next: next, metrics: metrics}
}

// TraceUnits returns a decorator suitable for application.WithUnitWrapper.
func TraceUnits(metrics ports.MetricsCollector) func(ports.Unit) ports.Unit {
	return func(u ports.Unit) ports.Unit { return NewTracedUnit(u, metrics) }
}

// Name returns the wrapped unit's name so pipeline error messages stay
// unchanged.
func (tu *TracedUnit) Name() string { return tu.next.Name() }

// Unwrap returns the decorated unit.
func (tu *TracedUnit) Unwrap() ports.Unit { return tu.next }

// Execute runs the wrapped unit inside a span. The heat ID, when present
// in state, is attached as a span attribute.
func (tu *TracedUnit) Execute(ctx context.Context, state domain.State) (domain.State, error) {
	attrs := []attribute.KeyValue{attribute.String("unit.name", tu.next.Name())}
	if heatID, ok := domain.Get(state, domain.KeyHeatID); ok {
		attrs = append(attrs, attribute.Int("heat.id", heatID))
	}
	if executionID, ok := domain.Get(state, domain.KeyExecutionID); ok {
		attrs = append(attrs, attribute.String("execution.id", executionID))
	}

	ctx, span := otel.Tracer(tracerName).Start(ctx, "Unit.Execute", trace.WithAttributes(attrs...))
	defer span.End()

	start := time.Now()
	out, err := tu.next.Execute(ctx, state)
	elapsed := time.Since(start)

	status := "success"
	if err != nil {
		status = "error"
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		tu.addOutputEvents(span, out)
		span.SetStatus(codes.Ok, "")
	}

	if tu.metrics != nil {
		labels := map[string]string{"unit": tu.next.Name(), "status": status}
		tu.metrics.RecordLatency("unit.execute", elapsed, labels)
		tu.metrics.RecordCounter("unit.execute", 1, labels)
	}
	return out, err
}

// addOutputEvents records what the stage produced, keyed by the state
// entries the scoring stages write.
func (tu *TracedUnit) addOutputEvents(span trace.Span, out domain.State) {
	if incomplete, ok := domain.Get(out, domain.KeyIncompleteWaves); ok && len(incomplete) > 0 {
		span.AddEvent("waves.incomplete", trace.WithAttributes(
			attribute.Int("count", len(incomplete)),
		))
	}
	if results, ok := domain.Get(out, domain.KeyResults); ok {
		span.SetAttributes(attribute.Int("results.count", len(results)))
	}
}

// Validate delegates to the wrapped unit.
func (tu *TracedUnit) Validate() error { return tu.next.Validate() }
