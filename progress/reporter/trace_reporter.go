package reporter

import (
	"context"

	"github.com/kornysietsma/progress-logger/progress"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// TraceReporter records each event as an event on an OpenTelemetry span,
// so progress shows up on the timeline of the operation being traced.
//
// Usage:
//
//	ctx, span := tracer.Start(ctx, "import")
//	defer span.End()
//	p, _ := progress.New(progress.ReportTo(reporter.NewTraceReporter(ctx)), progress.WithStep(1000))
type TraceReporter struct {
	span trace.Span
}

// NewTraceReporter reports to the span carried by ctx. Without one,
// events go to a non-recording span and are discarded.
func NewTraceReporter(ctx context.Context) *TraceReporter {
	return &TraceReporter{span: trace.SpanFromContext(ctx)}
}

// Report adds a "progress" event to the span.
func (t *TraceReporter) Report(event progress.Event) {
	if !t.span.IsRecording() {
		return
	}
	normalize(&event)

	attrs := []attribute.KeyValue{
		attribute.Int64("progress.count", event.Count),
		attribute.Int64("progress.count_delta", event.CountDelta),
		attribute.Float64("progress.time_total", event.TimeTotal),
		attribute.Float64("progress.time_delta", event.TimeDelta),
	}
	if event.Name != "" {
		attrs = append(attrs, attribute.String("progress.name", event.Name))
	}
	if event.Reason != "" {
		attrs = append(attrs, attribute.String("progress.reason", event.Reason))
	}
	if event.Final {
		attrs = append(attrs, attribute.Bool("progress.final", true))
	}
	if event.ShortRate != nil {
		attrs = append(attrs, attribute.Float64("progress.short_rate", *event.ShortRate))
	}
	if event.LongRate != nil {
		attrs = append(attrs, attribute.Float64("progress.long_rate", *event.LongRate))
	}
	if event.Max > 0 {
		attrs = append(attrs,
			attribute.Int64("progress.max", event.Max),
			attribute.Float64("progress.percent", event.Percent))
	}
	if event.ShortETA != nil {
		attrs = append(attrs, attribute.Float64("progress.short_eta", *event.ShortETA))
	}
	if event.LongETA != nil {
		attrs = append(attrs, attribute.Float64("progress.long_eta", *event.LongETA))
	}

	t.span.AddEvent("progress", trace.WithTimestamp(event.Timestamp), trace.WithAttributes(attrs...))
}
