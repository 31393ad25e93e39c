package reporter

import (
	"context"
	"testing"

	"github.com/kornysietsma/progress-logger/progress"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestTraceReporter(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	defer tp.Shutdown(context.Background())

	ctx, span := tp.Tracer("test").Start(context.Background(), "import")
	reporter := NewTraceReporter(ctx)
	reporter.Report(midRunEvent())
	reporter.Report(progress.Event{Name: "rows", Count: 21})
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	events := spans[0].Events()
	require.Len(t, events, 2)

	first := events[0]
	assert.Equal(t, "progress", first.Name)
	assert.Equal(t, midRunEvent().Timestamp, first.Time)
	attrs := attribute.NewSet(first.Attributes...)
	count, ok := attrs.Value("progress.count")
	require.True(t, ok)
	assert.Equal(t, int64(20), count.AsInt64())
	eta, ok := attrs.Value("progress.short_eta")
	require.True(t, ok)
	assert.Equal(t, 80.0, eta.AsFloat64())
	reason, ok := attrs.Value("progress.reason")
	require.True(t, ok)
	assert.Equal(t, "step", reason.AsString())

	second := attribute.NewSet(events[1].Attributes...)
	_, ok = second.Value("progress.short_rate")
	assert.False(t, ok)
	_, ok = second.Value("progress.max")
	assert.False(t, ok)
}

func TestTraceReporter_NoSpan(t *testing.T) {
	reporter := NewTraceReporter(context.Background())
	// a non-recording span; must not panic
	reporter.Report(midRunEvent())
}
