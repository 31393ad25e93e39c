// Package tracing sets up OpenTelemetry for the progress-logger binaries.
package tracing

import (
	"context"
	"fmt"
	"time"

	"github.com/go-logr/logr"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/jaeger"
	"go.opentelemetry.io/otel/sdk/resource"
	tracesdk "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.4.0"
	"go.opentelemetry.io/otel/trace"
)

const (
	defaultServiceName = "progress-logger"
	shutdownTimeout    = 5 * time.Second
)

type Options struct {
	EnableJaeger   bool
	JaegerEndpoint string

	// ServiceName defaults to progress-logger.
	ServiceName string

	// SampleRatio is the fraction of root spans kept, in (0, 1]. Zero keeps
	// every span.
	SampleRatio float64
}

// Provider owns the tracer provider of one run.
type Provider struct {
	tp   *tracesdk.TracerProvider
	name string
	log  logr.Logger
}

// Init installs a global tracer provider. Spans only leave the process when
// Jaeger export is enabled.
func Init(log logr.Logger, o Options) (*Provider, error) {
	if o.SampleRatio < 0 || o.SampleRatio > 1 {
		return nil, fmt.Errorf("trace sample ratio must be between 0 and 1, got %v", o.SampleRatio)
	}
	name := o.ServiceName
	if name == "" {
		name = defaultServiceName
	}

	sampler := tracesdk.AlwaysSample()
	if o.SampleRatio > 0 {
		sampler = tracesdk.ParentBased(tracesdk.TraceIDRatioBased(o.SampleRatio))
	}
	tracerOptions := []tracesdk.TracerProviderOption{
		tracesdk.WithSampler(sampler),
		tracesdk.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceNameKey.String(name),
		)),
	}
	if o.EnableJaeger {
		exp, err := jaeger.New(jaeger.WithCollectorEndpoint(jaeger.WithEndpoint(o.JaegerEndpoint)))
		if err != nil {
			return nil, fmt.Errorf("unable to create jaeger exporter for %s: %w", o.JaegerEndpoint, err)
		}
		tracerOptions = append(tracerOptions, tracesdk.WithBatcher(exp))
		log.V(3).Info("exporting traces to jaeger", "endpoint", o.JaegerEndpoint, "service", name)
	}

	tp := tracesdk.NewTracerProvider(tracerOptions...)
	otel.SetTracerProvider(tp)
	return &Provider{tp: tp, name: name, log: log}, nil
}

// Start opens a span named name under ctx.
func (p *Provider) Start(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return p.tp.Tracer(p.name).Start(ctx, name, trace.WithAttributes(attrs...))
}

// Shutdown flushes pending spans, giving up after five seconds.
func (p *Provider) Shutdown(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()
	if err := p.tp.Shutdown(ctx); err != nil {
		p.log.Error(err, "error shutting down tracer provider")
	}
}
