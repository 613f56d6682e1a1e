// Package tracing configures the OpenTelemetry tracer provider used by the
// storefront and offers a small helper for starting internal spans.
package tracing

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
)

// InstrumentationName is the tracer name used for storefront spans.
const InstrumentationName = "github.com/utafrali/storefront"

// Config describes where spans go and how many are kept.
type Config struct {
	Service     string
	Version     string
	Environment string
	// Endpoint is the host:port of an OTLP/HTTP collector.
	Endpoint string
	// SampleRate applies to new traces; sampled parents are always followed.
	SampleRate float64
	Enabled    bool
}

// Option adjusts Setup.
type Option func(*options)

type options struct {
	exporter sdktrace.SpanExporter
	sync     bool
}

// WithExporter sends spans to e instead of an OTLP collector and exports
// them synchronously. Tests use it with an in-memory exporter.
func WithExporter(e sdktrace.SpanExporter) Option {
	return func(o *options) {
		o.exporter = e
		o.sync = true
	}
}

// Setup installs the global tracer provider and W3C propagators and returns
// the function that flushes and stops it. A disabled config installs nothing
// and returns a no-op.
func Setup(ctx context.Context, cfg Config, opts ...Option) (func(context.Context) error, error) {
	if !cfg.Enabled {
		return func(context.Context) error { return nil }, nil
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.exporter == nil {
		exp, err := otlptracehttp.New(ctx,
			otlptracehttp.WithEndpoint(cfg.Endpoint),
			otlptracehttp.WithInsecure(),
		)
		if err != nil {
			return nil, fmt.Errorf("create OTLP exporter for %s: %w", cfg.Endpoint, err)
		}
		o.exporter = exp
	}

	res, err := resource.Merge(resource.Default(), resource.NewSchemaless(
		semconv.ServiceName(cfg.Service),
		semconv.ServiceVersion(cfg.Version),
		semconv.DeploymentEnvironment(cfg.Environment),
	))
	if err != nil {
		return nil, fmt.Errorf("build trace resource: %w", err)
	}

	export := sdktrace.WithBatcher(o.exporter)
	if o.sync {
		export = sdktrace.WithSyncer(o.exporter)
	}
	tp := sdktrace.NewTracerProvider(
		export,
		sdktrace.WithResource(res),
		sdktrace.WithSampler(Sampler(cfg.SampleRate)),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	return tp.Shutdown, nil
}

// Sampler follows the parent's decision and samples new traces at rate,
// clamped to [0, 1].
func Sampler(rate float64) sdktrace.Sampler {
	switch {
	case rate >= 1:
		return sdktrace.ParentBased(sdktrace.AlwaysSample())
	case rate <= 0:
		return sdktrace.ParentBased(sdktrace.NeverSample())
	default:
		return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(rate))
	}
}

// Start opens an internal span on the storefront tracer.
func Start(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return otel.Tracer(InstrumentationName).Start(ctx, name, trace.WithAttributes(attrs...))
}

// Fail records err on span and marks it failed. A nil err is ignored.
func Fail(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
