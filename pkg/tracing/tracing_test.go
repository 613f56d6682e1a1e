package tracing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
)

// setup installs an in-memory provider and restores the previous one.
func setup(t *testing.T, rate float64) *tracetest.InMemoryExporter {
	t.Helper()
	prev := otel.GetTracerProvider()

	exporter := tracetest.NewInMemoryExporter()
	shutdown, err := Setup(context.Background(), Config{
		Service:     "storefront",
		Version:     "test",
		Environment: "test",
		SampleRate:  rate,
		Enabled:     true,
	}, WithExporter(exporter))
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = shutdown(context.Background())
		otel.SetTracerProvider(prev)
	})
	return exporter
}

func TestSetup_Disabled(t *testing.T) {
	prev := otel.GetTracerProvider()

	shutdown, err := Setup(context.Background(), Config{Service: "storefront"})

	require.NoError(t, err)
	assert.Equal(t, prev, otel.GetTracerProvider())
	assert.NoError(t, shutdown(context.Background()))
}

func TestSetup_ExportsWithServiceResource(t *testing.T) {
	exporter := setup(t, 1)

	_, span := Start(context.Background(), "catalogue.view")
	span.End()

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Contains(t, spans[0].Resource.Attributes(), semconv.ServiceName("storefront"))
	assert.Contains(t, spans[0].Resource.Attributes(), semconv.DeploymentEnvironment("test"))
}

func TestSetup_ZeroRateDropsNewTraces(t *testing.T) {
	exporter := setup(t, 0)

	_, span := Start(context.Background(), "dropped")
	span.End()

	assert.Empty(t, exporter.GetSpans())
}

func TestSampler_Descriptions(t *testing.T) {
	assert.Contains(t, Sampler(1).Description(), "AlwaysOnSampler")
	assert.Contains(t, Sampler(5).Description(), "AlwaysOnSampler")
	assert.Contains(t, Sampler(0).Description(), "AlwaysOffSampler")
	assert.Contains(t, Sampler(-1).Description(), "AlwaysOffSampler")
	assert.Contains(t, Sampler(0.25).Description(), "TraceIDRatioBased")
}

func TestStartAndFail(t *testing.T) {
	exporter := setup(t, 1)

	_, span := Start(context.Background(), "storage.get", attribute.String("storage.key", "ee-plp:cart"))
	Fail(span, nil)
	Fail(span, errors.New("redis down"))
	span.End()

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "storage.get", spans[0].Name)
	assert.Contains(t, spans[0].Attributes, attribute.String("storage.key", "ee-plp:cart"))
	assert.Equal(t, codes.Error, spans[0].Status.Code)
	assert.Equal(t, "redis down", spans[0].Status.Description)
	assert.Len(t, spans[0].Events, 1)
}
