package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/abgdnv/productcatalog/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	tracesdk "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	semconv "go.opentelemetry.io/otel/semconv/v1.34.0"
)

func Test_NewTracerProvider_InstallsGlobals(t *testing.T) {
	// given
	recorder := tracetest.NewSpanRecorder()
	cfg := config.Default().Telemetry

	// when
	tp, err := NewTracerProvider(context.Background(), cfg, tracesdk.WithSpanProcessor(recorder))
	require.NoError(t, err)
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	ctx, span := otel.Tracer("test").Start(context.Background(), "op")
	carrier := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, carrier)
	span.End()

	// then
	require.True(t, span.SpanContext().IsValid(), "global tracer should produce real spans")
	assert.Contains(t, carrier.Get("traceparent"), span.SpanContext().TraceID().String())

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, "op", ended[0].Name())
	assert.Contains(t, ended[0].Resource().Attributes(), semconv.ServiceNameKey.String("product-catalog"))
}

func Test_NewTracerProvider_Enabled(t *testing.T) {
	// given
	cfg := config.TelemetryConfig{
		Enabled:     true,
		ServiceName: "product-catalog",
	}
	cfg.Traces.OtlpHttp.Endpoint = "localhost:4318"
	cfg.Traces.OtlpHttp.Insecure = true
	cfg.Traces.OtlpHttp.Timeout = 100 * time.Millisecond

	// when
	tp, err := NewTracerProvider(context.Background(), cfg)

	// then: the exporter connects lazily, so construction succeeds without a collector
	require.NoError(t, err)
	require.NotNil(t, tp)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_ = tp.Shutdown(ctx)
}

func Test_Propagator_Fields(t *testing.T) {
	assert.ElementsMatch(t, []string{"traceparent", "tracestate", "baggage"}, Propagator().Fields())
}
