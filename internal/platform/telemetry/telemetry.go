// Package telemetry installs the OpenTelemetry tracer provider and propagators.
package telemetry

import (
	"context"

	"github.com/abgdnv/productcatalog/internal/config"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	tracesdk "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.34.0"
)

// Propagator returns the W3C trace context and baggage propagator used for HTTP headers and event carriers.
func Propagator() propagation.TextMapPropagator {
	return propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{})
}

// NewTracerProvider creates the tracer provider and sets it, with Propagator, as the global one.
// Spans are exported to the OTLP/HTTP collector only when telemetry is enabled; otherwise they are
// recorded for log correlation and dropped.
func NewTracerProvider(ctx context.Context, cfg config.TelemetryConfig, opts ...tracesdk.TracerProviderOption) (*tracesdk.TracerProvider, error) {
	tpOpts := []tracesdk.TracerProviderOption{
		tracesdk.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceNameKey.String(cfg.ServiceName),
		)),
	}

	if cfg.Enabled {
		collectorOpts := []otlptracehttp.Option{
			otlptracehttp.WithEndpoint(cfg.Traces.OtlpHttp.Endpoint),
			otlptracehttp.WithTimeout(cfg.Traces.OtlpHttp.Timeout),
		}
		if cfg.Traces.OtlpHttp.Insecure {
			collectorOpts = append(collectorOpts, otlptracehttp.WithInsecure())
		}
		exporter, err := otlptracehttp.New(ctx, collectorOpts...)
		if err != nil {
			return nil, err
		}
		tpOpts = append(tpOpts, tracesdk.WithBatcher(exporter))
	}

	tp := tracesdk.NewTracerProvider(append(tpOpts, opts...)...)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(Propagator())
	return tp, nil
}
