// Package telemetry wires OpenTelemetry tracing for backend calls.
package telemetry

import (
	"context"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.4.0"
	oteltrace "go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// DefaultServiceName is reported when OTEL_SERVICE_NAME is unset.
const DefaultServiceName = "animestudio"

// Exporter owns the tracer provider that ships client spans to an OTLP endpoint.
type Exporter struct {
	provider *sdktrace.TracerProvider
	enabled  bool
}

// NewExporter creates an OTLP exporter if OTEL_EXPORTER_OTLP_ENDPOINT is set
// and installs it as the global tracer provider. The variable is a base URL
// (http://collector:4318); the exporter reads it and appends /v1/traces.
// Returns nil if endpoint not configured (disabled)
func NewExporter(ctx context.Context) (*Exporter, error) {
	if os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT") == "" {
		return nil, nil
	}

	exporter, err := otlptracehttp.New(ctx)
	if err != nil {
		return nil, err
	}

	serviceName := os.Getenv("OTEL_SERVICE_NAME")
	if serviceName == "" {
		serviceName = DefaultServiceName
	}

	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceNameKey.String(serviceName),
	)

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(provider)

	return &Exporter{provider: provider, enabled: true}, nil
}

// Enabled reports whether spans are exported.
func (e *Exporter) Enabled() bool {
	return e != nil && e.enabled
}

// Tracer returns a tracer from the exporter's provider, or a no-op tracer when disabled.
func (e *Exporter) Tracer(name string) oteltrace.Tracer {
	if !e.Enabled() {
		return noop.NewTracerProvider().Tracer(name)
	}
	return e.provider.Tracer(name)
}

// Shutdown flushes and closes the exporter
func (e *Exporter) Shutdown(ctx context.Context) error {
	if e == nil {
		return nil
	}
	return e.provider.Shutdown(ctx)
}
