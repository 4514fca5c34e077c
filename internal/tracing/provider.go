// Package tracing wires the OpenTelemetry SDK to a console exporter for
// local/dev use, matching the teacher's internal/tracing console-exporter
// wiring but trimmed to what the orchestration server and connector pool
// actually emit: one span per /api/trigger call, one per visual-workflow
// execution, and one per outbound connector request.
package tracing

import (
	"context"
	"fmt"
	"io"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

// Provider owns the process's trace pipeline: a batching span processor
// feeding a stdout exporter. Production deployments wanting an OTLP
// collector instead only need to swap the exporter this constructs.
type Provider struct {
	tp *sdktrace.TracerProvider
}

// NewProvider builds a Provider exporting spans to w (os.Stdout in
// cmd/deskbridge-server) and installs it as the global tracer provider, so
// otel.Tracer(name) anywhere in the process picks it up without threading
// a Provider value through every constructor.
func NewProvider(serviceName string, w io.Writer) (*Provider, error) {
	exporter, err := stdouttrace.New(stdouttrace.WithWriter(w))
	if err != nil {
		return nil, fmt.Errorf("creating console trace exporter: %w", err)
	}

	res, err := resource.Merge(resource.Default(), resource.NewSchemaless(semconv.ServiceName(serviceName)))
	if err != nil {
		return nil, fmt.Errorf("building trace resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)

	return &Provider{tp: tp}, nil
}

// Shutdown flushes any pending spans and releases exporter resources.
func (p *Provider) Shutdown(ctx context.Context) error {
	return p.tp.Shutdown(ctx)
}

// Tracer is a convenience accessor equivalent to otel.Tracer(name); callers
// that never construct a Provider (tests, the agent binary) still get a
// valid no-op tracer from the global default.
func Tracer(name string) trace.Tracer {
	return otel.Tracer(name)
}
