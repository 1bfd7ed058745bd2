// Package telemetry sets up the tracer used around signing.
package telemetry

import (
	"context"
	"fmt"
	"io"

	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// TracerName is the instrumentation scope for rtmsign spans.
const TracerName = "github.com/oktsec/rtmsign"

// Provider hands out a tracer and flushes it on shutdown.
type Provider struct {
	tracer   trace.Tracer
	shutdown func(context.Context) error
}

// New returns a provider exporting spans as JSON to w when enabled, and a
// no-op provider otherwise.
func New(enabled bool, w io.Writer) (*Provider, error) {
	if !enabled {
		return &Provider{
			tracer:   noop.NewTracerProvider().Tracer(TracerName),
			shutdown: func(context.Context) error { return nil },
		}, nil
	}

	exp, err := stdouttrace.New(stdouttrace.WithWriter(w))
	if err != nil {
		return nil, fmt.Errorf("creating trace exporter: %w", err)
	}
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exp))
	return &Provider{
		tracer:   tp.Tracer(TracerName),
		shutdown: tp.Shutdown,
	}, nil
}

// Tracer returns the provider's tracer.
func (p *Provider) Tracer() trace.Tracer { return p.tracer }

// Shutdown flushes pending spans.
func (p *Provider) Shutdown(ctx context.Context) error {
	return p.shutdown(ctx)
}
