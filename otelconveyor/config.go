// Package otelconveyor provides OpenTelemetry instrumentation for the
// command execution pipeline, in the form of a wrapper around the
// Executor recording traces and metrics for every execution.
package otelconveyor

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/get-conveyor/go-conveyor/otelconveyor"

type config struct {
	meterProvider  metric.MeterProvider
	tracerProvider trace.TracerProvider
}

func (c config) meter() metric.Meter {
	return c.meterProvider.Meter(instrumentationName)
}

func (c config) tracer() trace.Tracer {
	return c.tracerProvider.Tracer(instrumentationName)
}

// Option configures the instrumentation.
type Option func(*config)

// WithMeterProvider sets the metric.MeterProvider the instrumentation
// registers its instruments on. Defaults to the global provider.
func WithMeterProvider(provider metric.MeterProvider) Option {
	return func(c *config) {
		c.meterProvider = provider
	}
}

// WithTracerProvider sets the trace.TracerProvider the instrumentation
// starts its spans on. Defaults to the global provider.
func WithTracerProvider(provider trace.TracerProvider) Option {
	return func(c *config) {
		c.tracerProvider = provider
	}
}

func newConfig(opts ...Option) config {
	c := config{
		meterProvider:  otel.GetMeterProvider(),
		tracerProvider: otel.GetTracerProvider(),
	}

	for _, opt := range opts {
		opt(&c)
	}

	return c
}
