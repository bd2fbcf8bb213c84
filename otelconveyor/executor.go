package otelconveyor

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	conveyor "github.com/get-conveyor/go-conveyor"
)

// Attribute keys used by the InstrumentedExecutor instrumentation.
const (
	ErrorAttribute            attribute.Key = "error"
	CommandNameAttribute      attribute.Key = "command.name"
	CommandFutureAttribute    attribute.Key = "command.future"
	TransactionIDAttribute    attribute.Key = "transaction.id"
	TransactionStateAttribute attribute.Key = "transaction.state"
)

// Executor is the surface of conveyor.Executor wrapped by the
// instrumentation.
type Executor interface {
	Execute(ctx context.Context, client conveyor.Client, cmd *conveyor.Command) (*conveyor.Transaction, error)
	Process(ctx context.Context, tx *conveyor.Transaction) error
}

var _ Executor = &InstrumentedExecutor{}

// InstrumentedExecutor is a wrapper type over an Executor instance to
// provide instrumentation, in the form of metrics and traces using
// OpenTelemetry.
//
// Use NewInstrumentedExecutor for constructing a new instance of this type.
type InstrumentedExecutor struct {
	executor Executor

	tracer          trace.Tracer
	executionCount  metric.Int64Counter
	executeDuration metric.Int64Histogram
	processDuration metric.Int64Histogram
}

func (ie *InstrumentedExecutor) registerMetrics(meter metric.Meter) error {
	var err error

	if ie.executionCount, err = meter.Int64Counter(
		"conveyor.executor.executions.count",
		metric.WithDescription("Count of commands executed."),
	); err != nil {
		return fmt.Errorf("otelconveyor.InstrumentedExecutor: failed to register metric: %w", err)
	}

	if ie.executeDuration, err = meter.Int64Histogram(
		"conveyor.executor.execute.duration.milliseconds",
		metric.WithUnit("ms"),
		metric.WithDescription("Duration in milliseconds of Executor.Execute operations performed."),
	); err != nil {
		return fmt.Errorf("otelconveyor.InstrumentedExecutor: failed to register metric: %w", err)
	}

	if ie.processDuration, err = meter.Int64Histogram(
		"conveyor.executor.process.duration.milliseconds",
		metric.WithUnit("ms"),
		metric.WithDescription("Duration in milliseconds of Executor.Process operations performed."),
	); err != nil {
		return fmt.Errorf("otelconveyor.InstrumentedExecutor: failed to register metric: %w", err)
	}

	return nil
}

// NewInstrumentedExecutor returns a wrapper type to provide OpenTelemetry
// instrumentation (metrics and traces) around an Executor.
//
// An error is returned if metrics could not be registered.
func NewInstrumentedExecutor(executor Executor, options ...Option) (*InstrumentedExecutor, error) {
	cfg := newConfig(options...)

	ie := &InstrumentedExecutor{
		executor: executor,
		tracer:   cfg.tracer(),
	}

	if err := ie.registerMetrics(cfg.meter()); err != nil {
		return nil, err
	}

	return ie, nil
}

// Execute calls the wrapped Executor.Execute method and records metrics
// and traces around it.
//
// For commands flagged as Future, the recorded duration covers only the
// synchronous part of the execution, until the request is handed to the
// transport.
func (ie *InstrumentedExecutor) Execute(
	ctx context.Context,
	client conveyor.Client,
	cmd *conveyor.Command,
) (tx *conveyor.Transaction, err error) {
	attributes := []attribute.KeyValue{
		CommandNameAttribute.String(cmd.Name()),
		CommandFutureAttribute.Bool(cmd.Future),
	}

	ctx, span := ie.tracer.Start(ctx, "conveyor.Executor.Execute", trace.WithAttributes(attributes...))
	start := time.Now()

	defer func() {
		attributes := append(attributes, ErrorAttribute.Bool(err != nil))

		duration := time.Since(start)
		ie.executeDuration.Record(ctx, duration.Milliseconds(), metric.WithAttributes(attributes...))
		ie.executionCount.Add(ctx, 1, metric.WithAttributes(attributes...))

		if err != nil {
			span.RecordError(err)
		}

		if tx != nil {
			span.SetAttributes(
				TransactionIDAttribute.String(tx.ID.String()),
				TransactionStateAttribute.String(tx.State().String()),
			)
		}

		span.End()
	}()

	tx, err = ie.executor.Execute(ctx, client, cmd)

	return
}

// Process calls the wrapped Executor.Process method and records metrics
// and traces around it.
func (ie *InstrumentedExecutor) Process(ctx context.Context, tx *conveyor.Transaction) (err error) {
	attributes := []attribute.KeyValue{
		CommandNameAttribute.String(tx.Command.Name()),
		TransactionIDAttribute.String(tx.ID.String()),
	}

	ctx, span := ie.tracer.Start(ctx, "conveyor.Executor.Process", trace.WithAttributes(attributes...))
	start := time.Now()

	defer func() {
		attributes := append(attributes, ErrorAttribute.Bool(err != nil))

		duration := time.Since(start)
		ie.processDuration.Record(ctx, duration.Milliseconds(), metric.WithAttributes(attributes...))

		if err != nil {
			span.RecordError(err)
		}

		span.End()
	}()

	err = ie.executor.Process(ctx, tx)

	return
}
