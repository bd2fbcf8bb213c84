// Package promconveyor exposes command lifecycle metrics through
// Prometheus collectors attached to a command's hooks.
package promconveyor

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	conveyor "github.com/get-conveyor/go-conveyor"
	"github.com/get-conveyor/go-conveyor/emitter"
)

// Outcome label values reported on the executions counter.
const (
	OutcomeCompleted = "completed"
	OutcomeFailed    = "failed"
)

// Collector bundles the Prometheus metrics recorded for command
// executions. Attach it to every command whose lifecycle should be
// measured; a single Collector serves any number of commands.
type Collector struct {
	executions    *prometheus.CounterVec
	duration      *prometheus.HistogramVec
	interceptions *prometheus.CounterVec
}

// NewCollector creates the lifecycle metrics and registers them with
// the given registerer, typically prometheus.DefaultRegisterer.
func NewCollector(registerer prometheus.Registerer) *Collector {
	factory := promauto.With(registerer)

	return &Collector{
		executions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "conveyor_commands_executed_total",
				Help: "Total number of command executions observed, by outcome.",
			},
			[]string{"command", "outcome"},
		),
		duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "conveyor_command_duration_seconds",
				Help: "Command execution duration in seconds.",
			},
			[]string{"command"},
		),
		interceptions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "conveyor_command_interceptions_total",
				Help: "Total number of executions resolved during preparation, without reaching the transport.",
			},
			[]string{"command"},
		),
	}
}

// Attach subscribes the collector's observers on the command's hooks
// and returns a function that detaches them.
//
// Completions are counted at Late priority on the Process hook, once
// every listener shaped the result. Failures are counted at Early
// priority on the Error hook, so an execution whose error is later
// intercepted still counts as failed.
func (c *Collector) Attach(cmd *conveyor.Command) func() {
	hooks := cmd.Hooks()

	detachProcess := hooks.Process.Subscribe(
		emitter.ListenerFunc[*conveyor.ProcessEvent](func(_ context.Context, ev *conveyor.ProcessEvent) error {
			tx := ev.Transaction

			// No response at processing time means the preparation
			// supplied the result and the transport was skipped.
			if tx.Response == nil {
				c.interceptions.WithLabelValues(tx.Command.Name()).Inc()
			}

			c.observe(tx, OutcomeCompleted)

			return nil
		}),
		emitter.WithPriority(emitter.Late),
	)

	detachError := hooks.Error.Subscribe(
		emitter.ListenerFunc[*conveyor.ErrorEvent](func(_ context.Context, ev *conveyor.ErrorEvent) error {
			c.observe(ev.Transaction, OutcomeFailed)
			return nil
		}),
		emitter.WithPriority(emitter.Early),
	)

	return func() {
		detachProcess()
		detachError()
	}
}

func (c *Collector) observe(tx *conveyor.Transaction, outcome string) {
	command := tx.Command.Name()

	c.executions.WithLabelValues(command, outcome).Inc()
	c.duration.WithLabelValues(command).Observe(time.Since(tx.StartedAt).Seconds())
}
