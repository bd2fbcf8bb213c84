// Package journal records command execution outcomes as an audit
// trail.
//
// A Journal observes a command's lifecycle hooks and hands one Entry
// per settled execution to its Recorder: completions are captured
// after every Process listener ran, failures as soon as the Error
// event fires, before any interceptor can claim them. Storage
// backends live in the journal/postgres, journal/redis,
// journal/sqlite and journal/firestore packages; InMemory backs tests
// and demos.
package journal

import (
	"context"
	"time"

	"github.com/google/uuid"

	conveyor "github.com/get-conveyor/go-conveyor"
	"github.com/get-conveyor/go-conveyor/emitter"
	"github.com/get-conveyor/go-conveyor/logger"
)

// Status classifies the outcome an Entry records.
type Status string

const (
	// StatusCompleted marks an execution that went through Process.
	StatusCompleted Status = "completed"
	// StatusFailed marks an execution that surfaced a command-level
	// error, whether or not a listener later intercepted it.
	StatusFailed Status = "failed"
)

// Entry is the recorded outcome of one command execution.
type Entry struct {
	TransactionID uuid.UUID         `json:"transaction_id"`
	Command       string            `json:"command"`
	Metadata      conveyor.Metadata `json:"metadata,omitempty"`
	Status        Status            `json:"status"`
	Result        any               `json:"result,omitempty"`
	Error         string            `json:"error,omitempty"`
	StartedAt     time.Time         `json:"started_at"`
	RecordedAt    time.Time         `json:"recorded_at"`
}

// Recorder persists journal entries.
type Recorder interface {
	Record(ctx context.Context, entry Entry) error
}

// Journal wires outcome recording onto a command's lifecycle hooks.
type Journal struct {
	// Recorder receives one Entry per settled execution.
	Recorder Recorder
	// Logger receives recording failures. A journal never alters the
	// outcome of the command it observes, so failures are only logged.
	Logger logger.Logger
}

// Attach subscribes the journal's observers on the command's hooks
// and returns a function that detaches them.
//
// The completion observer runs at Late priority, after the user's
// Process listeners shaped the result. The failure observer runs at
// Early priority on the Error hook, so interception cannot hide a
// failure from the audit trail.
func (j Journal) Attach(cmd *conveyor.Command) func() {
	if j.Recorder == nil {
		return func() {}
	}

	hooks := cmd.Hooks()

	detachProcess := hooks.Process.Subscribe(
		emitter.ListenerFunc[*conveyor.ProcessEvent](func(ctx context.Context, ev *conveyor.ProcessEvent) error {
			j.record(ctx, newEntry(ev.Transaction, StatusCompleted, nil))
			return nil
		}),
		emitter.WithPriority(emitter.Late),
	)

	detachError := hooks.Error.Subscribe(
		emitter.ListenerFunc[*conveyor.ErrorEvent](func(ctx context.Context, ev *conveyor.ErrorEvent) error {
			j.record(ctx, newEntry(ev.Transaction, StatusFailed, ev.Err))
			return nil
		}),
		emitter.WithPriority(emitter.Early),
	)

	return func() {
		detachProcess()
		detachError()
	}
}

func (j Journal) record(ctx context.Context, entry Entry) {
	if err := j.Recorder.Record(ctx, entry); err != nil {
		logger.Error(j.Logger, "failed to record journal entry",
			logger.With("command", entry.Command),
			logger.With("transaction_id", entry.TransactionID),
			logger.Err(err),
		)
	}
}

func newEntry(tx *conveyor.Transaction, status Status, cause error) Entry {
	entry := Entry{
		TransactionID: tx.ID,
		Command:       tx.Command.Name(),
		Metadata:      tx.Command.Metadata,
		Status:        status,
		Result:        tx.Result,
		StartedAt:     tx.StartedAt,
		RecordedAt:    time.Now(),
	}

	if cause != nil {
		entry.Error = cause.Error()
	}

	return entry
}
