package conveyor

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/get-conveyor/go-conveyor/transport"
)

// State is the lifecycle stage of a Transaction.
type State int8

const (
	// StateCreated is the stage of a Transaction not yet executed.
	StateCreated State = iota
	// StatePreparing covers the Prepare event dispatch.
	StatePreparing
	// StateIntercepted marks a preparation short-circuited by a
	// listener-supplied result: the transport is skipped.
	StateIntercepted
	// StateAwaitingTransport covers the window between handing the
	// request to the transport and its settlement.
	StateAwaitingTransport
	// StateProcessing covers the Process event dispatch.
	StateProcessing
	// StateDone is the successful terminal stage, reached also when an
	// Error listener intercepted the failure.
	StateDone
	// StateErrored is the failed terminal stage: the transaction's
	// error was raised to the caller.
	StateErrored
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StatePreparing:
		return "preparing"
	case StateIntercepted:
		return "intercepted"
	case StateAwaitingTransport:
		return "awaiting-transport"
	case StateProcessing:
		return "processing"
	case StateDone:
		return "done"
	case StateErrored:
		return "errored"
	default:
		return "unknown"
	}
}

// Terminal reports whether the stage admits no further transition.
func (s State) Terminal() bool {
	return s == StateDone || s == StateErrored
}

// Transaction threads the mutable state of one command execution:
// which client and command it runs, the request built for it, the
// response or synthetic result it produced, and the error in flight
// when it failed.
//
// A transaction belongs to exactly one logical flow of control at a
// time; the Executor and listener callbacks mutate its fields without
// locking. State and settlement are the exception, since future-mode
// callers may observe them from other goroutines. Transactions are
// never reused: each Execute call creates its own.
type Transaction struct {
	// ID identifies this execution. Two executions of the same
	// command value get distinct IDs.
	ID uuid.UUID
	// Client is the collaborator that built the request and
	// classifies transport failures for this command.
	Client Client
	// Command is the command being executed. It outlives the
	// transaction.
	Command *Command
	// Request is the transport-level request, set once a Prepare
	// listener builds it. Nil when preparation was intercepted.
	Request *transport.Request
	// Response is the transport-level response, set on completion or
	// when a transport failure carried a partial response.
	Response *transport.Response
	// Result is the command's output: synthetic when a listener
	// intercepted Prepare or Process, translated from the Response
	// otherwise.
	Result any
	// Err is the command-level error of a failed execution. It is
	// cleared when an Error listener intercepts the failure.
	Err error
	// StartedAt is when the execution began.
	StartedAt time.Time

	intercepted bool

	mu    sync.RWMutex
	state State

	once    sync.Once
	done    chan struct{}
	outcome error
}

func newTransaction(client Client, cmd *Command) *Transaction {
	return &Transaction{
		ID:        uuid.New(),
		Client:    client,
		Command:   cmd,
		StartedAt: time.Now(),
		done:      make(chan struct{}),
	}
}

// State returns the transaction's current lifecycle stage.
func (tx *Transaction) State() State {
	tx.mu.RLock()
	defer tx.mu.RUnlock()

	return tx.state
}

func (tx *Transaction) setState(state State) {
	tx.mu.Lock()
	tx.state = state
	tx.mu.Unlock()
}

// prepareOutcome classifies how the Prepare dispatch left the
// transaction. Interception wins over a previously built request.
func (tx *Transaction) prepareOutcome() prepareOutcome {
	switch {
	case tx.intercepted:
		return outcomeIntercepted
	case tx.Request != nil:
		return outcomeForwarded
	default:
		return outcomeEmpty
	}
}

type prepareOutcome int8

const (
	outcomeEmpty prepareOutcome = iota
	outcomeForwarded
	outcomeIntercepted
)

// Done returns a channel closed once the transaction settles. Useful
// in select loops over future-mode executions.
func (tx *Transaction) Done() <-chan struct{} {
	return tx.done
}

// Wait blocks until the transaction settles or ctx expires, and
// returns the execution's terminal error, nil on success. For
// synchronous executions it returns immediately.
func (tx *Transaction) Wait(ctx context.Context) error {
	select {
	case <-tx.done:
		return tx.outcome
	case <-ctx.Done():
		return ctx.Err()
	}
}

// settle records the terminal outcome. Only the first settlement
// takes effect.
func (tx *Transaction) settle(err error) {
	tx.once.Do(func() {
		tx.outcome = err
		close(tx.done)
	})
}

func (tx *Transaction) settled() bool {
	select {
	case <-tx.done:
		return true
	default:
		return false
	}
}
