package conveyor

import (
	"context"
	"errors"
	"fmt"

	"github.com/get-conveyor/go-conveyor/emitter"
	"github.com/get-conveyor/go-conveyor/logger"
	"github.com/get-conveyor/go-conveyor/transport"
)

// Executor drives a Transaction through the command lifecycle:
// Prepare, transport delivery, Process, or the error path.
//
// The zero value is not usable, a Transport is required. Executors are
// stateless and safe for concurrent use across transactions.
type Executor struct {
	// Transport delivers prepared requests.
	Transport transport.Transport
	// Logger is optional; a nil logger disables logging.
	Logger logger.Logger
}

// Execute runs one command through its full lifecycle and returns its
// Transaction.
//
// Synchronous commands return settled: the returned error is the
// execution's terminal verdict, nil when the command succeeded or an
// Error listener intercepted its failure. Commands flagged as Future
// return as soon as the request is handed to the transport; the
// outcome is then observed through Transaction.Wait or
// Transaction.Done.
func (e Executor) Execute(ctx context.Context, client Client, cmd *Command) (*Transaction, error) {
	if e.Transport == nil {
		return nil, errors.New("conveyor.Executor: no transport configured")
	}

	if client == nil {
		return nil, errors.New("conveyor.Executor: no client provided")
	}

	if cmd == nil || cmd.Payload == nil {
		return nil, errors.New("conveyor.Executor: no command payload provided")
	}

	tx := newTransaction(client, cmd)
	hooks := cmd.Hooks()

	logger.Debug(e.Logger, "executing command",
		logger.With("command", cmd.Name()),
		logger.With("transaction_id", tx.ID),
		logger.With("future", cmd.Future),
	)

	tx.setState(StatePreparing)

	if err := hooks.Prepare.Emit(ctx, &PrepareEvent{Transaction: tx}); err != nil {
		verdict := e.fail(ctx, tx, err)
		tx.settle(verdict)

		return tx, verdict
	}

	switch tx.prepareOutcome() {
	case outcomeIntercepted:
		tx.setState(StateIntercepted)

		verdict := e.Process(ctx, tx)
		tx.settle(verdict)

		return tx, verdict

	case outcomeEmpty:
		err := fmt.Errorf("conveyor.Executor: command %q, %w", cmd.Name(), ErrNoRequest)
		tx.Err = err
		tx.setState(StateErrored)
		tx.settle(err)

		return tx, err
	}

	req := tx.Request
	if cmd.Future {
		req.Config = req.Config.With(transport.ConfigFuture, true)
	}

	// Late priority: transport-level recovery listeners run first, and
	// the bridge only fires for failures none of them handled.
	req.Failed.Subscribe(e.bridge(tx), emitter.WithPriority(emitter.Late))
	req.Completed.Subscribe(e.completion(tx))

	tx.setState(StateAwaitingTransport)

	if err := e.Transport.Send(ctx, req); err != nil && !tx.settled() {
		// The transport surfaced an error without settling the
		// request, or a failure listener halted dispatch before the
		// bridge could run. Either way the command error path still
		// owns the verdict.
		verdict := e.fail(ctx, tx, err)
		tx.settle(verdict)

		return tx, verdict
	}

	if tx.settled() {
		return tx, tx.outcome
	}

	return tx, nil
}

// Process fires the Process event on the transaction's command,
// routing any listener failure through the error path. Execute calls
// it after transport completion or a Prepare interception; it is
// exported so tests and custom completion flows can drive the
// processing stage directly.
func (e Executor) Process(ctx context.Context, tx *Transaction) error {
	tx.setState(StateProcessing)

	if err := tx.Command.Hooks().Process.Emit(ctx, &ProcessEvent{Transaction: tx}); err != nil {
		return e.fail(ctx, tx, err)
	}

	tx.setState(StateDone)

	logger.Debug(e.Logger, "command processed",
		logger.With("command", tx.Command.Name()),
		logger.With("transaction_id", tx.ID),
	)

	return nil
}

// completion reacts to the transport settling the request: it copies
// the response onto the transaction and fires Process. Settlements
// arriving after the transaction left the awaiting stage are ignored.
func (e Executor) completion(tx *Transaction) emitter.ListenerFunc[*transport.CompleteEvent] {
	return func(ctx context.Context, ev *transport.CompleteEvent) error {
		if tx.State() != StateAwaitingTransport {
			return nil
		}

		tx.Response = ev.Response

		verdict := e.Process(ctx, tx)
		tx.settle(verdict)

		return verdict
	}
}

// bridge translates a transport-level failure into a command-level
// error. Registered at Late priority on the request's failure emitter,
// it owns terminal handling: the transport error never propagates past
// this layer.
func (e Executor) bridge(tx *Transaction) emitter.ListenerFunc[*transport.FailEvent] {
	return func(ctx context.Context, ev *transport.FailEvent) error {
		ev.StopPropagation()

		if ev.Response != nil {
			tx.Response = ev.Response
		} else {
			// Without a response the wire may still be in play:
			// settle the request with a synthetic canceled response so
			// it can neither transfer nor complete twice.
			ev.Request.ShortCircuit(transport.NewCanceledResponse())
		}

		cause := tx.Client.ClassifyError(ctx, tx, ev.Err)
		if cause == nil {
			cause = ev.Err
		}

		verdict := e.fail(ctx, tx, cause)
		tx.settle(verdict)

		return verdict
	}
}

// fail drives the error path: cause is stored on the transaction and
// surfaced through the command's Error hook, where listeners may
// intercept it. The returned error is the verdict raised to the
// caller, nil when a listener declared the failure handled.
func (e Executor) fail(ctx context.Context, tx *Transaction, cause error) error {
	tx.Err = cause
	tx.setState(StateErrored)

	ev := &ErrorEvent{Transaction: tx, Err: cause}

	if err := tx.Command.Hooks().Error.Emit(ctx, ev); err != nil {
		// A failing Error listener replaces the original error and
		// propagates unchanged.
		tx.Err = err

		return err
	}

	if ev.Intercepted() {
		tx.Err = nil
		tx.setState(StateDone)

		logger.Debug(e.Logger, "command error intercepted",
			logger.With("command", tx.Command.Name()),
			logger.With("transaction_id", tx.ID),
			logger.Err(cause),
		)

		return nil
	}

	logger.Debug(e.Logger, "command failed",
		logger.With("command", tx.Command.Name()),
		logger.With("transaction_id", tx.ID),
		logger.Err(cause),
	)

	return cause
}
