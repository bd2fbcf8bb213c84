package conveyor

import "github.com/get-conveyor/go-conveyor/emitter"

// PrepareEvent fires once per transaction, before any transport
// activity. Listeners either populate the transaction's Request,
// typically through the BuildRequests listener, or intercept the
// pipeline with a ready-made result.
type PrepareEvent struct {
	emitter.Propagation
	Transaction *Transaction
}

// Intercept supplies result as the transaction's output and stops
// propagation: later Prepare listeners never run, the transport is
// skipped entirely, and execution jumps straight to Process.
func (ev *PrepareEvent) Intercept(result any) {
	ev.Transaction.Result = result
	ev.Transaction.intercepted = true
	ev.StopPropagation()
}

// Intercepted reports whether a listener intercepted the preparation.
func (ev *PrepareEvent) Intercepted() bool {
	return ev.Transaction.intercepted
}

// ProcessEvent fires once per transaction, after a response exists or
// after a Prepare interception. Listeners translate the transaction's
// Response into its Result.
//
// When several listeners write the Result, the last write wins: the
// executor never resets it between listeners.
type ProcessEvent struct {
	emitter.Propagation
	Transaction *Transaction
}

// ErrorEvent fires whenever a command-level error needs surfacing,
// carrying the error currently in flight on the transaction.
type ErrorEvent struct {
	emitter.Propagation
	Transaction *Transaction
	// Err is the command-level error being surfaced.
	Err error

	intercepted bool
}

// Intercept declares the error handled: propagation stops, the
// transaction's error is cleared and nothing is raised to the caller.
// A listener may set the transaction's Result before intercepting to
// recover with a synthetic outcome.
func (ev *ErrorEvent) Intercept() {
	ev.intercepted = true
	ev.StopPropagation()
}

// Intercepted reports whether a listener declared the error handled.
func (ev *ErrorEvent) Intercepted() bool {
	return ev.intercepted
}
