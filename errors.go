package conveyor

import (
	"errors"
	"fmt"
)

// ErrNoRequest reports that Prepare completed without building a
// request and without an intercepted result. It is a configuration
// error: the command had no listener able to produce a request, so it
// is raised to the caller directly and never routed through the
// command's Error hook.
var ErrNoRequest = errors.New("conveyor: prepare produced no request and no intercepted result")

// CommandError is the command-level form of a transport failure:
// error classifiers wrap the transport error into it so callers can
// reason in terms of the command that failed, while errors.Is and
// errors.As still reach the transport-level cause.
type CommandError struct {
	// Transaction gives Error listeners and journals access to the
	// execution context, partial responses included.
	Transaction *Transaction

	cause error
}

// NewCommandError wraps cause as the command-level error of tx.
func NewCommandError(tx *Transaction, cause error) *CommandError {
	return &CommandError{
		Transaction: tx,
		cause:       cause,
	}
}

// Error implements the error interface.
func (e *CommandError) Error() string {
	name := "<unknown>"
	if e.Transaction != nil && e.Transaction.Command != nil {
		name = e.Transaction.Command.Name()
	}

	return fmt.Sprintf("conveyor: command %q failed, %v", name, e.cause)
}

// Unwrap returns the transport-level cause.
func (e *CommandError) Unwrap() error {
	return e.cause
}
