// Package correlation stamps correlation and causation identifiers on
// outgoing requests, so that chains of commands can be traced across
// process boundaries for debugging purposes.
//
// You can read more about identifier correlation here:
// https://blog.arkency.com/correlation-id-and-causation-id-in-evented-systems/
package correlation

import "context"

// Header keys carrying the correlation chain of a request.
const (
	TransactionIDKey = "Transaction-Id"
	CorrelationIDKey = "Correlation-Id"
	CausationIDKey   = "Causation-Id"
)

type (
	correlationCtxKey struct{}
	causationCtxKey   struct{}
)

// WithCorrelationID returns a context carrying the identifier shared by
// every command execution in the same chain.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationCtxKey{}, id)
}

// WithCausationID returns a context carrying the identifier of the
// execution that directly caused the commands issued under it.
func WithCausationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, causationCtxKey{}, id)
}

// IDContext returns the correlation identifier carried by the context,
// if any.
func IDContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(correlationCtxKey{}).(string)
	return id, ok
}

// CausationIDContext returns the causation identifier carried by the
// context, if any.
func CausationIDContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(causationCtxKey{}).(string)
	return id, ok
}
