package correlation

import (
	"context"

	"github.com/get-conveyor/go-conveyor/transport"
)

// Handler wraps an in-process transport handler so that commands
// executed while serving a request inherit its correlation chain
// through the context.
//
// The correlation identifier carries over unchanged. New commands
// issued from inside the handler are caused by the request being
// served, hence the request's transaction identifier becomes their
// causation identifier.
func Handler(
	next func(ctx context.Context, req *transport.Request) (*transport.Response, error),
) func(ctx context.Context, req *transport.Request) (*transport.Response, error) {
	return func(ctx context.Context, req *transport.Request) (*transport.Response, error) {
		if correlationID := req.Header.Get(CorrelationIDKey); correlationID != "" {
			ctx = WithCorrelationID(ctx, correlationID)
		}

		if transactionID := req.Header.Get(TransactionIDKey); transactionID != "" {
			ctx = WithCausationID(ctx, transactionID)
		}

		return next(ctx, req)
	}
}
