package conveyor

import (
	"context"
	"fmt"

	"github.com/get-conveyor/go-conveyor/emitter"
	"github.com/get-conveyor/go-conveyor/transport"
)

// Client is the collaborator that knows how the commands of a service
// translate to the wire.
type Client interface {
	// BuildRequest turns cmd into a transport-level request.
	BuildRequest(ctx context.Context, cmd *Command) (*transport.Request, error)

	// ClassifyError wraps a transport-level failure into its
	// command-level form, with tx attached for context. Returning nil
	// declines the translation, in which case the transport error is
	// surfaced as-is.
	ClassifyError(ctx context.Context, tx *Transaction, cause error) error
}

// BuildRequests returns the canonical Prepare listener: it asks the
// client to build the transaction's request. Subscribe it at Normal
// priority so that Early listeners keep the chance to intercept the
// preparation first.
func BuildRequests(client Client) emitter.ListenerFunc[*PrepareEvent] {
	return func(ctx context.Context, ev *PrepareEvent) error {
		req, err := client.BuildRequest(ctx, ev.Transaction.Command)
		if err != nil {
			return fmt.Errorf("conveyor: failed to build request, %w", err)
		}

		ev.Transaction.Request = req

		return nil
	}
}
