package correlation

import (
	"context"

	"github.com/google/uuid"

	conveyor "github.com/get-conveyor/go-conveyor"
	"github.com/get-conveyor/go-conveyor/emitter"
)

// Generator mints the identifiers used to root new correlation chains.
type Generator func() string

// Attach subscribes a late Prepare listener that stamps the built
// request's header with the execution's transaction identifier and the
// correlation chain carried by the context. It returns a function that
// detaches the listener.
//
// When the context provides no identifiers the execution starts a new
// chain: a single generated identifier serves as both correlation and
// causation. A nil generator defaults to uuid.NewString. Intercepted
// executions build no request and are left unstamped.
func Attach(cmd *conveyor.Command, generator Generator) func() {
	if generator == nil {
		generator = uuid.NewString
	}

	return cmd.Hooks().Prepare.Subscribe(
		emitter.ListenerFunc[*conveyor.PrepareEvent](func(ctx context.Context, ev *conveyor.PrepareEvent) error {
			req := ev.Transaction.Request
			if req == nil {
				return nil
			}

			causeID := generator()

			// Use the correlation id from the context. If the context
			// doesn't provide one, root a new chain at causeID.
			correlationID, ok := IDContext(ctx)
			if !ok || correlationID == "" {
				correlationID = causeID
			}

			causationID, ok := CausationIDContext(ctx)
			if !ok || causationID == "" {
				causationID = causeID
			}

			req.Header = req.Header.
				Set(TransactionIDKey, ev.Transaction.ID.String()).
				Set(CorrelationIDKey, correlationID).
				Set(CausationIDKey, causationID)

			return nil
		}),
		emitter.WithPriority(emitter.Late),
	)
}
