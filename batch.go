package conveyor

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// ExecuteAll runs one command per goroutine through the executor and
// waits for every execution to settle, future-flagged commands
// included.
//
// The returned slice is index-aligned with cmds. The first terminal
// error cancels the shared context and is returned; executions that
// settled regardless keep their own outcome on their Transaction.
func ExecuteAll(ctx context.Context, e Executor, client Client, cmds ...*Command) ([]*Transaction, error) {
	txs := make([]*Transaction, len(cmds))

	group, ctx := errgroup.WithContext(ctx)

	for i, cmd := range cmds {
		group.Go(func() error {
			tx, err := e.Execute(ctx, client, cmd)
			txs[i] = tx

			if err != nil {
				return err
			}

			if cmd.Future {
				return tx.Wait(ctx)
			}

			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return txs, err
	}

	return txs, nil
}
