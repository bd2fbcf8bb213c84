package emitter_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/get-conveyor/go-conveyor/emitter"
)

type testEvent struct {
	emitter.Propagation
	hits []string
}

func recorder(name string) emitter.ListenerFunc[*testEvent] {
	return func(_ context.Context, ev *testEvent) error {
		ev.hits = append(ev.hits, name)
		return nil
	}
}

func TestEmitter_Emit(t *testing.T) {
	ctx := context.Background()

	t.Run("notifies listeners in subscription order", func(t *testing.T) {
		sink := emitter.New[*testEvent]()
		sink.Subscribe(recorder("first"))
		sink.Subscribe(recorder("second"))
		sink.Subscribe(recorder("third"))

		ev := new(testEvent)
		require.NoError(t, sink.Emit(ctx, ev))
		assert.Equal(t, []string{"first", "second", "third"}, ev.hits)
	})

	t.Run("dispatches tier by tier regardless of subscription order", func(t *testing.T) {
		sink := emitter.New[*testEvent]()
		sink.Subscribe(recorder("late"), emitter.WithPriority(emitter.Late))
		sink.Subscribe(recorder("normal"))
		sink.Subscribe(recorder("early"), emitter.WithPriority(emitter.Early))
		sink.Subscribe(recorder("second-early"), emitter.WithPriority(emitter.Early))

		ev := new(testEvent)
		require.NoError(t, sink.Emit(ctx, ev))
		assert.Equal(t, []string{"early", "second-early", "normal", "late"}, ev.hits)
	})

	t.Run("stopping propagation skips the remaining listeners", func(t *testing.T) {
		sink := emitter.New[*testEvent]()
		sink.Subscribe(emitter.ListenerFunc[*testEvent](func(_ context.Context, ev *testEvent) error {
			ev.hits = append(ev.hits, "stopper")
			ev.StopPropagation()
			return nil
		}))
		sink.Subscribe(recorder("never"))

		ev := new(testEvent)
		require.NoError(t, sink.Emit(ctx, ev))
		assert.Equal(t, []string{"stopper"}, ev.hits)
	})

	t.Run("a listener error halts dispatch and is returned as-is", func(t *testing.T) {
		errBoom := errors.New("boom")

		sink := emitter.New[*testEvent]()
		sink.Subscribe(recorder("first"))
		sink.Subscribe(emitter.ListenerFunc[*testEvent](func(context.Context, *testEvent) error {
			return errBoom
		}))
		sink.Subscribe(recorder("never"))

		ev := new(testEvent)
		err := sink.Emit(ctx, ev)
		require.ErrorIs(t, err, errBoom)
		assert.Equal(t, []string{"first"}, ev.hits)
	})

	t.Run("emitting with no listeners is a no-op", func(t *testing.T) {
		sink := emitter.New[*testEvent]()
		assert.NoError(t, sink.Emit(ctx, new(testEvent)))
	})
}

func TestEmitter_Once(t *testing.T) {
	ctx := context.Background()

	t.Run("one-shot listeners fire at most once", func(t *testing.T) {
		sink := emitter.New[*testEvent]()

		var fired int
		sink.Once(emitter.ListenerFunc[*testEvent](func(context.Context, *testEvent) error {
			fired++
			return nil
		}))

		require.NoError(t, sink.Emit(ctx, new(testEvent)))
		require.NoError(t, sink.Emit(ctx, new(testEvent)))

		assert.Equal(t, 1, fired)
		assert.Equal(t, 0, sink.Len())
	})

	t.Run("canceling an unfired one-shot listener prevents delivery", func(t *testing.T) {
		sink := emitter.New[*testEvent]()

		cancel := sink.Once(recorder("never"))
		cancel()

		ev := new(testEvent)
		require.NoError(t, sink.Emit(ctx, ev))
		assert.Empty(t, ev.hits)
	})
}

func TestEmitter_Subscribe(t *testing.T) {
	ctx := context.Background()

	t.Run("cancel removes the subscription and is idempotent", func(t *testing.T) {
		sink := emitter.New[*testEvent]()
		cancel := sink.Subscribe(recorder("gone"))
		kept := recorder("kept")
		sink.Subscribe(kept)

		cancel()
		cancel()

		ev := new(testEvent)
		require.NoError(t, sink.Emit(ctx, ev))
		assert.Equal(t, []string{"kept"}, ev.hits)
		assert.Equal(t, 1, sink.Len())
	})

	t.Run("subscriptions made during dispatch only see later emissions", func(t *testing.T) {
		sink := emitter.New[*testEvent]()
		sink.Subscribe(emitter.ListenerFunc[*testEvent](func(_ context.Context, ev *testEvent) error {
			ev.hits = append(ev.hits, "outer")
			sink.Subscribe(recorder("inner"))
			return nil
		}))

		first := new(testEvent)
		require.NoError(t, sink.Emit(ctx, first))
		assert.Equal(t, []string{"outer"}, first.hits)

		second := new(testEvent)
		require.NoError(t, sink.Emit(ctx, second))
		assert.Contains(t, second.hits, "inner")
	})

	t.Run("is safe for concurrent subscribers and emitters", func(t *testing.T) {
		sink := emitter.New[*testEvent]()

		var wg sync.WaitGroup
		for range 8 {
			wg.Add(2)
			go func() {
				defer wg.Done()
				cancel := sink.Subscribe(recorder("concurrent"))
				defer cancel()
			}()
			go func() {
				defer wg.Done()
				assert.NoError(t, sink.Emit(ctx, new(testEvent)))
			}()
		}
		wg.Wait()
	})
}
