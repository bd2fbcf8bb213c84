package emitter

import (
	"context"
	"sync"
)

// Priority is the dispatch tier of a subscribed Listener.
//
// Listeners are notified tier by tier, Early first and Late last.
// Within the same tier, listeners run in subscription order.
type Priority int8

const (
	// Early listeners run before Normal and Late ones. Use it for
	// guards and observers that must see an event before anyone can
	// stop its propagation.
	Early Priority = iota - 1
	// Normal is the default tier.
	Normal
	// Late listeners run last, after every Normal listener had a
	// chance to handle or stop the event.
	Late
)

func (p Priority) String() string {
	switch p {
	case Early:
		return "early"
	case Late:
		return "late"
	default:
		return "normal"
	}
}

// Event is the minimal surface an emitted value must expose, so that
// Emit can honor propagation stops. Embed Propagation to implement it.
type Event interface {
	Stopped() bool
}

// Propagation implements Event and is meant to be embedded in event
// types. Its zero value is ready to use.
type Propagation struct {
	stopped bool
}

// StopPropagation prevents listeners that have not run yet from
// receiving the event. The listener that called it still completes.
func (p *Propagation) StopPropagation() { p.stopped = true }

// Stopped reports whether a listener stopped the event.
func (p *Propagation) Stopped() bool { return p.stopped }

// Listener receives events of type E from an Emitter.
type Listener[E Event] interface {
	Notify(ctx context.Context, event E) error
}

// ListenerFunc adapts a function to the Listener interface.
type ListenerFunc[E Event] func(ctx context.Context, event E) error

// Notify implements the Listener interface.
func (fn ListenerFunc[E]) Notify(ctx context.Context, event E) error {
	return fn(ctx, event)
}

type subscribeConfig struct {
	priority Priority
}

// SubscribeOption tweaks a single subscription.
type SubscribeOption func(*subscribeConfig)

// WithPriority places the subscription in the given tier.
// Unspecified subscriptions land in the Normal tier.
func WithPriority(priority Priority) SubscribeOption {
	return func(cfg *subscribeConfig) {
		cfg.priority = priority
	}
}

type subscription[E Event] struct {
	id       uint64
	priority Priority
	once     bool
	listener Listener[E]
}

// Emitter dispatches events of type E to its subscribed listeners,
// synchronously and in priority order.
//
// Emitter is safe for concurrent use. Listeners subscribed while an
// Emit is in flight are only visible to subsequent emissions.
type Emitter[E Event] struct {
	mu     sync.RWMutex
	subs   []subscription[E]
	nextID uint64
}

// New returns an empty Emitter.
func New[E Event]() *Emitter[E] {
	return new(Emitter[E])
}

// Subscribe registers a listener and returns a function that cancels
// the subscription.
func (e *Emitter[E]) Subscribe(listener Listener[E], opts ...SubscribeOption) func() {
	return e.add(listener, false, opts)
}

// Once registers a listener that is delivered at most one event,
// then removed. It returns a function that cancels the subscription
// in case the event never fires.
func (e *Emitter[E]) Once(listener Listener[E], opts ...SubscribeOption) func() {
	return e.add(listener, true, opts)
}

func (e *Emitter[E]) add(listener Listener[E], once bool, opts []SubscribeOption) func() {
	cfg := subscribeConfig{priority: Normal}
	for _, opt := range opts {
		opt(&cfg)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.nextID++
	sub := subscription[E]{
		id:       e.nextID,
		priority: cfg.priority,
		once:     once,
		listener: listener,
	}

	// Insert at the end of the subscription's tier to keep FIFO order
	// within each tier.
	i := len(e.subs)
	for i > 0 && e.subs[i-1].priority > sub.priority {
		i--
	}

	e.subs = append(e.subs, subscription[E]{})
	copy(e.subs[i+1:], e.subs[i:])
	e.subs[i] = sub

	id := sub.id

	return func() { e.remove(id) }
}

func (e *Emitter[E]) remove(id uint64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	for i, sub := range e.subs {
		if sub.id == id {
			e.subs = append(e.subs[:i], e.subs[i+1:]...)
			return true
		}
	}

	return false
}

// Len returns the number of active subscriptions.
func (e *Emitter[E]) Len() int {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return len(e.subs)
}

// Emit notifies subscribed listeners in priority order, Early tier
// first, insertion order within each tier.
//
// Dispatch halts when a listener returns an error, which Emit returns
// as-is, or when a listener stops the event's propagation, which makes
// Emit return nil. One-shot listeners are claimed before they are
// notified, so they run at most once even under concurrent emissions.
func (e *Emitter[E]) Emit(ctx context.Context, event E) error {
	e.mu.RLock()
	subs := make([]subscription[E], len(e.subs))
	copy(subs, e.subs)
	e.mu.RUnlock()

	for _, sub := range subs {
		if sub.once && !e.remove(sub.id) {
			continue
		}

		if err := sub.listener.Notify(ctx, event); err != nil {
			return err
		}

		if event.Stopped() {
			break
		}
	}

	return nil
}
