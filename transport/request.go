package transport

import (
	"context"
	"sync"

	"github.com/get-conveyor/go-conveyor/emitter"
)

// Response is the transport-level answer to a Request.
type Response struct {
	// Status is the transport's own status indicator, such as an HTTP
	// status code. Zero when the transport has no such notion.
	Status int
	Header Header
	// Payload is the decoded or raw response body, transport-specific.
	Payload any
	// Canceled marks a synthetic response injected to settle a request
	// that must not, or could not, transfer over the wire.
	Canceled bool
}

// NewCanceledResponse returns the synthetic response used to settle a
// request without performing I/O.
func NewCanceledResponse() *Response {
	return &Response{Canceled: true}
}

// CompleteEvent notifies that a Request received a Response.
type CompleteEvent struct {
	emitter.Propagation
	Request  *Request
	Response *Response
}

// FailEvent notifies that a Request failed at the transport level.
type FailEvent struct {
	emitter.Propagation
	Request *Request
	// Err is the transport-level failure.
	Err error
	// Response is the partial response that arrived together with the
	// failure, if any. Recover replaces it.
	Response *Response

	recovered bool
}

// Recover marks the failure as handled: the request completes with
// resp as if the transport had succeeded, and listeners in later
// tiers, the command-level error bridge included, never observe the
// failure.
func (ev *FailEvent) Recover(resp *Response) {
	ev.Response = resp
	ev.recovered = true
	ev.StopPropagation()
}

// Recovered reports whether a listener recovered the failure.
func (ev *FailEvent) Recovered() bool { return ev.recovered }

// Request is a single-shot, transport-level operation produced from a
// command. It owns two emitters, one for completion and one for
// failure, and a settlement latch guaranteeing at most one effective
// outcome.
//
// Requests are not reusable: build a fresh one per execution.
type Request struct {
	// Operation is the logical name of the command this request was
	// built from.
	Operation string
	// Target is the transport-specific destination, such as an URL
	// path or a gRPC full method name.
	Target  string
	Payload any
	Header  Header
	Config  Config

	Completed *emitter.Emitter[*CompleteEvent]
	Failed    *emitter.Emitter[*FailEvent]

	mu       sync.Mutex
	finished bool
	final    *Response
}

// NewRequest returns a Request ready for listener registration.
func NewRequest(operation, target string, payload any) *Request {
	return &Request{
		Operation: operation,
		Target:    target,
		Payload:   payload,
		Header:    Header{},
		Config:    Config{},
		Completed: emitter.New[*CompleteEvent](),
		Failed:    emitter.New[*FailEvent](),
	}
}

// Future reports whether the request is flagged for asynchronous
// delivery.
func (r *Request) Future() bool {
	return r.Config.Bool(ConfigFuture)
}

// finish claims the settlement latch. Only the first caller wins.
func (r *Request) finish(resp *Response) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.finished {
		return false
	}

	r.finished = true
	r.final = resp

	return true
}

// Finished reports whether the request is settled. Transports must
// check it before performing I/O: a settled request must never reach
// the wire.
func (r *Request) Finished() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.finished
}

// Response returns the response the request settled with, or nil if
// the request is still in flight.
func (r *Request) Response() *Response {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.final
}

// Complete settles the request with resp and notifies the Completed
// listeners. If the latch was already claimed the settled response is
// kept, and a pending short-circuit guard may suppress the
// notification entirely.
func (r *Request) Complete(ctx context.Context, resp *Response) error {
	r.finish(resp)

	return r.Completed.Emit(ctx, &CompleteEvent{
		Request:  r,
		Response: resp,
	})
}

// Fail notifies the Failed listeners that the request failed with
// cause. resp is the partial response that arrived with the failure,
// or nil.
//
// When a listener recovers the failure, the request completes with the
// recovery response and Fail returns that completion's outcome. When a
// listener returns an error instead, dispatch halts and the error is
// returned as-is: it is the caller's terminal verdict for the request.
func (r *Request) Fail(ctx context.Context, cause error, resp *Response) error {
	ev := &FailEvent{
		Request:  r,
		Err:      cause,
		Response: resp,
	}

	if err := r.Failed.Emit(ctx, ev); err != nil {
		return err
	}

	if ev.Recovered() {
		return r.Complete(ctx, ev.Response)
	}

	return nil
}

// ShortCircuit settles the request with resp without notifying the
// completion listeners, and suppresses the next completion
// notification delivered to this request. It reports whether the
// request was still unsettled.
//
// The command-level error bridge relies on it to guarantee that a
// request already failed at the command level can neither hit the
// wire nor complete twice.
func (r *Request) ShortCircuit(resp *Response) bool {
	if !r.finish(resp) {
		return false
	}

	r.Completed.Once(
		emitter.ListenerFunc[*CompleteEvent](func(_ context.Context, ev *CompleteEvent) error {
			ev.StopPropagation()
			return nil
		}),
		emitter.WithPriority(emitter.Early),
	)

	return true
}
