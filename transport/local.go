package transport

import (
	"context"
	"errors"
)

// Local is a Transport that executes requests in-process through a
// handler function. It backs tests, scenario assertions and demos
// where no wire is involved.
type Local struct {
	// Handler produces the response for a request. An error settles
	// the request through its failure path; a non-nil response
	// returned alongside the error is surfaced as a partial response.
	Handler func(ctx context.Context, req *Request) (*Response, error)
}

var _ Transport = Local{}

// Send implements the Transport interface.
//
// Requests flagged as future are handled on a dedicated goroutine: the
// outcome then reaches the caller only through the request's emitters,
// and ctx must outlive the settlement.
func (l Local) Send(ctx context.Context, req *Request) error {
	if l.Handler == nil {
		return errors.New("transport.Local: no handler configured")
	}

	if req.Future() {
		go func() { _ = l.send(ctx, req) }()
		return nil
	}

	return l.send(ctx, req)
}

func (l Local) send(ctx context.Context, req *Request) error {
	if req.Finished() {
		return nil
	}

	resp, err := l.Handler(ctx, req)
	if err != nil {
		return req.Fail(ctx, err, resp)
	}

	return req.Complete(ctx, resp)
}
