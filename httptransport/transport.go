package httptransport

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/get-conveyor/go-conveyor/logger"
	"github.com/get-conveyor/go-conveyor/transport"
)

// ConfigMethod selects the HTTP method for a request. Defaults to
// POST when unset.
const ConfigMethod = "httptransport.method"

// ConfigTimeout bounds a single request round trip.
const ConfigTimeout = "httptransport.timeout"

// StatusError reports a response that arrived with an error-class
// status code. The response itself, body included, travels as the
// failure's partial response.
type StatusError struct {
	Status int
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	return fmt.Sprintf("httptransport: server answered with status %d %s", e.Status, http.StatusText(e.Status))
}

var _ transport.Transport = Transport{}

// Transport is a transport.Transport implementation performing
// requests through an http.Client.
//
// The zero value works against http.DefaultClient with absolute
// request targets; set BaseURL to resolve targets against a fixed
// host.
type Transport struct {
	// HTTP is the underlying client. Defaults to http.DefaultClient.
	HTTP *http.Client
	// BaseURL is prepended to every request target.
	BaseURL string
	// Logger is optional; a nil logger disables logging.
	Logger logger.Logger
}

// Send implements the transport.Transport interface.
//
// Requests flagged as future are performed on a dedicated goroutine:
// the outcome then reaches the caller only through the request's
// emitters, and ctx must outlive the settlement.
func (t Transport) Send(ctx context.Context, req *transport.Request) error {
	if req.Future() {
		go func() { _ = t.send(ctx, req) }()
		return nil
	}

	return t.send(ctx, req)
}

func (t Transport) send(ctx context.Context, req *transport.Request) error {
	if req.Finished() {
		return nil
	}

	if timeout := req.Config.Duration(ConfigTimeout); timeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	httpReq, err := t.newHTTPRequest(ctx, req)
	if err != nil {
		return req.Fail(ctx, err, nil)
	}

	httpResp, err := t.client().Do(httpReq)
	if err != nil {
		return req.Fail(ctx, fmt.Errorf("httptransport.Transport: request failed, %w", err), nil)
	}

	defer func() { _ = httpResp.Body.Close() }()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return req.Fail(ctx, fmt.Errorf("httptransport.Transport: failed to read response body, %w", err), nil)
	}

	resp := &transport.Response{
		Status:  httpResp.StatusCode,
		Header:  transport.Header(httpResp.Header),
		Payload: body,
	}

	logger.Debug(t.Logger, "request performed",
		logger.With("operation", req.Operation),
		logger.With("target", req.Target),
		logger.With("status", httpResp.StatusCode),
	)

	if httpResp.StatusCode >= http.StatusBadRequest {
		return req.Fail(ctx, &StatusError{Status: httpResp.StatusCode}, resp)
	}

	return req.Complete(ctx, resp)
}

func (t Transport) client() *http.Client {
	if t.HTTP != nil {
		return t.HTTP
	}

	return http.DefaultClient
}

func (t Transport) newHTTPRequest(ctx context.Context, req *transport.Request) (*http.Request, error) {
	body, err := requestBody(req.Payload)
	if err != nil {
		return nil, err
	}

	method := req.Config.String(ConfigMethod)
	if method == "" {
		method = http.MethodPost
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, t.BaseURL+req.Target, body)
	if err != nil {
		return nil, fmt.Errorf("httptransport.Transport: failed to build request, %w", err)
	}

	for key, values := range req.Header {
		for _, value := range values {
			httpReq.Header.Add(key, value)
		}
	}

	return httpReq, nil
}

func requestBody(payload any) (io.Reader, error) {
	switch v := payload.(type) {
	case nil:
		return nil, nil
	case []byte:
		if len(v) == 0 {
			return nil, nil
		}

		return bytes.NewReader(v), nil
	default:
		return nil, fmt.Errorf("httptransport.Transport: unsupported payload type %T", v)
	}
}
