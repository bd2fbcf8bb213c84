package httptransport

import (
	"context"
	"fmt"
	"net/http"

	conveyor "github.com/get-conveyor/go-conveyor"
	"github.com/get-conveyor/go-conveyor/codec"
	"github.com/get-conveyor/go-conveyor/transport"
)

// MetadataHeaderPrefix prefixes the request headers that carry command
// metadata across the wire.
const MetadataHeaderPrefix = "Conveyor-Meta-"

// Route describes how one command maps onto the HTTP surface.
type Route struct {
	// Method is the HTTP method. Defaults to POST when empty.
	Method string
	// Path is the request target, resolved against the transport's
	// base URL.
	Path string
	// Encode turns the command payload into the request body. A nil
	// Encode sends the request without a body.
	Encode codec.Encoder[conveyor.Payload, []byte]
	// ContentType overrides the Content-Type header set on requests
	// with a body. Defaults to "application/json".
	ContentType string
}

var _ conveyor.Client = &Client{}

// Client is a conveyor.Client implementation routing commands onto an
// HTTP API through a route table keyed by command name.
type Client struct {
	routes map[string]Route
}

// NewClient returns a Client serving the given routes.
func NewClient(routes map[string]Route) *Client {
	return &Client{routes: routes}
}

// BuildRequest implements the conveyor.Client interface.
func (c *Client) BuildRequest(_ context.Context, cmd *conveyor.Command) (*transport.Request, error) {
	route, ok := c.routes[cmd.Name()]
	if !ok {
		return nil, fmt.Errorf("httptransport.Client: no route for command %q", cmd.Name())
	}

	var body []byte

	if route.Encode != nil {
		encoded, err := route.Encode.Encode(cmd.Payload)
		if err != nil {
			return nil, fmt.Errorf("httptransport.Client: failed to encode payload, %w", err)
		}

		body = encoded
	}

	req := transport.NewRequest(cmd.Name(), route.Path, body)

	method := route.Method
	if method == "" {
		method = http.MethodPost
	}

	req.Config = req.Config.With(ConfigMethod, method)

	if len(body) > 0 {
		contentType := route.ContentType
		if contentType == "" {
			contentType = "application/json"
		}

		req.Header = req.Header.Set("Content-Type", contentType)
	}

	for key, value := range cmd.Metadata {
		req.Header = req.Header.Add(MetadataHeaderPrefix+key, value)
	}

	return req, nil
}

// ClassifyError implements the conveyor.Client interface, wrapping
// every transport failure into a conveyor.CommandError. The
// transport-level cause, a StatusError included, stays reachable
// through errors.As.
func (c *Client) ClassifyError(_ context.Context, tx *conveyor.Transaction, cause error) error {
	return conveyor.NewCommandError(tx, cause)
}

// EncodePayload adapts a typed encoder to the signature a Route
// expects, guarding against foreign payload types at runtime.
func EncodePayload[T conveyor.Payload](encoder codec.Encoder[T, []byte]) codec.EncoderFunc[conveyor.Payload, []byte] {
	return func(payload conveyor.Payload) ([]byte, error) {
		typed, ok := payload.(T)
		if !ok {
			return nil, fmt.Errorf("httptransport: unexpected payload type %T", payload)
		}

		return encoder.Encode(typed)
	}
}

// DecodeResponse decodes the transaction's response body through the
// given decoder. Process listeners use it to turn the raw body into
// the command's result.
func DecodeResponse[T any](tx *conveyor.Transaction, decoder codec.Decoder[T, []byte]) (T, error) {
	var zeroValue T

	if tx.Response == nil {
		return zeroValue, fmt.Errorf("httptransport: transaction has no response")
	}

	body, ok := tx.Response.Payload.([]byte)
	if !ok {
		return zeroValue, fmt.Errorf("httptransport: response payload is not a raw body, got %T", tx.Response.Payload)
	}

	return decoder.Decode(body)
}
