package grpctransport

import (
	"context"
	"fmt"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/proto"

	conveyor "github.com/get-conveyor/go-conveyor"
	"github.com/get-conveyor/go-conveyor/codec"
	"github.com/get-conveyor/go-conveyor/transport"
)

// MetadataKeyPrefix prefixes the outgoing metadata keys that carry
// command metadata across the wire. Keys are lowercase, as the gRPC
// metadata rules require.
const MetadataKeyPrefix = "conveyor-meta-"

// Route describes how one command maps onto a gRPC service.
type Route struct {
	// Method is the full method name, such as
	// "/quotes.v1.QuoteService/GetQuote".
	Method string
	// Encode turns the command payload into the request message.
	Encode codec.Encoder[conveyor.Payload, proto.Message]
	// Reply produces the empty message the invocation decodes the
	// reply into.
	Reply func() proto.Message
}

// ReasonError carries the machine-readable reason a server attached
// to a failed invocation through an errdetails.ErrorInfo detail.
type ReasonError struct {
	Code     codes.Code
	Reason   string
	Domain   string
	Metadata map[string]string

	cause error
}

// Error implements the error interface.
func (e *ReasonError) Error() string {
	return fmt.Sprintf("grpctransport: invocation failed with code %s, reason %q", e.Code, e.Reason)
}

// Unwrap returns the invocation error, gRPC status included.
func (e *ReasonError) Unwrap() error {
	return e.cause
}

var _ conveyor.Client = &Client{}

// Client is a conveyor.Client implementation routing commands onto
// gRPC services through a route table keyed by command name.
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
		return nil, fmt.Errorf("grpctransport.Client: no route for command %q", cmd.Name())
	}

	if route.Encode == nil || route.Reply == nil {
		return nil, fmt.Errorf("grpctransport.Client: route for command %q is incomplete", cmd.Name())
	}

	msg, err := route.Encode.Encode(cmd.Payload)
	if err != nil {
		return nil, fmt.Errorf("grpctransport.Client: failed to encode payload, %w", err)
	}

	req := transport.NewRequest(cmd.Name(), route.Method, msg)
	req.Config = req.Config.With(ConfigReply, route.Reply)

	for key, value := range cmd.Metadata {
		req.Header = req.Header.Add(MetadataKeyPrefix+key, value)
	}

	return req, nil
}

// ClassifyError implements the conveyor.Client interface, wrapping
// every transport failure into a conveyor.CommandError. When the
// failure carries a gRPC status with an errdetails.ErrorInfo detail,
// the detail surfaces as a ReasonError in the chain.
func (c *Client) ClassifyError(_ context.Context, tx *conveyor.Transaction, cause error) error {
	st, ok := status.FromError(cause)
	if !ok {
		return conveyor.NewCommandError(tx, cause)
	}

	for _, detail := range st.Details() {
		info, ok := detail.(*errdetails.ErrorInfo)
		if !ok {
			continue
		}

		return conveyor.NewCommandError(tx, &ReasonError{
			Code:     st.Code(),
			Reason:   info.GetReason(),
			Domain:   info.GetDomain(),
			Metadata: info.GetMetadata(),
			cause:    cause,
		})
	}

	return conveyor.NewCommandError(tx, cause)
}

// EncodePayload adapts a typed encoder to the signature a Route
// expects, guarding against foreign payload types at runtime.
func EncodePayload[T conveyor.Payload](encoder codec.Encoder[T, proto.Message]) codec.EncoderFunc[conveyor.Payload, proto.Message] {
	return func(payload conveyor.Payload) (proto.Message, error) {
		typed, ok := payload.(T)
		if !ok {
			return nil, fmt.Errorf("grpctransport: unexpected payload type %T", payload)
		}

		return encoder.Encode(typed)
	}
}

// ResponseMessage returns the transaction's response payload as the
// given concrete message type. Process listeners use it to turn the
// reply into the command's result.
func ResponseMessage[T proto.Message](tx *conveyor.Transaction) (T, error) {
	var zeroValue T

	if tx.Response == nil {
		return zeroValue, fmt.Errorf("grpctransport: transaction has no response")
	}

	typed, ok := tx.Response.Payload.(T)
	if !ok {
		return zeroValue, fmt.Errorf("grpctransport: response payload is a %T, not a %T", tx.Response.Payload, zeroValue)
	}

	return typed, nil
}
