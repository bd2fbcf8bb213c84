package grpctransport

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/protobuf/proto"

	"github.com/get-conveyor/go-conveyor/logger"
	"github.com/get-conveyor/go-conveyor/transport"
)

// ConfigReply holds the factory producing the reply message a unary
// invocation decodes into. Client.BuildRequest sets it from the
// route.
const ConfigReply = "grpctransport.reply"

// ConfigTimeout bounds a single invocation.
const ConfigTimeout = "grpctransport.timeout"

var _ transport.Transport = Transport{}

// Transport is a transport.Transport implementation performing unary
// invocations through a gRPC client connection.
type Transport struct {
	// Conn is the connection invocations go through. A *grpc.ClientConn
	// satisfies it.
	Conn grpc.ClientConnInterface
	// Logger is optional; a nil logger disables logging.
	Logger logger.Logger
}

// Send implements the transport.Transport interface.
//
// Requests flagged as future are invoked on a dedicated goroutine:
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

	if t.Conn == nil {
		return req.Fail(ctx, errors.New("grpctransport.Transport: no connection configured"), nil)
	}

	msg, ok := req.Payload.(proto.Message)
	if !ok {
		return req.Fail(ctx, fmt.Errorf("grpctransport.Transport: payload is not a proto message, got %T", req.Payload), nil)
	}

	newReply, ok := req.Config[ConfigReply].(func() proto.Message)
	if !ok {
		return req.Fail(ctx, errors.New("grpctransport.Transport: request carries no reply factory"), nil)
	}

	if timeout := req.Config.Duration(ConfigTimeout); timeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	if len(req.Header) > 0 {
		ctx = metadata.NewOutgoingContext(ctx, foldHeader(req.Header))
	}

	var header metadata.MD

	reply := newReply()

	if err := t.Conn.Invoke(ctx, req.Target, msg, reply, grpc.Header(&header)); err != nil {
		return req.Fail(ctx, fmt.Errorf("grpctransport.Transport: invocation failed, %w", err), nil)
	}

	logger.Debug(t.Logger, "invocation performed",
		logger.With("operation", req.Operation),
		logger.With("method", req.Target),
	)

	return req.Complete(ctx, &transport.Response{
		Header:  transport.Header(header),
		Payload: reply,
	})
}

// foldHeader lowercases header keys, as the gRPC metadata rules
// require.
func foldHeader(header transport.Header) metadata.MD {
	md := make(metadata.MD, len(header))

	for key, values := range header {
		key = strings.ToLower(key)
		md[key] = append(md[key], values...)
	}

	return md
}
