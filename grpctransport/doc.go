// Package grpctransport delivers requests as unary gRPC invocations.
//
// Transport invokes the request's target method on a client
// connection, carrying request headers as outgoing gRPC metadata.
// Client maps command names onto full method names through a route
// table, building the request and reply messages per route.
// Invocation failures keep their gRPC status reachable, and servers
// attaching an errdetails.ErrorInfo surface its machine-readable
// reason through ReasonError.
package grpctransport
