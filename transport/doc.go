// Package transport defines the request/response surface between the
// command lifecycle and the wire.
//
// A Request carries its own completion and failure emitters, keeping
// the layer that executes commands decoupled from the layer that
// performs I/O: transports settle requests, listeners decide what the
// settlement means for the command. Wire-level implementations live in
// the httptransport and grpctransport packages, while Local serves
// in-process handlers and tests.
package transport
