// Package httptransport delivers requests over HTTP.
//
// Transport performs the wire round trip: responses with an
// error-class status settle the request through its failure path,
// carrying the partial response so that listeners and the command
// error bridge can still inspect status, headers and body. Client
// maps command names onto an HTTP API surface through a route table,
// encoding payloads with the codec package.
package httptransport
