// Package conveyor implements a command execution lifecycle: a
// command is prepared into a transport-level request, handed to a
// pluggable transport, and its response processed back into a result,
// with interception points at every stage.
//
// An Executor drives each execution and threads its state through a
// Transaction. Listeners subscribe to the command's hooks (Prepare,
// Process, Error) and, independently, to the request's completion and
// failure emitters; any of them can short-circuit the pipeline with a
// synthetic outcome, and transport failures are translated back into
// command-level errors before they reach the caller.
//
// Start from NewCommand and Executor.Execute. The emitter package
// provides the prioritized emitter the lifecycle is built on,
// transport the request/response surface (with wire implementations
// in httptransport and grpctransport), codec payload serialization,
// and journal an audit trail of executions. The zaplogger,
// otelconveyor and promconveyor packages adapt logging, tracing and
// metrics backends.
package conveyor
