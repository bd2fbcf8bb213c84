// Package codec provides the generic serialization contracts used to
// encode command payloads into wire-level request bodies and decode
// response bodies back into results.
//
// JSON, Protobuf and Protobuf JSON implementations are included, and
// Chain composes codecs through an intermediate representation, such
// as a wire-specific model type.
package codec
