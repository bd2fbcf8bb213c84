package codec

import (
	"encoding/json"
	"fmt"
)

// NewJSONEncoder returns an encoder function marshaling the input
// value to JSON bytes.
func NewJSONEncoder[T any]() EncoderFunc[T, []byte] {
	return func(t T) ([]byte, error) {
		data, err := json.Marshal(t)
		if err != nil {
			return nil, fmt.Errorf("codec.JSON: failed to encode value, %w", err)
		}

		return data, nil
	}
}

// NewJSONDecoder returns a decoder function unmarshaling JSON bytes
// into the specified type.
//
// The factory function provides fresh instances of the type, which
// matters when pointer semantics is used.
func NewJSONDecoder[T any](factory func() T) DecoderFunc[T, []byte] {
	return func(data []byte) (T, error) {
		var zeroValue T

		model := factory()
		if err := json.Unmarshal(data, &model); err != nil {
			return zeroValue, fmt.Errorf("codec.JSON: failed to decode value, %w", err)
		}

		return model, nil
	}
}

// NewJSON returns a Codec encoding values of type T to and decoding
// them from JSON bytes.
func NewJSON[T any](factory func() T) Fused[T, []byte] {
	return Fuse(
		NewJSONEncoder[T](),
		NewJSONDecoder(factory),
	)
}
