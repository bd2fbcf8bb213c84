package codec

import (
	"fmt"

	"google.golang.org/protobuf/proto"
)

// NewProtoEncoder returns an encoder function marshaling the input
// message to Protobuf bytes.
func NewProtoEncoder[T proto.Message]() EncoderFunc[T, []byte] {
	return func(t T) ([]byte, error) {
		data, err := proto.Marshal(t)
		if err != nil {
			return nil, fmt.Errorf("codec.Proto: failed to encode message, %w", err)
		}

		return data, nil
	}
}

// NewProtoDecoder returns a decoder function unmarshaling Protobuf
// bytes into messages of type T, with factory providing the fresh
// message instances to unmarshal into.
func NewProtoDecoder[T proto.Message](factory func() T) DecoderFunc[T, []byte] {
	return func(data []byte) (T, error) {
		var zeroValue T

		model := factory()
		if err := proto.Unmarshal(data, model); err != nil {
			return zeroValue, fmt.Errorf("codec.Proto: failed to decode message, %w", err)
		}

		return model, nil
	}
}

// NewProto returns a Codec encoding messages of type T to and decoding
// them from Protobuf bytes.
func NewProto[T proto.Message](factory func() T) Fused[T, []byte] {
	return Fuse(
		NewProtoEncoder[T](),
		NewProtoDecoder(factory),
	)
}
