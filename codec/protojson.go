package codec

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
)

// NewProtoJSONEncoder returns an encoder function marshaling the input
// message to its Protobuf JSON representation.
func NewProtoJSONEncoder[T proto.Message]() EncoderFunc[T, []byte] {
	return func(t T) ([]byte, error) {
		data, err := protojson.Marshal(t)
		if err != nil {
			return nil, fmt.Errorf("codec.ProtoJSON: failed to encode message, %w", err)
		}

		return data, nil
	}
}

// NewProtoJSONDecoder returns a decoder function unmarshaling Protobuf
// JSON bytes into messages of type T, with factory providing the fresh
// message instances to unmarshal into.
func NewProtoJSONDecoder[T proto.Message](factory func() T) DecoderFunc[T, []byte] {
	return func(data []byte) (T, error) {
		var zeroValue T

		model := factory()
		if err := protojson.Unmarshal(data, model); err != nil {
			return zeroValue, fmt.Errorf("codec.ProtoJSON: failed to decode message, %w", err)
		}

		return model, nil
	}
}

// NewProtoJSON returns a Codec encoding messages of type T to and
// decoding them from Protobuf JSON.
func NewProtoJSON[T proto.Message](factory func() T) Fused[T, []byte] {
	return Fuse(
		NewProtoJSONEncoder[T](),
		NewProtoJSONDecoder(factory),
	)
}
