package codec

// BytesEncoder is a specialized Encoder for a Source type encoded into
// a byte array.
type BytesEncoder[Src any] interface {
	Encoder[Src, []byte]
}

// BytesDecoder is a specialized Decoder for a Source type decoded from
// a byte array.
type BytesDecoder[Src any] interface {
	Decoder[Src, []byte]
}

// Bytes is a Codec implementation encoding a Source type to and
// decoding it from a byte array.
type Bytes[Src any] interface {
	Codec[Src, []byte]
}
