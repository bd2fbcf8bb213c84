package codec

// Encoder encodes a Source type into a Destination type, typically a
// wire format such as a byte array.
type Encoder[Src any, Dst any] interface {
	Encode(src Src) (Dst, error)
}

// EncoderFunc is a functional implementation of the Encoder interface.
type EncoderFunc[Src any, Dst any] func(src Src) (Dst, error)

// Encode implements the codec.Encoder interface.
func (fn EncoderFunc[Src, Dst]) Encode(src Src) (Dst, error) { return fn(src) }

// Decoder decodes a Source type back from a Destination type.
type Decoder[Src any, Dst any] interface {
	Decode(dst Dst) (Src, error)
}

// DecoderFunc is a functional implementation of the Decoder interface.
type DecoderFunc[Src any, Dst any] func(dst Dst) (Src, error)

// Decode implements the codec.Decoder interface.
func (fn DecoderFunc[Src, Dst]) Decode(dst Dst) (Src, error) { return fn(dst) }

// Codec both encodes a Source type to and decodes it from a
// Destination type.
type Codec[Src any, Dst any] interface {
	Encoder[Src, Dst]
	Decoder[Src, Dst]
}

// Fused fuses independent Encoder and Decoder implementations into a
// Codec.
type Fused[Src any, Dst any] struct {
	Encoder[Src, Dst]
	Decoder[Src, Dst]
}

// Fuse combines an Encoder and a Decoder with compatible types into a
// Codec implementation through codec.Fused.
func Fuse[Src, Dst any](encoder Encoder[Src, Dst], decoder Decoder[Src, Dst]) Fused[Src, Dst] {
	return Fused[Src, Dst]{
		Encoder: encoder,
		Decoder: decoder,
	}
}
