package codec

import "fmt"

// Chained is a two-stage Codec: values are encoded from Src through an
// intermediate Mid representation down to Dst, and decoded back the
// opposite way.
type Chained[Src any, Mid any, Dst any] struct {
	first  Codec[Src, Mid]
	second Codec[Mid, Dst]
}

// Encode implements the codec.Encoder interface.
func (c Chained[Src, Mid, Dst]) Encode(src Src) (Dst, error) {
	var zeroValue Dst

	mid, err := c.first.Encode(src)
	if err != nil {
		return zeroValue, fmt.Errorf("codec.Chained: first stage encoder failed, %w", err)
	}

	dst, err := c.second.Encode(mid)
	if err != nil {
		return zeroValue, fmt.Errorf("codec.Chained: second stage encoder failed, %w", err)
	}

	return dst, nil
}

// Decode implements the codec.Decoder interface.
func (c Chained[Src, Mid, Dst]) Decode(dst Dst) (Src, error) {
	var zeroValue Src

	mid, err := c.second.Decode(dst)
	if err != nil {
		return zeroValue, fmt.Errorf("codec.Chained: second stage decoder failed, %w", err)
	}

	src, err := c.first.Decode(mid)
	if err != nil {
		return zeroValue, fmt.Errorf("codec.Chained: first stage decoder failed, %w", err)
	}

	return src, nil
}

// Chain combines two codecs sharing the intermediate type into a
// single two-stage Codec.
func Chain[Src any, Mid any, Dst any](
	first Codec[Src, Mid],
	second Codec[Mid, Dst],
) Chained[Src, Mid, Dst] {
	return Chained[Src, Mid, Dst]{first: first, second: second}
}
