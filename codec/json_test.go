package codec_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/get-conveyor/go-conveyor/codec"
)

type quote struct {
	Symbol string
	Price  int64
}

type jsonQuote struct {
	Symbol     string `json:"symbol"`
	PriceCents int64  `json:"price_cents"`
}

var errNoSymbol = errors.New("quote has no symbol")

func newQuoteMapping() codec.Fused[quote, *jsonQuote] {
	return codec.Fuse[quote, *jsonQuote](
		codec.EncoderFunc[quote, *jsonQuote](func(q quote) (*jsonQuote, error) {
			if q.Symbol == "" {
				return nil, errNoSymbol
			}

			return &jsonQuote{Symbol: q.Symbol, PriceCents: q.Price}, nil
		}),
		codec.DecoderFunc[quote, *jsonQuote](func(jq *jsonQuote) (quote, error) {
			return quote{Symbol: jq.Symbol, Price: jq.PriceCents}, nil
		}),
	)
}

func TestNewJSON(t *testing.T) {
	quotes := codec.NewJSON(func() *jsonQuote { return new(jsonQuote) })

	t.Run("round trips a value", func(t *testing.T) {
		in := &jsonQuote{Symbol: "ACME", PriceCents: 13325}

		data, err := quotes.Encode(in)
		require.NoError(t, err)
		assert.JSONEq(t, `{"symbol":"ACME","price_cents":13325}`, string(data))

		out, err := quotes.Decode(data)
		require.NoError(t, err)
		assert.Equal(t, in, out)
	})

	t.Run("fails to decode malformed input", func(t *testing.T) {
		_, err := quotes.Decode([]byte(`{"symbol":`))
		assert.Error(t, err)
	})
}

func TestChain(t *testing.T) {
	chained := codec.Chain[quote, *jsonQuote, []byte](
		newQuoteMapping(),
		codec.NewJSON(func() *jsonQuote { return new(jsonQuote) }),
	)

	t.Run("round trips through the intermediate representation", func(t *testing.T) {
		in := quote{Symbol: "ACME", Price: 13325}

		data, err := chained.Encode(in)
		require.NoError(t, err)
		assert.JSONEq(t, `{"symbol":"ACME","price_cents":13325}`, string(data))

		out, err := chained.Decode(data)
		require.NoError(t, err)
		assert.Equal(t, in, out)
	})

	t.Run("surfaces first stage encoder failures", func(t *testing.T) {
		_, err := chained.Encode(quote{Price: 1})
		assert.ErrorIs(t, err, errNoSymbol)
	})

	t.Run("surfaces second stage decoder failures", func(t *testing.T) {
		_, err := chained.Decode([]byte(`not-json`))
		assert.Error(t, err)
	})
}
