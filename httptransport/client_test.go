package httptransport_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	conveyor "github.com/get-conveyor/go-conveyor"
	"github.com/get-conveyor/go-conveyor/codec"
	"github.com/get-conveyor/go-conveyor/emitter"
	"github.com/get-conveyor/go-conveyor/httptransport"
	"github.com/get-conveyor/go-conveyor/logger"
	"github.com/get-conveyor/go-conveyor/transport"
)

type getQuote struct {
	Symbol string `json:"symbol"`
}

func (getQuote) Name() string { return "get-quote" }

type listQuotes struct{}

func (listQuotes) Name() string { return "list-quotes" }

type quote struct {
	Symbol string  `json:"symbol"`
	Price  float64 `json:"price"`
}

func newQuoteClient() *httptransport.Client {
	return httptransport.NewClient(map[string]httptransport.Route{
		"get-quote": {
			Method: http.MethodPost,
			Path:   "/quotes",
			Encode: httptransport.EncodePayload[getQuote](codec.NewJSONEncoder[getQuote]()),
		},
	})
}

// newQuoteServer serves quotes for the ACME symbol, capturing the
// headers of every request it answers.
func newQuoteServer(t *testing.T) (*httptest.Server, *[]http.Header) {
	t.Helper()

	var headers []http.Header

	mux := http.NewServeMux()
	mux.HandleFunc("/quotes", func(w http.ResponseWriter, r *http.Request) {
		headers = append(headers, r.Header.Clone())

		var payload getQuote
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		if payload.Symbol != "ACME" {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":"unknown symbol"}`))
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"symbol":"ACME","price":187.5}`))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return srv, &headers
}

func decodeQuote() emitter.ListenerFunc[*conveyor.ProcessEvent] {
	return func(_ context.Context, ev *conveyor.ProcessEvent) error {
		decoded, err := httptransport.DecodeResponse(ev.Transaction, codec.NewJSONDecoder(func() quote { return quote{} }))
		if err != nil {
			return err
		}

		ev.Transaction.Result = decoded

		return nil
	}
}

func TestClient(t *testing.T) {
	ctx := context.Background()

	t.Run("executes a command end to end over HTTP", func(t *testing.T) {
		srv, headers := newQuoteServer(t)
		client := newQuoteClient()

		executor := conveyor.Executor{
			Transport: httptransport.Transport{BaseURL: srv.URL, Logger: logger.NewTest(t)},
			Logger:    logger.NewTest(t),
		}

		cmd := conveyor.NewCommand(
			getQuote{Symbol: "ACME"},
			conveyor.WithMetadata(conveyor.Metadata{"tenant": "acme"}),
		)
		cmd.Hooks().Prepare.Subscribe(conveyor.BuildRequests(client))
		cmd.Hooks().Process.Subscribe(decodeQuote())

		tx, err := executor.Execute(ctx, client, cmd)

		require.NoError(t, err)
		assert.Equal(t, quote{Symbol: "ACME", Price: 187.5}, tx.Result)
		assert.Equal(t, http.StatusOK, tx.Response.Status)
		assert.Equal(t, conveyor.StateDone, tx.State())

		require.Len(t, *headers, 1)
		assert.Equal(t, "application/json", (*headers)[0].Get("Content-Type"))
		assert.Equal(t, "acme", (*headers)[0].Get(httptransport.MetadataHeaderPrefix+"tenant"))
	})

	t.Run("future commands settle through the transaction", func(t *testing.T) {
		srv, _ := newQuoteServer(t)
		client := newQuoteClient()

		executor := conveyor.Executor{
			Transport: httptransport.Transport{BaseURL: srv.URL},
		}

		cmd := conveyor.NewCommand(getQuote{Symbol: "ACME"}, conveyor.AsFuture())
		cmd.Hooks().Prepare.Subscribe(conveyor.BuildRequests(client))
		cmd.Hooks().Process.Subscribe(decodeQuote())

		tx, err := executor.Execute(ctx, client, cmd)
		require.NoError(t, err)

		require.NoError(t, tx.Wait(ctx))
		assert.Equal(t, quote{Symbol: "ACME", Price: 187.5}, tx.Result)
	})

	t.Run("server errors surface as command errors with status detail", func(t *testing.T) {
		srv, _ := newQuoteServer(t)
		client := newQuoteClient()

		executor := conveyor.Executor{
			Transport: httptransport.Transport{BaseURL: srv.URL},
		}

		cmd := conveyor.NewCommand(getQuote{Symbol: "NOPE"})
		cmd.Hooks().Prepare.Subscribe(conveyor.BuildRequests(client))

		tx, err := executor.Execute(ctx, client, cmd)

		require.Error(t, err)

		var cmdErr *conveyor.CommandError
		require.ErrorAs(t, err, &cmdErr)
		assert.Same(t, tx, cmdErr.Transaction)

		var statusErr *httptransport.StatusError
		require.ErrorAs(t, err, &statusErr)
		assert.Equal(t, http.StatusNotFound, statusErr.Status)

		require.NotNil(t, tx.Response)
		assert.Equal(t, http.StatusNotFound, tx.Response.Status)
		assert.Equal(t, []byte(`{"error":"unknown symbol"}`), tx.Response.Payload)
		assert.Equal(t, conveyor.StateErrored, tx.State())
	})

	t.Run("missing routes fail the preparation", func(t *testing.T) {
		srv, headers := newQuoteServer(t)
		client := httptransport.NewClient(nil)

		executor := conveyor.Executor{
			Transport: httptransport.Transport{BaseURL: srv.URL},
		}

		cmd := conveyor.NewCommand(getQuote{Symbol: "ACME"})
		cmd.Hooks().Prepare.Subscribe(conveyor.BuildRequests(client))

		_, err := executor.Execute(ctx, client, cmd)

		assert.ErrorContains(t, err, `no route for command "get-quote"`)
		assert.Empty(t, *headers)
	})

	t.Run("encode guards against foreign payload types", func(t *testing.T) {
		encode := httptransport.EncodePayload[getQuote](codec.NewJSONEncoder[getQuote]())

		_, err := encode(listQuotes{})
		assert.ErrorContains(t, err, "unexpected payload type")
	})

	t.Run("decode requires a settled raw body", func(t *testing.T) {
		decoder := codec.NewJSONDecoder(func() quote { return quote{} })

		_, err := httptransport.DecodeResponse(&conveyor.Transaction{}, decoder)
		assert.ErrorContains(t, err, "no response")

		tx := &conveyor.Transaction{Response: &transport.Response{Payload: "not-bytes"}}
		_, err = httptransport.DecodeResponse(tx, decoder)
		assert.ErrorContains(t, err, "not a raw body")
	})
}
