package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	conveyor "github.com/get-conveyor/go-conveyor"
	"github.com/get-conveyor/go-conveyor/journal"
	"github.com/get-conveyor/go-conveyor/journal/redis"
)

func newTestClient(t *testing.T) (*miniredis.Miniredis, *backend.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := backend.NewClient(&backend.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() { assert.NoError(t, client.Close()) })

	return mr, client
}

func TestRecorder(t *testing.T) {
	_, client := newTestClient(t)

	ctx := context.Background()
	recorder := redis.NewRecorder(client)

	completed := journal.Entry{
		TransactionID: uuid.New(),
		Command:       "get-quote",
		Metadata:      conveyor.Metadata{"tenant": "acme"},
		Status:        journal.StatusCompleted,
		Result:        map[string]any{"symbol": "ACME", "price": 187.5},
		StartedAt:     time.Date(2020, 7, 14, 10, 30, 0, 0, time.UTC),
		RecordedAt:    time.Date(2020, 7, 14, 10, 30, 1, 0, time.UTC),
	}

	failed := journal.Entry{
		TransactionID: uuid.New(),
		Command:       "get-quote",
		Status:        journal.StatusFailed,
		Error:         "connection refused",
		StartedAt:     time.Date(2020, 7, 14, 10, 31, 0, 0, time.UTC),
		RecordedAt:    time.Date(2020, 7, 14, 10, 31, 1, 0, time.UTC),
	}

	require.NoError(t, recorder.Record(ctx, completed))
	require.NoError(t, recorder.Record(ctx, failed))

	t.Run("lookup returns the recorded entry", func(t *testing.T) {
		entry, err := recorder.Lookup(ctx, completed.TransactionID)
		require.NoError(t, err)
		assert.Equal(t, completed, entry)
	})

	t.Run("lookup fails for an unknown transaction", func(t *testing.T) {
		_, err := recorder.Lookup(ctx, uuid.New())
		assert.ErrorIs(t, err, redis.ErrNoEntry)
	})

	t.Run("recent returns entries most recent first", func(t *testing.T) {
		entries, err := recorder.Recent(ctx, "get-quote", 10)
		require.NoError(t, err)
		assert.Equal(t, []journal.Entry{failed, completed}, entries)
	})

	t.Run("recent honors the requested limit", func(t *testing.T) {
		entries, err := recorder.Recent(ctx, "get-quote", 1)
		require.NoError(t, err)
		assert.Equal(t, []journal.Entry{failed}, entries)
	})

	t.Run("no entries for an unknown command", func(t *testing.T) {
		entries, err := recorder.Recent(ctx, "unknown", 10)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})
}

func TestRecorderTTL(t *testing.T) {
	mr, client := newTestClient(t)

	ctx := context.Background()
	recorder := redis.NewRecorder(client, redis.WithTTL(time.Second))

	entry := journal.Entry{
		TransactionID: uuid.New(),
		Command:       "get-quote",
		Status:        journal.StatusCompleted,
		StartedAt:     time.Date(2020, 7, 14, 10, 30, 0, 0, time.UTC),
		RecordedAt:    time.Date(2020, 7, 14, 10, 30, 1, 0, time.UTC),
	}

	require.NoError(t, recorder.Record(ctx, entry))

	found, err := recorder.Lookup(ctx, entry.TransactionID)
	require.NoError(t, err)
	assert.Equal(t, entry, found)

	mr.FastForward(2 * time.Second)

	_, err = recorder.Lookup(ctx, entry.TransactionID)
	assert.ErrorIs(t, err, redis.ErrNoEntry)

	entries, err := recorder.Recent(ctx, "get-quote", 10)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRecorderKeyPrefix(t *testing.T) {
	mr, client := newTestClient(t)

	ctx := context.Background()
	recorder := redis.NewRecorder(client, redis.WithKeyPrefix("quotes:audit:"))

	entry := journal.Entry{
		TransactionID: uuid.New(),
		Command:       "get-quote",
		Status:        journal.StatusCompleted,
		StartedAt:     time.Date(2020, 7, 14, 10, 30, 0, 0, time.UTC),
		RecordedAt:    time.Date(2020, 7, 14, 10, 30, 1, 0, time.UTC),
	}

	require.NoError(t, recorder.Record(ctx, entry))

	assert.True(t, mr.Exists("quotes:audit:entry:"+entry.TransactionID.String()))
	assert.True(t, mr.Exists("quotes:audit:recent:get-quote"))
}

func TestRecorderHistoryLimit(t *testing.T) {
	_, client := newTestClient(t)

	ctx := context.Background()
	recorder := redis.NewRecorder(client, redis.WithHistoryLimit(2))

	ids := make([]uuid.UUID, 3)

	for i := range ids {
		ids[i] = uuid.New()

		require.NoError(t, recorder.Record(ctx, journal.Entry{
			TransactionID: ids[i],
			Command:       "get-quote",
			Status:        journal.StatusCompleted,
			StartedAt:     time.Date(2020, 7, 14, 10, 30+i, 0, 0, time.UTC),
			RecordedAt:    time.Date(2020, 7, 14, 10, 30+i, 1, 0, time.UTC),
		}))
	}

	entries, err := recorder.Recent(ctx, "get-quote", 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, ids[2], entries[0].TransactionID)
	assert.Equal(t, ids[1], entries[1].TransactionID)
}
