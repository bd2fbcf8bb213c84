package conveyorfirestore_test

import (
	"context"
	"os"
	"testing"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	conveyor "github.com/get-conveyor/go-conveyor"
	"github.com/get-conveyor/go-conveyor/journal"
	conveyorfirestore "github.com/get-conveyor/go-conveyor/journal/firestore"
)

func TestRecorder(t *testing.T) {
	if testing.Short() {
		t.SkipNow()
	}

	ctx := context.Background()

	client, err := firestore.NewClient(ctx, os.Getenv("GOOGLE_PROJECT_ID"))
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, client.Close()) })

	recorder := conveyorfirestore.Recorder{
		Client: client,
	}

	// Unique command name per run, so assertions stay exact against a
	// shared project.
	command := "get-quote-" + uuid.NewString()

	completed := journal.Entry{
		TransactionID: uuid.New(),
		Command:       command,
		Metadata:      conveyor.Metadata{"tenant": "acme"},
		Status:        journal.StatusCompleted,
		Result:        map[string]any{"symbol": "ACME", "price": 187.5},
		StartedAt:     time.Date(2020, 7, 14, 10, 30, 0, 0, time.UTC),
		RecordedAt:    time.Date(2020, 7, 14, 10, 30, 1, 0, time.UTC),
	}

	failed := journal.Entry{
		TransactionID: uuid.New(),
		Command:       command,
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
		assert.ErrorIs(t, err, conveyorfirestore.ErrNoEntry)
	})

	t.Run("recent returns entries most recent first", func(t *testing.T) {
		entries, err := recorder.Recent(ctx, command, 10)
		require.NoError(t, err)
		assert.Equal(t, []journal.Entry{failed, completed}, entries)
	})
}
