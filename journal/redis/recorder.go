// Package redis provides a journal.Recorder implementation backed by
// a Redis server.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/get-conveyor/go-conveyor/journal"
)

// DefaultKeyPrefix is the prefix a Recorder applies to every key it
// writes.
const DefaultKeyPrefix = "conveyor:journal:"

// DefaultHistoryLimit is the number of transaction ids kept in each
// per-command recency index.
const DefaultHistoryLimit = 100

// ErrNoEntry is returned by Lookup when no entry is recorded for the
// requested transaction.
var ErrNoEntry = errors.New("redis.Recorder: no entry recorded for transaction")

var _ journal.Recorder = &Recorder{}

// Recorder is a journal.Recorder implementation writing entries to
// Redis.
//
// Each entry is stored as a JSON value keyed by its transaction id,
// and indexed in a per-command recency list so that Recent can page
// through the latest executions. An optional TTL expires entries;
// the index is trimmed on every write and tolerates members whose
// entry already expired.
type Recorder struct {
	Client *redis.Client

	keyPrefix    string
	ttl          time.Duration
	historyLimit int64
}

// NewRecorder returns a Recorder writing through the given Redis
// client.
func NewRecorder(client *redis.Client, opts ...Option[*Recorder]) *Recorder {
	recorder := &Recorder{
		Client:       client,
		keyPrefix:    DefaultKeyPrefix,
		historyLimit: DefaultHistoryLimit,
	}

	for _, opt := range opts {
		opt.apply(recorder)
	}

	return recorder
}

func (r *Recorder) entryKey(transactionID string) string {
	return r.keyPrefix + "entry:" + transactionID
}

func (r *Recorder) indexKey(command string) string {
	return r.keyPrefix + "recent:" + command
}

// Record implements the journal.Recorder interface.
func (r *Recorder) Record(ctx context.Context, entry journal.Entry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("redis.Recorder: failed to serialize journal entry, %w", err)
	}

	index := r.indexKey(entry.Command)

	pipe := r.Client.Pipeline()
	pipe.Set(ctx, r.entryKey(entry.TransactionID.String()), data, r.ttl)
	pipe.LPush(ctx, index, entry.TransactionID.String())
	pipe.LTrim(ctx, index, 0, r.historyLimit-1)

	if r.ttl > 0 {
		pipe.Expire(ctx, index, r.ttl)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis.Recorder: failed to append journal entry, %w", err)
	}

	return nil
}

// Lookup returns the entry recorded for the given transaction, or
// ErrNoEntry when none was recorded or the entry already expired.
func (r *Recorder) Lookup(ctx context.Context, transactionID uuid.UUID) (journal.Entry, error) {
	data, err := r.Client.Get(ctx, r.entryKey(transactionID.String())).Bytes()
	if errors.Is(err, redis.Nil) {
		return journal.Entry{}, ErrNoEntry
	}

	if err != nil {
		return journal.Entry{}, fmt.Errorf("redis.Recorder: failed to get journal entry, %w", err)
	}

	return unmarshalEntry(data)
}

// Recent returns up to limit entries recorded for the named command,
// most recent first. Entries that expired after being indexed are
// skipped.
func (r *Recorder) Recent(ctx context.Context, command string, limit int) ([]journal.Entry, error) {
	if limit <= 0 {
		return nil, nil
	}

	ids, err := r.Client.LRange(ctx, r.indexKey(command), 0, int64(limit)-1).Result()
	if err != nil {
		return nil, fmt.Errorf("redis.Recorder: failed to read recency index, %w", err)
	}

	entries := make([]journal.Entry, 0, len(ids))

	for _, id := range ids {
		data, err := r.Client.Get(ctx, r.entryKey(id)).Bytes()
		if errors.Is(err, redis.Nil) {
			continue
		}

		if err != nil {
			return nil, fmt.Errorf("redis.Recorder: failed to get journal entry, %w", err)
		}

		entry, err := unmarshalEntry(data)
		if err != nil {
			return nil, err
		}

		entries = append(entries, entry)
	}

	return entries, nil
}

func unmarshalEntry(data []byte) (journal.Entry, error) {
	var entry journal.Entry

	if err := json.Unmarshal(data, &entry); err != nil {
		return journal.Entry{}, fmt.Errorf("redis.Recorder: failed to deserialize journal entry, %w", err)
	}

	return entry, nil
}
