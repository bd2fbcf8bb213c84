// Package conveyorfirestore provides a journal.Recorder
// implementation backed by Google Cloud Firestore.
package conveyorfirestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/get-conveyor/go-conveyor/journal"
)

// DefaultCollection is the collection a Recorder writes journal
// entries to.
const DefaultCollection = "JournalEntries"

// ErrNoEntry is returned by Lookup when no entry is recorded for the
// requested transaction.
var ErrNoEntry = errors.New("conveyorfirestore.Recorder: no entry recorded for transaction")

var _ journal.Recorder = Recorder{}

// Recorder is a journal.Recorder implementation writing entries to a
// Firestore collection, one document per transaction.
//
// The entry itself is stored as an opaque JSON payload; command,
// status and recording time are duplicated as flat fields so that
// Recent can query on them.
type Recorder struct {
	Client *firestore.Client

	// Collection overrides the collection documents are written to.
	// Defaults to DefaultCollection when empty.
	Collection string
}

func (r Recorder) collection() *firestore.CollectionRef {
	name := r.Collection
	if name == "" {
		name = DefaultCollection
	}

	return r.Client.Collection(name)
}

// Record implements the journal.Recorder interface.
func (r Recorder) Record(ctx context.Context, entry journal.Entry) error {
	payload, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("conveyorfirestore.Recorder: failed to serialize journal entry, %w", err)
	}

	docRef := r.collection().Doc(entry.TransactionID.String())

	if _, err := docRef.Set(ctx, map[string]interface{}{
		"command":     entry.Command,
		"status":      string(entry.Status),
		"recorded_at": entry.RecordedAt,
		"payload":     payload,
	}); err != nil {
		return fmt.Errorf("conveyorfirestore.Recorder: failed to record journal entry, %w", err)
	}

	return nil
}

// Lookup returns the entry recorded for the given transaction, or
// ErrNoEntry when none was recorded.
func (r Recorder) Lookup(ctx context.Context, transactionID uuid.UUID) (journal.Entry, error) {
	doc, err := r.collection().Doc(transactionID.String()).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return journal.Entry{}, ErrNoEntry
	}

	if err != nil {
		return journal.Entry{}, fmt.Errorf("conveyorfirestore.Recorder: failed to get journal entry, %w", err)
	}

	return unmarshalDocument(doc)
}

// Recent returns up to limit entries recorded for the named command,
// most recent first.
func (r Recorder) Recent(ctx context.Context, command string, limit int) ([]journal.Entry, error) {
	iter := r.collection().
		Where("command", "==", command).
		OrderBy("recorded_at", firestore.Desc).
		Limit(limit).
		Documents(ctx)

	defer iter.Stop()

	var entries []journal.Entry

	for {
		doc, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}

		if err != nil {
			return nil, fmt.Errorf("conveyorfirestore.Recorder: failed while reading iterator, %w", err)
		}

		entry, err := unmarshalDocument(doc)
		if err != nil {
			return nil, err
		}

		entries = append(entries, entry)
	}

	return entries, nil
}

func unmarshalDocument(doc *firestore.DocumentSnapshot) (journal.Entry, error) {
	payload, ok := doc.Data()["payload"].([]byte)
	if !ok {
		return journal.Entry{}, fmt.Errorf("conveyorfirestore.Recorder: journal entry payload is malformed")
	}

	var entry journal.Entry
	if err := json.Unmarshal(payload, &entry); err != nil {
		return journal.Entry{}, fmt.Errorf("conveyorfirestore.Recorder: failed to deserialize journal entry, %w", err)
	}

	return entry, nil
}
