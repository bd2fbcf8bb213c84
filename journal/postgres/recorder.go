// Package postgres provides a journal.Recorder implementation
// targeted to PostgreSQL databases.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	conveyor "github.com/get-conveyor/go-conveyor"
	"github.com/get-conveyor/go-conveyor/journal"
)

// DefaultTableName is the table a Recorder writes journal entries to.
const DefaultTableName = "journal_entries"

var _ journal.Recorder = &Recorder{}

// Recorder is a journal.Recorder implementation appending entries to
// a PostgreSQL table.
//
// The table is created by RunMigrations, which should run in the
// entrypoint of your application, before the Recorder is used.
type Recorder struct {
	Conn *pgxpool.Pool

	tableName string
}

// NewRecorder returns a Recorder writing through the given connection
// pool.
func NewRecorder(conn *pgxpool.Pool, opts ...Option[*Recorder]) *Recorder {
	recorder := &Recorder{
		Conn:      conn,
		tableName: DefaultTableName,
	}

	for _, opt := range opts {
		opt.apply(recorder)
	}

	return recorder
}

// Record implements the journal.Recorder interface.
func (r *Recorder) Record(ctx context.Context, entry journal.Entry) error {
	metadata, err := marshalMetadata(entry.Metadata)
	if err != nil {
		return fmt.Errorf("postgres.Recorder: failed to serialize metadata, %w", err)
	}

	result, err := marshalJSON(entry.Result)
	if err != nil {
		return fmt.Errorf("postgres.Recorder: failed to serialize result, %w", err)
	}

	if _, err := r.Conn.Exec(
		ctx,
		`INSERT INTO `+r.tableName+`
		(transaction_id, command, metadata, status, result, error, started_at, recorded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		entry.TransactionID.String(),
		entry.Command,
		metadata,
		string(entry.Status),
		result,
		entry.Error,
		entry.StartedAt,
		entry.RecordedAt,
	); err != nil {
		return fmt.Errorf("postgres.Recorder: failed to append journal entry, %w", err)
	}

	return nil
}

// Recent returns up to limit entries recorded for the named command,
// most recent first.
func (r *Recorder) Recent(ctx context.Context, command string, limit int) ([]journal.Entry, error) {
	rows, err := r.Conn.Query(
		ctx,
		`SELECT transaction_id, command, metadata, status, result, error, started_at, recorded_at
		FROM `+r.tableName+`
		WHERE command = $1
		ORDER BY recorded_at DESC, id DESC
		LIMIT $2`,
		command, limit,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("postgres.Recorder: failed to query journal table, %w", err)
	}

	defer rows.Close()

	var entries []journal.Entry

	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}

		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres.Recorder: failed while reading rows, %w", err)
	}

	return entries, nil
}

func scanEntry(rows pgx.Rows) (journal.Entry, error) {
	var (
		entry       journal.Entry
		rawID       string
		rawMetadata []byte
		rawResult   []byte
	)

	if err := rows.Scan(
		&rawID,
		&entry.Command,
		&rawMetadata,
		&entry.Status,
		&rawResult,
		&entry.Error,
		&entry.StartedAt,
		&entry.RecordedAt,
	); err != nil {
		return journal.Entry{}, fmt.Errorf("postgres.Recorder: failed to scan journal row, %w", err)
	}

	id, err := uuid.Parse(rawID)
	if err != nil {
		return journal.Entry{}, fmt.Errorf("postgres.Recorder: invalid transaction id, %w", err)
	}

	entry.TransactionID = id

	if rawMetadata != nil {
		if err := json.Unmarshal(rawMetadata, &entry.Metadata); err != nil {
			return journal.Entry{}, fmt.Errorf("postgres.Recorder: failed to deserialize metadata, %w", err)
		}
	}

	if rawResult != nil {
		if err := json.Unmarshal(rawResult, &entry.Result); err != nil {
			return journal.Entry{}, fmt.Errorf("postgres.Recorder: failed to deserialize result, %w", err)
		}
	}

	return entry, nil
}

func marshalMetadata(metadata conveyor.Metadata) ([]byte, error) {
	if metadata == nil {
		return nil, nil
	}

	return json.Marshal(metadata)
}

func marshalJSON(v any) ([]byte, error) {
	if v == nil {
		return nil, nil
	}

	return json.Marshal(v)
}
