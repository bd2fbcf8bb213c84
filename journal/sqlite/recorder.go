// Package sqlite provides a journal.Recorder implementation stored in
// a local SQLite database file.
//
// It suits single-process deployments that want a durable audit trail
// without running a database server.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	conveyor "github.com/get-conveyor/go-conveyor"
	"github.com/get-conveyor/go-conveyor/journal"
)

//go:embed schema.sql
var schema string

var _ journal.Recorder = &Recorder{}

// Recorder is a journal.Recorder implementation appending entries to
// a SQLite database.
//
// Open applies the schema, so a fresh database file is usable without
// a separate migration step.
type Recorder struct {
	db *sql.DB
}

// Open opens the journal database at the given path, creating the
// file and schema when missing.
func Open(path string) (*Recorder, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite.Recorder: database path is required")
	}

	dsn := filepath.Clean(path) + "?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite.Recorder: failed to open database, %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite.Recorder: failed to ping database, %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite.Recorder: failed to apply schema, %w", err)
	}

	return &Recorder{db: db}, nil
}

// Close closes the underlying database.
func (r *Recorder) Close() error {
	return r.db.Close()
}

// Record implements the journal.Recorder interface.
func (r *Recorder) Record(ctx context.Context, entry journal.Entry) error {
	metadata, err := marshalMetadata(entry.Metadata)
	if err != nil {
		return fmt.Errorf("sqlite.Recorder: failed to serialize metadata, %w", err)
	}

	result, err := marshalJSON(entry.Result)
	if err != nil {
		return fmt.Errorf("sqlite.Recorder: failed to serialize result, %w", err)
	}

	if _, err := r.db.ExecContext(
		ctx,
		`INSERT INTO journal_entries
		(transaction_id, command, metadata, status, result, error, started_at, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.TransactionID.String(),
		entry.Command,
		metadata,
		string(entry.Status),
		result,
		entry.Error,
		toMillis(entry.StartedAt),
		toMillis(entry.RecordedAt),
	); err != nil {
		return fmt.Errorf("sqlite.Recorder: failed to append journal entry, %w", err)
	}

	return nil
}

// Recent returns up to limit entries recorded for the named command,
// most recent first.
func (r *Recorder) Recent(ctx context.Context, command string, limit int) ([]journal.Entry, error) {
	rows, err := r.db.QueryContext(
		ctx,
		`SELECT transaction_id, command, metadata, status, result, error, started_at, recorded_at
		FROM journal_entries
		WHERE command = ?
		ORDER BY recorded_at DESC, id DESC
		LIMIT ?`,
		command, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite.Recorder: failed to query journal table, %w", err)
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
		return nil, fmt.Errorf("sqlite.Recorder: failed while reading rows, %w", err)
	}

	return entries, nil
}

func scanEntry(rows *sql.Rows) (journal.Entry, error) {
	var (
		entry       journal.Entry
		rawID       string
		rawMetadata sql.NullString
		rawResult   sql.NullString
		startedAt   int64
		recordedAt  int64
	)

	if err := rows.Scan(
		&rawID,
		&entry.Command,
		&rawMetadata,
		&entry.Status,
		&rawResult,
		&entry.Error,
		&startedAt,
		&recordedAt,
	); err != nil {
		return journal.Entry{}, fmt.Errorf("sqlite.Recorder: failed to scan journal row, %w", err)
	}

	id, err := uuid.Parse(rawID)
	if err != nil {
		return journal.Entry{}, fmt.Errorf("sqlite.Recorder: invalid transaction id, %w", err)
	}

	entry.TransactionID = id
	entry.StartedAt = fromMillis(startedAt)
	entry.RecordedAt = fromMillis(recordedAt)

	if rawMetadata.Valid {
		if err := json.Unmarshal([]byte(rawMetadata.String), &entry.Metadata); err != nil {
			return journal.Entry{}, fmt.Errorf("sqlite.Recorder: failed to deserialize metadata, %w", err)
		}
	}

	if rawResult.Valid {
		if err := json.Unmarshal([]byte(rawResult.String), &entry.Result); err != nil {
			return journal.Entry{}, fmt.Errorf("sqlite.Recorder: failed to deserialize result, %w", err)
		}
	}

	return entry, nil
}

func marshalMetadata(metadata conveyor.Metadata) (sql.NullString, error) {
	if metadata == nil {
		return sql.NullString{}, nil
	}

	data, err := json.Marshal(metadata)
	if err != nil {
		return sql.NullString{}, err
	}

	return sql.NullString{String: string(data), Valid: true}, nil
}

func marshalJSON(v any) (sql.NullString, error) {
	if v == nil {
		return sql.NullString{}, nil
	}

	data, err := json.Marshal(v)
	if err != nil {
		return sql.NullString{}, err
	}

	return sql.NullString{String: string(data), Valid: true}, nil
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}
