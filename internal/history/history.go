// Package history persists the generation and distribution audit trail in
// SQLite. Every lifecycle step of an artifact appends one event; the log is
// append-only and queried per artifact or by time range.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// Event type names for the artifact lifecycle.
const (
	EventGenerated  = "generated"
	EventRegistered = "registered"
	EventDownloaded = "downloaded"
	EventExpired    = "expired"
	EventSwept      = "swept"
)

// Event is one recorded lifecycle step of an artifact.
type Event struct {
	ID        int64
	Artifact  string
	Type      string
	Timestamp time.Time
	Details   map[string]string
}

// Store is the append-only event log.
type Store interface {
	Append(ctx context.Context, artifact, eventType string, details map[string]string) error
	GetByArtifact(ctx context.Context, artifact string) ([]Event, error)
	GetRange(ctx context.Context, start, end time.Time) ([]Event, error)
	Close() error
}

// SQLiteStore implements Store on a SQLite database.
type SQLiteStore struct {
	db  *sql.DB
	mu  sync.RWMutex
	now func() time.Time
}

// NewSQLiteStore opens the history database at dbPath, creating the schema
// when absent. Use ":memory:" for an ephemeral store.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open history database: %w", err)
	}

	store := &SQLiteStore{db: db, now: time.Now}
	if err := store.initialize(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize history schema: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS artifact_events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		artifact TEXT NOT NULL,
		event_type TEXT NOT NULL,
		timestamp INTEGER NOT NULL,
		details TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_artifact ON artifact_events(artifact);
	CREATE INDEX IF NOT EXISTS idx_event_timestamp ON artifact_events(timestamp);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Append records one event for artifact.
func (s *SQLiteStore) Append(ctx context.Context, artifact, eventType string, details map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var detailsJSON []byte
	if details != nil {
		var err error
		detailsJSON, err = json.Marshal(details)
		if err != nil {
			return fmt.Errorf("marshal event details: %w", err)
		}
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO artifact_events (artifact, event_type, timestamp, details) VALUES (?, ?, ?, ?)",
		artifact, eventType, s.now().Unix(), detailsJSON,
	)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

// GetByArtifact returns all events for one artifact in append order.
func (s *SQLiteStore) GetByArtifact(ctx context.Context, artifact string) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, artifact, event_type, timestamp, details FROM artifact_events WHERE artifact = ? ORDER BY id",
		artifact,
	)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

// GetRange returns events within [start, end] in append order.
func (s *SQLiteStore) GetRange(ctx context.Context, start, end time.Time) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, artifact, event_type, timestamp, details FROM artifact_events WHERE timestamp >= ? AND timestamp <= ? ORDER BY id",
		start.Unix(), end.Unix(),
	)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

func scanEvents(rows *sql.Rows) ([]Event, error) {
	var events []Event
	for rows.Next() {
		var e Event
		var timestampUnix int64
		var detailsJSON []byte

		if err := rows.Scan(&e.ID, &e.Artifact, &e.Type, &timestampUnix, &detailsJSON); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		e.Timestamp = time.Unix(timestampUnix, 0)

		if len(detailsJSON) > 0 {
			if err := json.Unmarshal(detailsJSON, &e.Details); err != nil {
				return nil, fmt.Errorf("unmarshal event details: %w", err)
			}
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return events, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

// NopStore discards events, used when history is disabled.
type NopStore struct{}

func (NopStore) Append(context.Context, string, string, map[string]string) error { return nil }
func (NopStore) GetByArtifact(context.Context, string) ([]Event, error)          { return nil, nil }
func (NopStore) GetRange(context.Context, time.Time, time.Time) ([]Event, error) { return nil, nil }
func (NopStore) Close() error                                                    { return nil }
