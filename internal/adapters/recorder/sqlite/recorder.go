// Package sqlite persists the run-event side channel to a SQLite database.
// The recorder is a write-only tracing sink: nothing in the engine reads
// these rows back.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/flowgraph/stategraph/internal/app/dto"
	"github.com/flowgraph/stategraph/pkg/serialization"
)

// Recorder implements services.Handler for SQLite.
type Recorder struct {
	db         *sql.DB
	serializer *serialization.Serializer
	tableName  string
}

// NewRecorder creates a SQLite run-event recorder.
func NewRecorder(db *sql.DB, serializer *serialization.Serializer) *Recorder {
	return &Recorder{
		db:         db,
		serializer: serializer,
		tableName:  "run_events",
	}
}

// WithTableName overrides the default table name. Only alphanumeric and
// underscore are permitted to prevent SQL injection via identifiers.
func (r *Recorder) WithTableName(name string) *Recorder {
	if isSafeIdent(name) {
		r.tableName = name
	}
	return r
}

func isSafeIdent(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '_' {
			continue
		}
		return false
	}
	return true
}

// Init creates the events table if it does not exist.
func (r *Recorder) Init(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			run_id TEXT NOT NULL,
			graph_id TEXT NOT NULL,
			node_id TEXT,
			event_type TEXT NOT NULL,
			snapshot BLOB,
			failure TEXT,
			created_at TIMESTAMP NOT NULL
		)
	`, r.tableName)
	if _, err := r.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create %s table: %w", r.tableName, err)
	}
	return nil
}

// HandleEvent stores one run event.
func (r *Recorder) HandleEvent(ev dto.Event) error {
	var snapshot []byte
	if ev.Snapshot != nil {
		data, err := r.serializer.Serialize(ev.Snapshot)
		if err != nil {
			return fmt.Errorf("failed to serialize snapshot: %w", err)
		}
		snapshot = data
	}

	var failure []byte
	if ev.Failure != nil {
		data, err := json.Marshal(ev.Failure)
		if err != nil {
			return fmt.Errorf("failed to serialize failure: %w", err)
		}
		failure = data
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, run_id, graph_id, node_id, event_type, snapshot, failure, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, r.tableName)

	_, err := r.db.Exec(query,
		ev.ID, ev.RunID, ev.GraphID, ev.NodeID, string(ev.Type), snapshot, failure, ev.Timestamp)
	if err != nil {
		return fmt.Errorf("failed to store run event: %w", err)
	}
	return nil
}

// Count returns the number of recorded events for a run, for tests and
// operational checks.
func (r *Recorder) Count(ctx context.Context, runID string) (int, error) {
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE run_id = ?`, r.tableName)
	var n int
	if err := r.db.QueryRowContext(ctx, query, runID).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count run events: %w", err)
	}
	return n, nil
}
