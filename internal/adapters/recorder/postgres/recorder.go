// Package postgres persists the run-event side channel to PostgreSQL.
// Like the sqlite recorder it is a write-only tracing sink.
package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/flowgraph/stategraph/internal/app/dto"
	"github.com/flowgraph/stategraph/pkg/serialization"
)

// Recorder implements services.Handler for PostgreSQL.
type Recorder struct {
	pool       *pgxpool.Pool
	serializer *serialization.Serializer
	tableName  string
}

// NewRecorder creates a PostgreSQL run-event recorder.
func NewRecorder(pool *pgxpool.Pool, serializer *serialization.Serializer) *Recorder {
	return &Recorder{
		pool:       pool,
		serializer: serializer,
		tableName:  "run_events",
	}
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
			snapshot BYTEA,
			failure JSONB,
			created_at TIMESTAMPTZ NOT NULL
		)
	`, r.tableName)
	if _, err := r.pool.Exec(ctx, query); err != nil {
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
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO NOTHING
	`, r.tableName)

	_, err := r.pool.Exec(context.Background(), query,
		ev.ID, ev.RunID, ev.GraphID, ev.NodeID, string(ev.Type), snapshot, failure, ev.Timestamp)
	if err != nil {
		return fmt.Errorf("failed to store run event: %w", err)
	}
	return nil
}
