package sqlite

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowgraph/stategraph/internal/app/dto"
	"github.com/flowgraph/stategraph/pkg/serialization"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func newTestRecorder(t *testing.T) *Recorder {
	t.Helper()
	r := NewRecorder(openTestDB(t), serialization.NewSerializer(serialization.Config{
		Codec: serialization.JSONCodec{},
	}))
	require.NoError(t, r.Init(context.Background()))
	return r
}

func TestRecorderStoresEvents(t *testing.T) {
	r := newTestRecorder(t)
	ctx := context.Background()

	events := []dto.Event{
		{ID: "e1", RunID: "run-1", GraphID: "g", Type: dto.EventRunStart, Timestamp: time.Now()},
		{
			ID: "e2", RunID: "run-1", GraphID: "g", Type: dto.EventCommit, NodeID: "step",
			Snapshot:  map[string]interface{}{"draft": "v1"},
			Timestamp: time.Now(),
		},
		{
			ID: "e3", RunID: "run-1", GraphID: "g", Type: dto.EventNodeEnd, NodeID: "step",
			Failure:   &dto.NodeFailure{NodeID: "step", Kind: dto.FailureKindStep, Err: "boom"},
			Timestamp: time.Now(),
		},
		{ID: "e4", RunID: "run-2", GraphID: "g", Type: dto.EventRunStart, Timestamp: time.Now()},
	}
	for _, ev := range events {
		require.NoError(t, r.HandleEvent(ev))
	}

	n, err := r.Count(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	n, err = r.Count(ctx, "run-2")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = r.Count(ctx, "unknown")
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestRecorderDuplicateIDRejected(t *testing.T) {
	r := newTestRecorder(t)
	ev := dto.Event{ID: "dup", RunID: "run-1", GraphID: "g", Type: dto.EventRunStart, Timestamp: time.Now()}

	require.NoError(t, r.HandleEvent(ev))
	assert.Error(t, r.HandleEvent(ev))
}

func TestRecorderWithTableName(t *testing.T) {
	r := newTestRecorder(t)

	r.WithTableName("custom_events")
	assert.Equal(t, "custom_events", r.tableName)

	// Unsafe identifiers are ignored.
	r.WithTableName("drop table;--")
	assert.Equal(t, "custom_events", r.tableName)
	r.WithTableName("")
	assert.Equal(t, "custom_events", r.tableName)
}

func TestRecorderSnapshotRoundTrip(t *testing.T) {
	db := openTestDB(t)
	serializer := serialization.NewSerializer(serialization.Config{Codec: serialization.JSONCodec{}})
	r := NewRecorder(db, serializer)
	require.NoError(t, r.Init(context.Background()))

	snapshot := map[string]interface{}{"topic": "contracts", "count": float64(2)}
	require.NoError(t, r.HandleEvent(dto.Event{
		ID: "e1", RunID: "run-1", GraphID: "g", Type: dto.EventCommit,
		Snapshot: snapshot, Timestamp: time.Now(),
	}))

	var blob []byte
	err := db.QueryRow(`SELECT snapshot FROM run_events WHERE id = ?`, "e1").Scan(&blob)
	require.NoError(t, err)

	var got map[string]interface{}
	require.NoError(t, serializer.Deserialize(blob, &got))
	assert.Equal(t, snapshot, got)
}
