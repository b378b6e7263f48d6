package dto

import "time"

// EventType classifies run lifecycle events.
type EventType string

const (
	EventRunStart  EventType = "run_start"
	EventNodeStart EventType = "node_start"
	EventNodeEnd   EventType = "node_end"
	EventCommit    EventType = "commit"
	EventRunEnd    EventType = "run_end"
)

// Event is one entry in the node-completion side channel. Snapshots carried
// by events are read-only copies; consumers never receive a handle that can
// mutate the run state.
type Event struct {
	ID        string                 `json:"id"`
	RunID     string                 `json:"run_id"`
	GraphID   string                 `json:"graph_id"`
	Type      EventType              `json:"type"`
	NodeID    string                 `json:"node_id,omitempty"`
	Snapshot  map[string]interface{} `json:"snapshot,omitempty"`
	Failure   *NodeFailure           `json:"failure,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}
