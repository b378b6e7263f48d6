// Package graph provides the immutable task-graph definition: nodes, edges,
// per-key reducers, and build-time validation.
package graph

import "context"

// StepFunc is the unit of work backing a node. It receives a read-only
// snapshot of the run state taken at dispatch time and returns a partial
// update covering a subset of the node's declared write keys, or an error.
//
// Step functions must be safe to call concurrently with other step functions,
// must not mutate the snapshot, and should observe ctx cancellation at their
// next blocking point when the fail-fast policy is in use.
type StepFunc func(ctx context.Context, snapshot map[string]interface{}) (map[string]interface{}, error)

// Node is one unit of work in the graph. Reads documents which state keys the
// step consumes; Writes bounds the keys its updates may contain. Nodes are
// immutable once the graph is built.
type Node struct {
	ID     string
	Name   string
	Step   StepFunc
	Reads  []string
	Writes []string
}

// Validate ensures node integrity.
func (n *Node) Validate() error {
	if n.ID == "" {
		return ErrInvalidNodeID
	}
	if n.Step == nil {
		return ErrMissingStep
	}
	return nil
}

// WritesKey reports whether key is in the node's declared write set.
func (n *Node) WritesKey(key string) bool {
	for _, w := range n.Writes {
		if w == key {
			return true
		}
	}
	return false
}
