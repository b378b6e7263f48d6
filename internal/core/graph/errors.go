// Package graph defines domain-specific errors
package graph

import (
	"errors"
	"fmt"
	"strings"

	"github.com/flowgraph/stategraph/internal/core/state"
)

// Sentinel errors raised during graph construction.
var (
	ErrInvalidGraphName  = errors.New("invalid graph name")
	ErrEmptyGraph        = errors.New("graph has no nodes")
	ErrGraphNotFound     = errors.New("graph not found")
	ErrInvalidNodeID     = errors.New("invalid node ID")
	ErrMissingStep       = errors.New("node has no step function")
	ErrDuplicateNode     = errors.New("duplicate node ID")
	ErrUnknownNode       = errors.New("edge references unknown node")
	ErrDuplicateEdge     = errors.New("duplicate edge")
	ErrSelfLoop          = errors.New("self-loops are not allowed")
	ErrInvalidEdgeSource = errors.New("invalid edge source")
	ErrInvalidEdgeTarget = errors.New("invalid edge target")
)

// CycleError reports a dependency cycle found at Build. Nodes holds one
// offending cycle in walk order.
type CycleError struct {
	Nodes []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("dependency cycle: %s", strings.Join(e.Nodes, " -> "))
}

// ConcurrentWriteConflictError reports a state key writable by two or more
// nodes with no ordering between them under a non-commutative reducer.
type ConcurrentWriteConflictError struct {
	Key   string
	Nodes []string
}

func (e *ConcurrentWriteConflictError) Error() string {
	return fmt.Sprintf("concurrent write conflict on key %q by nodes %s", e.Key, strings.Join(e.Nodes, ", "))
}

// UnregisteredReducerError reports a reducer kind that has no
// implementation.
type UnregisteredReducerError struct {
	Key  string
	Kind state.ReducerKind
}

func (e *UnregisteredReducerError) Error() string {
	return fmt.Sprintf("unregistered reducer kind %q for key %q", e.Kind, e.Key)
}
