package graph

import (
	"github.com/flowgraph/stategraph/internal/core/state"
)

// Graph is the immutable, validated task-graph definition. Built once via
// Builder, reused across any number of runs, never mutated during execution.
// All accessors are safe for concurrent use.
type Graph struct {
	name     string
	nodes    map[string]*Node
	order    []string
	edges    []Edge
	kinds    map[string]state.ReducerKind
	reducers map[string]state.Reducer
	succ     map[string][]string
	pred     map[string][]string
	indegree map[string]int
	entries  []string
}

// Name returns the graph name.
func (g *Graph) Name() string { return g.name }

// Len returns the number of nodes.
func (g *Graph) Len() int { return len(g.nodes) }

// Node returns the node with the given ID, or nil.
func (g *Graph) Node(id string) *Node { return g.nodes[id] }

// NodeIDs returns node IDs in declaration order.
func (g *Graph) NodeIDs() []string {
	return append([]string(nil), g.order...)
}

// Edges returns a copy of the edge set.
func (g *Graph) Edges() []Edge {
	return append([]Edge(nil), g.edges...)
}

// Entries returns the IDs of nodes with no predecessors, in declaration
// order.
func (g *Graph) Entries() []string {
	return append([]string(nil), g.entries...)
}

// Successors returns the IDs of nodes depending on id. The returned slice is
// shared and must not be mutated.
func (g *Graph) Successors(id string) []string { return g.succ[id] }

// Predecessors returns the IDs of nodes id depends on. The returned slice is
// shared and must not be mutated.
func (g *Graph) Predecessors(id string) []string { return g.pred[id] }

// InDegrees returns a fresh copy of the per-node unresolved-dependency
// counts, suitable as run-local scheduling bookkeeping.
func (g *Graph) InDegrees() map[string]int {
	counts := make(map[string]int, len(g.indegree))
	for id, n := range g.indegree {
		counts[id] = n
	}
	return counts
}

// ReducerKind returns the registered merge policy for a key and whether one
// was registered.
func (g *Graph) ReducerKind(key string) (state.ReducerKind, bool) {
	kind, ok := g.kinds[key]
	return kind, ok
}

// NewStore creates a state store for one run, seeded with the initial state
// and wired to this graph's reducers.
func (g *Graph) NewStore(initial map[string]interface{}) *state.Store {
	return state.NewStore(initial, g.reducers)
}
