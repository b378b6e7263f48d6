package state

import (
	"sync"
)

// Store owns the canonical state of one run. Commits are serialized through a
// single mutex, so reducer functions only ever see sequential composition;
// step functions never touch the state directly.
type Store struct {
	mu       sync.Mutex
	values   map[string]interface{}
	reducers map[string]Reducer
	fallback Reducer
	commits  uint64
}

// NewStore creates a store seeded from the initial state. reducers maps state
// keys to their registered merge policy; keys without an entry fall back to
// Overwrite.
func NewStore(initial map[string]interface{}, reducers map[string]Reducer) *Store {
	values := make(map[string]interface{}, len(initial))
	for k, v := range initial {
		values[k] = v
	}
	if reducers == nil {
		reducers = make(map[string]Reducer)
	}
	return &Store{
		values:   values,
		reducers: reducers,
		fallback: OverwriteReducer{},
	}
}

// Commit applies one node's update through each key's registered reducer,
// atomically with respect to other Commit and Snapshot calls, and returns a
// snapshot of the resulting state.
func (s *Store) Commit(update map[string]interface{}) map[string]interface{} {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, incoming := range update {
		reducer, ok := s.reducers[key]
		if !ok {
			reducer = s.fallback
		}
		current, exists := s.values[key]
		if !exists {
			current = nil
		}
		s.values[key] = reducer.Reduce(current, incoming)
	}
	s.commits++
	return s.snapshotLocked()
}

// Snapshot returns a consistent copy of all committed keys at call time.
// Values are shared with the store; callers must treat them as read-only.
func (s *Store) Snapshot() map[string]interface{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Commits reports how many updates have been applied.
func (s *Store) Commits() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commits
}

func (s *Store) snapshotLocked() map[string]interface{} {
	snapshot := make(map[string]interface{}, len(s.values))
	for k, v := range s.values {
		snapshot[k] = v
	}
	return snapshot
}
