// Package graph provides edge definitions
package graph

// Edge is a directed dependency: Target may run only after Source's update
// has been committed.
type Edge struct {
	Source string
	Target string
}

// Validate ensures edge integrity.
func (e *Edge) Validate() error {
	if e.Source == "" {
		return ErrInvalidEdgeSource
	}
	if e.Target == "" {
		return ErrInvalidEdgeTarget
	}
	if e.Source == e.Target {
		return ErrSelfLoop
	}
	return nil
}
