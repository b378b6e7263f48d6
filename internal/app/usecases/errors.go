package usecases

import (
	"errors"
	"fmt"
	"strings"
)

// ErrDeadlock indicates the scheduler made no progress while nodes remained
// unresolved. A validated graph cannot reach this state; it marks an engine
// bug, not a run outcome.
var ErrDeadlock = errors.New("scheduler deadlock: unresolved nodes with none ready or running")

// ContractViolationError reports an update writing keys outside the node's
// declared write set. It is treated as a node failure under the active
// failure policy.
type ContractViolationError struct {
	NodeID string
	Keys   []string
}

func (e *ContractViolationError) Error() string {
	return fmt.Sprintf("node %q wrote undeclared keys: %s", e.NodeID, strings.Join(e.Keys, ", "))
}
