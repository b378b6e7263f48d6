// Package state defines domain-specific errors
package state

import "errors"

var (
	// ErrUnknownReducerKind indicates a reducer kind with no registered
	// implementation.
	ErrUnknownReducerKind = errors.New("unknown reducer kind")
)
