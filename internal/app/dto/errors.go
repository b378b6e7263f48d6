package dto

import "errors"

// Run request errors
var (
	ErrMissingGraphID = errors.New("graph ID is required")
)
