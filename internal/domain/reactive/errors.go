package reactive

import "errors"

// Sentinel errors for the reactive graph.
var (
	ErrUnknownOutput = errors.New("unknown output")
	ErrInvalidGraph  = errors.New("invalid dependency graph")
)
