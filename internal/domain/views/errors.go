package views

import "errors"

// Sentinel kinds surfaced inside unavailable artifacts.
var (
	ErrEmptyResult = errors.New("filter produced no rows")
)
