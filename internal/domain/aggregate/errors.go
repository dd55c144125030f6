package aggregate

import "errors"

// Sentinel kinds for aggregation errors.
var (
	ErrNoData = errors.New("no non-missing observations")
)
