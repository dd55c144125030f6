package anomaly

import "errors"

// Sentinel kinds for anomaly detection errors.
var (
	ErrInsufficientData = errors.New("insufficient data for quartiles")
)
