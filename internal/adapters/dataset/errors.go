package dataset

import "errors"

// Sentinel kinds for dataset errors. Content defects are reported as
// *panel.IntegrityError instead.
var (
	ErrUnsupportedFormat = errors.New("unsupported dataset format")
	ErrRead              = errors.New("dataset read failed")
)
