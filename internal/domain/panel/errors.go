package panel

import (
	"errors"
	"fmt"
)

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrDataIntegrity = errors.New("data integrity violation")
	ErrUnknownMetric = errors.New("unknown metric")
)

// IntegrityError describes a dataset defect detected at load time.
// Row is the 1-based data row (header excluded); zero when not row specific.
type IntegrityError struct {
	Row    int
	Column string
	Reason string
}

func (e *IntegrityError) Error() string {
	switch {
	case e.Row > 0 && e.Column != "":
		return fmt.Sprintf("%s: row %d column %s: %s", ErrDataIntegrity, e.Row, e.Column, e.Reason)
	case e.Row > 0:
		return fmt.Sprintf("%s: row %d: %s", ErrDataIntegrity, e.Row, e.Reason)
	default:
		return fmt.Sprintf("%s: %s", ErrDataIntegrity, e.Reason)
	}
}

// Unwrap exposes the sentinel so callers can use errors.Is(err, ErrDataIntegrity).
func (e *IntegrityError) Unwrap() error { return ErrDataIntegrity }
