package panel

import (
	"encoding/json"
	"math"
	"strconv"
)

// Value is an optional float. The zero Value is missing.
type Value struct {
	v  float64
	ok bool
}

// Some returns a present value. NaN and infinities are stored as missing.
func Some(f float64) Value {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Value{}
	}
	return Value{v: f, ok: true}
}

// Missing returns an absent value.
func Missing() Value { return Value{} }

// Get returns the value and whether it is present.
func (v Value) Get() (float64, bool) { return v.v, v.ok }

// IsMissing reports whether the value is absent.
func (v Value) IsMissing() bool { return !v.ok }

// Or returns the value or fallback when missing.
func (v Value) Or(fallback float64) float64 {
	if !v.ok {
		return fallback
	}
	return v.v
}

func (v Value) String() string {
	if !v.ok {
		return "NA"
	}
	return strconv.FormatFloat(v.v, 'g', -1, 64)
}

// MarshalJSON encodes missing values as null.
func (v Value) MarshalJSON() ([]byte, error) {
	if !v.ok {
		return []byte("null"), nil
	}
	return json.Marshal(v.v)
}

// UnmarshalJSON accepts a number or null.
func (v *Value) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*v = Value{}
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	*v = Some(f)
	return nil
}

// ratio divides num by den. Missing operands and a zero denominator yield missing.
func ratio(num, den Value) Value {
	n, ok := num.Get()
	if !ok {
		return Missing()
	}
	d, ok := den.Get()
	if !ok || d == 0 {
		return Missing()
	}
	return Some(n / d)
}
