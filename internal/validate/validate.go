// Package validate provides range sanity checks applied to decoded sensor
// values before they are handed to a record sink.
package validate

import "fmt"

// Range is an inclusive acceptance interval for a physical reading.
type Range struct {
	Low  float64
	High float64
}

// Contains reports whether v lies within the range, inclusive of both bounds.
func (r Range) Contains(v float64) bool {
	return v >= r.Low && v <= r.High
}

// TemperatureRange is the accepted range for probe readings in degrees C.
// Readings outside this window indicate a mis-decoded frame or a
// disconnected sensor element rather than a plausible measurement.
var TemperatureRange = Range{Low: 10, High: 100}

// RangeError reports a decoded value that fell outside its accepted range.
// The whole record is dropped; values are never partially uploaded.
type RangeError struct {
	Field  string
	Value  float64
	Bounds Range
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("%s value %.2f outside accepted range [%g, %g]",
		e.Field, e.Value, e.Bounds.Low, e.Bounds.High)
}

// Temperatures checks both probe readings against the accepted range. The
// first offending value is reported; acceptance requires both to pass.
func Temperatures(r Range, t1, t2 float64) error {
	if !r.Contains(t1) {
		return &RangeError{Field: "t1", Value: t1, Bounds: r}
	}
	if !r.Contains(t2) {
		return &RangeError{Field: "t2", Value: t2, Bounds: r}
	}
	return nil
}
