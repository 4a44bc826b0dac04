package tempframe

import (
	"errors"
	"time"
)

// Record is one validated probe reading, produced from the selected frame
// of a poll cycle after range validation.
type Record struct {
	// CapturedAt is the wall-clock time (UTC) at which the reading was
	// decoded and emitted.
	CapturedAt time.Time

	// T1 and T2 are the two channel temperatures in degrees C.
	T1 float64
	T2 float64
}

// Sink accepts completed temperature records. A failed accept is reported
// but never corrupts poller state.
type Sink interface {
	RecordTemperature(Record) error
}

// MultiSink fans a record out to every sink, collecting any errors.
// Delivery is at-most-once per sink per record.
type MultiSink []Sink

func (m MultiSink) RecordTemperature(r Record) error {
	var errs []error
	for _, s := range m {
		if err := s.RecordTemperature(r); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
