package flowmeter

import (
	"errors"
	"time"
)

// Record is a fully assembled flowmeter reading. A Record only exists once
// all three fields have been parsed from the device's line output; partial
// state lives inside the Assembler and is never exposed.
type Record struct {
	// DeviceTime is the timestamp reported by the device's own clock,
	// parsed from its timestamp line and rendered as an ISO-8601 string in
	// the device timezone.
	DeviceTime string

	// CapturedAt is the wall-clock time (UTC) at which the record was
	// emitted by the assembler. Sinks store this as the record timestamp.
	CapturedAt time.Time

	// Flow is the volumetric flow rate in litres per second.
	Flow float64

	// Velocity is the flow velocity in metres per second.
	Velocity float64
}

// Sink accepts completed flow records. A failed accept is reported by the
// caller but never corrupts assembler state.
type Sink interface {
	RecordFlow(Record) error
}

// MultiSink fans a record out to every sink, collecting any errors.
// Delivery is at-most-once per sink per record.
type MultiSink []Sink

func (m MultiSink) RecordFlow(r Record) error {
	var errs []error
	for _, s := range m {
		if err := s.RecordFlow(r); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
