package flowmeter

import (
	"errors"
	"fmt"
	"time"

	"github.com/Humphreydotbit-IoT/Flow-Rate-and-Temp/internal/monitoring"
)

// Collector wires an Assembler to a record sink. It owns the assembler's
// state; one collector per device session.
type Collector struct {
	assembler *Assembler
	sink      Sink
}

// NewCollector creates a collector that interprets device timestamps in
// the given location and forwards completed records to sink.
func NewCollector(loc *time.Location, sink Sink) *Collector {
	return &Collector{
		assembler: NewAssembler(loc),
		sink:      sink,
	}
}

// HandleLine feeds one device line through the assembler and, when a
// record completes, hands it to the sink. Parse failures on a known
// pattern are logged and skipped; a sink failure is returned but the
// record is not retried, preserving at-most-once emission.
func (c *Collector) HandleLine(line string) error {
	rec, err := c.assembler.Consume(line)
	if err != nil {
		var pe *ParseError
		if errors.As(err, &pe) {
			monitoring.Logf("skipping malformed line: %v", pe)
			return nil
		}
		return err
	}
	if rec == nil {
		return nil
	}

	if err := c.sink.RecordFlow(*rec); err != nil {
		return fmt.Errorf("failed to record flow observation: %w", err)
	}
	monitoring.Logf("Recorded flow: %s | Flow: %.3f l/s | Vel: %.3f m/s",
		rec.CapturedAt.Format("2006-01-02 15:04:05"), rec.Flow, rec.Velocity)
	return nil
}

// Reset clears any partially accumulated record, e.g. after the device
// session is reopened.
func (c *Collector) Reset() {
	c.assembler.Reset()
}
