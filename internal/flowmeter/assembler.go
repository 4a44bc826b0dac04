// Package flowmeter decodes the line-oriented ASCII output of the
// ultrasonic flowmeter into complete, validated records. The device
// reports a reading as a short burst of lines (timestamp, flow rate,
// velocity) and the assembler accumulates fields across those lines until
// a record is complete.
package flowmeter

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Line patterns in fixed priority order. The velocity line is the terminal
// field of a record.
var (
	timestampPattern = regexp.MustCompile(`^(\d{2}-\d{2}-\d{2} \d{2}:\d{2}:\d{2})`)
	flowPattern      = regexp.MustCompile(`^Flow\s+([\d.]+)\s+l/s`)
	velocityPattern  = regexp.MustCompile(`^Vel:\s+([\d.]+)\s+m/s`)
)

// deviceTimeLayout matches the two-digit-year timestamps the device prints.
const deviceTimeLayout = "06-01-02 15:04:05"

// ParseError reports a line that matched one of the known patterns but
// carried an unparsable value. The line is skipped; assembler state is not
// mutated.
type ParseError struct {
	Line  string
	Field string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse %s from line %q: %v", e.Field, e.Line, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Assembler accumulates fields from successive device lines and emits a
// Record once the timestamp, flow and velocity have all been seen. It is
// single-owner and not safe for concurrent use.
type Assembler struct {
	loc       *time.Location
	timestamp string
	flow      *float64
	velocity  *float64

	now func() time.Time
}

// NewAssembler creates an assembler that interprets device timestamps in
// the given location.
func NewAssembler(loc *time.Location) *Assembler {
	return &Assembler{
		loc: loc,
		now: time.Now,
	}
}

// Consume matches a single device line against the known patterns and
// updates the partial record. It returns a non-nil Record exactly when the
// velocity line completes a record; the accumulator is reset before the
// record is returned, so a downstream failure never causes re-emission.
// Lines matching no pattern are ignored.
func (a *Assembler) Consume(line string) (*Record, error) {
	line = strings.TrimSpace(line)

	if m := timestampPattern.FindStringSubmatch(line); m != nil {
		t, err := time.ParseInLocation(deviceTimeLayout, m[1], a.loc)
		if err != nil {
			return nil, &ParseError{Line: line, Field: "timestamp", Err: err}
		}
		a.timestamp = t.Format(time.RFC3339)
		return nil, nil
	}

	if m := flowPattern.FindStringSubmatch(line); m != nil {
		v, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return nil, &ParseError{Line: line, Field: "flow", Err: err}
		}
		a.flow = &v
		return nil, nil
	}

	if m := velocityPattern.FindStringSubmatch(line); m != nil {
		v, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return nil, &ParseError{Line: line, Field: "velocity", Err: err}
		}
		a.velocity = &v

		if a.timestamp != "" && a.flow != nil {
			rec := &Record{
				DeviceTime: a.timestamp,
				CapturedAt: a.now().UTC(),
				Flow:       *a.flow,
				Velocity:   *a.velocity,
			}
			a.Reset()
			return rec, nil
		}
		// velocity seen before the other fields; keep waiting
		return nil, nil
	}

	return nil, nil
}

// Reset clears the partial record. Called automatically after emission but
// also available to the owner, e.g. when reopening a device session.
func (a *Assembler) Reset() {
	a.timestamp = ""
	a.flow = nil
	a.velocity = nil
}
