package flowmeter

import (
	"errors"
	"testing"
	"time"
)

func bangkok(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Bangkok")
	if err != nil {
		t.Fatalf("failed to load Asia/Bangkok: %v", err)
	}
	return loc
}

func newTestAssembler(t *testing.T) *Assembler {
	t.Helper()
	a := NewAssembler(bangkok(t))
	a.now = func() time.Time {
		return time.Date(2024, time.June, 1, 5, 35, 0, 0, time.UTC)
	}
	return a
}

func TestAssembler_CompleteSequence(t *testing.T) {
	a := newTestAssembler(t)

	lines := []string{
		"24-06-01 12:34:56",
		"Flow  1.234  l/s",
		"Vel:  0.567  m/s",
	}

	var rec *Record
	for i, line := range lines {
		r, err := a.Consume(line)
		if err != nil {
			t.Fatalf("Consume(%q) returned error: %v", line, err)
		}
		if i < len(lines)-1 && r != nil {
			t.Fatalf("record emitted early on line %d", i)
		}
		rec = r
	}

	if rec == nil {
		t.Fatal("expected a record after the velocity line")
	}
	if rec.DeviceTime != "2024-06-01T12:34:56+07:00" {
		t.Errorf("DeviceTime = %q, want 2024-06-01T12:34:56+07:00", rec.DeviceTime)
	}
	if rec.Flow != 1.234 {
		t.Errorf("Flow = %v, want 1.234", rec.Flow)
	}
	if rec.Velocity != 0.567 {
		t.Errorf("Velocity = %v, want 0.567", rec.Velocity)
	}
	if rec.CapturedAt.IsZero() {
		t.Error("CapturedAt should be set at emission")
	}

	// accumulator resets after emission: another velocity line alone must
	// not complete a record
	r, err := a.Consume("Vel:  0.9  m/s")
	if err != nil {
		t.Fatalf("Consume after reset returned error: %v", err)
	}
	if r != nil {
		t.Error("record emitted from empty accumulator")
	}
}

func TestAssembler_ExactlyOneRecordPerCycle(t *testing.T) {
	a := newTestAssembler(t)

	var emitted int
	for _, line := range []string{
		"24-06-01 12:34:56",
		"Flow  1.234  l/s",
		"Vel:  0.567  m/s",
		"24-06-01 12:35:56",
		"Flow  1.300  l/s",
		"Vel:  0.600  m/s",
	} {
		r, err := a.Consume(line)
		if err != nil {
			t.Fatalf("Consume(%q) returned error: %v", line, err)
		}
		if r != nil {
			emitted++
		}
	}
	if emitted != 2 {
		t.Errorf("emitted %d records, want 2", emitted)
	}
}

func TestAssembler_MissingOrReorderedFields(t *testing.T) {
	tests := []struct {
		name  string
		lines []string
	}{
		{"velocity first", []string{"Vel:  0.5  m/s"}},
		{"missing flow", []string{"24-06-01 12:34:56", "Vel:  0.5  m/s"}},
		{"missing timestamp", []string{"Flow  1.0  l/s", "Vel:  0.5  m/s"}},
		{"no terminal field", []string{"24-06-01 12:34:56", "Flow  1.0  l/s"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newTestAssembler(t)
			for _, line := range tt.lines {
				r, err := a.Consume(line)
				if err != nil {
					t.Fatalf("Consume(%q) returned error: %v", line, err)
				}
				if r != nil {
					t.Fatalf("unexpected record from lines %v", tt.lines)
				}
			}
		})
	}
}

func TestAssembler_OutOfOrderStillCompletesOnVelocity(t *testing.T) {
	// flow before timestamp is fine; only velocity is terminal
	a := newTestAssembler(t)
	for _, line := range []string{"Flow  1.0  l/s", "24-06-01 12:34:56"} {
		if _, err := a.Consume(line); err != nil {
			t.Fatal(err)
		}
	}
	r, err := a.Consume("Vel:  0.5  m/s")
	if err != nil {
		t.Fatal(err)
	}
	if r == nil {
		t.Fatal("expected record once all fields are present at the velocity line")
	}
}

func TestAssembler_IgnoresUnmatchedLines(t *testing.T) {
	a := newTestAssembler(t)

	for _, line := range []string{
		"",
		"=== MENU ===",
		"Battery: 87%",
		"Totalizer 1234 m3",
	} {
		r, err := a.Consume(line)
		if err != nil {
			t.Errorf("Consume(%q) returned error: %v", line, err)
		}
		if r != nil {
			t.Errorf("Consume(%q) emitted a record", line)
		}
	}
}

func TestAssembler_MalformedFloat(t *testing.T) {
	a := newTestAssembler(t)

	if _, err := a.Consume("24-06-01 12:34:56"); err != nil {
		t.Fatal(err)
	}

	// matches the flow pattern but is not a number
	_, err := a.Consume("Flow  1.2.3.4  l/s")
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected *ParseError, got %v", err)
	}
	if pe.Field != "flow" {
		t.Errorf("ParseError field = %q, want flow", pe.Field)
	}

	// the bad line must not have mutated state: completing the record
	// still requires a good flow line
	if r, err := a.Consume("Vel:  0.5  m/s"); err != nil || r != nil {
		t.Errorf("record emitted despite missing flow field (r=%v err=%v)", r, err)
	}

	if _, err := a.Consume("Flow  1.5  l/s"); err != nil {
		t.Fatal(err)
	}
	r, err := a.Consume("Vel:  0.5  m/s")
	if err != nil {
		t.Fatal(err)
	}
	if r == nil {
		t.Fatal("expected record after recovery from malformed line")
	}
	if r.Flow != 1.5 {
		t.Errorf("Flow = %v, want 1.5", r.Flow)
	}
}

func TestAssembler_Reset(t *testing.T) {
	a := newTestAssembler(t)
	if _, err := a.Consume("24-06-01 12:34:56"); err != nil {
		t.Fatal(err)
	}
	if _, err := a.Consume("Flow  1.0  l/s"); err != nil {
		t.Fatal(err)
	}
	a.Reset()
	r, err := a.Consume("Vel:  0.5  m/s")
	if err != nil {
		t.Fatal(err)
	}
	if r != nil {
		t.Error("record emitted after explicit Reset")
	}
}
