package tempframe

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/Humphreydotbit-IoT/Flow-Rate-and-Temp/internal/monitoring"
	"github.com/Humphreydotbit-IoT/Flow-Rate-and-Temp/internal/validate"
)

// ErrDeviceUnresponsive is returned by PollOnce after too many consecutive
// empty reads. The operator should check the probe connection.
var ErrDeviceUnresponsive = errors.New("too many consecutive empty reads from probe")

// PollerConfig holds the tunable parameters of the poll cycle. The zero
// value selects the probe's documented defaults.
type PollerConfig struct {
	// Command is the single-byte poll command written each cycle.
	Command byte

	// Interval is the delay between poll cycles.
	Interval time.Duration

	// SettleDelay is the wait between sending the poll command and
	// reading the response.
	SettleDelay time.Duration

	// ChunkSize is the maximum number of bytes read per cycle.
	ChunkSize int

	// Retention is the trailing buffer window kept between cycles.
	Retention int

	// Accept is the inclusive range both channel temperatures must lie in.
	Accept validate.Range

	// MaxEmptyReads is the number of consecutive empty reads tolerated
	// before PollOnce reports ErrDeviceUnresponsive.
	MaxEmptyReads int
}

func (c PollerConfig) withDefaults() PollerConfig {
	if c.Command == 0 {
		c.Command = 'A'
	}
	if c.Interval <= 0 {
		c.Interval = 15 * time.Minute
	}
	if c.SettleDelay <= 0 {
		c.SettleDelay = 200 * time.Millisecond
	}
	if c.ChunkSize <= 0 {
		c.ChunkSize = 32
	}
	if c.Accept == (validate.Range{}) {
		c.Accept = validate.TemperatureRange
	}
	if c.MaxEmptyReads <= 0 {
		c.MaxEmptyReads = 5
	}
	return c
}

// Poller drives the half-duplex poll/response cycle against the probe:
// send the poll command, wait for the device to settle, read a chunk,
// scan the retained buffer, upload the selected frame, trim. The poller
// is the single owner of its synchronizer; decode work is synchronous.
type Poller struct {
	port io.ReadWriter
	sink Sink
	cfg  PollerConfig
	sync *Synchronizer

	emptyReads int
	lastFrame  *Frame

	now   func() time.Time
	sleep func(time.Duration)
}

// NewPoller creates a poller over the given half-duplex link. Completed,
// validated records are handed to sink.
func NewPoller(port io.ReadWriter, sink Sink, cfg PollerConfig) *Poller {
	cfg = cfg.withDefaults()
	return &Poller{
		port:  port,
		sink:  sink,
		cfg:   cfg,
		sync:  NewSynchronizer(cfg.Retention),
		now:   time.Now,
		sleep: time.Sleep,
	}
}

// PollOnce performs exactly one poll cycle. Structural and range failures
// are recoverable and leave the poller ready for the next cycle; an I/O
// failure is returned without corrupting the retained buffer. The cycle
// uploads nothing unless at least two valid frames are present in the
// buffer, per the probe's echo-then-settle behaviour.
func (p *Poller) PollOnce() error {
	if _, err := p.port.Write([]byte{p.cfg.Command}); err != nil {
		return fmt.Errorf("failed to write poll command %q: %w", p.cfg.Command, err)
	}
	p.sleep(p.cfg.SettleDelay)

	chunk := make([]byte, p.cfg.ChunkSize)
	n, err := p.port.Read(chunk)
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to read probe response: %w", err)
	}
	if n == 0 {
		p.emptyReads++
		monitoring.Logf("no data received from probe (%d consecutive)", p.emptyReads)
		if p.emptyReads >= p.cfg.MaxEmptyReads {
			if p.lastFrame != nil {
				monitoring.Logf("last valid frame was: %s", *p.lastFrame)
			}
			return ErrDeviceUnresponsive
		}
		return nil
	}
	p.emptyReads = 0

	p.sync.Append(chunk[:n])
	defer p.sync.Trim()

	frame, ok := p.sync.SelectUpload()
	if !ok {
		return nil
	}
	p.lastFrame = &frame

	t1, t2 := frame.Temperatures()
	if err := validate.Temperatures(p.cfg.Accept, t1, t2); err != nil {
		monitoring.Logf("skipped upload: %v", err)
		return nil
	}

	rec := Record{CapturedAt: p.now().UTC(), T1: t1, T2: t2}
	if err := p.sink.RecordTemperature(rec); err != nil {
		monitoring.Logf("failed to record temperature: %v", err)
		return nil
	}
	monitoring.Logf("Recorded temperature: T1 %.2f C, T2 %.2f C", t1, t2)
	return nil
}

// Run polls until the context is cancelled or the device stops
// responding. Recoverable cycle errors are logged and the loop continues;
// only ErrDeviceUnresponsive ends the run.
func (p *Poller) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.cfg.Interval)
	defer ticker.Stop()

	for {
		if err := p.PollOnce(); err != nil {
			if errors.Is(err, ErrDeviceUnresponsive) {
				return err
			}
			monitoring.Logf("poll cycle failed: %v", err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// LastFrame returns the most recently selected valid frame, if any.
// Useful for operator diagnostics when the device goes quiet.
func (p *Poller) LastFrame() (Frame, bool) {
	if p.lastFrame == nil {
		return Frame{}, false
	}
	return *p.lastFrame, true
}
