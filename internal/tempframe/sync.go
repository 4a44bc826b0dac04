package tempframe

// DefaultRetention is the number of trailing bytes kept between poll
// cycles. Large enough to hold the probe's two-frame response, small
// enough that stale candidates cannot dominate a scan.
const DefaultRetention = 32

// Synchronizer owns the retained byte buffer for one probe link and
// locates frames within it. The byte stream has no guaranteed alignment:
// the scan walks every position, and a failed candidate never causes
// positions after it to be skipped, since a spurious start marker can
// appear inside noise before the true frame start. Single-owner; not safe
// for concurrent use.
type Synchronizer struct {
	buf    []byte
	retain int
}

// NewSynchronizer creates a synchronizer retaining up to retain trailing
// bytes between cycles. A non-positive retain selects DefaultRetention.
func NewSynchronizer(retain int) *Synchronizer {
	if retain <= 0 {
		retain = DefaultRetention
	}
	return &Synchronizer{retain: retain}
}

// Append adds newly read bytes to the retained buffer.
func (s *Synchronizer) Append(chunk []byte) {
	s.buf = append(s.buf, chunk...)
}

// Len returns the current retained buffer length.
func (s *Synchronizer) Len() int { return len(s.buf) }

// Bytes returns a copy of the retained buffer for diagnostics.
func (s *Synchronizer) Bytes() []byte {
	out := make([]byte, len(s.buf))
	copy(out, s.buf)
	return out
}

// NextFrame scans left to right for the first valid frame. It returns the
// frame, the count of bytes up to and including it, and whether a frame
// was found. An exhausted buffer is a normal no-data condition, not an
// error.
func (s *Synchronizer) NextFrame() (Frame, int, bool) {
	for i := 0; i+FrameLen <= len(s.buf); i++ {
		if s.buf[i] != StartMarker {
			continue
		}
		f, err := ParseFrame(s.buf[i : i+FrameLen])
		if err != nil {
			continue
		}
		return f, i + FrameLen, true
	}
	return Frame{}, 0, false
}

// Frames returns every valid frame in the retained buffer, in scan order.
// Candidates may overlap.
func (s *Synchronizer) Frames() []Frame {
	var frames []Frame
	for i := 0; i+FrameLen <= len(s.buf); i++ {
		if s.buf[i] != StartMarker {
			continue
		}
		f, err := ParseFrame(s.buf[i : i+FrameLen])
		if err != nil {
			continue
		}
		frames = append(frames, f)
	}
	return frames
}

// SelectUpload returns the frame chosen for upload this cycle: the second
// valid frame in the buffer. The probe echoes/settles on its first
// response and reports the stable reading on the second, so the first
// frame is discarded. With fewer than two valid frames nothing is
// uploaded this cycle.
func (s *Synchronizer) SelectUpload() (Frame, bool) {
	frames := s.Frames()
	if len(frames) < 2 {
		return Frame{}, false
	}
	return frames[1], true
}

// Trim drops all but the trailing retention window, bounding memory and
// re-synchronizing against accumulated stale candidates.
func (s *Synchronizer) Trim() {
	if len(s.buf) <= s.retain {
		return
	}
	trimmed := make([]byte, s.retain)
	copy(trimmed, s.buf[len(s.buf)-s.retain:])
	s.buf = trimmed
}
