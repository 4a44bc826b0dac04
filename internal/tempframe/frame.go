// Package tempframe decodes the fixed 8-byte binary frames emitted by the
// dual-channel temperature probe over its half-duplex poll/response link.
// The probe answers a single-byte poll with one or more frames bounded by
// start/end marker bytes; payload values are binary-coded decimal.
package tempframe

import (
	"encoding/binary"
	"errors"
	"fmt"
)

const (
	// FrameLen is the fixed length of every probe response frame.
	FrameLen = 8

	// StartMarker and EndMarker bound a valid frame.
	StartMarker = 0x02
	EndMarker   = 0x03
)

var (
	ErrFrameLength = errors.New("frame length is not 8")
	ErrStartMarker = errors.New("invalid frame start marker")
	ErrEndMarker   = errors.New("invalid frame end marker")
)

// Frame is one validated 8-byte probe response. Frames are transient:
// they are decoded into records and never stored.
type Frame [FrameLen]byte

// ParseFrame validates an 8-byte candidate window. A window whose first
// byte matches but whose last byte does not is a candidate, not a frame;
// the caller keeps scanning.
func ParseFrame(b []byte) (Frame, error) {
	var f Frame
	if len(b) != FrameLen {
		return f, fmt.Errorf("%w: got %d bytes", ErrFrameLength, len(b))
	}
	if b[0] != StartMarker {
		return f, fmt.Errorf("%w: %02X", ErrStartMarker, b[0])
	}
	if b[FrameLen-1] != EndMarker {
		return f, fmt.Errorf("%w: %02X", ErrEndMarker, b[FrameLen-1])
	}
	copy(f[:], b)
	return f, nil
}

// Temperatures decodes the dual-channel reading: two 16-bit big-endian
// magnitudes scaled by ten, in bytes 2-3 and 4-5.
func (f Frame) Temperatures() (t1, t2 float64) {
	t1 = float64(binary.BigEndian.Uint16(f[2:4])) / 10.0
	t2 = float64(binary.BigEndian.Uint16(f[4:6])) / 10.0
	return t1, t2
}

// bcdByte decodes one packed-BCD byte into its two decimal digits.
func bcdByte(b byte) int {
	return int(b>>4)*10 + int(b&0x0F)
}

// DisplayValue decodes the alternate single-value message type: byte 2 is
// a display-mode byte carrying a sign bit (0x04) and the decimal point
// position (low two bits), and bytes 3-6 are four BCD-encoded digits.
// This is a distinct frame interpretation from Temperatures and the two
// must not be conflated.
func (f Frame) DisplayValue() float64 {
	mode := f[2]
	sign := 1.0
	if mode&0x04 != 0 {
		sign = -1.0
	}
	decimalPoint := int(mode & 0x03)

	value := bcdByte(f[3])*1000 + bcdByte(f[4])*100 + bcdByte(f[5])*10 + bcdByte(f[6])

	divisor := 1.0
	for i := 0; i < decimalPoint; i++ {
		divisor *= 10
	}
	return sign * float64(value) / divisor
}

// String renders the frame as spaced hex for diagnostics.
func (f Frame) String() string {
	return fmt.Sprintf("% 02X", f[:])
}
