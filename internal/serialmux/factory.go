package serialmux

import (
	"go.bug.st/serial"
)

// NewRealSerialMux creates a SerialMux instance backed by a real serial
// port at the given path using the provided serial options.
func NewRealSerialMux(path string, opts PortOptions) (*SerialMux[serial.Port], error) {
	port, err := OpenPort(path, opts)
	if err != nil {
		return nil, err
	}

	return NewSerialMux[serial.Port](port), nil
}

// OpenPort opens a raw serial port at the given path. Used directly for
// half-duplex poll/response devices that do not need line multiplexing.
func OpenPort(path string, opts PortOptions) (serial.Port, error) {
	mode, err := opts.SerialMode()
	if err != nil {
		return nil, err
	}

	return serial.Open(path, mode)
}
