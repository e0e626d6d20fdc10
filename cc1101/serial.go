package cc1101

import (
	"go.bug.st/serial"
)

// DefaultBaudRate is the rate the gateway firmware runs its console at.
const DefaultBaudRate = 115200

// SerialLink is a duplex line stream over a local serial port holding the
// radio gateway. It owns the port lifecycle; port enumeration is left to
// the caller.
type SerialLink struct {
	port serial.Port
	name string
}

// OpenSerialLink opens the named serial port as a transfer link. A
// baudRate of 0 uses the gateway default.
func OpenSerialLink(name string, baudRate int) (*SerialLink, error) {
	if baudRate <= 0 {
		baudRate = DefaultBaudRate
	}

	mode := &serial.Mode{
		BaudRate: baudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	port, err := serial.Open(name, mode)
	if err != nil {
		return nil, WrapError(ErrLink, "open "+name, err)
	}

	return &SerialLink{port: port, name: name}, nil
}

// Name returns the port name the link was opened on.
func (l *SerialLink) Name() string {
	return l.name
}

// Read blocks until bytes arrive; no read timeout is set on the port, so
// the receive loop parks here between lines instead of busy-waiting.
func (l *SerialLink) Read(p []byte) (int, error) {
	return l.port.Read(p)
}

func (l *SerialLink) Write(p []byte) (int, error) {
	return l.port.Write(p)
}

// Close closes the underlying port. Any blocked read returns, which ends
// the receive loop.
func (l *SerialLink) Close() error {
	return l.port.Close()
}
