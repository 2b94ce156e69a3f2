package transport

import (
	"fmt"
	"time"

	"go.bug.st/serial"
)

// initialBaudRate is the rate the port is opened at before Configure
// switches to the device's custom rate.
const initialBaudRate = 115200

// Serial is a Transport over a physical serial port.
type Serial struct {
	name string
	mode *serial.Mode
	port serial.Port
}

var _ Transport = (*Serial)(nil)

// NewSerial creates a serial Transport for the named port
// (e.g. "/dev/ttyUSB0" or "COM3"). The port is not opened until Open.
func NewSerial(name string) *Serial {
	return &Serial{
		name: name,
		mode: &serial.Mode{
			BaudRate: initialBaudRate,
			DataBits: 8,
			Parity:   serial.NoParity,
			StopBits: serial.OneStopBit,
		},
	}
}

func (s *Serial) Open() error {
	port, err := serial.Open(s.name, s.mode)
	if err != nil {
		return fmt.Errorf("transport: open %s: %w", s.name, err)
	}
	s.port = port

	return nil
}

func (s *Serial) Configure(readTimeout time.Duration, baudRate int) error {
	if s.port == nil {
		return ErrNotOpen
	}

	if baudRate > 0 {
		s.mode.BaudRate = baudRate
		if err := s.port.SetMode(s.mode); err != nil {
			return fmt.Errorf("transport: set baud rate %d: %w", baudRate, err)
		}
	}

	if err := s.port.SetReadTimeout(readTimeout); err != nil {
		return fmt.Errorf("transport: set read timeout %v: %w", readTimeout, err)
	}

	return nil
}

func (s *Serial) Send(data []byte) (int, error) {
	if s.port == nil {
		return 0, ErrNotOpen
	}

	return s.port.Write(data)
}

// Recv reads from the port. With a read timeout configured, go.bug.st/serial
// returns (0, nil) when the timeout expires with no data, which matches the
// Transport contract.
func (s *Serial) Recv(buf []byte) (int, error) {
	if s.port == nil {
		return 0, ErrNotOpen
	}

	return s.port.Read(buf)
}

func (s *Serial) Close() error {
	if s.port == nil {
		return nil
	}

	err := s.port.Close()
	s.port = nil
	if err != nil {
		return fmt.Errorf("transport: close %s: %w", s.name, err)
	}

	return nil
}
