// Package transport provides the byte-duplex channel a Galea session
// communicates over.
//
// The Transport interface abstracts a serial line: it can be opened,
// configured with a read timeout and baud rate, written to, and read from.
// Serial implements it over a real serial port via go.bug.st/serial; Pipe
// implements it in memory for tests and device emulation.
package transport

import (
	"errors"
	"time"
)

// Sentinel errors for the transport layer.
var (
	ErrNotOpen = errors.New("transport: port is not open")
	ErrClosed  = errors.New("transport: port is closed")
)

// Transport is a byte-duplex channel to a device.
//
// Recv applies the configured read timeout: a timed-out read returns
// (0, nil) so callers can poll cooperatively. Both directions may be used
// from different goroutines, but each direction must have at most one
// user at a time.
type Transport interface {
	// Open establishes the channel.
	Open() error

	// Configure applies the read timeout and, when baudRate is positive,
	// switches the line to that baud rate. Must be called after Open.
	Configure(readTimeout time.Duration, baudRate int) error

	// Send writes data and returns the number of bytes written.
	Send(data []byte) (int, error)

	// Recv reads up to len(buf) bytes, blocking for at most the configured
	// read timeout before the first byte arrives.
	Recv(buf []byte) (int, error)

	// Close tears the channel down. Close is idempotent.
	Close() error
}
