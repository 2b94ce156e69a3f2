package galea

import "errors"

// Sentinel errors for the Galea session lifecycle and protocol.
var (
	// Configuration errors, rejected before any I/O.
	ErrPortNotSpecified = errors.New("galea: serial port is not specified")

	// Lifecycle-misuse errors.
	ErrNotPrepared         = errors.New("galea: session is not prepared")
	ErrAlreadyStreaming    = errors.New("galea: streaming thread already running")
	ErrNotStreaming        = errors.New("galea: streaming thread is not running")
	ErrProbeWhileStreaming = errors.New("galea: cannot run clock probe while streaming")

	// Transport and protocol errors.
	ErrWriteFailed      = errors.New("galea: short write to device")
	ErrSyncTimeout      = errors.New("galea: no valid frame received before sync timeout")
	ErrDrainCapExceeded = errors.New("galea: stop command sent but streaming is still running")
)
