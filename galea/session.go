package galea

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/puzpuzpuz/xsync/v3"

	"github.com/openbci/go-galea/internal/task"
	"github.com/openbci/go-galea/internal/util"
	"github.com/openbci/go-galea/logger"
	"github.com/openbci/go-galea/sink"
	"github.com/openbci/go-galea/transport"
)

// Device command strings, sent over the transport as newline-terminated
// lines.
const (
	// CmdClockProbe is the reserved Configure command that runs a clock
	// probe instead of being forwarded to the board.
	CmdClockProbe = "calc_time"

	cmdDefaultSettings = "o"  // demo mode with AGND
	cmdSampleRate      = "~6" // default sampling rate
	cmdStartStream     = "b"
	cmdStopStream      = "s"
)

// Session manages one Galea board connection: it owns the transport, the
// channel map, and the clock synchronizer, and coordinates the single
// acquisition goroutine with the caller.
//
// Lifecycle: NewSession -> Prepare -> Start -> Stop -> Release. All
// methods are safe for use from one control goroutine; the transport's
// receive direction belongs exclusively to the acquisition loop while
// streaming.
type Session struct {
	cfg    *Config
	logger logger.Logger

	// mu serializes lifecycle transitions.
	mu    sync.Mutex
	state atomic.Uint32
	tr    transport.Transport

	clock     *ClockSync
	decoder   *Decoder
	gate      *gate
	keepAlive atomic.Bool
	taskMgr   *task.Manager

	out       sink.Sink
	streamers *xsync.MapOf[string, sink.Sink]
}

// NewSession creates a Session from cfg. The session starts in
// CreatedState; no I/O happens until Prepare.
//
// When the config carries no custom sink, a ring buffer of the configured
// capacity becomes the primary sink, reachable via Buffer.
func NewSession(ctx context.Context, cfg *Config) (*Session, error) {
	if cfg == nil {
		return nil, errors.New("galea: config is nil")
	}

	out := cfg.out
	if out == nil {
		out = sink.NewRingBuffer(cfg.bufferSize)
	}

	s := &Session{
		cfg:       cfg,
		logger:    cfg.logger,
		clock:     NewClockSync(),
		decoder:   NewDecoder(cfg.layout, cfg.channels),
		gate:      newGate(),
		taskMgr:   task.NewManager(ctx, cfg.logger),
		out:       out,
		streamers: xsync.NewMapOf[string, sink.Sink](),
	}
	s.state.Store(uint32(CreatedState))

	return s, nil
}

// State returns the current lifecycle state.
func (s *Session) State() SessionState {
	return SessionState(s.state.Load())
}

// Output returns the primary sink decoded rows are pushed to.
func (s *Session) Output() sink.Sink { return s.out }

// Buffer returns the default ring buffer, or nil when a custom primary
// sink was configured.
func (s *Session) Buffer() *sink.RingBuffer {
	rb, _ := s.out.(*sink.RingBuffer)
	return rb
}

// AttachStreamer registers an additional named sink that mirrors every
// decoded row. Streamer failures are logged and tolerated; they never
// stall acquisition.
func (s *Session) AttachStreamer(name string, out sink.Sink) {
	s.streamers.Store(name, out)
}

// DetachStreamer removes a previously attached streamer.
func (s *Session) DetachStreamer(name string) {
	s.streamers.Delete(name)
}

// Prepare opens and configures the transport and applies the board's
// initial settings. It is idempotent: preparing an already-prepared
// session succeeds without reopening the transport. Any failure leaves
// the session unprepared with the transport released.
func (s *Session) Prepare() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.State().IsCreated() {
		s.logger.Info("galea: session is already prepared")
		return nil
	}

	tr := s.cfg.transport
	if tr == nil {
		if s.cfg.port == "" {
			return ErrPortNotSpecified
		}
		tr = transport.NewSerial(s.cfg.port)
	}

	if err := tr.Open(); err != nil {
		return fmt.Errorf("galea: open transport: %w", err)
	}

	if err := tr.Configure(s.cfg.timeout, s.cfg.baudRate); err != nil {
		_ = tr.Close()
		return fmt.Errorf("galea: configure transport: %w", err)
	}

	s.logger.Debug("galea: transport configured",
		"port", s.cfg.port,
		"timeout", s.cfg.timeout,
		"baudRate", s.cfg.baudRate)

	s.tr = tr

	// Mandatory initial device settings.
	for _, cmd := range []string{cmdDefaultSettings, cmdSampleRate} {
		if err := s.writeCommand(cmd); err != nil {
			_ = tr.Close()
			s.tr = nil

			return fmt.Errorf("galea: apply initial setting %q: %w", cmd, err)
		}
	}

	s.setState(PreparedState)

	return nil
}

// Configure forwards an opaque command string to the board, appending the
// line terminator. The reserved CmdClockProbe command runs a clock probe
// instead and returns its diagnostics as a JSON string; it is rejected
// while streaming.
func (s *Session) Configure(cmd string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.tr == nil {
		return "", ErrNotPrepared
	}

	if cmd == CmdClockProbe {
		if s.State().IsStreaming() {
			return "", ErrProbeWhileStreaming
		}

		res, err := s.probe()
		if err != nil {
			return "", err
		}

		data, err := json.Marshal(res)
		if err != nil {
			return "", fmt.Errorf("galea: encode probe result: %w", err)
		}

		return string(data), nil
	}

	s.logger.Debug("galea: config command", "command", cmd)

	return "", s.writeCommand(cmd)
}

// Start begins streaming: it refreshes the clock estimates with three
// sequential probes, sends the start command, spawns the acquisition
// loop, and waits up to the configured sync wait for the first valid
// frame. A timeout tears the loop down and returns ErrSyncTimeout.
func (s *Session) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case s.State().IsStreaming():
		return ErrAlreadyStreaming
	case s.State().IsCreated():
		return ErrNotPrepared
	}

	// Refresh the round-trip estimate before streaming; the last probe's
	// half-RTT wins.
	for i := 0; i < 3; i++ {
		if _, err := s.probe(); err != nil {
			return err
		}
	}
	s.clock.Reset()

	if err := s.writeCommand(cmdStartStream); err != nil {
		return err
	}

	s.gate.Reset()
	s.keepAlive.Store(true)

	st := newLoopState(s.cfg.layout)
	if err := s.taskMgr.Start("acquisition", func() bool { return s.acquireIteration(st) }); err != nil {
		s.keepAlive.Store(false)
		return fmt.Errorf("galea: start acquisition loop: %w", err)
	}

	if err := s.gate.Wait(s.cfg.syncWait); err != nil {
		s.logger.Error("galea: no data received, stopping acquisition", "wait", s.cfg.syncWait)
		if stopErr := s.stopStreamingLocked(); stopErr != nil {
			s.logger.Warn("galea: cleanup after sync timeout", "error", stopErr)
		}

		return err
	}

	s.setState(StreamingState)
	s.logger.Debug("galea: streaming started")

	return nil
}

// Stop ends streaming: it clears the run flag, joins the acquisition
// loop, sends the stop command, and drains residual bytes. Returns
// ErrNotStreaming when no loop is running.
func (s *Session) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.State().IsStreaming() {
		return ErrNotStreaming
	}

	err := s.stopStreamingLocked()
	s.setState(PreparedState)

	return err
}

// Release stops streaming if needed, closes the transport, and resets the
// session to CreatedState. Release is idempotent.
func (s *Session) Release() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var err error

	if s.State().IsStreaming() {
		err = s.stopStreamingLocked()
		s.setState(PreparedState)
	}

	if s.tr != nil {
		if cerr := s.tr.Close(); cerr != nil && err == nil {
			err = cerr
		}
		s.tr = nil
	}

	s.setState(CreatedState)

	return err
}

func (s *Session) setState(st SessionState) {
	s.state.Store(uint32(st))
}

// probe runs one clock probe and logs its diagnostic triple.
func (s *Session) probe() (*ProbeResult, error) {
	res, err := s.clock.Probe(s.tr)
	if err != nil {
		return nil, err
	}

	s.logger.Info("galea: clock probe",
		"rtt", res.RTT,
		"deviceTimestamp", res.DeviceTimestamp,
		"hostTimestamp", res.HostTimestamp)

	return res, nil
}

// stopStreamingLocked tears the acquisition loop down, sends the stop
// command, drains residual bytes, and runs the diagnostic probes. Caller
// must hold mu.
func (s *Session) stopStreamingLocked() error {
	s.keepAlive.Store(false)
	s.taskMgr.Stop()
	s.taskMgr.Wait()

	if err := s.writeCommand(cmdStopStream); err != nil {
		return err
	}

	// Flush bytes still buffered below the transport after the stop
	// command; the cap guards against a board that keeps streaming.
	var b [1]byte
	for attempt := 1; ; attempt++ {
		n, err := s.tr.Recv(b[:])
		if err != nil || n != 1 {
			break
		}
		if attempt == s.cfg.drainAttempts {
			s.logger.Error("galea: stop command sent but streaming is still running")
			return ErrDrainCapExceeded
		}
	}

	// Diagnostic probes; failure here is tolerated, not fatal.
	for i := 0; i < 3; i++ {
		if _, err := s.probe(); err != nil {
			s.logger.Warn("galea: post-stop clock probe failed", "error", err)
			break
		}
	}

	return nil
}

// writeCommand writes cmd with the line terminator; a short write is a
// write error.
func (s *Session) writeCommand(cmd string) error {
	data := []byte(cmd + "\n")

	n, err := s.tr.Send(data)
	if err != nil {
		return fmt.Errorf("galea: send command %q: %w", cmd, err)
	}
	if n != len(data) {
		return fmt.Errorf("%w: command %q wrote %d of %d bytes", ErrWriteFailed, cmd, n, len(data))
	}

	return nil
}

// pushRow delivers one decoded row to the primary sink and mirrors a copy
// to every attached streamer.
func (s *Session) pushRow(row []float64) {
	if err := s.out.PushRow(row); err != nil {
		s.logger.Error("galea: primary sink rejected row", "error", err)
	}

	s.streamers.Range(func(name string, out sink.Sink) bool {
		if err := out.PushRow(util.CloneSlice(row, 0)); err != nil {
			s.logger.Warn("galea: streamer push failed", "streamer", name, "error", err)
		}

		return true
	})
}
