package galea

import (
	"fmt"
	"time"

	"github.com/openbci/go-galea/transport"
)

// offsetHistorySize caps the device-to-host offset history. The moving
// average over the last 10 observations absorbs jitter in per-frame
// host-side receipt timing at the cost of slower response to clock drift.
const offsetHistorySize = 10

// probeCommand is the fixed-length clock probe; the board replies with a
// 4-byte float32 millisecond device timestamp.
const probeCommand = "F444\n"

// probeReplySize is the fixed reply length of the clock probe.
const probeReplySize = 4

// timestamp returns the host clock as Unix seconds with sub-microsecond
// resolution.
func timestamp() float64 {
	return float64(time.Now().UnixNano()) / 1e9
}

// ProbeResult is the diagnostic triple recorded by a clock probe.
type ProbeResult struct {
	// RTT is the measured round-trip duration in seconds.
	RTT float64 `json:"rtt"`

	// DeviceTimestamp is the device clock reported in the reply, seconds.
	DeviceTimestamp float64 `json:"timestamp_device"`

	// HostTimestamp is the host clock at probe start adjusted by half the
	// round trip, seconds.
	HostTimestamp float64 `json:"pc_timestamp"`
}

// ClockSync keeps the device clock aligned to the host clock.
//
// It maintains two pieces of state: the half-round-trip-time of the most
// recent probe ("last wins" across sequential probes), and a bounded
// history of per-frame host-minus-device deltas whose mean is the smoothed
// offset applied to row timestamps.
//
// Writers are temporally disjoint by contract, not by lock: Probe is
// called by the control goroutine only while not streaming, Observe by the
// acquisition goroutine only while streaming. The Session enforces the
// probe side by rejecting probes during streaming.
type ClockSync struct {
	halfRTT float64

	history [offsetHistorySize]float64
	histLen int
	histPos int
}

// NewClockSync creates a ClockSync with no probe data and an empty
// offset history.
func NewClockSync() *ClockSync {
	return &ClockSync{}
}

// Probe measures the round trip to the device over tr and updates the
// half-RTT estimate.
//
// It sends the probe command, reads the fixed-size reply, and records the
// host-side elapsed time. A short write or short reply is an error and
// leaves the previous half-RTT in place. Must not be called while
// streaming.
func (cs *ClockSync) Probe(tr transport.Transport) (*ProbeResult, error) {
	start := timestamp()

	n, err := tr.Send([]byte(probeCommand))
	if err != nil {
		return nil, fmt.Errorf("galea: send clock probe: %w", err)
	}
	if n != len(probeCommand) {
		return nil, fmt.Errorf("%w: clock probe wrote %d of %d bytes", ErrWriteFailed, n, len(probeCommand))
	}

	var reply [probeReplySize]byte
	n, err = tr.Recv(reply[:])
	done := timestamp()
	if err != nil {
		return nil, fmt.Errorf("galea: read clock probe reply: %w", err)
	}
	if n != probeReplySize {
		return nil, fmt.Errorf("galea: clock probe reply has %d of %d bytes", n, probeReplySize)
	}

	duration := done - start
	cs.halfRTT = duration / 2

	return &ProbeResult{
		RTT:             duration,
		DeviceTimestamp: deviceSeconds(reply[:]),
		HostTimestamp:   start + cs.halfRTT,
	}, nil
}

// Observe records one host-minus-device timestamp delta, evicting the
// oldest entry once the history is full. Called once per frame by the
// acquisition loop, from the last dense package of the frame.
func (cs *ClockSync) Observe(hostTS, deviceTS float64) {
	cs.history[cs.histPos] = hostTS - deviceTS
	cs.histPos = (cs.histPos + 1) % offsetHistorySize
	if cs.histLen < offsetHistorySize {
		cs.histLen++
	}
}

// Offset returns the smoothed device-to-host offset: the arithmetic mean
// of the recorded deltas. Zero when no observation has been made.
func (cs *ClockSync) Offset() float64 {
	if cs.histLen == 0 {
		return 0
	}

	var sum float64
	for i := 0; i < cs.histLen; i++ {
		sum += cs.history[i]
	}

	return sum / float64(cs.histLen)
}

// HalfRTT returns half the round-trip time of the most recent successful
// probe.
func (cs *ClockSync) HalfRTT() float64 {
	return cs.halfRTT
}

// Reset clears the offset history. The half-RTT estimate is kept; it is
// refreshed by the probes run at every stream start.
func (cs *ClockSync) Reset() {
	cs.histLen = 0
	cs.histPos = 0
}
