package galea

// SessionState represents the lifecycle stage of a Session.
type SessionState uint32

// Session lifecycle states.
const (
	// CreatedState indicates the session exists but owns no transport.
	CreatedState SessionState = iota
	// PreparedState indicates the transport is open and configured and the
	// initial device settings have been applied.
	PreparedState
	// StreamingState indicates the acquisition loop is running.
	StreamingState
)

// IsCreated returns if the session has not been prepared.
func (ss SessionState) IsCreated() bool { return ss == CreatedState }

// IsPrepared returns if the session is prepared but not streaming.
func (ss SessionState) IsPrepared() bool { return ss == PreparedState }

// IsStreaming returns if the acquisition loop is running.
func (ss SessionState) IsStreaming() bool { return ss == StreamingState }

// String returns string representation of the current state.
func (ss SessionState) String() string {
	switch ss {
	case CreatedState:
		return "created"
	case PreparedState:
		return "prepared"
	case StreamingState:
		return "streaming"
	default:
		return "unknown"
	}
}
