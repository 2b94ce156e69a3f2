package galea

// loopState holds the per-loop scratch buffers so one streaming run does
// not allocate per frame.
type loopState struct {
	body []byte
	one  [1]byte
}

func newLoopState(layout *FrameLayout) *loopState {
	return &loopState{body: make([]byte, layout.BodySize())}
}

// acquireIteration runs one pass of the acquisition loop: hunt for the
// start byte, accumulate the fixed-size frame body, validate the stop
// byte, and decode. Returning false ends the loop.
//
// The loop holds exclusive ownership of the transport's receive
// direction; malformed frames are dropped and the hunt restarts at the
// next byte.
func (s *Session) acquireIteration(st *loopState) bool {
	if !s.keepAlive.Load() {
		return false
	}

	n, err := s.tr.Recv(st.one[:])
	if err != nil {
		s.logger.Debug("galea: receive failed", "error", err)
		return s.keepAlive.Load()
	}
	if n != 1 {
		// Read timeout, nothing arrived yet.
		return s.keepAlive.Load()
	}

	// Arrival time of the start byte stamps every row of the frame.
	hostTS := timestamp()

	if st.one[0] != StartByte {
		s.logger.Debug("galea: wrong start byte", "byte", st.one[0])
		return s.keepAlive.Load()
	}

	for got := 0; got < len(st.body); {
		if !s.keepAlive.Load() {
			return false
		}

		n, err := s.tr.Recv(st.body[got:])
		if err != nil {
			s.logger.Debug("galea: frame body receive failed", "error", err, "got", got)
			return s.keepAlive.Load()
		}

		got += n
	}

	n, err = s.tr.Recv(st.one[:])
	if err != nil || n != 1 || st.one[0] != StopByte {
		s.logger.Debug("galea: wrong stop byte", "byte", st.one[0], "error", err)
		return s.keepAlive.Load()
	}

	if !s.gate.Ready() {
		s.logger.Info("galea: first frame received")
		s.gate.Signal()
	}

	s.clock.Observe(hostTS, s.decoder.DeviceTimestamp(st.body))
	s.decoder.Decode(st.body, hostTS, s.clock.Offset(), s.clock.HalfRTT(), s.pushRow)

	return s.keepAlive.Load()
}
