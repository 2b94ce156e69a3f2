package galea

import (
	"sync"
	"time"

	"github.com/openbci/go-galea/internal/pool"
)

// gate is the two-state (Waiting, Ready) handshake between the control
// goroutine blocked in Start and the acquisition loop. The loop signals
// Ready on the first validated frame; Start waits on the notification
// channel with a bounded timeout.
type gate struct {
	mu    sync.Mutex
	ready bool
	ch    chan struct{}
}

func newGate() *gate {
	return &gate{ch: make(chan struct{})}
}

// Reset rearms the gate to the Waiting state.
func (g *gate) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.ready = false
	g.ch = make(chan struct{})
}

// Signal transitions the gate to Ready and wakes any waiter. Signaling an
// already-Ready gate is a no-op, so the acquisition loop may call it on
// every frame.
func (g *gate) Signal() {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.ready {
		return
	}
	g.ready = true
	close(g.ch)
}

// Ready reports whether the gate has been signaled since the last Reset.
func (g *gate) Ready() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.ready
}

// Wait blocks until the gate is Ready or timeout elapses. It returns
// ErrSyncTimeout on timeout.
func (g *gate) Wait(timeout time.Duration) error {
	g.mu.Lock()
	ch := g.ch
	if g.ready {
		g.mu.Unlock()
		return nil
	}
	g.mu.Unlock()

	timer := pool.GetTimer(timeout)
	defer pool.PutTimer(timer)

	select {
	case <-ch:
		return nil
	case <-timer.C:
		return ErrSyncTimeout
	}
}
