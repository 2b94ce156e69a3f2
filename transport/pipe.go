package transport

import (
	"sync"
	"time"

	"github.com/openbci/go-galea/internal/pool"
	"github.com/openbci/go-galea/internal/util"
)

// pipeBufferSize is the capacity of the device-to-host byte channel.
const pipeBufferSize = 1 << 16

// defaultPipeTimeout is the read timeout before Configure is called.
const defaultPipeTimeout = 50 * time.Millisecond

// SendHandler is invoked for every Send on a Pipe, after the write has
// been recorded. A device emulator typically inspects the command and
// queues its reply with QueueRead.
//
// The handler runs on the sender's goroutine and must not call Writes or
// SendCount on the same Pipe.
type SendHandler func(p *Pipe, data []byte)

// Pipe is an in-memory Transport used by tests and examples to emulate a
// device on the other end of the line.
//
// Bytes queued with QueueRead become readable via Recv. Every Send is
// recorded and forwarded to the optional SendHandler.
type Pipe struct {
	incoming chan byte

	mu          sync.Mutex
	readTimeout time.Duration
	writes      [][]byte
	onSend      SendHandler
	openCalls   int
	open        bool
}

var _ Transport = (*Pipe)(nil)

// NewPipe creates an unopened Pipe.
func NewPipe() *Pipe {
	return &Pipe{
		incoming:    make(chan byte, pipeBufferSize),
		readTimeout: defaultPipeTimeout,
	}
}

// SetOnSend registers the device-emulation handler. It should be set
// before the Pipe is handed to a session.
func (p *Pipe) SetOnSend(handler SendHandler) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.onSend = handler
}

// QueueRead makes data available to subsequent Recv calls, in order.
func (p *Pipe) QueueRead(data []byte) {
	for _, b := range data {
		p.incoming <- b
	}
}

// OpenCalls returns how many times Open has been called. Used by tests to
// verify that a prepared session does not reopen its transport.
func (p *Pipe) OpenCalls() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.openCalls
}

// Writes returns copies of every buffer passed to Send, in order.
func (p *Pipe) Writes() [][]byte {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([][]byte, len(p.writes))
	for i, w := range p.writes {
		out[i] = util.CloneSlice(w, 0)
	}

	return out
}

func (p *Pipe) Open() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.openCalls++
	p.open = true

	return nil
}

func (p *Pipe) Configure(readTimeout time.Duration, baudRate int) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.open {
		return ErrNotOpen
	}
	if readTimeout > 0 {
		p.readTimeout = readTimeout
	}

	return nil
}

func (p *Pipe) Send(data []byte) (int, error) {
	p.mu.Lock()
	if !p.open {
		p.mu.Unlock()
		return 0, ErrClosed
	}

	cp := util.CloneSlice(data, 0)
	p.writes = append(p.writes, cp)
	handler := p.onSend
	p.mu.Unlock()

	if handler != nil {
		handler(p, cp)
	}

	return len(data), nil
}

// Recv blocks for up to the configured read timeout waiting for the first
// byte, then drains whatever else is immediately available, mirroring how
// a serial port read behaves.
func (p *Pipe) Recv(buf []byte) (int, error) {
	p.mu.Lock()
	if !p.open {
		p.mu.Unlock()
		return 0, ErrClosed
	}
	timeout := p.readTimeout
	p.mu.Unlock()

	if len(buf) == 0 {
		return 0, nil
	}

	timer := pool.GetTimer(timeout)
	defer pool.PutTimer(timer)

	select {
	case b := <-p.incoming:
		buf[0] = b
	case <-timer.C:
		return 0, nil
	}

	n := 1
	for n < len(buf) {
		select {
		case b := <-p.incoming:
			buf[n] = b
			n++
		default:
			return n, nil
		}
	}

	return n, nil
}

func (p *Pipe) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.open = false

	return nil
}
