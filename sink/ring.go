package sink

import (
	"sync"

	"github.com/openbci/go-galea/internal/util"
)

// RingBuffer is a bounded, thread-safe buffer of sample rows.
//
// When full, pushing a new row overwrites the oldest one. Readers can
// either peek at the most recent rows (GetCurrent) or consume the oldest
// rows (Pop).
type RingBuffer struct {
	mu    sync.Mutex
	rows  [][]float64
	head  int // next write position
	count int
	total uint64
}

var _ Sink = (*RingBuffer)(nil)

// NewRingBuffer creates a RingBuffer holding up to capacity rows.
// A non-positive capacity is treated as 1.
func NewRingBuffer(capacity int) *RingBuffer {
	if capacity < 1 {
		capacity = 1
	}

	return &RingBuffer{rows: make([][]float64, capacity)}
}

// PushRow stores row, evicting the oldest row when the buffer is full.
// It never fails.
func (rb *RingBuffer) PushRow(row []float64) error {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	rb.rows[rb.head] = row
	rb.head = (rb.head + 1) % len(rb.rows)
	if rb.count < len(rb.rows) {
		rb.count++
	}
	rb.total++

	return nil
}

// Count returns the number of rows currently buffered.
func (rb *RingBuffer) Count() int {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	return rb.count
}

// Total returns the number of rows ever pushed, including overwritten ones.
func (rb *RingBuffer) Total() uint64 {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	return rb.total
}

// GetCurrent returns copies of up to n of the most recent rows, oldest
// first, without removing them.
func (rb *RingBuffer) GetCurrent(n int) [][]float64 {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	if n > rb.count {
		n = rb.count
	}

	out := make([][]float64, 0, n)
	start := rb.head - n
	if start < 0 {
		start += len(rb.rows)
	}
	for i := 0; i < n; i++ {
		out = append(out, util.CloneSlice(rb.rows[(start+i)%len(rb.rows)], 0))
	}

	return out
}

// Pop removes and returns up to n of the oldest rows, oldest first.
func (rb *RingBuffer) Pop(n int) [][]float64 {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	if n > rb.count {
		n = rb.count
	}

	out := make([][]float64, 0, n)
	start := rb.head - rb.count
	if start < 0 {
		start += len(rb.rows)
	}
	for i := 0; i < n; i++ {
		idx := (start + i) % len(rb.rows)
		out = append(out, rb.rows[idx])
		rb.rows[idx] = nil
	}
	rb.count -= n

	return out
}
