package sink

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func row(vals ...float64) []float64 { return vals }

func TestRingBuffer_PushAndCount(t *testing.T) {
	rb := NewRingBuffer(4)
	assert.Zero(t, rb.Count())

	require.NoError(t, rb.PushRow(row(1)))
	require.NoError(t, rb.PushRow(row(2)))
	assert.Equal(t, 2, rb.Count())
	assert.Equal(t, uint64(2), rb.Total())
}

func TestRingBuffer_OverwritesOldest(t *testing.T) {
	rb := NewRingBuffer(3)
	for i := 1; i <= 5; i++ {
		require.NoError(t, rb.PushRow(row(float64(i))))
	}

	assert.Equal(t, 3, rb.Count())
	assert.Equal(t, uint64(5), rb.Total())

	got := rb.GetCurrent(3)
	require.Len(t, got, 3)
	assert.Equal(t, []float64{3}, got[0])
	assert.Equal(t, []float64{4}, got[1])
	assert.Equal(t, []float64{5}, got[2])
}

func TestRingBuffer_GetCurrentDoesNotConsume(t *testing.T) {
	rb := NewRingBuffer(8)
	rb.PushRow(row(1))
	rb.PushRow(row(2))

	got := rb.GetCurrent(1)
	require.Len(t, got, 1)
	assert.Equal(t, []float64{2}, got[0])
	assert.Equal(t, 2, rb.Count())

	// Returned rows are copies; mutating them must not affect the buffer.
	got[0][0] = 99
	again := rb.GetCurrent(1)
	assert.Equal(t, []float64{2}, again[0])
}

func TestRingBuffer_PopOldestFirst(t *testing.T) {
	rb := NewRingBuffer(4)
	for i := 1; i <= 4; i++ {
		rb.PushRow(row(float64(i)))
	}

	got := rb.Pop(2)
	require.Len(t, got, 2)
	assert.Equal(t, []float64{1}, got[0])
	assert.Equal(t, []float64{2}, got[1])
	assert.Equal(t, 2, rb.Count())

	rest := rb.Pop(10)
	require.Len(t, rest, 2)
	assert.Equal(t, []float64{3}, rest[0])
	assert.Equal(t, []float64{4}, rest[1])
	assert.Zero(t, rb.Count())
}

func TestRingBuffer_TinyCapacity(t *testing.T) {
	rb := NewRingBuffer(0) // clamped to 1
	rb.PushRow(row(1))
	rb.PushRow(row(2))

	assert.Equal(t, 1, rb.Count())
	got := rb.GetCurrent(5)
	require.Len(t, got, 1)
	assert.Equal(t, []float64{2}, got[0])
}
