package galea

import (
	"encoding/binary"
	"math"
)

// Frame sentinel bytes delimiting one transaction on the wire.
const (
	StartByte byte = 0xA0
	StopByte  byte = 0xC0
)

// exgSampleSize is the width of one 24-bit EXG sample on the wire.
const exgSampleSize = 3

// FrameLayout describes the fixed geometry of one transaction frame.
//
// A frame body is NumDense dense packages back to back; each dense package
// is a HeaderSize-byte header carrying the counter, EXG samples, auxiliary
// sensors and a device timestamp, followed by CompactPerDense compact
// sub-packages carrying only EXG samples and a device timestamp.
//
// All scalar fields are little-endian; EXG samples are 24-bit big-endian
// signed. Device timestamps are float32 milliseconds.
type FrameLayout struct {
	NumDense        int // dense packages per frame
	CompactPerDense int // compact sub-packages per dense package
	ExgChannels     int // EXG samples per package

	// Byte offsets within the dense package header.
	CounterOffset     int
	EDAOffset         int
	ExgOffset         int
	BatteryOffset     int
	TemperatureOffset int
	PPGRedOffset      int
	PPGInfraredOffset int
	TimestampOffset   int
	HeaderSize        int

	// Byte offsets within a compact sub-package.
	CompactExgOffset       int
	CompactTimestampOffset int
	CompactSize            int

	// Scale-table shape: the first EMGPositions EXG samples take the EMG
	// scale; the listed positions take the sister-board scale; the rest
	// take the main-board scale. The sister positions differ between
	// dense and compact packages on this board.
	EMGPositions          int
	DenseSisterPositions  []int
	CompactSisterPosition []int
}

// DefaultFrameLayout returns the Galea serial frame geometry: 5 dense
// packages per frame, 4 compact sub-packages per dense package, 16 EXG
// channels, 1380-byte body.
func DefaultFrameLayout() *FrameLayout {
	return &FrameLayout{
		NumDense:        5,
		CompactPerDense: 4,
		ExgChannels:     16,

		CounterOffset:     0,
		EDAOffset:         1,
		ExgOffset:         5,
		BatteryOffset:     53,
		TemperatureOffset: 54,
		PPGRedOffset:      56,
		PPGInfraredOffset: 60,
		TimestampOffset:   64,
		HeaderSize:        68,

		CompactExgOffset:       0,
		CompactTimestampOffset: 48,
		CompactSize:            52,

		EMGPositions:          6,
		DenseSisterPositions:  []int{6, 7},
		CompactSisterPosition: []int{6, 11},
	}
}

// DenseSize returns the total size of one dense package including its
// compact sub-packages.
func (l *FrameLayout) DenseSize() int {
	return l.HeaderSize + l.CompactPerDense*l.CompactSize
}

// BodySize returns the frame body size, excluding the sentinel bytes.
func (l *FrameLayout) BodySize() int {
	return l.NumDense * l.DenseSize()
}

// RowsPerFrame returns the number of sample rows one frame decodes into.
func (l *FrameLayout) RowsPerFrame() int {
	return l.NumDense * (1 + l.CompactPerDense)
}

// lastDenseTimestampOffset is the body offset of the device timestamp in
// the final dense package, used for the per-frame clock observation.
func (l *FrameLayout) lastDenseTimestampOffset() int {
	return (l.NumDense-1)*l.DenseSize() + l.TimestampOffset
}

// signExtend24 converts a 24-bit big-endian signed sample to int32.
func signExtend24(b []byte) int32 {
	v := int32(b[0])<<16 | int32(b[1])<<8 | int32(b[2])
	if b[0]&0x80 != 0 {
		v |= int32(-1) << 24 //nolint:staticcheck // explicit sign extension
	}

	return v
}

func readFloat32(b []byte) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(b))
}

func readUint16(b []byte) uint16 {
	return binary.LittleEndian.Uint16(b)
}

func readInt32(b []byte) int32 {
	return int32(binary.LittleEndian.Uint32(b))
}

// deviceSeconds converts a wire timestamp field (float32 milliseconds)
// to seconds.
func deviceSeconds(b []byte) float64 {
	return float64(readFloat32(b)) / 1000.0
}
