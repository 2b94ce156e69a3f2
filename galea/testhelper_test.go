package galea

import (
	"encoding/binary"
	"math"
)

// testLayout is a shrunken frame geometry (2 dense packages, 1 compact
// sub-package each, 2 EXG channels) that keeps hand-built wire bytes
// readable.
func testLayout() *FrameLayout {
	return &FrameLayout{
		NumDense:        2,
		CompactPerDense: 1,
		ExgChannels:     2,

		CounterOffset:     0,
		EDAOffset:         1,
		ExgOffset:         5,
		BatteryOffset:     11,
		TemperatureOffset: 12,
		PPGRedOffset:      14,
		PPGInfraredOffset: 18,
		TimestampOffset:   22,
		HeaderSize:        26,

		CompactExgOffset:       0,
		CompactTimestampOffset: 6,
		CompactSize:            10,

		EMGPositions:          1,
		DenseSisterPositions:  []int{1},
		CompactSisterPosition: nil,
	}
}

// testChannelMap pairs with testLayout and uses round scale factors so
// expected row values stay exact.
func testChannelMap() *ChannelMap {
	return &ChannelMap{
		NumRows:         11,
		Counter:         0,
		Exg:             []int{1, 2},
		EDA:             3,
		PPGRed:          4,
		PPGInfrared:     5,
		Temperature:     6,
		Battery:         7,
		Timestamp:       8,
		HostTimestamp:   9,
		DeviceTimestamp: 10,
		EMGScale:        2.0,
		SisterScale:     3.0,
		MainBoardScale:  5.0,
	}
}

func put24(buf []byte, v int32) {
	buf[0] = byte(v >> 16)
	buf[1] = byte(v >> 8)
	buf[2] = byte(v)
}

func putFloat32(buf []byte, v float32) {
	binary.LittleEndian.PutUint32(buf, math.Float32bits(v))
}

type densePackage struct {
	counter     byte
	eda         float32
	exg         [2]int32
	battery     byte
	temperature uint16 // hundredths of a degree
	ppgRed      int32
	ppgInfrared int32
	timestampMS float32
}

type compactPackage struct {
	exg         [2]int32
	timestampMS float32
}

func (p densePackage) encode(l *FrameLayout) []byte {
	buf := make([]byte, l.HeaderSize)
	buf[l.CounterOffset] = p.counter
	putFloat32(buf[l.EDAOffset:], p.eda)
	for i, v := range p.exg {
		put24(buf[l.ExgOffset+i*exgSampleSize:], v)
	}
	buf[l.BatteryOffset] = p.battery
	binary.LittleEndian.PutUint16(buf[l.TemperatureOffset:], p.temperature)
	binary.LittleEndian.PutUint32(buf[l.PPGRedOffset:], uint32(p.ppgRed))
	binary.LittleEndian.PutUint32(buf[l.PPGInfraredOffset:], uint32(p.ppgInfrared))
	putFloat32(buf[l.TimestampOffset:], p.timestampMS)

	return buf
}

func (p compactPackage) encode(l *FrameLayout) []byte {
	buf := make([]byte, l.CompactSize)
	for i, v := range p.exg {
		put24(buf[l.CompactExgOffset+i*exgSampleSize:], v)
	}
	putFloat32(buf[l.CompactTimestampOffset:], p.timestampMS)

	return buf
}

// buildTestBody encodes a frame body from the test layout: for each dense
// index the counter is 10*i, EXG samples are small distinct integers, and
// device timestamps advance by 4ms per package.
func buildTestBody(l *FrameLayout) []byte {
	body := make([]byte, 0, l.BodySize())
	for i := 0; i < l.NumDense; i++ {
		d := densePackage{
			counter:     byte(10 * i),
			eda:         1.25,
			exg:         [2]int32{100 + int32(i), -(200 + int32(i))},
			battery:     90,
			temperature: 3650,
			ppgRed:      123456,
			ppgInfrared: -654321,
			timestampMS: float32(1000 + 8*i),
		}
		body = append(body, d.encode(l)...)

		for j := 0; j < l.CompactPerDense; j++ {
			c := compactPackage{
				exg:         [2]int32{300 + int32(i), 400 + int32(i)},
				timestampMS: float32(1004 + 8*i),
			}
			body = append(body, c.encode(l)...)
		}
	}

	return body
}

// buildTestFrame wraps a test body in the frame sentinels.
func buildTestFrame(l *FrameLayout) []byte {
	frame := make([]byte, 0, l.BodySize()+2)
	frame = append(frame, StartByte)
	frame = append(frame, buildTestBody(l)...)
	frame = append(frame, StopByte)

	return frame
}
