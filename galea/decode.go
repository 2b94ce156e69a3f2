package galea

import (
	"github.com/openbci/go-galea/internal/util"
)

// Decoder converts validated frame bodies into sample rows.
//
// It performs no I/O and never fails on a well-formed fixed-size body;
// sentinel validation is the acquisition loop's responsibility. The
// position-to-scale tables are built once from the ChannelMap so the
// decode loop stays branch-free.
type Decoder struct {
	layout *FrameLayout
	cm     *ChannelMap

	denseScales   []float64
	compactScales []float64
}

// NewDecoder builds a Decoder for the given frame geometry and row layout.
func NewDecoder(layout *FrameLayout, cm *ChannelMap) *Decoder {
	return &Decoder{
		layout:        layout,
		cm:            cm,
		denseScales:   cm.scaleTable(layout.ExgChannels, layout.EMGPositions, layout.DenseSisterPositions),
		compactScales: cm.scaleTable(layout.ExgChannels, layout.EMGPositions, layout.CompactSisterPosition),
	}
}

// DeviceTimestamp extracts the device timestamp, in seconds, from the last
// dense package of body. The acquisition loop feeds it to the clock
// synchronizer once per frame.
func (d *Decoder) DeviceTimestamp(body []byte) float64 {
	off := d.layout.lastDenseTimestampOffset()

	return deviceSeconds(body[off : off+4])
}

// Decode converts one frame body into sample rows and hands each row to
// push in on-wire order: every dense package first, then its compact
// sub-packages.
//
// hostTS is the host-arrival timestamp of the frame; offset and halfRTT
// come from the clock synchronizer. Each pushed row is freshly allocated;
// ownership transfers to push.
func (d *Decoder) Decode(body []byte, hostTS, offset, halfRTT float64, push func(row []float64)) {
	l := d.layout
	row := make([]float64, d.cm.NumRows)

	for dense := 0; dense < l.NumDense; dense++ {
		base := dense * l.DenseSize()

		row[d.cm.Counter] = float64(body[base+l.CounterOffset])
		d.decodeExg(body[base+l.ExgOffset:], d.denseScales, row)

		row[d.cm.EDA] = float64(readFloat32(body[base+l.EDAOffset:]))
		row[d.cm.Battery] = float64(body[base+l.BatteryOffset])
		row[d.cm.Temperature] = float64(readUint16(body[base+l.TemperatureOffset:])) / 100.0
		row[d.cm.PPGRed] = float64(readInt32(body[base+l.PPGRedOffset:]))
		row[d.cm.PPGInfrared] = float64(readInt32(body[base+l.PPGInfraredOffset:]))

		deviceTS := deviceSeconds(body[base+l.TimestampOffset:])
		d.stampRow(row, deviceTS, hostTS, offset, halfRTT)

		push(util.CloneSlice(row, 0))

		for compact := 0; compact < l.CompactPerDense; compact++ {
			cbase := base + l.HeaderSize + compact*l.CompactSize

			d.decodeExg(body[cbase+l.CompactExgOffset:], d.compactScales, row)

			deviceTS = deviceSeconds(body[cbase+l.CompactTimestampOffset:])
			d.stampRow(row, deviceTS, hostTS, offset, halfRTT)

			// Compact sub-packages inherit the auxiliary sensor values and
			// advance the counter by one per sub-package.
			row[d.cm.Counter]++

			push(util.CloneSlice(row, 0))
		}
	}
}

func (d *Decoder) decodeExg(data []byte, scales []float64, row []float64) {
	for i, ch := range d.cm.Exg {
		sample := signExtend24(data[i*exgSampleSize : i*exgSampleSize+exgSampleSize])
		row[ch] = scales[i] * float64(sample)
	}
}

func (d *Decoder) stampRow(row []float64, deviceTS, hostTS, offset, halfRTT float64) {
	row[d.cm.Timestamp] = deviceTS + offset - halfRTT
	row[d.cm.HostTimestamp] = hostTS
	row[d.cm.DeviceTimestamp] = deviceTS
}
