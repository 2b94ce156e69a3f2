package galea

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeAll(t *testing.T, d *Decoder, body []byte, hostTS, offset, halfRTT float64) [][]float64 {
	t.Helper()

	var rows [][]float64
	d.Decode(body, hostTS, offset, halfRTT, func(row []float64) {
		rows = append(rows, row)
	})

	return rows
}

func TestDecoder_RowCountAndOrder(t *testing.T) {
	l := testLayout()
	d := NewDecoder(l, testChannelMap())

	rows := decodeAll(t, d, buildTestBody(l), 0, 0, 0)
	require.Len(t, rows, l.RowsPerFrame())

	// On-wire order: dense 0, its compact, dense 1, its compact. The
	// compact row advances the inherited counter by one.
	assert.Equal(t, 0.0, rows[0][0])
	assert.Equal(t, 1.0, rows[1][0])
	assert.Equal(t, 10.0, rows[2][0])
	assert.Equal(t, 11.0, rows[3][0])
}

func TestDecoder_DenseRow(t *testing.T) {
	l := testLayout()
	cm := testChannelMap()
	d := NewDecoder(l, cm)

	rows := decodeAll(t, d, buildTestBody(l), 0, 0, 0)
	row := rows[0]

	// Position 0 is EMG (scale 2), position 1 is the sister board
	// (scale 3) in dense packages.
	assert.Equal(t, 2.0*100, row[cm.Exg[0]])
	assert.Equal(t, 3.0*-200, row[cm.Exg[1]])

	assert.InDelta(t, 1.25, row[cm.EDA], 1e-6)
	assert.Equal(t, 90.0, row[cm.Battery])
	assert.InDelta(t, 36.50, row[cm.Temperature], 1e-9)
	assert.Equal(t, 123456.0, row[cm.PPGRed])
	assert.Equal(t, -654321.0, row[cm.PPGInfrared])
	assert.InDelta(t, 1.0, row[cm.DeviceTimestamp], 1e-6)
}

func TestDecoder_CompactRowInheritsAuxiliaries(t *testing.T) {
	l := testLayout()
	cm := testChannelMap()
	d := NewDecoder(l, cm)

	rows := decodeAll(t, d, buildTestBody(l), 0, 0, 0)
	dense, compact := rows[0], rows[1]

	// Compact packages have no sister positions in the test layout, so
	// both channels take the main-board scale (5).
	assert.Equal(t, 5.0*300, compact[cm.Exg[0]])
	assert.Equal(t, 5.0*400, compact[cm.Exg[1]])

	// Auxiliary sensors carry over unchanged; the device timestamp is the
	// sub-package's own.
	assert.Equal(t, dense[cm.EDA], compact[cm.EDA])
	assert.Equal(t, dense[cm.Battery], compact[cm.Battery])
	assert.Equal(t, dense[cm.Temperature], compact[cm.Temperature])
	assert.Equal(t, dense[cm.PPGRed], compact[cm.PPGRed])
	assert.Equal(t, dense[cm.PPGInfrared], compact[cm.PPGInfrared])
	assert.InDelta(t, 1.004, compact[cm.DeviceTimestamp], 1e-6)
}

func TestDecoder_TimestampCorrection(t *testing.T) {
	l := testLayout()
	cm := testChannelMap()
	d := NewDecoder(l, cm)

	const (
		hostTS  = 5000.0
		offset  = 4000.0
		halfRTT = 0.002
	)

	rows := decodeAll(t, d, buildTestBody(l), hostTS, offset, halfRTT)

	for i, row := range rows {
		deviceTS := row[cm.DeviceTimestamp]
		assert.InDelta(t, deviceTS+offset-halfRTT, row[cm.Timestamp], 1e-9, "row %d", i)
		assert.Equal(t, hostTS, row[cm.HostTimestamp], "row %d", i)
	}
}

func TestDecoder_RowsAreIndependentCopies(t *testing.T) {
	l := testLayout()
	d := NewDecoder(l, testChannelMap())

	rows := decodeAll(t, d, buildTestBody(l), 0, 0, 0)
	require.GreaterOrEqual(t, len(rows), 2)

	rows[0][0] = -1
	assert.NotEqual(t, -1.0, rows[1][0])
}

func TestDecoder_DeviceTimestamp(t *testing.T) {
	l := testLayout()
	d := NewDecoder(l, testChannelMap())

	// The clock observation uses the last dense package, whose timestamp
	// is 1008ms in the test body.
	assert.InDelta(t, 1.008, d.DeviceTimestamp(buildTestBody(l)), 1e-6)
}
