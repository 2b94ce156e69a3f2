package galea

// Scale factors for the 24-bit EXG samples, in microvolts per count.
//
// The front end runs a 4.5V reference over a 23-bit full scale; the three
// sensor groups differ only in programmed gain: 4 for the EMG block, 12
// for the sister board, 2 for the main board.
const (
	adcReference  = 4.5
	adcFullScale  = 1<<23 - 1
	microvolts    = 1000000.0
	emgGain       = 4.0
	sisterGain    = 12.0
	mainBoardGain = 2.0
)

// Default per-group scale factors.
const (
	EMGScale       = adcReference / adcFullScale / emgGain * microvolts
	SisterScale    = adcReference / adcFullScale / sisterGain * microvolts
	MainBoardScale = adcReference / adcFullScale / mainBoardGain * microvolts
)

// ChannelMap binds semantic channels to sample-row indices and carries the
// per-group scale factors applied to EXG samples.
//
// A ChannelMap is immutable for the lifetime of the Session that uses it.
type ChannelMap struct {
	// NumRows is the width of every decoded sample row.
	NumRows int

	// Counter is the row index of the package counter.
	Counter int

	// Exg lists the row indices of the scaled EXG channels, in wire order.
	Exg []int

	// Auxiliary sensor row indices.
	EDA         int
	PPGRed      int
	PPGInfrared int
	Temperature int
	Battery     int

	// Timestamp is the row index of the corrected timestamp
	// (device time + smoothed offset - half RTT), in seconds.
	Timestamp int

	// HostTimestamp and DeviceTimestamp are diagnostic channels holding
	// the raw host-arrival time and the raw device time for auditing.
	HostTimestamp   int
	DeviceTimestamp int

	// Per-group scale factors, microvolts per count.
	EMGScale       float64
	SisterScale    float64
	MainBoardScale float64
}

// DefaultChannelMap returns the channel layout of the Galea serial board:
// a counter, 16 EXG channels, the auxiliary sensors, and three timestamp
// channels, 25 rows in total.
func DefaultChannelMap() *ChannelMap {
	exg := make([]int, 16)
	for i := range exg {
		exg[i] = i + 1
	}

	return &ChannelMap{
		NumRows:         25,
		Counter:         0,
		Exg:             exg,
		EDA:             17,
		PPGRed:          18,
		PPGInfrared:     19,
		Temperature:     20,
		Battery:         21,
		Timestamp:       22,
		HostTimestamp:   23,
		DeviceTimestamp: 24,
		EMGScale:        EMGScale,
		SisterScale:     SisterScale,
		MainBoardScale:  MainBoardScale,
	}
}

// scaleTable builds the per-position scale lookup for a package's EXG
// block: the first emgPositions samples use the EMG scale, the designated
// sister positions use the sister-board scale, and the rest use the
// main-board scale.
func (cm *ChannelMap) scaleTable(numSamples, emgPositions int, sisterPositions []int) []float64 {
	table := make([]float64, numSamples)
	for i := range table {
		if i < emgPositions {
			table[i] = cm.EMGScale
		} else {
			table[i] = cm.MainBoardScale
		}
	}
	for _, pos := range sisterPositions {
		if pos >= 0 && pos < numSamples {
			table[pos] = cm.SisterScale
		}
	}

	return table
}
