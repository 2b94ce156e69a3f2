package journal

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openbci/go-galea/galea"
)

func openTestJournal(t *testing.T) *Journal {
	t.Helper()

	j, err := Open(filepath.Join(t.TempDir(), "galea.journal"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = j.Close() })

	return j
}

func TestJournal_Probes(t *testing.T) {
	j := openTestJournal(t)

	probes, err := j.Probes()
	require.NoError(t, err)
	assert.Empty(t, probes)

	for i := 0; i < 3; i++ {
		err := j.RecordProbe(&galea.ProbeResult{
			RTT:             0.002 * float64(i+1),
			DeviceTimestamp: float64(i),
			HostTimestamp:   1000 + float64(i),
		})
		require.NoError(t, err)
	}

	probes, err = j.Probes()
	require.NoError(t, err)
	require.Len(t, probes, 3)

	// Insertion order is preserved.
	for i, p := range probes {
		assert.InDelta(t, 0.002*float64(i+1), p.RTT, 1e-9)
		assert.Equal(t, float64(i), p.DeviceTimestamp)
	}
}

func TestJournal_Events(t *testing.T) {
	j := openTestJournal(t)

	require.NoError(t, j.RecordEvent("start", "streaming started"))
	require.NoError(t, j.RecordEvent("stop", "streaming stopped"))

	events, err := j.Events()
	require.NoError(t, err)
	require.Len(t, events, 2)

	assert.Equal(t, "start", events[0].Kind)
	assert.Equal(t, "streaming started", events[0].Message)
	assert.Equal(t, "stop", events[1].Kind)
	assert.False(t, events[0].Time.IsZero())
}

func TestJournal_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "galea.journal")

	j, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, j.RecordEvent("start", "first run"))
	require.NoError(t, j.Close())

	j, err = Open(path)
	require.NoError(t, err)
	defer j.Close()

	events, err := j.Events()
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "first run", events[0].Message)
}
