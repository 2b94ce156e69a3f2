package task

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openbci/go-galea/logger"
)

func TestManager_StartStopWait(t *testing.T) {
	mgr := NewManager(context.Background(), logger.GetLogger())

	var iterations atomic.Int64
	err := mgr.Start("counter", func() bool {
		iterations.Add(1)
		time.Sleep(time.Millisecond)
		return true
	})
	require.NoError(t, err)
	assert.Equal(t, 1, mgr.Count())

	assert.Eventually(t, func() bool {
		return iterations.Load() > 0
	}, time.Second, time.Millisecond)

	mgr.Stop()
	mgr.Wait()
	assert.Equal(t, 0, mgr.Count())
}

func TestManager_TaskSelfStop(t *testing.T) {
	mgr := NewManager(context.Background(), logger.GetLogger())

	err := mgr.Start("once", func() bool {
		return false
	})
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		return mgr.Count() == 0
	}, time.Second, time.Millisecond)
}

func TestManager_RestartAfterWait(t *testing.T) {
	mgr := NewManager(context.Background(), logger.GetLogger())

	require.NoError(t, mgr.Start("first", func() bool { return true }))
	mgr.Stop()
	mgr.Wait()

	// Manager must be reusable once Wait has rearmed the context.
	var ran atomic.Bool
	require.NoError(t, mgr.Start("second", func() bool {
		ran.Store(true)
		return false
	}))

	assert.Eventually(t, func() bool { return ran.Load() }, time.Second, time.Millisecond)
	mgr.Stop()
	mgr.Wait()
}

func TestManager_PanicRecovery(t *testing.T) {
	mgr := NewManager(context.Background(), logger.GetLogger())

	require.NoError(t, mgr.Start("panics", func() bool {
		panic("boom")
	}))

	// The panicking task must terminate without crashing the process.
	assert.Eventually(t, func() bool {
		return mgr.Count() == 0
	}, time.Second, time.Millisecond)
}
