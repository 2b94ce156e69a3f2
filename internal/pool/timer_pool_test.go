package pool

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetTimer(t *testing.T) {
	timer := GetTimer(10 * time.Millisecond)
	require.NotNil(t, timer)

	select {
	case <-timer.C:
	case <-time.After(time.Second):
		t.Fatal("timer did not fire")
	}

	PutTimer(timer)
}

func TestTimerReuse(t *testing.T) {
	t1 := GetTimer(time.Millisecond)
	<-t1.C
	PutTimer(t1)

	// The reused timer must fire again after Reset.
	t2 := GetTimer(time.Millisecond)
	select {
	case <-t2.C:
	case <-time.After(time.Second):
		t.Fatal("reused timer did not fire")
	}
	PutTimer(t2)

	assert.NotPanics(t, func() {
		t3 := GetTimer(time.Hour)
		PutTimer(t3)
	})
}
