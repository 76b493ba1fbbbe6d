package timer

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduleFires(t *testing.T) {
	svc, err := New(nil)
	require.NoError(t, err)

	done := make(chan struct{})
	svc.Schedule(10*time.Millisecond, func() { close(done) })

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduled task never fired")
	}
}

func TestCancelPreventsFiring(t *testing.T) {
	svc, err := New(nil)
	require.NoError(t, err)

	var fired atomic.Bool
	cancel := svc.Schedule(50*time.Millisecond, func() { fired.Store(true) })
	cancel()

	time.Sleep(150 * time.Millisecond)
	assert.False(t, fired.Load())
}

func TestCancelAfterFireIsNoop(t *testing.T) {
	svc, err := New(nil)
	require.NoError(t, err)

	done := make(chan struct{})
	cancel := svc.Schedule(time.Millisecond, func() { close(done) })

	<-done
	cancel()
}

func TestShutdownStopsPending(t *testing.T) {
	svc, err := New(nil)
	require.NoError(t, err)

	var fired atomic.Int32
	svc.Schedule(50*time.Millisecond, func() { fired.Add(1) })
	svc.Schedule(50*time.Millisecond, func() { fired.Add(1) })

	require.NoError(t, svc.Shutdown())

	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, int32(0), fired.Load())
}
