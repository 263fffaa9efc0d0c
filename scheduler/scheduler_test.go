package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestScheduler_PeriodicRuns(t *testing.T) {
	var counter int32
	task := func(ctx context.Context) {
		atomic.AddInt32(&counter, 1)
	}

	s := New(100*time.Millisecond, task)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s.Start(ctx, true)
	assert.True(t, s.IsRunning())

	time.Sleep(350 * time.Millisecond)
	s.Stop()
	assert.False(t, s.IsRunning())

	assert.GreaterOrEqual(t, atomic.LoadInt32(&counter), int32(3))

	// No further runs after Stop
	final := atomic.LoadInt32(&counter)
	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, final, atomic.LoadInt32(&counter))
}

func TestScheduler_StopBeforeStart(t *testing.T) {
	s := New(100*time.Millisecond, func(ctx context.Context) {})
	s.Stop() // must not panic
	assert.False(t, s.IsRunning())
}

func TestScheduler_DoubleStart(t *testing.T) {
	var counter int32
	s := New(50*time.Millisecond, func(ctx context.Context) {
		atomic.AddInt32(&counter, 1)
	})

	ctx := context.Background()
	s.Start(ctx, true)
	s.Start(ctx, true) // second Start is a no-op
	defer s.Stop()

	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, int32(1), atomic.LoadInt32(&counter))
}

func TestScheduler_ZeroIntervalDisabled(t *testing.T) {
	s := New(0, func(ctx context.Context) {
		t.Fatal("task must not run with a zero interval")
	})
	s.Start(context.Background(), true)
	assert.False(t, s.IsRunning())
}
