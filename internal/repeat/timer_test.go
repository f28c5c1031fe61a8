package repeat

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"
)

func TestRun_StopsWithContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var count int32
	start := time.Now()
	err := Run(ctx, 5*time.Second, func(context.Context) {
		atomic.AddInt32(&count, 1)
		cancel()
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, atomic.LoadInt32(&count), int32(1))
	assert.Assert(t, time.Since(start) < time.Second)
}

func TestRun_CallsNeverOverlap(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var count, overlap int32
	err := Run(ctx, time.Millisecond, func(context.Context) {
		value := atomic.AddInt32(&overlap, 1)
		// value should only be 1 if the calls never overlap
		assert.Check(t, is.Equal(int32(1), value))

		time.Sleep(10 * time.Millisecond)
		atomic.AddInt32(&overlap, -1)

		if atomic.AddInt32(&count, 1) == 3 {
			cancel()
		}
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRun_WaitsIntervalAfterEachCall(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var count int32
	start := time.Now()
	_ = Run(ctx, 10*time.Millisecond, func(context.Context) {
		time.Sleep(20 * time.Millisecond)

		if atomic.AddInt32(&count, 1) == 4 {
			cancel()
		}
	})

	// 4 calls of 20ms, and 3 intervals of 10ms between them
	assert.Assert(t, time.Since(start) >= 110*time.Millisecond)
}
