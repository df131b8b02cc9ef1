package runtime

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestGoroutineSpawnerRunsFn(t *testing.T) {
	s := NewGoroutineSpawner()
	var ran atomic.Bool
	done := make(chan struct{})

	s.Go(context.Background(), func(ctx context.Context) {
		ran.Store(true)
		close(done)
	})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("spawned function did not run")
	}
	assert.True(t, ran.Load())
}

func TestGoroutineSpawnerSleepRespectsCancellation(t *testing.T) {
	s := NewGoroutineSpawner()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := s.Sleep(ctx, time.Hour)
	require.ErrorIs(t, err, context.Canceled)
}

func TestErrgroupSpawnerWaitsForAll(t *testing.T) {
	g, ctx := errgroup.WithContext(context.Background())
	s := NewErrgroupSpawner(g)

	var count atomic.Int32
	for i := 0; i < 5; i++ {
		s.Go(ctx, func(context.Context) { count.Add(1) })
	}

	require.NoError(t, s.Wait())
	assert.Equal(t, int32(5), count.Load())
}
