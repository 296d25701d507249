package performance

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkerPool_RunsTasks(t *testing.T) {
	pool := NewWorkerPool(3)
	pool.Start()

	var count atomic.Int64
	for i := 0; i < 50; i++ {
		require.True(t, pool.Submit(context.Background(), func() { count.Add(1) }))
	}
	pool.Stop()

	assert.Equal(t, int64(50), count.Load())
	stats := pool.Stats()
	assert.Equal(t, 3, stats.Workers)
	assert.False(t, stats.Running)
	assert.Equal(t, uint64(50), stats.TasksTotal)
	assert.Equal(t, uint64(50), stats.TasksDone)
}

func TestWorkerPool_SubmitAfterStop(t *testing.T) {
	pool := NewWorkerPool(1)
	assert.False(t, pool.Submit(context.Background(), func() {}), "not started")

	pool.Start()
	pool.Stop()
	pool.Stop()
	assert.False(t, pool.Submit(context.Background(), func() {}))
}

func TestWorkerPool_SubmitHonoursContext(t *testing.T) {
	pool := NewWorkerPool(1)
	pool.Start()
	defer pool.Stop()

	release := make(chan struct{})
	started := make(chan struct{})
	require.True(t, pool.Submit(context.Background(), func() {
		close(started)
		<-release
	}))
	<-started
	// fill the queue behind the blocked worker
	for i := 0; i < 4; i++ {
		require.True(t, pool.Submit(context.Background(), func() {}))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.False(t, pool.Submit(ctx, func() {}))
	close(release)
}

func TestMap_PreservesOrder(t *testing.T) {
	pool := NewWorkerPool(4)
	pool.Start()
	defer pool.Stop()

	items := []string{"a.pdf", "b.pdf", "bad.pdf", "c.pdf"}
	outcomes := Map(context.Background(), pool, items, func(_ context.Context, name string) (string, error) {
		if name == "bad.pdf" {
			return "", errors.New("unreadable")
		}
		return "parsed " + name, nil
	})

	require.Len(t, outcomes, 4)
	assert.Equal(t, "parsed a.pdf", outcomes[0].Value)
	assert.Equal(t, 2, outcomes[2].Index)
	assert.EqualError(t, outcomes[2].Err, "unreadable")
	assert.Equal(t, "parsed c.pdf", outcomes[3].Value)
}

func TestMap_StoppedPool(t *testing.T) {
	pool := NewWorkerPool(2)
	outcomes := Map(context.Background(), pool, []int{1, 2}, func(_ context.Context, n int) (int, error) {
		return n, nil
	})
	for _, o := range outcomes {
		assert.ErrorIs(t, o.Err, ErrPoolStopped)
	}
}

func TestMap_CancelledContext(t *testing.T) {
	pool := NewWorkerPool(2)
	pool.Start()
	defer pool.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var calls atomic.Int64
	outcomes := Map(ctx, pool, []int{1, 2, 3}, func(_ context.Context, n int) (int, error) {
		calls.Add(1)
		return n, nil
	})
	for _, o := range outcomes {
		assert.ErrorIs(t, o.Err, context.Canceled)
	}
	assert.Zero(t, calls.Load())
}

func TestProperty_MapMatchesSequential(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	properties := gopter.NewProperties(parameters)

	properties.Property("Map returns the same results as a sequential loop", prop.ForAll(
		func(items []int, workers int) bool {
			pool := NewWorkerPool(workers)
			pool.Start()
			defer pool.Stop()

			fn := func(_ context.Context, n int) (string, error) {
				return fmt.Sprintf("%d", n*n), nil
			}
			outcomes := Map(context.Background(), pool, items, fn)
			if len(outcomes) != len(items) {
				return false
			}
			for i, n := range items {
				want, _ := fn(context.Background(), n)
				if outcomes[i].Index != i || outcomes[i].Value != want || outcomes[i].Err != nil {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.IntRange(-1000, 1000)),
		gen.IntRange(1, 8),
	))

	properties.TestingRun(t)
}

func BenchmarkMap(b *testing.B) {
	pool := NewWorkerPool(4)
	pool.Start()
	defer pool.Stop()

	items := make([]int, 64)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Map(context.Background(), pool, items, func(_ context.Context, n int) (int, error) {
			return n + 1, nil
		})
	}
}
