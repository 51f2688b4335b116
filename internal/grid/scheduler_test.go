package grid

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testScheduler(workers int) *Scheduler {
	s := NewScheduler(workers, 1024, "")
	return s
}

func TestSchedulerRun(t *testing.T) {
	t.Parallel()

	t.Run("processes every block once", func(t *testing.T) {
		t.Parallel()
		tiling, err := NewTiling(1000, 700, 256)
		require.NoError(t, err)

		var (
			mu   sync.Mutex
			seen = make(map[Block]int)
		)
		result, err := testScheduler(4).Run(context.Background(), tiling, func(b Block) error {
			mu.Lock()
			seen[b]++
			mu.Unlock()
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, tiling.Count(), result.Completed)
		assert.Empty(t, result.Failures)
		assert.Len(t, seen, tiling.Count())
		for b, n := range seen {
			assert.Equal(t, 1, n, "block %s processed %d times", b, n)
		}
	})

	t.Run("records failed blocks with coordinates", func(t *testing.T) {
		t.Parallel()
		tiling, err := NewTiling(512, 512, 256)
		require.NoError(t, err)

		boom := errors.New("boom")
		result, err := testScheduler(2).Run(context.Background(), tiling, func(b Block) error {
			if b.Row == 1 && b.Col == 0 {
				return boom
			}
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 3, result.Completed)
		require.Len(t, result.Failures, 1)
		assert.True(t, result.Partial())
		assert.Equal(t, 1, result.Failures[0].Block.Row)
		assert.Equal(t, 0, result.Failures[0].Block.Col)
		assert.ErrorIs(t, result.Failures[0], boom)
	})

	t.Run("fail fast aborts the pass", func(t *testing.T) {
		t.Parallel()
		tiling, err := NewTiling(10000, 10000, 100)
		require.NoError(t, err)

		s := testScheduler(2)
		s.FailFast = true
		var calls atomic.Int64
		result, err := s.Run(context.Background(), tiling, func(b Block) error {
			if calls.Add(1) == 1 {
				return errors.New("boom")
			}
			return nil
		})
		require.Error(t, err)
		assert.NotEmpty(t, result.Failures)
		assert.Less(t, result.Completed, tiling.Count())
	})

	t.Run("cancelled context is fatal", func(t *testing.T) {
		t.Parallel()
		tiling, err := NewTiling(512, 512, 256)
		require.NoError(t, err)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		result, err := testScheduler(2).Run(ctx, tiling, func(b Block) error {
			return nil
		})
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 0, result.Completed)
	})

	t.Run("cancelling mid-pass stops dispatch, in-flight blocks finish", func(t *testing.T) {
		t.Parallel()
		tiling, err := NewTiling(512, 512, 256) // 4 blocks
		require.NoError(t, err)

		s := testScheduler(1)
		s.BlockBytes = 1 << 10
		s.MemoryBudget = 1 << 10 // one block admitted at a time

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		result, err := s.Run(ctx, tiling, func(b Block) error {
			cancel()
			return nil
		})
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 1, result.Completed)
		assert.Empty(t, result.Failures)
	})

	t.Run("memory budget caps concurrency", func(t *testing.T) {
		t.Parallel()
		tiling, err := NewTiling(1000, 1000, 100)
		require.NoError(t, err)

		s := testScheduler(16)
		s.BlockBytes = 1 << 20
		s.MemoryBudget = 2 << 20 // admits two blocks at a time

		var inFlight, peak atomic.Int64
		result, err := s.Run(context.Background(), tiling, func(b Block) error {
			n := inFlight.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			inFlight.Add(-1)
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, tiling.Count(), result.Completed)
		assert.LessOrEqual(t, peak.Load(), int64(2))
	})

	t.Run("block larger than budget still runs", func(t *testing.T) {
		t.Parallel()
		tiling, err := NewTiling(100, 100, 100)
		require.NoError(t, err)

		s := testScheduler(2)
		s.BlockBytes = 4 << 20
		s.MemoryBudget = 1 << 20

		result, err := s.Run(context.Background(), tiling, func(b Block) error {
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 1, result.Completed)
	})
}

func TestBlockFailureError(t *testing.T) {
	t.Parallel()
	boom := errors.New("boom")
	f := BlockFailure{Block: Block{Row: 2, Col: 3, X: 768, Y: 512, Width: 256, Height: 256}, Err: boom}
	assert.Contains(t, f.Error(), "2,3")
	assert.ErrorIs(t, f, boom)
}
