package grid

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"sync"

	"github.com/gammazero/workerpool"
	"github.com/rs/zerolog"
	"github.com/schollz/progressbar/v3"
	"golang.org/x/sync/semaphore"
)

// BlockFailure records a single failed block with its coordinates. The rest
// of the pass is unaffected.
type BlockFailure struct {
	Block Block
	Err   error
}

func (f BlockFailure) Error() string {
	return fmt.Sprintf("%s: %v", f.Block, f.Err)
}

func (f BlockFailure) Unwrap() error {
	return f.Err
}

// PassResult reports the outcome of one block pass. A pass with failures is a
// partial success: every completed block wrote its disjoint output region.
type PassResult struct {
	Completed int
	Failures  []BlockFailure
}

func (r PassResult) Partial() bool {
	return len(r.Failures) > 0
}

// Scheduler executes a per-block operation across a bounded worker pool.
// Workers share no state; the callback owns all merging, guarded on its side.
// The in-flight block count is additionally capped so that blocks held in
// memory at once stay under MemoryBudget.
type Scheduler struct {
	Workers      int
	MemoryBudget int64 // bytes, 0 means the package default
	BlockBytes   int64 // peak bytes one in-flight block occupies
	FailFast     bool  // treat the first block failure as fatal
	Progress     string // progress bar label, empty disables the bar
	Log          zerolog.Logger
}

const defaultMemoryBudget = 2 << 30 // 2 GiB

func NewScheduler(workers int, blockBytes int64, progress string) *Scheduler {
	return &Scheduler{
		Workers:    workers,
		BlockBytes: blockBytes,
		Progress:   progress,
		Log:        zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger(),
	}
}

// Run dispatches every block of the tiling to the pool and waits for
// completion. Cancelling the context stops dispatching new blocks; blocks
// already running finish normally. The returned error is non-nil only for a
// fatal outcome (cancellation, or the first failure under FailFast); isolated
// block failures are reported through the PassResult.
func (s *Scheduler) Run(ctx context.Context, tiling Tiling, fn func(Block) error) (PassResult, error) {
	workers := s.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	budget := s.MemoryBudget
	if budget <= 0 {
		budget = defaultMemoryBudget
	}
	blockBytes := s.BlockBytes
	if blockBytes <= 0 {
		blockBytes = 1
	}
	if blockBytes > budget {
		// A single block must always be admissible.
		budget = blockBytes
	}
	if maxInFlight := int(budget / blockBytes); workers > maxInFlight {
		s.Log.Warn().
			Int("workers", workers).
			Int("admitted", maxInFlight).
			Int64("block_bytes", blockBytes).
			Msg("worker count reduced to honor memory budget")
		workers = maxInFlight
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		mu     sync.Mutex
		result PassResult
	)

	sem := semaphore.NewWeighted(budget)
	wp := workerpool.New(workers)
	var bar *progressbar.ProgressBar
	if s.Progress != "" {
		bar = progressbar.Default(int64(tiling.Count()), s.Progress)
	}

	s.Log.Info().
		Int("blocks", tiling.Count()).
		Int("workers", workers).
		Int("tile", tiling.TileSize).
		Msg("starting block pass")

	for block := range tiling.Blocks() {
		if runCtx.Err() != nil {
			break
		}
		if err := sem.Acquire(runCtx, blockBytes); err != nil {
			break
		}
		b := block
		wp.Submit(func() {
			defer sem.Release(blockBytes)
			err := fn(b)

			mu.Lock()
			if err != nil {
				result.Failures = append(result.Failures, BlockFailure{Block: b, Err: err})
			} else {
				result.Completed++
			}
			mu.Unlock()

			if bar != nil {
				bar.Add(1)
			}
			if err != nil && s.FailFast {
				cancel()
			}
		})
	}
	wp.StopWait()
	if bar != nil {
		bar.Finish()
	}

	if s.FailFast && len(result.Failures) > 0 {
		return result, fmt.Errorf("pass aborted on %s", result.Failures[0])
	}
	if err := ctx.Err(); err != nil {
		return result, err
	}
	if result.Partial() {
		s.Log.Warn().
			Int("completed", result.Completed).
			Int("failed", len(result.Failures)).
			Msg("pass finished with failed blocks")
	}
	return result, nil
}
