// Package driver runs one outer NND iteration's worth of per-row work
// across a fixed worker pool, splitting [0, n) into blocks and fanning them
// out across an internal/concurrency.WorkStealingScheduler, so a run with
// uneven block costs (a common case for the last, partial block of a
// [0, n) split, or for rows whose candidate sets happen to be larger)
// keeps every worker busy instead of idling once its own queue empties.
// Cancellation is cooperative and checked only at block boundaries: a
// worker never aborts mid-block, it finishes the block it's on and then
// stops picking up new ones, so a cancelled build still returns a usable
// (if incomplete) graph rather than a half-written row.
package driver

import (
	"context"
	"runtime"
	"sync"

	"github.com/vspinu/rnndescent/internal/concurrency"
	"github.com/vspinu/rnndescent/internal/logging"
)

// BlockFunc processes one row block [start, end) on the given worker index.
// worker is the id of the goroutine actually running this block — safe to
// use as an index into per-worker state (a counters slice, a pooled
// scratch buffer) — not the block's nominal owner, since a stolen block
// runs under its thief's id. Implementations must treat ctx.Err() as
// advisory, not fatal: Run itself decides whether to keep dispatching
// further blocks, so a BlockFunc returning a non-nil error aborts the
// whole run, while simply observing ctx.Err() and returning nil lets the
// run drain cleanly.
type BlockFunc func(ctx context.Context, start, end, worker int) error

// Options configures a Run call.
type Options struct {
	// Workers is the number of goroutines fanning out over the blocks. Zero
	// or negative defaults to runtime.GOMAXPROCS(0).
	Workers int
	// Grain is the number of rows per block. Zero or negative defaults to
	// a size that gives each worker roughly 4 blocks, which smooths out
	// uneven block costs without fragmenting into one block per row.
	Grain int
	// Component names the logical stage (e.g. "build", "query",
	// "diversify") tagged onto each worker's log lines.
	Component string
}

// Stats reports what a Run call actually did, for callers that want to
// feed iteration counters into internal/telemetry.
type Stats struct {
	Blocks    int
	Workers   int
	Grain     int
	Cancelled bool
}

// Run splits [0, n) into blocks of Options.Grain rows and calls fn once per
// block, fanned out across Options.Workers goroutines via a
// WorkStealingScheduler. It returns the first error any block returns; the
// first error also cancels a Run-local context so blocks not yet started
// stop dispatching, while blocks already in flight always finish. A
// cancellation of the caller's ctx between blocks is not itself an error:
// Run stops dispatching new blocks and returns nil with Stats.Cancelled
// set.
func Run(ctx context.Context, n int, opts Options, fn BlockFunc) (Stats, error) {
	workers := ResolveWorkers(opts.Workers)
	grain := opts.Grain
	if grain <= 0 {
		grain = autoGrain(n, workers)
	}

	blocks := blockBounds(n, grain)
	stats := Stats{Blocks: len(blocks), Workers: workers, Grain: grain}
	if len(blocks) == 0 {
		return stats, nil
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	scheduler := concurrency.NewWorkStealingScheduler(workers)

	var (
		mu       sync.Mutex
		firstErr error
	)

	for bi, b := range blocks {
		b := b
		owner := bi % workers
		scheduler.Submit(owner, func(worker int) {
			if runCtx.Err() != nil {
				return
			}
			logger := logging.NewWorkerLogger(opts.Component, worker)
			if err := fn(runCtx, b.start, b.end, worker); err != nil {
				logger.Error("block failed", map[string]any{"start": b.start, "end": b.end, "error": err.Error()})
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
				cancel()
			}
		})
	}

	scheduler.Drain()

	if firstErr == nil && ctx.Err() != nil {
		stats.Cancelled = true
	}
	return stats, firstErr
}

// ResolveWorkers applies Options.Workers' defaulting rule on its own: zero
// or negative becomes runtime.GOMAXPROCS(0). Callers that size per-worker
// state (a counters slice, a pooled scratch buffer) ahead of a Run call
// must use this instead of guessing, since a mismatch between the caller's
// sizing and Run's own resolution panics on the first out-of-range worker
// id.
func ResolveWorkers(workers int) int {
	if workers <= 0 {
		return runtime.GOMAXPROCS(0)
	}
	return workers
}

type block struct{ start, end int }

func blockBounds(n, grain int) []block {
	if n <= 0 {
		return nil
	}
	blocks := make([]block, 0, (n+grain-1)/grain)
	for start := 0; start < n; start += grain {
		end := start + grain
		if end > n {
			end = n
		}
		blocks = append(blocks, block{start: start, end: end})
	}
	return blocks
}

// autoGrain aims for roughly 4 blocks per worker, floored at 1 row, so a
// small N doesn't explode into more blocks than rows.
func autoGrain(n, workers int) int {
	if workers < 1 {
		workers = 1
	}
	target := n / (workers * 4)
	if target < 1 {
		target = 1
	}
	return target
}
