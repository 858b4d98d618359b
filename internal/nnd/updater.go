package nnd

import (
	"context"

	"github.com/vspinu/rnndescent/internal/concurrency"
	"github.com/vspinu/rnndescent/internal/driver"
	"github.com/vspinu/rnndescent/internal/telemetry"
	"github.com/vspinu/rnndescent/pkg/metric"
)

// GraphUpdater runs the local-join step of one NND iteration: for every
// pivot point p, every pair drawn from (New[p] × New[p]) ∪ (New[p] × Old[p])
// is evaluated under Dist and pushed into Graph. Pairs are written into the
// *candidates'* rows, not the pivot's row — the pivot only supplies the
// candidate set that makes the pair plausible.
type GraphUpdater struct {
	Graph      *NeighborHeap
	Candidates *CandidateHeaps
	Dist       metric.Distance
}

type pairKey struct{ a, b uint32 }

func normalizedPair(a, b uint32) pairKey {
	if a > b {
		a, b = b, a
	}
	return pairKey{a: a, b: b}
}

// GenerateAndApply runs the local join across every pivot point using the
// parallel driver and returns the number of accepted NeighborHeap updates.
// Pushes go through CheckedPushPairSync (AtomicUpdater), so blocks that
// happen to touch overlapping rows stay correct without the caller doing
// anything beyond picking a worker count. Each block reuses a pooled
// per-pivot seen-set from internal/concurrency.ConcurrentPool rather than
// allocating a fresh map per block, since the driver can run many blocks
// over the life of one GenerateAndApply call.
func (u *GraphUpdater) GenerateAndApply(ctx context.Context, workers int) (int, error) {
	n := u.Candidates.New.NPoints()
	w := driver.ResolveWorkers(workers)
	counters := make([]int64, w)
	seenPool := concurrency.NewConcurrentPool(w, func() map[pairKey]struct{} {
		return make(map[pairKey]struct{}, 64)
	})

	stats, err := driver.Run(ctx, n, driver.Options{Workers: workers, Component: "build-local-join"},
		func(ctx context.Context, start, end, worker int) error {
			seen := seenPool.Get(worker)
			defer func() {
				clear(seen)
				seenPool.Put(worker, seen)
			}()
			for pivot := start; pivot < end; pivot++ {
				clear(seen)
				counters[worker] += u.localJoin(pivot, seen)
			}
			return nil
		})
	if err != nil {
		return 0, err
	}
	_ = stats

	var total int64
	for _, c := range counters {
		total += c
	}
	telemetry.UpdatesAcceptedTotal.Add(float64(total))
	return int(total), nil
}

// localJoin is the BatchDedupUpdater step for a single pivot point: it
// walks the new/new and new/old candidate pairs, skipping any pair already
// evaluated for this pivot (seen is cleared by the caller between pivots),
// and applies surviving pairs to Graph.
func (u *GraphUpdater) localJoin(pivot int, seen map[pairKey]struct{}) int64 {
	newNbrs := u.Candidates.New.ValidNeighbors(pivot)
	oldNbrs := u.Candidates.Old.ValidNeighbors(pivot)

	var accepted int64
	for j := 0; j < len(newNbrs); j++ {
		p := newNbrs[j]
		for k := j; k < len(newNbrs); k++ {
			q := newNbrs[k]
			if p == q {
				continue
			}
			accepted += int64(u.applyPair(p, q, seen))
		}
		for k := 0; k < len(oldNbrs); k++ {
			q := oldNbrs[k]
			accepted += int64(u.applyPair(p, q, seen))
		}
	}
	return accepted
}

func (u *GraphUpdater) applyPair(p, q uint32, seen map[pairKey]struct{}) int {
	key := normalizedPair(p, q)
	if _, ok := seen[key]; ok {
		return 0
	}
	seen[key] = struct{}{}

	d := u.Dist.Self(int(p), int(q))
	return u.Graph.CheckedPushPairSync(int(p), d, int(q), true)
}
