package nnd

import (
	"context"

	"github.com/vspinu/rnndescent/internal/concurrency"
	"github.com/vspinu/rnndescent/internal/driver"
	"github.com/vspinu/rnndescent/internal/errors"
	"github.com/vspinu/rnndescent/internal/nnd/rng"
	"github.com/vspinu/rnndescent/internal/telemetry"
	"github.com/vspinu/rnndescent/pkg/matrix"
	"github.com/vspinu/rnndescent/pkg/metric"
)

// QueryOptions configures Query. Zero-valued fields take the defaults
// documented on each one.
type QueryOptions struct {
	// K is the number of neighbors sought per query point, used only when
	// init is nil (otherwise K is taken from init.K). Defaults to 10.
	K int
	// Metric selects the distance function. Defaults to Euclidean.
	Metric metric.Tag
	// Epsilon is the convergence threshold, expressed as a fraction of
	// K*n_query — the query loop's analogue of BuildOptions.Delta. It is
	// not used to prune candidates while expanding the general-neighbor
	// graph. Defaults to 0.1.
	Epsilon float64
	// MaxIterations caps the outer loop. Zero picks max(5, round(log2(N))).
	MaxIterations int
	// Workers bounds per-query-point parallelism. Zero lets the driver
	// choose.
	Workers int
	// Seed makes candidate sampling and random initialization
	// reproducible.
	Seed uint64
	// GeneralNeighborDegree bounds the symmetric-closure general-neighbor
	// graph built from refGraph. Zero defaults to 2*K.
	GeneralNeighborDegree int
}

func (o QueryOptions) withDefaults() QueryOptions {
	if o.K <= 0 {
		o.K = 10
	}
	if o.Metric == "" {
		o.Metric = metric.Euclidean
	}
	if o.Epsilon <= 0 {
		o.Epsilon = 0.1
	}
	if o.GeneralNeighborDegree <= 0 {
		o.GeneralNeighborDegree = 2 * o.K
	}
	return o
}

// Query finds the approximate K nearest reference points for every row of
// query, by expanding outward from a starting candidate set through
// refGraph's general-neighbor closure. refGraph must already be a built
// (or otherwise supplied) K-nearest-neighbor graph over ref; it is read
// only, never mutated, and may be shared across concurrent Query calls.
func Query(ctx context.Context, ref, query *matrix.Matrix, refGraph *NNGraph, init *NNGraph, opts QueryOptions) (*NNGraph, error) {
	if ref.Cols() != query.Cols() {
		return nil, errors.NewValidationError("nnd.Query", "ref and query must share dimensionality")
	}
	if refGraph.NPoints != ref.Rows() {
		return nil, errors.NewValidationError("nnd.Query", "refGraph does not match ref")
	}
	opts = opts.withDefaults()
	if init != nil {
		opts.K = init.K
	}
	if opts.K <= 0 || opts.K >= ref.Rows() {
		return nil, errors.NewValidationError("nnd.Query", "k must satisfy 0 < k < len(ref)")
	}

	dist, err := metric.NewQuery(opts.Metric, ref, query)
	if err != nil {
		return nil, errors.WrapValidationError(err, "nnd.Query", "invalid metric")
	}

	gn := BuildGeneralNeighborGraph(refGraph, opts.GeneralNeighborDegree)

	var queryGraph *NeighborHeap
	if init != nil {
		if init.NPoints != query.Rows() {
			return nil, errors.NewValidationError("nnd.Query", "init graph does not match query")
		}
		queryGraph = loadQueryInit(init)
	} else {
		queryGraph = randomQueryInit(query.Rows(), ref.Rows(), opts.K, dist, opts.Seed)
	}

	maxCandidates := opts.K
	threshold := opts.Epsilon * float64(opts.K) * float64(query.Rows())
	maxIterations := opts.MaxIterations
	if maxIterations <= 0 {
		maxIterations = defaultIterationCount(query.Rows())
	}

	for iteration := 1; iteration <= maxIterations; iteration++ {
		if ctx.Err() != nil {
			break
		}

		candidates := BuildQueryCandidates(queryGraph, RandomSample(), maxCandidates, opts.Seed+uint64(iteration))
		accepted, err := expandQueryCandidates(ctx, queryGraph, candidates, gn, dist, opts.Workers)
		if err != nil {
			return nil, errors.WrapInternalError(err, "nnd.Query", "candidate expansion failed")
		}
		telemetry.QueryIterationsTotal.Inc()

		if float64(accepted) <= threshold {
			break
		}
	}

	return GraphFromHeap(queryGraph), nil
}

// expandQueryCandidates walks, for every query point, the general
// neighbors of its sampled reference candidates and pushes any
// improvement found into queryGraph. It runs across the parallel driver,
// one block of query points per goroutine; pushes are one-directional
// (CheckedPush, not CheckedPushPair) because a query point is never a
// member of the reference graph being searched.
func expandQueryCandidates(ctx context.Context, queryGraph *NeighborHeap, candidates *NeighborHeap, gn *NeighborHeap, dist metric.Distance, workers int) (int, error) {
	n := queryGraph.NPoints()
	w := driver.ResolveWorkers(workers)
	counters := make([]int64, w)
	seenPool := concurrency.NewConcurrentPool(w, func() map[uint32]struct{} {
		return make(map[uint32]struct{}, 64)
	})

	_, err := driver.Run(ctx, n, driver.Options{Workers: workers, Component: "query-expand"},
		func(ctx context.Context, start, end, worker int) error {
			seen := seenPool.Get(worker)
			defer func() {
				clear(seen)
				seenPool.Put(worker, seen)
			}()
			for qi := start; qi < end; qi++ {
				clear(seen)
				counters[worker] += expandOneQuery(qi, queryGraph, candidates, gn, dist, seen)
			}
			return nil
		})
	if err != nil {
		return 0, err
	}

	var total int64
	for _, c := range counters {
		total += c
	}
	return int(total), nil
}

func expandOneQuery(qi int, queryGraph *NeighborHeap, candidates *NeighborHeap, gn *NeighborHeap, dist metric.Distance, seen map[uint32]struct{}) int64 {
	var accepted int64
	for _, p := range candidates.ValidNeighbors(qi) {
		for _, r := range gn.ValidNeighbors(int(p)) {
			if _, ok := seen[r]; ok {
				continue
			}
			seen[r] = struct{}{}
			d := dist.Cross(int(r), qi)
			accepted += int64(queryGraph.CheckedPushSync(qi, d, int(r), true))
		}
	}
	return accepted
}

// loadQueryInit seeds a query NeighborHeap from a caller-supplied NNGraph,
// pushing one-directionally since init.Idx entries name reference points,
// not query points.
func loadQueryInit(init *NNGraph) *NeighborHeap {
	h := NewNeighborHeap(init.NPoints, init.K)
	for i := 0; i < init.NPoints; i++ {
		idxRow, distRow := init.Row(i)
		for k, j := range idxRow {
			if j == NPOS {
				continue
			}
			h.CheckedPush(i, distRow[k], int(j), true)
		}
	}
	return h
}

// randomQueryInit seeds each query point with k distinct random reference
// points, mirroring randomInitGraph's attempt-budget guard.
func randomQueryInit(nQuery, nRef, k int, dist metric.Distance, seed uint64) *NeighborHeap {
	h := NewNeighborHeap(nQuery, k)
	maxDegree := nRef
	maxAttempts := nRef * 4

	for i := 0; i < nQuery; i++ {
		stream := rng.NewStream(seed, i)
		filled := 0
		for attempt := 0; filled < k && filled < maxDegree && attempt < maxAttempts; attempt++ {
			r := stream.IntN(nRef)
			d := dist.Cross(r, i)
			if h.CheckedPush(i, d, r, true) > 0 {
				filled++
			}
		}
	}
	return h
}
