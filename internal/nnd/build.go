package nnd

import (
	"context"
	"math"
	"time"

	"github.com/vspinu/rnndescent/internal/errors"
	"github.com/vspinu/rnndescent/internal/nnd/rng"
	"github.com/vspinu/rnndescent/internal/telemetry"
	"github.com/vspinu/rnndescent/pkg/matrix"
	"github.com/vspinu/rnndescent/pkg/metric"
)

// ProgressFunc is invoked once per completed build iteration with the
// 1-based iteration number, the number of updates it accepted, and the
// convergence threshold those updates are measured against. Returning
// false requests an early stop, treated the same as natural convergence —
// not as an error.
type ProgressFunc func(iteration, accepted int, threshold float64) bool

// BuildOptions configures Build. Zero-valued fields take the defaults
// documented on each one.
type BuildOptions struct {
	// Metric selects the distance function. Defaults to Euclidean.
	Metric metric.Tag
	// RhoSampleRate bounds each iteration's candidate rows to
	// ceil(RhoSampleRate*K) entries. Defaults to 0.5.
	RhoSampleRate float64
	// Delta is the convergence threshold as a fraction of the maximum
	// possible updates (delta*K*N). Zero is kept as-is (the loop stops only
	// once an iteration accepts no update); a negative value is replaced
	// by 0.001.
	Delta float64
	// MaxIterations caps the outer loop. Zero picks max(5, round(log2(N))).
	MaxIterations int
	// Workers bounds local-join parallelism. Zero lets the driver choose.
	Workers int
	// Seed makes candidate sampling and random initialization
	// reproducible for a fixed seed and worker count.
	Seed uint64
	// LowMemory switches candidate construction to a single new-only pass
	// that allocates the Old heap at zero width; see
	// buildCandidatesLowMemory.
	LowMemory bool
	// Progress, if set, is called after every iteration.
	Progress ProgressFunc
}

func (o BuildOptions) withDefaults() BuildOptions {
	if o.Metric == "" {
		o.Metric = metric.Euclidean
	}
	if o.RhoSampleRate <= 0 {
		o.RhoSampleRate = 0.5
	}
	if o.Delta < 0 {
		o.Delta = 0.001
	}
	return o
}

// Build runs nearest-neighbor descent to approximate the K-nearest-neighbor
// graph of data. If init is non-nil it seeds the starting graph (e.g. a
// coarser approximation from a previous run); otherwise the starting graph
// is K random edges per point.
func Build(ctx context.Context, data *matrix.Matrix, k int, init *NNGraph, opts BuildOptions) (*NNGraph, error) {
	if data.Rows() < 2 {
		return nil, errors.NewValidationError("nnd.Build", "need at least 2 points")
	}
	if k <= 0 || k >= data.Rows() {
		return nil, errors.NewValidationError("nnd.Build", "k must satisfy 0 < k < n_points")
	}
	opts = opts.withDefaults()

	dist, err := metric.New(opts.Metric, data)
	if err != nil {
		return nil, errors.WrapValidationError(err, "nnd.Build", "invalid metric")
	}

	var graph *NeighborHeap
	if init != nil {
		if init.K != k || init.NPoints != data.Rows() {
			return nil, errors.NewValidationError("nnd.Build", "init graph shape does not match (n_points, k)")
		}
		graph = HeapFromGraph(init)
	} else {
		graph = randomInitGraph(data.Rows(), k, dist, opts.Seed)
	}

	maxCandidates := int(math.Ceil(opts.RhoSampleRate * float64(k)))
	if maxCandidates < 1 {
		maxCandidates = 1
	}
	threshold := opts.Delta * float64(k) * float64(data.Rows())
	maxIterations := opts.MaxIterations
	if maxIterations <= 0 {
		maxIterations = defaultIterationCount(data.Rows())
	}

	for iteration := 1; iteration <= maxIterations; iteration++ {
		if ctx.Err() != nil {
			telemetry.BuildIterationsTotal.WithLabelValues("cancelled").Inc()
			break
		}

		started := time.Now()
		var candidates *CandidateHeaps
		if opts.LowMemory {
			candidates = buildCandidatesLowMemory(graph, maxCandidates, opts.Seed+uint64(iteration))
		} else {
			candidates = BuildCandidates(graph, RandomSample(), maxCandidates, opts.Seed+uint64(iteration))
		}

		updater := &GraphUpdater{Graph: graph, Candidates: candidates, Dist: dist}
		accepted, err := updater.GenerateAndApply(ctx, opts.Workers)
		if err != nil {
			return nil, errors.WrapInternalError(err, "nnd.Build", "local join failed")
		}
		telemetry.IterationDurationSeconds.Observe(time.Since(started).Seconds())

		converged := float64(accepted) <= threshold
		outcome := "continue"
		if converged {
			outcome = "converged"
		}
		telemetry.BuildIterationsTotal.WithLabelValues(outcome).Inc()
		telemetry.ConvergenceRatio.Set(float64(accepted) / math.Max(threshold, 1))

		if opts.Progress != nil && !opts.Progress(iteration, accepted, threshold) {
			break
		}
		if converged {
			break
		}
	}

	return GraphFromHeap(graph), nil
}

// randomInitGraph seeds a NeighborHeap with up to k distinct random
// neighbors per point, bailing out once a row has exhausted the n-1
// distinct candidates available or a generous attempt budget, whichever
// comes first — both guard against an infinite loop when k is close to n.
func randomInitGraph(n, k int, dist metric.Distance, seed uint64) *NeighborHeap {
	h := NewNeighborHeap(n, k)
	maxDegree := n - 1
	maxAttempts := n * 4

	for i := 0; i < n; i++ {
		stream := rng.NewStream(seed, i)
		filled := 0
		for attempt := 0; filled < k && filled < maxDegree && attempt < maxAttempts; attempt++ {
			j := stream.IntN(n)
			if j == i {
				continue
			}
			d := dist.Self(i, j)
			accepted := h.CheckedPush(i, d, j, true)
			if j != i {
				h.CheckedPush(j, d, i, true)
			}
			if accepted > 0 {
				filled++
			}
		}
	}
	return h
}

// defaultIterationCount picks max(5, round(log2(n))), the usual NND
// heuristic for how many outer passes it takes a random start to settle.
func defaultIterationCount(n int) int {
	if n < 2 {
		return 1
	}
	it := int(math.Round(math.Log2(float64(n))))
	if it < 5 {
		it = 5
	}
	return it
}
