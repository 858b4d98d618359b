package nnd

import (
	"github.com/vspinu/rnndescent/internal/errors"
	"github.com/vspinu/rnndescent/internal/nnd/rng"
	"github.com/vspinu/rnndescent/internal/telemetry"
	"github.com/vspinu/rnndescent/pkg/matrix"
	"github.com/vspinu/rnndescent/pkg/metric"
)

// diversifySeed is used to derive the per-row RNG stream diversify's
// probabilistic pruning draws from. Diversify's signature carries no seed
// parameter, so this engine fixes one rather than silently varying prune
// decisions run to run. Each row's draws depend only on its row index and
// its distance-sorted contents, so reordering a row's input entries does
// not change them.
const diversifySeed uint64 = 1

// Diversify removes dominated edges from the dense graph g, converting it
// to a SparseGraph in the process. An edge (i, j) is dominated when some
// other retained neighbor r of i is strictly closer to j than i is —
// meaning j is better reached via r than directly from i, so the direct
// edge is redundant for search purposes. pruneProbability controls how
// often a dominated edge is actually dropped: 1.0 always drops it (the
// classic relative-neighborhood-graph prune), 0.0 never does (degrades to
// a no-op pass that only changes representation, not content).
func Diversify(data *matrix.Matrix, g *NNGraph, tag metric.Tag, pruneProbability float64) (*SparseGraph, error) {
	dist, err := metric.New(tag, data)
	if err != nil {
		return nil, errors.WrapValidationError(err, "nnd.Diversify", "invalid metric")
	}
	return diversifyCore(SparseFromGraph(g), dist, pruneProbability), nil
}

// DiversifySparse is Diversify's counterpart for a graph that has already
// been converted to sparse form, e.g. the output of a previous
// DegreePrune or MergeGraphs call.
func DiversifySparse(data *matrix.Matrix, g *SparseGraph, tag metric.Tag, pruneProbability float64) (*SparseGraph, error) {
	dist, err := metric.New(tag, data)
	if err != nil {
		return nil, errors.WrapValidationError(err, "nnd.DiversifySparse", "invalid metric")
	}
	return diversifyCore(g, dist, pruneProbability), nil
}

func diversifyCore(g *SparseGraph, dist metric.Distance, pruneProbability float64) *SparseGraph {
	out := NewSparseGraph(g.NPoints)
	var pruned float64

	for i := 0; i < g.NPoints; i++ {
		col, d := g.Row(i)
		col, d = sortedByDistance(col, d)
		stream := rng.NewStream(diversifySeed, i)

		retained := make([]uint32, 0, len(col))
		for k, j := range col {
			distToI := d[k]
			dominated := false
			for _, r := range retained {
				if dist.Self(int(j), int(r)) < distToI {
					dominated = true
					break
				}
			}

			drop := dominated && (pruneProbability >= 1.0 || stream.Float64() < pruneProbability)
			if drop {
				pruned++
				continue
			}
			retained = append(retained, j)
			out.Col = append(out.Col, j)
			out.Dist = append(out.Dist, distToI)
		}
		out.RowStart[i+1] = int32(len(out.Col))
	}

	telemetry.DiversifyEdgesPrunedTotal.WithLabelValues("diversify").Add(pruned)
	return out
}
