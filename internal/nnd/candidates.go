package nnd

import (
	"github.com/vspinu/rnndescent/internal/nnd/rng"
)

// CandidatePriority decides the key a candidate is pushed into a bounded
// candidate heap under. Because the candidate heaps are themselves bounded
// max-heaps (NeighborHeap), whichever key sorts smallest survives
// truncation — so the priority is implemented purely as "what value do we
// push", not as a separate selection pass.
type CandidatePriority interface {
	// ShouldSort reports whether callers that inspect a candidate row
	// afterwards should treat heap order as meaningful distance order.
	ShouldSort() bool
	// Key returns the value to push for a candidate currently at true
	// distance trueDist, drawing from stream if the priority is stochastic.
	Key(stream *rng.Stream, trueDist float64) float64
}

type rankedByDistance struct{}

// RankedByDistance keeps the candidates closest to the pivot, by pushing
// the true distance as the heap key. Appropriate for the general-neighbor
// graph, where query mode wants to traverse towards the nearest points.
func RankedByDistance() CandidatePriority { return rankedByDistance{} }

func (rankedByDistance) ShouldSort() bool                                { return true }
func (rankedByDistance) Key(_ *rng.Stream, trueDist float64) float64     { return trueDist }

type randomSample struct{}

// RandomSample keeps a uniform random subset of candidates, by pushing a
// fresh random key instead of the true distance. This is the default for
// the new/old candidate heaps feeding the local join: NND's exploration
// step wants breadth, not the closest-so-far, since "closest so far" is
// exactly what the current graph already holds.
func RandomSample() CandidatePriority { return randomSample{} }

func (randomSample) ShouldSort() bool                            { return false }
func (randomSample) Key(stream *rng.Stream, _ float64) float64 { return stream.Float64() }

// CandidateHeaps holds the per-point "new" and "old" candidate rows sampled
// from a graph ahead of one local-join pass. New holds neighbors discovered
// since the last sampling round; Old holds neighbors already explored.
type CandidateHeaps struct {
	New *NeighborHeap
	Old *NeighborHeap
}

// BuildCandidates samples New/Old candidate heaps from graph for the build
// (self-join) loop. maxCandidates bounds each row's width, typically
// ceil(rho*K). A graph row entry is moved from New to Old in graph itself
// (flag flipped false) only if it is still in the sampled New heap once
// every row has been sampled — an entry that lost out to truncation stays
// flagged new so it gets another chance to be sampled next iteration
// (FlagRetainedNewCandidates, run as a post-pass).
func BuildCandidates(graph *NeighborHeap, priority CandidatePriority, maxCandidates int, seed uint64) *CandidateHeaps {
	n := graph.NPoints()
	newH := NewNeighborHeap(n, maxCandidates)
	oldH := NewNeighborHeap(n, maxCandidates)

	for i := 0; i < n; i++ {
		stream := rng.NewStream(seed, i)
		for j := 0; j < graph.NNbrs(); j++ {
			nbr := graph.Index(i, j)
			if nbr == NPOS {
				continue
			}
			key := priority.Key(stream, graph.Distance(i, j))
			if graph.Flag(i, j) {
				newH.CheckedPushPair(i, key, int(nbr), true)
			} else {
				oldH.CheckedPushPair(i, key, int(nbr), true)
			}
		}
	}

	for i := 0; i < n; i++ {
		for j := 0; j < graph.NNbrs(); j++ {
			nbr := graph.Index(i, j)
			if nbr == NPOS || !graph.Flag(i, j) {
				continue
			}
			FlagRetainedNewCandidates(graph, i, j, newH.Contains(i, nbr))
		}
	}

	return &CandidateHeaps{New: newH, Old: oldH}
}

// BuildQueryCandidates samples a new-candidate heap for the query loop.
// Query mode has no use for an Old heap the way BuildCandidates does: the
// reference graph being searched is static, so there is nothing gained from
// remembering which reference points were explored in a previous round —
// every iteration samples afresh from whatever queryGraph currently holds.
// Pushes are one-directional: queryGraph rows address query points, and a
// push never fans out to a reciprocal row since query points are not
// members of the reference graph being searched.
func BuildQueryCandidates(queryGraph *NeighborHeap, priority CandidatePriority, maxCandidates int, seed uint64) *NeighborHeap {
	n := queryGraph.NPoints()
	newH := NewNeighborHeap(n, maxCandidates)

	for i := 0; i < n; i++ {
		stream := rng.NewStream(seed, i)
		for j := 0; j < queryGraph.NNbrs(); j++ {
			nbr := queryGraph.Index(i, j)
			if nbr == NPOS {
				continue
			}
			key := priority.Key(stream, queryGraph.Distance(i, j))
			newH.CheckedPush(i, key, int(nbr), true)
		}
	}

	return newH
}

// FlagRetainedNewCandidates flips graph's flag at (row, col) to old (false)
// when retained is true, and leaves it untouched otherwise. Exported as its
// own step, called from BuildCandidates' post-pass, because getting it
// backwards (flipping regardless of retention) silently starves the next
// iteration's sampling of candidates that were merely unlucky, not
// actually explored.
func FlagRetainedNewCandidates(graph *NeighborHeap, row, col int, retained bool) {
	if retained {
		graph.SetFlag(row, col, false)
	}
}

// ValidNeighbors returns the non-sentinel neighbor ids stored in row i, in
// heap order (not sorted by distance).
func (h *NeighborHeap) ValidNeighbors(i int) []uint32 {
	out := make([]uint32, 0, h.nNbrs)
	base := i * h.nNbrs
	for k := 0; k < h.nNbrs; k++ {
		if h.idx[base+k] != NPOS {
			out = append(out, h.idx[base+k])
		}
	}
	return out
}

// BuildGeneralNeighborGraph builds the read-only general-neighbor graph
// ("gn_graph") query mode traverses: the symmetric closure of refGraph,
// capped at maxDegree per point. Taking the closure matters because a
// point's nearest neighbors are not always the points that consider it
// their nearest neighbor; traversal needs both directions to reach the
// true neighborhood of an arbitrary query point.
func BuildGeneralNeighborGraph(refGraph *NNGraph, maxDegree int) *NeighborHeap {
	gn := NewNeighborHeap(refGraph.NPoints, maxDegree)
	for i := 0; i < refGraph.NPoints; i++ {
		idxRow, distRow := refGraph.Row(i)
		for k, j := range idxRow {
			if j == NPOS {
				continue
			}
			gn.CheckedPushPair(i, distRow[k], int(j), true)
		}
	}
	return gn
}
