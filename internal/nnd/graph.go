package nnd

import (
	"math"

	"github.com/vspinu/rnndescent/pkg/matrix"
)

// NNGraph is the sorted, dense N×K neighbor-index/distance result the
// build and query loops return. Unlike NeighborHeap it makes no promise of
// heap order — GraphFromHeap always deheap-sorts before copying out, so row
// j is ascending by distance, sentinel entries (NPOS / +Inf) trailing.
type NNGraph struct {
	NPoints int
	K       int
	Idx     []uint32
	Dist    []float64
}

// NewNNGraph allocates an NNGraph with every slot set to the sentinel.
func NewNNGraph(nPoints, k int) *NNGraph {
	g := &NNGraph{NPoints: nPoints, K: k, Idx: make([]uint32, nPoints*k), Dist: make([]float64, nPoints*k)}
	for i := range g.Idx {
		g.Idx[i] = NPOS
	}
	for i := range g.Dist {
		g.Dist[i] = math.Inf(1)
	}
	return g
}

// Row returns row i as a pair of slices sharing g's backing arrays.
func (g *NNGraph) Row(i int) ([]uint32, []float64) {
	return g.Idx[i*g.K : (i+1)*g.K], g.Dist[i*g.K : (i+1)*g.K]
}

// GraphFromHeap deheap-sorts h in place and copies the result into a fresh
// NNGraph. h must not be reused for further CheckedPush calls afterwards.
func GraphFromHeap(h *NeighborHeap) *NNGraph {
	h.DeheapSort()
	g := NewNNGraph(h.NPoints(), h.NNbrs())
	copy(g.Idx, h.idx)
	copy(g.Dist, h.dist)
	return g
}

// HeapFromGraph loads an NNGraph into a fresh NeighborHeap, pushing every
// edge with CheckedPushPair and flag=true ("new"). Used to seed the build
// loop's current_graph from caller-supplied initial neighbors.
func HeapFromGraph(g *NNGraph) *NeighborHeap {
	h := NewNeighborHeap(g.NPoints, g.K)
	for i := 0; i < g.NPoints; i++ {
		idxRow, distRow := g.Row(i)
		for k, j := range idxRow {
			if j == NPOS {
				continue
			}
			h.CheckedPushPair(i, distRow[k], int(j), true)
		}
	}
	return h
}

// ToIndexGraph converts g to the public, 1-indexed matrix.IndexGraph the
// boundary functions return.
func (g *NNGraph) ToIndexGraph() *matrix.IndexGraph {
	out := &matrix.IndexGraph{Idx: make([][]uint32, g.NPoints), Dist: make([][]float64, g.NPoints), K: g.K}
	for i := 0; i < g.NPoints; i++ {
		idxRow, distRow := g.Row(i)
		out.Idx[i] = append([]uint32(nil), idxRow...)
		out.Dist[i] = append([]float64(nil), distRow...)
	}
	return matrix.ToOneIndexed(out, NPOS)
}

// FromIndexGraph converts a public 1-indexed matrix.IndexGraph into an
// internal 0-indexed NNGraph.
func FromIndexGraph(g *matrix.IndexGraph) *NNGraph {
	zero := matrix.ToZeroIndexed(g, NPOS)
	out := &NNGraph{NPoints: len(zero.Idx), K: zero.K, Idx: make([]uint32, len(zero.Idx)*zero.K), Dist: make([]float64, len(zero.Idx)*zero.K)}
	for i, row := range zero.Idx {
		copy(out.Idx[i*zero.K:(i+1)*zero.K], row)
		copy(out.Dist[i*zero.K:(i+1)*zero.K], zero.Dist[i])
	}
	return out
}
