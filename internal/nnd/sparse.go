package nnd

import "github.com/vspinu/rnndescent/pkg/matrix"

// SparseGraph is a CSR-style compact neighbor list: row i's neighbors live
// in Col[RowStart[i]:RowStart[i+1]], with matching weights in
// Dist[RowStart[i]:RowStart[i+1]]. Graph-edit passes (Diversify,
// DegreePrune, MergeGraphs) all produce and consume this shape rather than
// NNGraph's fixed-K dense layout, since pruning naturally leaves rows of
// varying width.
type SparseGraph struct {
	NPoints  int
	RowStart []int32
	Col      []uint32
	Dist     []float64
}

// NewSparseGraph allocates an empty SparseGraph over nPoints rows.
func NewSparseGraph(nPoints int) *SparseGraph {
	return &SparseGraph{NPoints: nPoints, RowStart: make([]int32, nPoints+1)}
}

// SparseFromGraph converts a dense NNGraph into a SparseGraph, dropping
// sentinel entries.
func SparseFromGraph(g *NNGraph) *SparseGraph {
	sg := NewSparseGraph(g.NPoints)
	for i := 0; i < g.NPoints; i++ {
		idxRow, distRow := g.Row(i)
		for k, j := range idxRow {
			if j == NPOS {
				continue
			}
			sg.Col = append(sg.Col, j)
			sg.Dist = append(sg.Dist, distRow[k])
		}
		sg.RowStart[i+1] = int32(len(sg.Col))
	}
	return sg
}

// Row returns row i's neighbor columns and distances, sharing sg's backing
// arrays.
func (sg *SparseGraph) Row(i int) ([]uint32, []float64) {
	return sg.Col[sg.RowStart[i]:sg.RowStart[i+1]], sg.Dist[sg.RowStart[i]:sg.RowStart[i+1]]
}

// Degree returns the number of neighbors stored for row i.
func (sg *SparseGraph) Degree(i int) int {
	return int(sg.RowStart[i+1] - sg.RowStart[i])
}

// ToIndexGraph converts sg to the public, 1-indexed matrix.IndexGraph the
// boundary functions return. Rows stay ragged; K is set to the widest row,
// for callers that want an upper bound rather than a per-row count.
func (sg *SparseGraph) ToIndexGraph() *matrix.IndexGraph {
	maxDegree := 0
	out := &matrix.IndexGraph{Idx: make([][]uint32, sg.NPoints), Dist: make([][]float64, sg.NPoints)}
	for i := 0; i < sg.NPoints; i++ {
		col, dist := sg.Row(i)
		out.Idx[i] = append([]uint32(nil), col...)
		out.Dist[i] = append([]float64(nil), dist...)
		if len(col) > maxDegree {
			maxDegree = len(col)
		}
	}
	out.K = maxDegree
	return matrix.ToOneIndexed(out, NPOS)
}

// DegreePrune returns a copy of g with every row truncated to at most
// maxDegree neighbors, keeping the closest ones. Rows are expected to
// already be sorted ascending by distance (as Diversify and
// GraphFromHeap-derived sparse graphs are); rows that are not pre-sorted
// are sorted here via a small insertion sort, cheap for the narrow rows
// this operates on.
func DegreePrune(g *SparseGraph, maxDegree int) *SparseGraph {
	out := NewSparseGraph(g.NPoints)
	for i := 0; i < g.NPoints; i++ {
		col, dist := g.Row(i)
		col, dist = sortedByDistance(col, dist)
		if len(col) > maxDegree {
			col = col[:maxDegree]
			dist = dist[:maxDegree]
		}
		out.Col = append(out.Col, col...)
		out.Dist = append(out.Dist, dist...)
		out.RowStart[i+1] = int32(len(out.Col))
	}
	return out
}

// MergeGraphs returns the union of a and b's edges, row by row, deduplicated
// by neighbor id (keeping the smaller of the two distances on a collision,
// since a and b may have measured the same pair under slightly different
// rounding) and sorted ascending by distance. a and b must have the same
// NPoints.
func MergeGraphs(a, b *SparseGraph) *SparseGraph {
	out := NewSparseGraph(a.NPoints)
	for i := 0; i < a.NPoints; i++ {
		merged := make(map[uint32]float64)
		aCol, aDist := a.Row(i)
		for k, j := range aCol {
			merged[j] = aDist[k]
		}
		bCol, bDist := b.Row(i)
		for k, j := range bCol {
			if existing, ok := merged[j]; !ok || bDist[k] < existing {
				merged[j] = bDist[k]
			}
		}

		col := make([]uint32, 0, len(merged))
		dist := make([]float64, 0, len(merged))
		for j, d := range merged {
			col = append(col, j)
			dist = append(dist, d)
		}
		col, dist = sortedByDistance(col, dist)

		out.Col = append(out.Col, col...)
		out.Dist = append(out.Dist, dist...)
		out.RowStart[i+1] = int32(len(out.Col))
	}
	return out
}

// sortedByDistance returns col/dist reordered ascending by dist, via
// insertion sort — rows in this package are narrow (bounded by K or a
// pruning budget), so the simplicity outweighs the asymptotic cost.
func sortedByDistance(col []uint32, dist []float64) ([]uint32, []float64) {
	col = append([]uint32(nil), col...)
	dist = append([]float64(nil), dist...)
	for i := 1; i < len(dist); i++ {
		for j := i; j > 0 && dist[j-1] > dist[j]; j-- {
			dist[j-1], dist[j] = dist[j], dist[j-1]
			col[j-1], col[j] = col[j], col[j-1]
		}
	}
	return col, dist
}
