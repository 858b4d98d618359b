// Package nnd implements the Nearest Neighbor Descent engine: the bounded
// neighbor heap, candidate construction, the graph updater, the build and
// query loops, and the graph-edit passes. This is the algorithmic core the
// rest of the repository exists to drive.
package nnd

import (
	"math"

	"github.com/vspinu/rnndescent/internal/concurrency"
)

// NPOS is the sentinel marking an empty heap slot. It is the maximum
// representable uint32, distinguishable from any real point index because
// valid indices are bounded by n_points, always far smaller in practice.
const NPOS = ^uint32(0)

// NeighborHeap is a dense n_points×n_nbrs structure storing, per row, a
// bounded max-heap on distance: the root (column 0) is always the worst
// retained neighbor, which makes admission a single comparison. Rows never
// contain the row's own index and never contain a duplicate neighbor
// index — both are enforced inside CheckedPush, not by the caller.
type NeighborHeap struct {
	nPoints int
	nNbrs   int
	idx     []uint32
	dist    []float64
	flag    []bool
	locks   *concurrency.RowLocks
}

// NewNeighborHeap allocates a NeighborHeap with every slot set to the empty
// sentinel (NPOS, +Inf, false).
func NewNeighborHeap(nPoints, nNbrs int) *NeighborHeap {
	h := &NeighborHeap{
		nPoints: nPoints,
		nNbrs:   nNbrs,
		idx:     make([]uint32, nPoints*nNbrs),
		dist:    make([]float64, nPoints*nNbrs),
		flag:    make([]bool, nPoints*nNbrs),
		locks:   concurrency.NewRowLocks(shardCount(nPoints)),
	}
	for i := range h.idx {
		h.idx[i] = NPOS
		h.dist[i] = math.Inf(1)
	}
	return h
}

// shardCount picks a row-lock shard count that scales with n_points
// without allocating one mutex per row for very large graphs.
func shardCount(nPoints int) int {
	switch {
	case nPoints <= 0:
		return 1
	case nPoints < 256:
		return nPoints
	default:
		return 256
	}
}

// NPoints returns the number of rows.
func (h *NeighborHeap) NPoints() int { return h.nPoints }

// NNbrs returns the row width.
func (h *NeighborHeap) NNbrs() int { return h.nNbrs }

func (h *NeighborHeap) slot(i, j int) int { return i*h.nNbrs + j }

// Index returns the neighbor index stored at (i, j).
func (h *NeighborHeap) Index(i, j int) uint32 { return h.idx[h.slot(i, j)] }

// Distance returns the distance stored at (i, j).
func (h *NeighborHeap) Distance(i, j int) float64 { return h.dist[h.slot(i, j)] }

// Flag returns the new/old flag stored at (i, j).
func (h *NeighborHeap) Flag(i, j int) bool { return h.flag[h.slot(i, j)] }

// SetFlag overwrites the flag at (i, j) without touching dist or idx. Used
// by CandidateBuilder's flag-retention post-pass.
func (h *NeighborHeap) SetFlag(i, j int, flag bool) { h.flag[h.slot(i, j)] = flag }

// Contains reports whether row i already holds neighbor j, via a linear
// scan of the row. O(n_nbrs) per call; no bitset-based alternative is
// provided for very large K.
func (h *NeighborHeap) Contains(i int, j uint32) bool {
	base := i * h.nNbrs
	for k := 0; k < h.nNbrs; k++ {
		if h.idx[base+k] == j {
			return true
		}
	}
	return false
}

// CheckedPush admits (j, d, flag) into row i if d is a strict improvement
// over the row's current worst entry, j is not i, and j is not already
// present in the row. Returns 1 if accepted, 0 otherwise. Not
// synchronized — callers mutating a shared heap from multiple goroutines
// must use CheckedPushSync / CheckedPushPairSync instead.
func (h *NeighborHeap) CheckedPush(i int, d float64, j int, flag bool) int {
	return h.checkedPushLocked(i, d, j, flag)
}

// CheckedPushPair calls CheckedPush(i, d, j, flag) and, when i != j,
// CheckedPush(j, d, i, flag), returning the sum. Used whenever the
// distance is symmetric, which is every call in build mode.
func (h *NeighborHeap) CheckedPushPair(i int, d float64, j int, flag bool) int {
	accepted := h.CheckedPush(i, d, j, flag)
	if i != j {
		accepted += h.CheckedPush(j, d, i, flag)
	}
	return accepted
}

// CheckedPushSync is the row-locked counterpart of CheckedPush, safe to
// call concurrently from many goroutines mutating possibly-overlapping
// rows. It acquires exactly one row lock at a time.
func (h *NeighborHeap) CheckedPushSync(i int, d float64, j int, flag bool) int {
	h.locks.Lock(i)
	n := h.checkedPushLocked(i, d, j, flag)
	h.locks.Unlock(i)
	return n
}

// CheckedPushPairSync is the row-locked counterpart of CheckedPushPair. It
// locks row i, pushes, unlocks, then (if i != j) locks row j, pushes,
// unlocks — never holding two row locks at once, so no lock ordering is
// required to stay deadlock-free (per the concurrency discipline in
// SPEC_FULL.md §5 / §4.9).
func (h *NeighborHeap) CheckedPushPairSync(i int, d float64, j int, flag bool) int {
	accepted := h.CheckedPushSync(i, d, j, flag)
	if i != j {
		accepted += h.CheckedPushSync(j, d, i, flag)
	}
	return accepted
}

func (h *NeighborHeap) checkedPushLocked(i int, d float64, j int, flag bool) int {
	if j == i {
		return 0
	}
	if math.IsNaN(d) {
		d = math.Inf(1)
	}

	root := h.slot(i, 0)
	if d >= h.dist[root] {
		return 0
	}
	if h.Contains(i, uint32(j)) {
		return 0
	}

	h.idx[root] = uint32(j)
	h.dist[root] = d
	h.flag[root] = flag
	h.siftDownMax(i, 0, h.nNbrs)
	return 1
}

// siftDownMax restores the max-heap property for row i starting at local
// position pos, considering only the first size slots of the row.
func (h *NeighborHeap) siftDownMax(i, pos, size int) {
	base := i * h.nNbrs
	for {
		left := 2*pos + 1
		right := 2*pos + 2
		largest := pos

		if left < size && h.dist[base+left] > h.dist[base+largest] {
			largest = left
		}
		if right < size && h.dist[base+right] > h.dist[base+largest] {
			largest = right
		}
		if largest == pos {
			return
		}

		h.swap(base+pos, base+largest)
		pos = largest
	}
}

func (h *NeighborHeap) swap(a, b int) {
	h.idx[a], h.idx[b] = h.idx[b], h.idx[a]
	h.dist[a], h.dist[b] = h.dist[b], h.dist[a]
	h.flag[a], h.flag[b] = h.flag[b], h.flag[a]
}

// DeheapSort converts every row from max-heap order into ascending-distance
// order in place, via the standard "extract max, swap to the end, shrink"
// heapsort. After this call the heap property no longer holds and further
// CheckedPush calls on a sorted row are not meaningful.
func (h *NeighborHeap) DeheapSort() {
	for i := 0; i < h.nPoints; i++ {
		h.deheapSortRow(i)
	}
}

func (h *NeighborHeap) deheapSortRow(i int) {
	for last := h.nNbrs - 1; last > 0; last-- {
		base := i * h.nNbrs
		h.swap(base, base+last)
		h.siftDownMax(i, 0, last)
	}
}
