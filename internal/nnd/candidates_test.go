package nnd

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func seedGraph(n, k int, edges [][3]int) *NeighborHeap {
	h := NewNeighborHeap(n, k)
	for _, e := range edges {
		h.CheckedPushPair(e[0], float64(e[2]), e[1], true)
	}
	return h
}

func TestBuildCandidates_SplitsByFlag(t *testing.T) {
	graph := seedGraph(3, 2, [][3]int{{0, 1, 1}, {0, 2, 2}})
	graph.SetFlag(0, 0, false) // mark one of point 0's entries as "old"

	cands := BuildCandidates(graph, RandomSample(), 2, 123)

	totalNew := len(cands.New.ValidNeighbors(0))
	totalOld := len(cands.Old.ValidNeighbors(0))
	assert.GreaterOrEqual(t, totalNew+totalOld, 1)
}

func TestFlagRetainedNewCandidates_OnlyFlipsWhenRetained(t *testing.T) {
	graph := NewNeighborHeap(2, 1)
	graph.CheckedPush(0, 1.0, 1, true)

	FlagRetainedNewCandidates(graph, 0, 0, false)
	assert.True(t, graph.Flag(0, 0), "flag must stay new when not retained")

	FlagRetainedNewCandidates(graph, 0, 0, true)
	assert.False(t, graph.Flag(0, 0), "flag must flip to old once retained")
}

func TestBuildCandidates_RetainedEntriesBecomeOld(t *testing.T) {
	graph := NewNeighborHeap(2, 4)
	graph.CheckedPushPair(0, 1.0, 1, true)

	BuildCandidates(graph, RandomSample(), 4, 7)

	assert.False(t, graph.Flag(0, 0), "the only candidate always fits the budget, so it must be retained")
}

func TestBuildQueryCandidates_HasNoOldHeap(t *testing.T) {
	queryGraph := NewNeighborHeap(1, 2)
	queryGraph.CheckedPush(0, 1.0, 5, true)
	queryGraph.SetFlag(0, 0, false) // an "old" flag is meaningless for a query graph

	candidates := BuildQueryCandidates(queryGraph, RandomSample(), 2, 1)

	assert.Equal(t, []uint32{5}, candidates.ValidNeighbors(0), "query-mode candidates sample every entry regardless of flag, since there is no old heap to split into")
}

func TestBuildGeneralNeighborGraph_IsSymmetricClosure(t *testing.T) {
	g := NewNNGraph(3, 1)
	// Point 0's only neighbor is point 1, but point 1 does not list point 0.
	g.Idx[0*1+0] = 1
	g.Dist[0*1+0] = 0.5
	g.Idx[1*1+0] = 2
	g.Dist[1*1+0] = 0.7

	gn := BuildGeneralNeighborGraph(g, 4)

	assert.True(t, gn.Contains(1, 0), "reverse edge must appear in the closure")
	assert.True(t, gn.Contains(0, 1))
	assert.True(t, gn.Contains(2, 1))
}

func TestValidNeighbors_SkipsSentinels(t *testing.T) {
	h := NewNeighborHeap(1, 3)
	h.CheckedPush(0, 1.0, 1, true)

	nbrs := h.ValidNeighbors(0)
	assert.Equal(t, []uint32{1}, nbrs)
}

func TestRankedByDistance_UsesTrueDistanceAsKey(t *testing.T) {
	p := RankedByDistance()
	assert.True(t, p.ShouldSort())
	assert.Equal(t, 4.2, p.Key(nil, 4.2))
}
