package nnd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vspinu/rnndescent/pkg/matrix"
)

func collinearFour(t *testing.T) *matrix.Matrix {
	m, err := matrix.FromRows([][]float32{{0}, {1}, {2}, {3}})
	require.NoError(t, err)
	return m
}

func TestDiversify_FullPruneDropsDominatedEdges(t *testing.T) {
	data := collinearFour(t)
	// Point 0's graph row lists both 1 (dist 1) and 2 (dist 2). 2 is
	// dominated by 1: dist(2,1) == 1 < dist(0,2) == 2.
	g := NewNNGraph(4, 2)
	g.Idx[0], g.Dist[0] = 1, 1.0
	g.Idx[1], g.Dist[1] = 2, 2.0

	out, err := Diversify(data, g, "euclidean", 1.0)
	require.NoError(t, err)

	col, _ := out.Row(0)
	assert.Equal(t, []uint32{1}, col, "dominated edge must be pruned at probability 1.0")
}

func TestDiversify_ZeroProbabilityKeepsEverything(t *testing.T) {
	data := collinearFour(t)
	g := NewNNGraph(4, 2)
	g.Idx[0], g.Dist[0] = 1, 1.0
	g.Idx[1], g.Dist[1] = 2, 2.0

	out, err := Diversify(data, g, "euclidean", 0.0)
	require.NoError(t, err)

	col, _ := out.Row(0)
	assert.ElementsMatch(t, []uint32{1, 2}, col, "no edge should be pruned at probability 0.0")
}

func TestDiversify_NonDominatedEdgesSurvive(t *testing.T) {
	data := collinearFour(t)
	// Single-edge row: nothing can dominate it.
	row0 := NewNNGraph(4, 1)
	row0.Idx[0], row0.Dist[0] = 3, 3.0

	out, err := Diversify(data, row0, "euclidean", 1.0)
	require.NoError(t, err)

	col, _ := out.Row(0)
	assert.Equal(t, []uint32{3}, col)
}

func TestDiversifySparse_OperatesOnAlreadySparseInput(t *testing.T) {
	data := collinearFour(t)
	sg := NewSparseGraph(4)
	sg.Col = []uint32{1, 2}
	sg.Dist = []float64{1.0, 2.0}
	sg.RowStart[1] = 2

	out, err := DiversifySparse(data, sg, "euclidean", 1.0)
	require.NoError(t, err)

	col, _ := out.Row(0)
	assert.Equal(t, []uint32{1}, col)
}
