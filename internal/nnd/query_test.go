package nnd

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vspinu/rnndescent/pkg/matrix"
)

func TestQuery_AgainstSelf(t *testing.T) {
	ref, err := matrix.FromRows([][]float32{{0}, {1}, {2}, {3}})
	require.NoError(t, err)

	refGraph, err := Build(context.Background(), ref, 2, nil, BuildOptions{Seed: 1, Delta: 0})
	require.NoError(t, err)

	g, err := Query(context.Background(), ref, ref, refGraph, nil, QueryOptions{K: 2, Seed: 2})
	require.NoError(t, err)

	require.Equal(t, 4, g.NPoints)
	for qi := 0; qi < 4; qi++ {
		idxRow, distRow := g.Row(qi)
		for _, v := range idxRow {
			assert.NotEqual(t, NPOS, v, "every slot should be filled once the graph has enough reference points")
		}
		for k := 1; k < len(distRow); k++ {
			assert.LessOrEqual(t, distRow[k-1], distRow[k])
		}
	}
}

func TestQuery_RejectsDimensionalityMismatch(t *testing.T) {
	ref, err := matrix.FromRows([][]float32{{0, 0}, {1, 1}, {2, 2}})
	require.NoError(t, err)
	query, err := matrix.FromRows([][]float32{{0}})
	require.NoError(t, err)
	refGraph := NewNNGraph(3, 1)

	_, err = Query(context.Background(), ref, query, refGraph, nil, QueryOptions{K: 1})
	assert.Error(t, err)
}

func TestQuery_RejectsMismatchedRefGraphSize(t *testing.T) {
	ref, err := matrix.FromRows([][]float32{{0}, {1}, {2}})
	require.NoError(t, err)
	refGraph := NewNNGraph(5, 1)

	_, err = Query(context.Background(), ref, ref, refGraph, nil, QueryOptions{K: 1})
	assert.Error(t, err)
}

func TestQuery_UsesInitGraphKWhenProvided(t *testing.T) {
	ref, err := matrix.FromRows([][]float32{{0}, {1}, {2}, {3}, {4}})
	require.NoError(t, err)
	refGraph, err := Build(context.Background(), ref, 2, nil, BuildOptions{Seed: 1})
	require.NoError(t, err)

	init := NewNNGraph(1, 2)
	init.Idx[0], init.Idx[1] = 1, 2
	init.Dist[0], init.Dist[1] = 1.0, 2.0
	query, err := matrix.FromRows([][]float32{{0}})
	require.NoError(t, err)

	g, err := Query(context.Background(), ref, query, refGraph, init, QueryOptions{K: 99})
	require.NoError(t, err)
	assert.Equal(t, 2, g.K, "K must come from init, not the mismatched opts.K")
}
