package nnd

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vspinu/rnndescent/pkg/matrix"
)

func TestBuild_TrivialIdentity(t *testing.T) {
	data, err := matrix.FromRows([][]float32{{0}, {1}, {2}})
	require.NoError(t, err)

	g, err := Build(context.Background(), data, 2, nil, BuildOptions{Metric: "euclidean", Delta: 0, Seed: 1})
	require.NoError(t, err)

	require.Equal(t, 3, g.NPoints)
	require.Equal(t, 2, g.K)
	for i := 0; i < 3; i++ {
		idxRow, distRow := g.Row(i)
		for _, v := range idxRow {
			assert.NotEqual(t, uint32(i), v, "point %d must never list itself", i)
		}
		for k := 1; k < len(distRow); k++ {
			assert.LessOrEqual(t, distRow[k-1], distRow[k])
		}
	}
	// Point 1 (position 1) is equidistant (1.0) from both 0 and 2, so both
	// must appear in its row once the graph has converged.
	idxRow1, _ := g.Row(1)
	assert.Contains(t, idxRow1, uint32(0))
	assert.Contains(t, idxRow1, uint32(2))
}

func TestBuild_RejectsKOutOfRange(t *testing.T) {
	data, err := matrix.FromRows([][]float32{{0}, {1}, {2}})
	require.NoError(t, err)

	_, err = Build(context.Background(), data, 0, nil, BuildOptions{})
	assert.Error(t, err)

	_, err = Build(context.Background(), data, 3, nil, BuildOptions{})
	assert.Error(t, err)
}

func TestBuild_RejectsMismatchedInitGraph(t *testing.T) {
	data, err := matrix.FromRows([][]float32{{0}, {1}, {2}, {3}})
	require.NoError(t, err)
	init := NewNNGraph(3, 2)

	_, err = Build(context.Background(), data, 2, init, BuildOptions{})
	assert.Error(t, err)
}

func TestBuild_LowMemoryVariantStillConverges(t *testing.T) {
	data, err := matrix.FromRows([][]float32{{0}, {1}, {2}, {3}, {4}})
	require.NoError(t, err)

	g, err := Build(context.Background(), data, 2, nil, BuildOptions{Seed: 3, LowMemory: true})
	require.NoError(t, err)
	assert.Equal(t, 5, g.NPoints)
}

func TestBuild_CancellationReturnsPartialGraphNotError(t *testing.T) {
	data, err := matrix.FromRows([][]float32{{0}, {1}, {2}, {3}, {4}, {5}, {6}, {7}})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	g, err := Build(ctx, data, 2, nil, BuildOptions{MaxIterations: 1000, Seed: 5})
	require.NoError(t, err)
	assert.Equal(t, 8, g.NPoints)
}

func TestBuild_ProgressCallbackCanStopEarly(t *testing.T) {
	data, err := matrix.FromRows([][]float32{{0}, {1}, {2}, {3}, {4}, {5}})
	require.NoError(t, err)

	calls := 0
	_, err = Build(context.Background(), data, 2, nil, BuildOptions{
		Seed:          9,
		MaxIterations: 100,
		Progress: func(iteration, accepted int, threshold float64) bool {
			calls++
			return calls < 1
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}
