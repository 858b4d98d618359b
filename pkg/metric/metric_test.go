package metric

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vspinu/rnndescent/pkg/matrix"
)

func collinear(t *testing.T) *matrix.Matrix {
	m, err := matrix.FromRows([][]float32{{0}, {1}, {2}})
	require.NoError(t, err)
	return m
}

func TestEuclidean_Collinear(t *testing.T) {
	d, err := New(Euclidean, collinear(t))
	require.NoError(t, err)

	assert.InDelta(t, 1.0, d.Self(0, 1), 1e-9)
	assert.InDelta(t, 2.0, d.Self(0, 2), 1e-9)
	assert.InDelta(t, 0.0, d.Self(1, 1), 1e-9)
}

func TestL2Squared_MatchesEuclideanSquared(t *testing.T) {
	m := collinear(t)
	eu, err := New(Euclidean, m)
	require.NoError(t, err)
	l2, err := New(L2, m)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			assert.InDelta(t, eu.Self(i, j)*eu.Self(i, j), l2.Self(i, j), 1e-9)
		}
	}
}

func TestCosine_OrthogonalIsOne(t *testing.T) {
	m, err := matrix.FromRows([][]float32{{1, 0}, {0, 1}})
	require.NoError(t, err)
	d, err := New(Cosine, m)
	require.NoError(t, err)

	assert.InDelta(t, 1.0, d.Self(0, 1), 1e-9)
	assert.InDelta(t, 0.0, d.Self(0, 0), 1e-9)
}

func TestManhattan_SumOfAbsoluteDifferences(t *testing.T) {
	m, err := matrix.FromRows([][]float32{{0, 0}, {3, 4}})
	require.NoError(t, err)
	d, err := New(Manhattan, m)
	require.NoError(t, err)

	assert.InDelta(t, 7.0, d.Self(0, 1), 1e-9)
}

func TestHamming_CountsMismatches(t *testing.T) {
	m, err := matrix.FromRows([][]float32{
		{0, 1, 0, 1},
		{0, 1, 1, 1},
		{1, 0, 1, 0},
	})
	require.NoError(t, err)
	d, err := New(Hamming, m)
	require.NoError(t, err)

	assert.InDelta(t, 1.0, d.Self(0, 1), 1e-9)
	assert.InDelta(t, 4.0, d.Self(0, 2), 1e-9)
}

func TestNew_UnknownTag(t *testing.T) {
	_, err := New(Tag("bogus"), collinear(t))
	assert.Error(t, err)
}

func TestNewQuery_CrossReferenceAndQuery(t *testing.T) {
	ref, err := matrix.FromRows([][]float32{{0}, {10}})
	require.NoError(t, err)
	query, err := matrix.FromRows([][]float32{{1}, {9}})
	require.NoError(t, err)

	d, err := NewQuery(Euclidean, ref, query)
	require.NoError(t, err)

	assert.InDelta(t, 1.0, d.Cross(0, 0), 1e-9)
	assert.InDelta(t, math.Abs(10-9), d.Cross(1, 1), 1e-9)
}
