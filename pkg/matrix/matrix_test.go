package matrix

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromRows_RoundTrip(t *testing.T) {
	m, err := FromRows([][]float32{{1, 2}, {3, 4}, {5, 6}})
	require.NoError(t, err)

	assert.Equal(t, 3, m.Rows())
	assert.Equal(t, 2, m.Cols())
	assert.Equal(t, []float32{3, 4}, m.Row(1))
	assert.Equal(t, float32(5), m.At(2, 0))
}

func TestFromRows_EmptyDataset(t *testing.T) {
	_, err := FromRows(nil)
	assert.Error(t, err)
}

func TestFromRows_ZeroWidthRows(t *testing.T) {
	_, err := FromRows([][]float32{{}, {}})
	assert.Error(t, err)
}

func TestFromRows_RaggedRows(t *testing.T) {
	_, err := FromRows([][]float32{{1, 2}, {3}})
	assert.Error(t, err)
}

func TestSet_MutatesUnderlyingRow(t *testing.T) {
	m := New(2, 2)
	m.Set(0, 1, 9)
	assert.Equal(t, float32(9), m.At(0, 1))
	assert.Equal(t, []float32{0, 9}, m.Row(0))
}

func TestRow_SharesBackingArray(t *testing.T) {
	m := New(1, 3)
	row := m.Row(0)
	row[2] = 7
	assert.Equal(t, float32(7), m.At(0, 2))
}

func TestToZeroIndexed_MapsZeroToNPOS(t *testing.T) {
	g := &IndexGraph{
		Idx:  [][]uint32{{1, 2, 0}},
		Dist: [][]float64{{0.1, 0.2, 0.3}},
		K:    3,
	}
	const npos = ^uint32(0)

	out := ToZeroIndexed(g, npos)

	assert.Equal(t, []uint32{0, 1, npos}, out.Idx[0])
	assert.Equal(t, g.Dist[0], out.Dist[0])
	assert.Equal(t, []uint32{1, 2, 0}, g.Idx[0], "input graph must not be mutated")
}

func TestToOneIndexed_MapsNPOSToZero(t *testing.T) {
	const npos = ^uint32(0)
	g := &IndexGraph{
		Idx:  [][]uint32{{0, 1, npos}},
		Dist: [][]float64{{0.1, 0.2, 0.3}},
		K:    3,
	}

	out := ToOneIndexed(g, npos)

	assert.Equal(t, []uint32{1, 2, 0}, out.Idx[0])
}

func TestIndexedConversion_RoundTrips(t *testing.T) {
	const npos = ^uint32(0)
	original := &IndexGraph{
		Idx:  [][]uint32{{3, 1, 2}, {0, 2, 1}},
		Dist: [][]float64{{0.1, 0.2, 0.3}, {0.4, 0.5, 0.6}},
		K:    3,
	}

	roundTripped := ToOneIndexed(ToZeroIndexed(original, npos), npos)

	assert.Equal(t, original.Idx, roundTripped.Idx)
}
