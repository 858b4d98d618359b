// Package matrix defines the dense, row-major numeric matrix used at the
// engine's public boundary, plus the 1-indexed/0-indexed conversions that
// happen exactly there. Marshalling a concrete host format (Arrow, CSV,
// whatever the caller uses) onto this type is the caller's job: per the
// spec this is "the hosting runtime and matrix marshalling", an external
// collaborator, not something internal/nnd concerns itself with.
package matrix

import "github.com/vspinu/rnndescent/internal/errors"

// Matrix is a dense, row-major matrix of float32 values, typically one row
// per data point and one column per dimension.
type Matrix struct {
	data []float32
	rows int
	cols int
}

// New allocates a zeroed Matrix with the given shape.
func New(rows, cols int) *Matrix {
	return &Matrix{data: make([]float32, rows*cols), rows: rows, cols: cols}
}

// FromRows builds a Matrix by copying each row of rows. All rows must have
// the same length.
func FromRows(rows [][]float32) (*Matrix, error) {
	if len(rows) == 0 {
		return nil, errors.NewValidationError("matrix.FromRows", "empty dataset")
	}
	cols := len(rows[0])
	if cols == 0 {
		return nil, errors.NewValidationError("matrix.FromRows", "zero-width rows")
	}
	m := New(len(rows), cols)
	for i, row := range rows {
		if len(row) != cols {
			return nil, errors.NewValidationError("matrix.FromRows", "ragged rows: inconsistent dimensionality")
		}
		copy(m.Row(i), row)
	}
	return m, nil
}

// Rows reports the number of data points.
func (m *Matrix) Rows() int { return m.rows }

// Cols reports the dimensionality of each point.
func (m *Matrix) Cols() int { return m.cols }

// Row returns the i-th row as a slice sharing the matrix's backing array.
// Mutating the returned slice mutates the matrix.
func (m *Matrix) Row(i int) []float32 {
	return m.data[i*m.cols : (i+1)*m.cols]
}

// At returns the value at (row, col).
func (m *Matrix) At(row, col int) float32 {
	return m.data[row*m.cols+col]
}

// Set assigns the value at (row, col).
func (m *Matrix) Set(row, col int, v float32) {
	m.data[row*m.cols+col] = v
}

// IndexGraph is the exported N×K neighbor-index/distance pair the public
// boundary passes in and returns. Idx entries are whichever indexing
// convention ToZeroIndexed/ToOneIndexed last applied — boundary functions
// are responsible for calling one of them exactly once per direction.
type IndexGraph struct {
	Idx  [][]uint32
	Dist [][]float64
	K    int
}

// ToZeroIndexed converts a 1-indexed IndexGraph (the public convention) to
// 0-indexed (the internal convention), returning a new graph and leaving g
// untouched. A zero entry is treated as "unset" and mapped to NPOS rather
// than underflowing.
func ToZeroIndexed(g *IndexGraph, npos uint32) *IndexGraph {
	out := &IndexGraph{
		Idx:  make([][]uint32, len(g.Idx)),
		Dist: make([][]float64, len(g.Dist)),
		K:    g.K,
	}
	for i := range g.Idx {
		out.Idx[i] = make([]uint32, len(g.Idx[i]))
		for j, v := range g.Idx[i] {
			if v == 0 {
				out.Idx[i][j] = npos
			} else {
				out.Idx[i][j] = v - 1
			}
		}
		out.Dist[i] = append([]float64(nil), g.Dist[i]...)
	}
	return out
}

// ToOneIndexed converts a 0-indexed IndexGraph back to the public
// 1-indexed convention. NPOS-sentinel entries map to 0.
func ToOneIndexed(g *IndexGraph, npos uint32) *IndexGraph {
	out := &IndexGraph{
		Idx:  make([][]uint32, len(g.Idx)),
		Dist: make([][]float64, len(g.Dist)),
		K:    g.K,
	}
	for i := range g.Idx {
		out.Idx[i] = make([]uint32, len(g.Idx[i]))
		for j, v := range g.Idx[i] {
			if v == npos {
				out.Idx[i][j] = 0
			} else {
				out.Idx[i][j] = v + 1
			}
		}
		out.Dist[i] = append([]float64(nil), g.Dist[i]...)
	}
	return out
}
