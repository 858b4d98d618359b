// Package metric provides the Distance contract the NND core depends on,
// plus concrete implementations for the metrics the host enumerates. The
// core never branches on a concrete metric type; it holds a Distance and
// calls Self/Cross. This file is the single dispatch site that turns a
// metric Tag into a concrete, monomorphized implementation, per the
// "macro → match" guidance the spec carries over from the source.
package metric

import (
	"math"

	"github.com/vspinu/rnndescent/internal/errors"
	"github.com/vspinu/rnndescent/pkg/matrix"
)

// Distance evaluates pairwise distance in two modes. Self is used for the
// build (self-join) loop, where both indices address the same dataset and
// the result is symmetric. Cross is used for the query loop, where refI
// indexes the reference set and queryJ indexes the query set.
type Distance interface {
	Self(i, j int) float64
	Cross(refI, queryJ int) float64
}

// Tag names a concrete metric the host may select.
type Tag string

const (
	Euclidean Tag = "euclidean"
	L2        Tag = "l2"
	Cosine    Tag = "cosine"
	Manhattan Tag = "manhattan"
	Hamming   Tag = "hamming"
)

// New builds the Distance implementation selected by tag over data (build
// mode: data serves as both ref and query, so Cross(i, j) equals
// Self(i, j)). Use NewQuery for query mode, where ref and query are
// distinct datasets.
func New(tag Tag, data *matrix.Matrix) (Distance, error) {
	return NewQuery(tag, data, data)
}

// NewQuery builds the Distance implementation selected by tag over a
// reference and a query dataset. For build-mode self-joins, pass the same
// matrix for both; Self(i, j) then indexes that shared dataset and Cross
// additionally works, reading ref==query.
func NewQuery(tag Tag, ref, query *matrix.Matrix) (Distance, error) {
	switch tag {
	case Euclidean:
		return &euclidean{ref: ref, query: query}, nil
	case L2:
		return &l2Squared{ref: ref, query: query}, nil
	case Cosine:
		return &cosine{ref: ref, query: query}, nil
	case Manhattan:
		return &manhattan{ref: ref, query: query}, nil
	case Hamming:
		return &hamming{ref: ref, query: query}, nil
	default:
		return nil, errors.NewValidationError("metric.NewQuery", "unknown metric tag: "+string(tag))
	}
}

type euclidean struct{ ref, query *matrix.Matrix }

func (d *euclidean) Self(i, j int) float64  { return d.Cross(i, j) }
func (d *euclidean) Cross(i, j int) float64 { return math.Sqrt(l2SquaredOf(d.ref.Row(i), d.query.Row(j))) }

type l2Squared struct{ ref, query *matrix.Matrix }

func (d *l2Squared) Self(i, j int) float64  { return d.Cross(i, j) }
func (d *l2Squared) Cross(i, j int) float64 { return l2SquaredOf(d.ref.Row(i), d.query.Row(j)) }

func l2SquaredOf(a, b []float32) float64 {
	var sum float64
	for k := range a {
		diff := float64(a[k]) - float64(b[k])
		sum += diff * diff
	}
	return sum
}

type cosine struct{ ref, query *matrix.Matrix }

func (d *cosine) Self(i, j int) float64  { return d.Cross(i, j) }
func (d *cosine) Cross(i, j int) float64 {
	a, b := d.ref.Row(i), d.query.Row(j)
	var dot, na, nb float64
	for k := range a {
		dot += float64(a[k]) * float64(b[k])
		na += float64(a[k]) * float64(a[k])
		nb += float64(b[k]) * float64(b[k])
	}
	if na == 0 || nb == 0 {
		return 1
	}
	return 1 - dot/(math.Sqrt(na)*math.Sqrt(nb))
}

type manhattan struct{ ref, query *matrix.Matrix }

func (d *manhattan) Self(i, j int) float64  { return d.Cross(i, j) }
func (d *manhattan) Cross(i, j int) float64 {
	a, b := d.ref.Row(i), d.query.Row(j)
	var sum float64
	for k := range a {
		sum += math.Abs(float64(a[k]) - float64(b[k]))
	}
	return sum
}

// hamming counts differing dimensions, treating each float32 slot as a
// discrete symbol (the matrix boundary packs bits/bytes into float32 slots
// upstream of this package; the metric itself only needs equality).
type hamming struct{ ref, query *matrix.Matrix }

func (d *hamming) Self(i, j int) float64  { return d.Cross(i, j) }
func (d *hamming) Cross(i, j int) float64 {
	a, b := d.ref.Row(i), d.query.Row(j)
	var count float64
	for k := range a {
		if a[k] != b[k] {
			count++
		}
	}
	return count
}
