// Package network holds the directed social network through which
// individuals observe one another, along with the rules that break and
// form ties between them.
package network

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// Network is a directed 0/1 adjacency matrix. Row i lists the individuals
// that i observes; the diagonal is always zero.
type Network struct {
	adj *mat.Dense
	n   int
}

// New returns an empty network of n individuals.
func New(n int) *Network {
	return &Network{adj: mat.NewDense(n, n, nil), n: n}
}

// FromRows builds a network from a square 0/1 matrix, as produced by Rows.
func FromRows(rows [][]int) (*Network, error) {
	n := len(rows)
	if n == 0 {
		return nil, errors.New("network must have at least one individual")
	}

	nw := New(n)
	for i, row := range rows {
		if len(row) != n {
			return nil, errors.Errorf("row %d has %d entries, expected %d", i, len(row), n)
		}
		for j, v := range row {
			switch {
			case v == 0:
			case v == 1 && i != j:
				nw.adj.Set(i, j, 1)
			case i == j:
				return nil, errors.Errorf("self tie for individual %d", i)
			default:
				return nil, errors.Errorf("invalid tie value %d at (%d, %d)", v, i, j)
			}
		}
	}
	return nw, nil
}

// Size returns the number of individuals.
func (nw *Network) Size() int { return nw.n }

func (nw *Network) HasTie(from, to int) bool { return nw.adj.At(from, to) != 0 }

// SetTie makes from observe to. Self ties are ignored.
func (nw *Network) SetTie(from, to int) {
	if from == to {
		return
	}
	nw.adj.Set(from, to, 1)
}

func (nw *Network) RemoveTie(from, to int) { nw.adj.Set(from, to, 0) }

// Neighbors returns, in ascending order, the individuals that i observes.
func (nw *Network) Neighbors(i int) []int {
	out := []int{}
	for j, v := range nw.adj.RawRowView(i) {
		if v != 0 {
			out = append(out, j)
		}
	}
	return out
}

// NonNeighbors returns the individuals that i could start observing: those
// it does not observe yet, excluding itself.
func (nw *Network) NonNeighbors(i int) []int {
	out := []int{}
	for j, v := range nw.adj.RawRowView(i) {
		if v == 0 && j != i {
			out = append(out, j)
		}
	}
	return out
}

// OutDegree returns the number of individuals that i observes.
func (nw *Network) OutDegree(i int) int {
	return int(mat.Sum(nw.adj.RowView(i)))
}

// Edges returns the number of ties in the network.
func (nw *Network) Edges() int { return int(mat.Sum(nw.adj)) }

// Clone returns an independent copy of the network.
func (nw *Network) Clone() *Network {
	return &Network{adj: mat.DenseCopyOf(nw.adj), n: nw.n}
}

// Rows renders the adjacency matrix as nested integer slices for storage.
func (nw *Network) Rows() [][]int {
	out := make([][]int, nw.n)
	for i := range out {
		out[i] = make([]int, nw.n)
		for j, v := range nw.adj.RawRowView(i) {
			out[i][j] = int(v)
		}
	}
	return out
}
