package network

import (
	"math"
	"math/rand/v2"
	"sort"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/graphs/gen"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/stat/distuv"
)

// Type names the structure of the initial social network.
type Type string

const (
	Random    Type = "random"
	ScaleFree Type = "scalefree"
)

// Validate returns an error for unknown network types.
func (t Type) Validate() error {
	switch t {
	case Random, ScaleFree:
		return nil
	default:
		return errors.Errorf("unknown network type '%s'", t)
	}
}

// Seed generates the initial network of n individuals with mean out-degree
// k.
func Seed(n, k int, t Type, rng *rand.Rand) (*Network, error) {
	if n < 2 {
		return nil, errors.Errorf("network needs at least two individuals, got %d", n)
	}
	if k < 1 || k >= n {
		return nil, errors.Errorf("mean degree %d must be in [1, %d)", k, n)
	}

	switch t {
	case Random:
		return seedRandom(n, k, rng), nil
	case ScaleFree:
		return seedScaleFree(n, k, rng)
	default:
		return nil, t.Validate()
	}
}

// seedRandom lets every ordered pair form a tie independently with
// probability k/(n-1), giving an expected out-degree of k.
func seedRandom(n, k int, rng *rand.Rand) *Network {
	nw := New(n)
	tie := distuv.Bernoulli{P: float64(k) / float64(n-1), Src: rng}
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i != j && tie.Rand() == 1 {
				nw.SetTie(i, j)
			}
		}
	}
	return nw
}

// seedScaleFree grows a preferential attachment graph where each newcomer
// links to m existing individuals. Undirected links become mutual ties, so
// m is half of the requested out-degree.
func seedScaleFree(n, k int, rng *rand.Rand) (*Network, error) {
	m := int(math.Max(1, math.Round(float64(k)/2)))
	if m >= n {
		m = n - 1
	}

	g := simple.NewUndirectedGraph()
	if err := gen.PreferentialAttachment(g, n, m, rng); err != nil {
		return nil, errors.Wrap(err, "problem generating scale-free network")
	}

	nodes := graph.NodesOf(g.Nodes())
	if len(nodes) != n {
		return nil, errors.Errorf("generated %d individuals, expected %d", len(nodes), n)
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID() < nodes[j].ID() })
	index := make(map[int64]int, n)
	for i, node := range nodes {
		index[node.ID()] = i
	}

	nw := New(n)
	for _, e := range graph.EdgesOf(g.Edges()) {
		from, to := index[e.From().ID()], index[e.To().ID()]
		nw.SetTie(from, to)
		nw.SetTie(to, from)
	}
	return nw, nil
}
