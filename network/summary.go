package network

import (
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// Summary describes the shape of a network at one point in a replicate.
type Summary struct {
	Individuals   int     `bson:"individuals" json:"individuals" yaml:"individuals"`
	Ties          int     `bson:"ties" json:"ties" yaml:"ties"`
	MeanOutDegree float64 `bson:"mean_out_degree" json:"mean_out_degree" yaml:"mean_out_degree"`
	Reciprocity   float64 `bson:"reciprocity" json:"reciprocity" yaml:"reciprocity"`
	Components    int     `bson:"components" json:"components" yaml:"components"`
	Isolated      int     `bson:"isolated" json:"isolated" yaml:"isolated"`
}

// Summarize computes degree, reciprocity and strongly connected component
// statistics for nw.
func Summarize(nw *Network) Summary {
	g := simple.NewDirectedGraph()
	for i := 0; i < nw.Size(); i++ {
		g.AddNode(simple.Node(i))
	}

	out := Summary{Individuals: nw.Size()}
	mutual := 0
	for i := 0; i < nw.Size(); i++ {
		neighbors := nw.Neighbors(i)
		for _, j := range neighbors {
			g.SetEdge(g.NewEdge(simple.Node(i), simple.Node(j)))
			if nw.HasTie(j, i) {
				mutual++
			}
		}
		out.Ties += len(neighbors)
	}

	for i := 0; i < nw.Size(); i++ {
		id := int64(i)
		if g.From(id).Len() == 0 && g.To(id).Len() == 0 {
			out.Isolated++
		}
	}

	if out.Individuals > 0 {
		out.MeanOutDegree = float64(out.Ties) / float64(out.Individuals)
	}
	if out.Ties > 0 {
		out.Reciprocity = float64(mutual) / float64(out.Ties)
	}
	out.Components = len(topo.TarjanSCC(g))

	return out
}
