package connector

import (
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/vanderheijden86/procmap/pkg/model"
)

// Graph is a directed graph view over a connector set.
type Graph struct {
	*simple.DirectedGraph
	ids map[string]int64
}

// NewGraph builds the graph of the given edges. Self loops are ignored.
func NewGraph(edges []Edge) *Graph {
	g := &Graph{
		DirectedGraph: simple.NewDirectedGraph(),
		ids:           make(map[string]int64),
	}
	for _, e := range edges {
		if e.Source.ID == e.Target.ID {
			continue
		}
		from, to := g.node(e.Source.ID), g.node(e.Target.ID)
		g.SetEdge(g.NewEdge(from, to))
	}
	return g
}

func (g *Graph) node(id string) simple.Node {
	if nid, ok := g.ids[id]; ok {
		return simple.Node(nid)
	}
	n := simple.Node(int64(len(g.ids)))
	g.ids[id] = int64(n)
	g.AddNode(n)
	return n
}

// Reaches reports whether a directed path runs from one node to another.
func (g *Graph) Reaches(fromID, toID string) bool {
	from, ok := g.ids[fromID]
	if !ok {
		return false
	}
	to, ok := g.ids[toID]
	if !ok {
		return false
	}
	return topo.PathExistsIn(g, simple.Node(from), simple.Node(to))
}

// Continuous reports whether the connectors form an unbroken path from each
// stage to the next. It returns the index of the first stage whose successor
// is unreachable, or -1.
func Continuous(stages []*model.Node, edges []Edge) int {
	g := NewGraph(edges)
	for i := 0; i+1 < len(stages); i++ {
		if !g.Reaches(stages[i].ID, stages[i+1].ID) {
			return i
		}
	}
	return -1
}
