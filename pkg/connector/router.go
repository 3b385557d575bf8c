// Package connector derives the connector lines between visible nodes and
// their on-screen geometry.
package connector

import (
	"github.com/vanderheijden86/procmap/pkg/metrics"
	"github.com/vanderheijden86/procmap/pkg/model"
)

// Edge is a directed connector between two nodes.
type Edge struct {
	Source *model.Node
	Target *model.Node
}

// Key identifies the edge across frames.
func (e Edge) Key() string {
	return EdgeKey(e.Source.ID, e.Target.ID)
}

// EdgeKey builds the stable key for an edge between two node ids.
func EdgeKey(sourceID, targetID string) string {
	return sourceID + "-" + targetID
}

// Compute returns the connectors for the stages at the given detail level:
// one through-line from every frontier node of a stage into the next stage,
// followed by every expanded parent->child edge of the tree.
func Compute(stages []*model.Node, detailLevel int) []Edge {
	defer metrics.Timer(metrics.ConnectorRoute)()

	var edges []Edge
	for i := 0; i+1 < len(stages); i++ {
		next := stages[i+1]
		for _, f := range Frontier(stages[i], detailLevel) {
			if f == next {
				continue
			}
			edges = append(edges, Edge{Source: f, Target: next})
		}
	}
	for _, s := range stages {
		edges = appendTreeEdges(edges, s, 0, detailLevel)
	}
	return edges
}

// Frontier returns the deepest visible nodes under the stage, in tree order.
// A stage with nothing expanded is its own frontier.
func Frontier(stage *model.Node, detailLevel int) []*model.Node {
	return frontier(stage, 0, detailLevel, nil)
}

func frontier(n *model.Node, depth, detailLevel int, out []*model.Node) []*model.Node {
	if len(n.Children) == 0 || depth >= detailLevel {
		return append(out, n)
	}
	for _, c := range n.Children {
		out = frontier(c, depth+1, detailLevel, out)
	}
	return out
}

func appendTreeEdges(edges []Edge, n *model.Node, depth, detailLevel int) []Edge {
	if depth >= detailLevel {
		return edges
	}
	for _, c := range n.Children {
		edges = append(edges, Edge{Source: n, Target: c})
		edges = appendTreeEdges(edges, c, depth+1, detailLevel)
	}
	return edges
}

// Diff is the result of comparing two edge sets by key.
type Diff struct {
	Entered []Edge
	Exited  []Edge
	Kept    []Edge
}

// DiffEdges classifies edges by key. Entered and Kept follow next's order,
// Exited follows prev's.
func DiffEdges(prev, next []Edge) Diff {
	before := make(map[string]struct{}, len(prev))
	for _, e := range prev {
		before[e.Key()] = struct{}{}
	}
	after := make(map[string]struct{}, len(next))

	var d Diff
	for _, e := range next {
		k := e.Key()
		if _, dup := after[k]; dup {
			continue
		}
		after[k] = struct{}{}
		if _, ok := before[k]; ok {
			d.Kept = append(d.Kept, e)
		} else {
			d.Entered = append(d.Entered, e)
		}
	}
	for _, e := range prev {
		if _, ok := after[e.Key()]; !ok {
			d.Exited = append(d.Exited, e)
		}
	}
	return d
}
