// Package scene is the boundary between the engine and whatever paints it.
//
// A Frame is a complete snapshot of what should be on screen. Sync diffs two
// frames into idempotent set/remove calls keyed by node id and edge key, so
// a retained-mode renderer only touches what changed.
package scene

import (
	"sort"

	"github.com/vanderheijden86/procmap/pkg/connector"
	"github.com/vanderheijden86/procmap/pkg/model"
)

// NodeState is everything a renderer needs to draw one node.
type NodeState struct {
	ID      string
	Label   string
	Role    model.Role
	Depth   int
	X, Y    float64
	Radius  float64
	Opacity float64 // label opacity
	Visible bool    // depth <= detail level
	Marked  bool    // dragged past the delete threshold
	Dragged bool
}

// EdgeState is one drawn connector.
type EdgeState struct {
	Key      string
	SourceID string
	TargetID string
	connector.Segment
}

// Frame is one rendered snapshot. Nodes are in paint order.
type Frame struct {
	Nodes       []NodeState
	Edges       []EdgeState
	DetailLevel int
}

// Node returns the state of the node with the given id.
func (f Frame) Node(id string) (NodeState, bool) {
	for _, n := range f.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return NodeState{}, false
}

// SortPaintOrder orders nodes so hidden ones are painted first and the
// dragged node last. The sort is stable, keeping tree order within a layer.
func SortPaintOrder(nodes []NodeState) {
	sort.SliceStable(nodes, func(i, j int) bool {
		return layer(nodes[i]) < layer(nodes[j])
	})
}

func layer(n NodeState) int {
	switch {
	case n.Dragged:
		return 2
	case n.Visible:
		return 1
	default:
		return 0
	}
}

// Renderer is a retained-mode paint target.
type Renderer interface {
	SetNode(NodeState)
	RemoveNode(id string)
	SetEdge(EdgeState)
	RemoveEdge(key string)
}

// Stats counts the calls made by Sync.
type Stats struct {
	NodesSet, NodesRemoved int
	EdgesSet, EdgesRemoved int
}

// Sync brings r from prev to next. Unchanged entries are skipped; removals
// are issued before sets.
func Sync(r Renderer, prev, next Frame) Stats {
	var st Stats

	nextNodes := make(map[string]struct{}, len(next.Nodes))
	for _, n := range next.Nodes {
		nextNodes[n.ID] = struct{}{}
	}
	prevNodes := make(map[string]NodeState, len(prev.Nodes))
	for _, n := range prev.Nodes {
		prevNodes[n.ID] = n
		if _, ok := nextNodes[n.ID]; !ok {
			r.RemoveNode(n.ID)
			st.NodesRemoved++
		}
	}

	nextEdges := make(map[string]struct{}, len(next.Edges))
	for _, e := range next.Edges {
		nextEdges[e.Key] = struct{}{}
	}
	prevEdges := make(map[string]EdgeState, len(prev.Edges))
	for _, e := range prev.Edges {
		prevEdges[e.Key] = e
		if _, ok := nextEdges[e.Key]; !ok {
			r.RemoveEdge(e.Key)
			st.EdgesRemoved++
		}
	}

	for _, n := range next.Nodes {
		if old, ok := prevNodes[n.ID]; ok && old == n {
			continue
		}
		r.SetNode(n)
		st.NodesSet++
	}
	for _, e := range next.Edges {
		if old, ok := prevEdges[e.Key]; ok && old == e {
			continue
		}
		r.SetEdge(e)
		st.EdgesSet++
	}
	return st
}
