package session

import (
	"time"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/vanderheijden86/procmap/pkg/anim"
	"github.com/vanderheijden86/procmap/pkg/connector"
	"github.com/vanderheijden86/procmap/pkg/model"
	"github.com/vanderheijden86/procmap/pkg/scene"
)

// Tick advances one frame: a due auto-fit runs, display state moves toward
// the targets, the camera advances, and the frame is built from the updated
// display positions.
func (s *Session) Tick(dt time.Duration) scene.Frame {
	if s.fitPending {
		s.fitIn -= dt
		if s.fitIn <= 0 {
			s.fit()
		}
	}
	s.driver.Tick(s.m.Nodes(), dt)
	if s.cam != nil {
		s.cam.Advance(dt)
	}
	return s.Frame()
}

// Settled reports whether nothing is left to animate.
func (s *Session) Settled() bool {
	return !s.fitPending && s.driver.Settled(s.m.Nodes())
}

// Frame builds the render state from the current display positions without
// advancing anything.
func (s *Session) Frame() scene.Frame {
	nodes := s.m.Nodes()
	f := scene.Frame{
		Nodes:       make([]scene.NodeState, 0, len(nodes)),
		Edges:       make([]scene.EdgeState, 0, len(s.edges)),
		DetailLevel: s.detail,
	}
	for _, n := range nodes {
		f.Nodes = append(f.Nodes, scene.NodeState{
			ID:      n.ID,
			Label:   n.Label(),
			Role:    n.Role,
			Depth:   n.Depth,
			X:       n.DisplayX,
			Y:       n.DisplayY,
			Radius:  s.driver.Radius(n, s.detail),
			Opacity: anim.LabelOpacity(n, s.collapsePoint(n), s.detail),
			Visible: n.Depth <= s.detail,
			Marked:  n.MarkedForDeletion,
			Dragged: n.Dragging,
		})
	}
	scene.SortPaintOrder(f.Nodes)

	radius := func(n *model.Node) float64 { return s.driver.Radius(n, s.detail) }
	for _, e := range s.edges {
		f.Edges = append(f.Edges, scene.EdgeState{
			Key:      e.Key(),
			SourceID: e.Source.ID,
			TargetID: e.Target.ID,
			Segment:  connector.Geometry(e, radius),
		})
	}
	return f
}

// collapsePoint is where a transitioning node folds into: the parent's
// current display position while expanding, its ancestor-pinned target
// while collapsing.
func (s *Session) collapsePoint(n *model.Node) r2.Vec {
	if n.Expanding {
		if p, ok := s.m.Parent(n.ID); ok {
			return r2.Vec{X: p.DisplayX, Y: p.DisplayY}
		}
	}
	return r2.Vec{X: n.LayoutX, Y: n.LayoutY}
}

// HitTest returns the topmost visible node under a world point. minRadius
// widens the target of small nodes.
func (s *Session) HitTest(p r2.Vec, minRadius float64) (*model.Node, bool) {
	f := s.Frame()
	for i := len(f.Nodes) - 1; i >= 0; i-- {
		st := f.Nodes[i]
		if !st.Visible && st.Radius == 0 {
			continue
		}
		r := max(st.Radius, minRadius)
		if r2.Norm(r2.Sub(p, r2.Vec{X: st.X, Y: st.Y})) <= r {
			return s.m.Node(st.ID)
		}
	}
	return nil, false
}
