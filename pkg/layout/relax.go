package layout

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/vanderheijden86/procmap/pkg/anim"
	"github.com/vanderheijden86/procmap/pkg/model"
)

// Repulsion nudges overlapping visible nodes apart while pulling each one
// back toward its tree-layout target. It only ever sees visible nodes, so
// the tree invariants of Compute are untouched for collapsed ones.
type Repulsion struct {
	Iterations int
	Padding    float64
	Anchor     float64 // pull toward the original target, 0..1
	Radius     func(n *model.Node) float64
}

// DefaultRepulsion returns the relaxation used when layout.relax is enabled.
// radius sizes each node; nil means the standard radii by depth.
func DefaultRepulsion(radius func(n *model.Node) float64) *Repulsion {
	if radius == nil {
		radius = standardRadius
	}
	return &Repulsion{
		Iterations: 30,
		Padding:    5,
		Anchor:     0.5,
		Radius:     radius,
	}
}

func standardRadius(n *model.Node) float64 {
	return anim.DefaultRadii().Standard(n.Depth)
}

// Adjust implements PostProcessor.
func (r *Repulsion) Adjust(visible []*model.Node) {
	radius := r.Radius
	if radius == nil {
		radius = standardRadius
	}

	anchors := make([]r2.Vec, len(visible))
	pos := make([]r2.Vec, len(visible))
	for i, n := range visible {
		anchors[i] = r2.Vec{X: n.LayoutX, Y: n.LayoutY}
		pos[i] = anchors[i]
	}

	for it := 0; it < r.Iterations; it++ {
		for i := range pos {
			for j := i + 1; j < len(pos); j++ {
				minDist := radius(visible[i]) + radius(visible[j]) + r.Padding
				d := r2.Sub(pos[j], pos[i])
				dist := r2.Norm(d)
				if dist >= minDist {
					continue
				}
				var dir r2.Vec
				if dist == 0 {
					// Coincident: separate vertically, deterministic by order.
					dir = r2.Vec{Y: 1}
				} else {
					dir = r2.Unit(d)
				}
				push := r2.Scale((minDist-dist)/2, dir)
				pos[i] = r2.Sub(pos[i], push)
				pos[j] = r2.Add(pos[j], push)
			}
		}
		for i := range pos {
			pos[i] = r2.Add(pos[i], r2.Scale(r.Anchor, r2.Sub(anchors[i], pos[i])))
		}
	}

	for i, n := range visible {
		n.LayoutX, n.LayoutY = pos[i].X, pos[i].Y
	}
}
