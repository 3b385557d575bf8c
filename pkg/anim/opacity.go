package anim

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/vanderheijden86/procmap/pkg/model"
)

// LabelOpacity returns the label opacity of a node. collapsePoint is where
// the node folds into: its nearest visible ancestor.
//
// While a node transitions, opacity stays at zero until it has covered half
// the distance between the collapse point and its full position, then ramps
// linearly to one.
func LabelOpacity(n *model.Node, collapsePoint r2.Vec, detailLevel int) float64 {
	if !n.Transitioning() {
		if n.Depth <= detailLevel {
			return 1
		}
		return 0
	}

	full := r2.Vec{X: n.LayoutX, Y: n.LayoutY}
	if n.Collapsing {
		full = r2.Vec{X: n.ExpandedX, Y: n.ExpandedY}
	}
	span := r2.Norm(r2.Sub(full, collapsePoint))
	if span == 0 {
		if n.Expanding {
			return 1
		}
		return 0
	}
	remaining := r2.Norm(r2.Sub(full, r2.Vec{X: n.DisplayX, Y: n.DisplayY}))
	covered := 1 - remaining/span
	return clamp01((covered - 0.5) / 0.5)
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
