package layout

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/vanderheijden86/procmap/pkg/model"
)

// Bounds returns the axis-aligned box around the given points, each grown by
// pad on every side. ok is false for an empty input.
func Bounds(points []r2.Vec, pad float64) (box r2.Box, ok bool) {
	if len(points) == 0 {
		return r2.Box{}, false
	}
	box.Min = r2.Vec{X: math.Inf(1), Y: math.Inf(1)}
	box.Max = r2.Vec{X: math.Inf(-1), Y: math.Inf(-1)}
	for _, p := range points {
		box.Min.X = min(box.Min.X, p.X-pad)
		box.Min.Y = min(box.Min.Y, p.Y-pad)
		box.Max.X = max(box.Max.X, p.X+pad)
		box.Max.Y = max(box.Max.Y, p.Y+pad)
	}
	return box, true
}

// TargetBounds is the box around the layout targets of the visible nodes.
func TargetBounds(stages []*model.Node, detailLevel int, pad float64) (r2.Box, bool) {
	visible := Visible(stages, detailLevel)
	points := make([]r2.Vec, len(visible))
	for i, n := range visible {
		points[i] = r2.Vec{X: n.LayoutX, Y: n.LayoutY}
	}
	return Bounds(points, pad)
}

// DisplayBounds is the box around the current display positions of the
// visible nodes.
func DisplayBounds(stages []*model.Node, detailLevel int, pad float64) (r2.Box, bool) {
	visible := Visible(stages, detailLevel)
	points := make([]r2.Vec, len(visible))
	for i, n := range visible {
		points[i] = r2.Vec{X: n.DisplayX, Y: n.DisplayY}
	}
	return Bounds(points, pad)
}

// Size returns the width and height of a box.
func Size(b r2.Box) (w, h float64) {
	return b.Max.X - b.Min.X, b.Max.Y - b.Min.Y
}
