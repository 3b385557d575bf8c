package connector

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/vanderheijden86/procmap/pkg/model"
)

// Segment is a drawn connector line.
type Segment struct {
	X1, Y1, X2, Y2 float64
}

// Trim returns the line from src to dst shortened so it starts on the source
// boundary and ends on the target boundary. Coincident centers yield a
// zero-length segment at the source.
func Trim(src, dst r2.Vec, sourceRadius, targetRadius float64) Segment {
	if src == dst {
		return Segment{X1: src.X, Y1: src.Y, X2: src.X, Y2: src.Y}
	}
	angle := math.Atan2(dst.Y-src.Y, dst.X-src.X)
	dir := r2.Vec{X: math.Cos(angle), Y: math.Sin(angle)}
	start := r2.Add(src, r2.Scale(sourceRadius, dir))
	end := r2.Sub(dst, r2.Scale(targetRadius, dir))
	return Segment{X1: start.X, Y1: start.Y, X2: end.X, Y2: end.Y}
}

// Geometry computes the segment for an edge from the nodes' current display
// positions. radius reports each node's current rendering radius.
func Geometry(e Edge, radius func(*model.Node) float64) Segment {
	src := r2.Vec{X: e.Source.DisplayX, Y: e.Source.DisplayY}
	dst := r2.Vec{X: e.Target.DisplayX, Y: e.Target.DisplayY}
	return Trim(src, dst, radius(e.Source), radius(e.Target))
}
