// Package camera maps world coordinates onto a viewport and animates
// fit-to-bounds transitions.
package camera

import (
	"errors"
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/vanderheijden86/procmap/pkg/debug"
)

var (
	// ErrInvalidBounds is returned for a fit box with non-positive size.
	ErrInvalidBounds = errors.New("invalid bounds")
	// ErrNoViewport is returned when the viewport has not been sized yet.
	ErrNoViewport = errors.New("viewport has no size")
)

// Margin is the share of the viewport a fitted box may occupy.
const Margin = 0.9

// Transform maps world to screen: screen = world*K + (X, Y).
type Transform struct {
	X, Y, K float64
}

// Identity is the unscaled, unshifted transform.
var Identity = Transform{K: 1}

// Apply maps a world point to the screen.
func (t Transform) Apply(p r2.Vec) r2.Vec {
	return r2.Add(r2.Scale(t.K, p), r2.Vec{X: t.X, Y: t.Y})
}

// Invert maps a screen point back to the world.
func (t Transform) Invert(p r2.Vec) r2.Vec {
	return r2.Scale(1/t.K, r2.Sub(p, r2.Vec{X: t.X, Y: t.Y}))
}

func lerp(a, b Transform, f float64) Transform {
	return Transform{
		X: a.X + (b.X-a.X)*f,
		Y: a.Y + (b.Y-a.Y)*f,
		K: a.K + (b.K-a.K)*f,
	}
}

// Zoom limits.
const (
	MinScale = 0.02
	MaxScale = 20
)

// Viewport is an animated camera over a fixed-size screen.
type Viewport struct {
	width, height float64

	current Transform
	from    Transform
	to      Transform
	elapsed time.Duration
	total   time.Duration
}

// NewViewport returns a viewport of the given screen size.
func NewViewport(width, height float64) *Viewport {
	return &Viewport{width: width, height: height, current: Identity}
}

// Resize changes the screen size. The transform is kept.
func (v *Viewport) Resize(width, height float64) {
	v.width, v.height = width, height
}

// Size returns the screen size.
func (v *Viewport) Size() (width, height float64) {
	return v.width, v.height
}

// Current returns the transform in effect this frame.
func (v *Viewport) Current() Transform {
	return v.current
}

// Animating reports whether a fit transition is in progress.
func (v *Viewport) Animating() bool {
	return v.total > 0 && v.elapsed < v.total
}

// FitToBounds starts a transition that centers box on the screen, scaled to
// fill Margin of the limiting dimension. A zero duration jumps immediately.
func (v *Viewport) FitToBounds(box r2.Box, duration time.Duration) error {
	w, h := box.Max.X-box.Min.X, box.Max.Y-box.Min.Y
	if !(w > 0) || !(h > 0) {
		return fmt.Errorf("fit to %vx%v: %w", w, h, ErrInvalidBounds)
	}
	if !(v.width > 0) || !(v.height > 0) {
		return ErrNoViewport
	}

	k := math.Min(v.width/w, v.height/h) * Margin
	k = math.Max(MinScale, math.Min(MaxScale, k))
	cx, cy := box.Min.X+w/2, box.Min.Y+h/2
	target := Transform{
		X: v.width/2 - k*cx,
		Y: v.height/2 - k*cy,
		K: k,
	}
	debug.Log("camera: fit %.0fx%.0f -> k=%.3f over %v", w, h, k, duration)

	if duration <= 0 {
		v.jump(target)
		return nil
	}
	v.from = v.current
	v.to = target
	v.elapsed = 0
	v.total = duration
	return nil
}

func (v *Viewport) jump(t Transform) {
	v.current = t
	v.from, v.to = t, t
	v.elapsed, v.total = 0, 0
}

// Advance moves an in-progress transition forward.
func (v *Viewport) Advance(dt time.Duration) {
	if !v.Animating() {
		return
	}
	v.elapsed += dt
	if v.elapsed >= v.total {
		v.jump(v.to)
		return
	}
	f := float64(v.elapsed) / float64(v.total)
	v.current = lerp(v.from, v.to, easeCubicInOut(f))
}

// easeCubicInOut is the default easing of a zoom transition.
func easeCubicInOut(t float64) float64 {
	if t < 0.5 {
		return 4 * t * t * t
	}
	u := 2*t - 2
	return (u*u*u + 2) / 2
}

// Pan shifts the view by a screen-space delta and cancels any transition.
func (v *Viewport) Pan(dx, dy float64) {
	t := v.current
	t.X += dx
	t.Y += dy
	v.jump(t)
}

// Zoom scales the view by factor around a screen point and cancels any
// transition.
func (v *Viewport) Zoom(factor float64, around r2.Vec) {
	if factor <= 0 {
		return
	}
	t := v.current
	world := t.Invert(around)
	k := math.Max(MinScale, math.Min(MaxScale, t.K*factor))
	v.jump(Transform{
		X: around.X - k*world.X,
		Y: around.Y - k*world.Y,
		K: k,
	})
}

// Set replaces the transform outright.
func (v *Viewport) Set(t Transform) {
	if t.K <= 0 {
		t.K = 1
	}
	v.jump(t)
}
