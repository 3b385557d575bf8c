// Package anim advances displayed node state toward the layout targets.
//
// Positions use frame-rate independent exponential smoothing, so a target
// that moves mid-flight is simply chased from wherever the node currently
// is. Step is pure given a node and a time delta; nothing here reads a
// clock.
package anim

import (
	"math"
	"time"

	"github.com/vanderheijden86/procmap/pkg/metrics"
	"github.com/vanderheijden86/procmap/pkg/model"
)

// Radii are the standard circle radii by depth.
type Radii struct {
	Stage  float64 `yaml:"stage"`
	Sub    float64 `yaml:"sub"`
	SubSub float64 `yaml:"subsub"`
	Min    float64 `yaml:"min"`
}

// DefaultRadii returns 50/20/10 with a floor of 3 for deeper levels.
func DefaultRadii() Radii {
	return Radii{Stage: 50, Sub: 20, SubSub: 10, Min: 3}
}

// Standard returns the full-size radius of a node at depth.
func (r Radii) Standard(depth int) float64 {
	switch depth {
	case 0:
		return r.Stage
	case 1:
		return r.Sub
	case 2:
		return r.SubSub
	default:
		return max(r.Min, r.SubSub-float64(depth-2))
	}
}

// Driver holds the animation constants.
type Driver struct {
	Speed         float64 // smoothing rate per second
	GrowthStep    float64 // radius growth per frame for new stages
	SettleEpsilon float64 // distance at which a transition counts as done
	Radii         Radii
}

// NewDriver returns a driver with the default constants.
func NewDriver() *Driver {
	return &Driver{
		Speed:         5,
		GrowthStep:    0.05,
		SettleEpsilon: 0.5,
		Radii:         DefaultRadii(),
	}
}

// Smooth moves display toward target by the fraction 1-exp(-speed*dt).
func Smooth(display, target, speed, dt float64) float64 {
	if dt <= 0 {
		return display
	}
	return display + (target-display)*(1-math.Exp(-speed*dt))
}

// Step advances one node by dt seconds. Dragged nodes are left alone: their
// display position is driven by the pointer.
func (d *Driver) Step(n *model.Node, dt float64) {
	if n.Dragging {
		return
	}
	n.DisplayX = Smooth(n.DisplayX, n.LayoutX, d.Speed, dt)
	n.DisplayY = Smooth(n.DisplayY, n.LayoutY, d.Speed, dt)

	if n.NewlyCreated {
		n.Growth += d.GrowthStep
		if n.Growth >= 1 {
			n.Growth = 1
			n.NewlyCreated = false
		}
	}

	if n.Transitioning() && d.settled(n) {
		n.ClearTransition()
	}
}

func (d *Driver) settled(n *model.Node) bool {
	return math.Hypot(n.LayoutX-n.DisplayX, n.LayoutY-n.DisplayY) <= d.SettleEpsilon
}

// Tick advances every node by the elapsed wall time.
func (d *Driver) Tick(nodes []*model.Node, elapsed time.Duration) {
	defer metrics.Timer(metrics.FrameTick)()
	dt := elapsed.Seconds()
	for _, n := range nodes {
		d.Step(n, dt)
	}
}

// Settled reports whether every node is at rest on its target with no
// growth or transition pending.
func (d *Driver) Settled(nodes []*model.Node) bool {
	for _, n := range nodes {
		if n.Dragging {
			continue
		}
		if n.NewlyCreated || n.Transitioning() || !d.settled(n) {
			return false
		}
	}
	return true
}

// Radius is the rendered radius of a node at the current detail level. Nodes
// hidden below the detail level keep a zero radius unless mid transition.
func (d *Driver) Radius(n *model.Node, detailLevel int) float64 {
	full := d.Radii.Standard(n.Depth)
	if n.NewlyCreated {
		return full * n.Growth
	}
	if n.Depth <= detailLevel || n.Transitioning() {
		return full
	}
	return 0
}
