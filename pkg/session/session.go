// Package session owns the mutable state of one open process map: the tree,
// the detail level, drag state and whether the user has taken over the
// camera. Every structural change goes through a Session method, which
// mutates the tree, re-runs layout and routing synchronously, and returns.
// The per-frame Tick then animates toward the new targets.
//
// A Session is not safe for concurrent use; it is driven from a single UI
// loop.
package session

import (
	"errors"
	"fmt"
	"time"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/vanderheijden86/procmap/pkg/anim"
	"github.com/vanderheijden86/procmap/pkg/camera"
	"github.com/vanderheijden86/procmap/pkg/connector"
	"github.com/vanderheijden86/procmap/pkg/debug"
	"github.com/vanderheijden86/procmap/pkg/layout"
	"github.com/vanderheijden86/procmap/pkg/model"
)

// ErrNotDragging is returned by drag operations when no drag is active.
var ErrNotDragging = errors.New("no drag in progress")

// Camera is the viewport the session fits content into.
type Camera interface {
	FitToBounds(box r2.Box, duration time.Duration) error
	Advance(dt time.Duration)
	Resize(width, height float64)
}

var _ Camera = (*camera.Viewport)(nil)

// Options configures a Session.
type Options struct {
	Layout          layout.Config
	Driver          *anim.Driver
	PostProcessor   layout.PostProcessor
	DeleteThreshold float64
	FitDelay        time.Duration
	FitDuration     time.Duration
}

// DefaultOptions returns the stock behavior.
func DefaultOptions() Options {
	return Options{
		Layout:          layout.DefaultConfig(),
		Driver:          anim.NewDriver(),
		DeleteThreshold: 100,
		FitDelay:        50 * time.Millisecond,
		FitDuration:     500 * time.Millisecond,
	}
}

// Session is one open map.
type Session struct {
	opts   Options
	m      *model.Map
	engine *layout.Engine
	driver *anim.Driver
	cam    Camera

	detail int
	manual bool
	edges  []connector.Edge
	drag   *dragState

	fitPending bool
	fitIn      time.Duration
}

// New opens m. Display positions start on the layout so nothing animates in
// on the first frame. cam may be nil; fits are then skipped with an error
// in the operator log.
func New(m *model.Map, cam Camera, opts Options) *Session {
	if opts.Driver == nil {
		opts.Driver = anim.NewDriver()
	}
	var engineOpts []layout.Option
	if opts.PostProcessor != nil {
		engineOpts = append(engineOpts, layout.WithPostProcessor(opts.PostProcessor))
	} else if opts.Layout.Relax {
		radii := opts.Driver.Radii
		rep := layout.DefaultRepulsion(func(n *model.Node) float64 { return radii.Standard(n.Depth) })
		engineOpts = append(engineOpts, layout.WithPostProcessor(rep))
	}
	s := &Session{
		opts:   opts,
		engine: layout.NewEngine(opts.Layout, engineOpts...),
		driver: opts.Driver,
		cam:    cam,
	}
	s.reset(m)
	return s
}

// Map returns the open map.
func (s *Session) Map() *model.Map {
	return s.m
}

// DetailLevel returns the current detail level.
func (s *Session) DetailLevel() int {
	return s.detail
}

// Manual reports whether the user has panned or zoomed since the last
// reset, which suppresses auto-fit.
func (s *Session) Manual() bool {
	return s.manual
}

// Edges returns the connectors of the current layout.
func (s *Session) Edges() []connector.Edge {
	return s.edges
}

// Driver returns the animation driver.
func (s *Session) Driver() *anim.Driver {
	return s.driver
}

// relayout recomputes targets and connectors for the current tree and
// detail level.
func (s *Session) relayout() {
	s.engine.Compute(s.m.Stages, s.detail)
	s.edges = connector.Compute(s.m.Stages, s.detail)
}

func (s *Session) reset(m *model.Map) {
	s.m = m
	s.detail = 0
	s.manual = false
	s.drag = nil
	s.relayout()
	s.Snap()
	s.scheduleFit()
}

// Load replaces the open map. The detail level returns to 0, display
// positions snap to the new layout and manual camera control is released.
func (s *Session) Load(m *model.Map) error {
	if m == nil {
		return fmt.Errorf("load map: %w", model.ErrNilNode)
	}
	debug.Log("session: load %q (%d nodes)", m.Name, m.Len())
	s.reset(m)
	return nil
}

// Snap puts every node on its target and finishes all transitions.
func (s *Session) Snap() {
	for _, n := range s.m.Nodes() {
		n.SnapDisplay()
		n.ClearTransition()
		if n.NewlyCreated {
			n.NewlyCreated = false
			n.Growth = 1
		}
		n.Dragging = false
		n.MarkedForDeletion = false
	}
	s.drag = nil
}

// MarkManual records that the user moved the camera.
func (s *Session) MarkManual() {
	s.manual = true
	s.fitPending = false
}

// ResetZoom hands the camera back to auto-fit and fits right away.
func (s *Session) ResetZoom() {
	s.manual = false
	s.fit()
}

// Resize adapts to a new viewport size: the stage line moves to the
// vertical center and content is refitted.
func (s *Session) Resize(width, height float64) {
	if s.cam != nil {
		s.cam.Resize(width, height)
	}
	s.engine.SetCenterY(height / 2)
	s.relayout()
	s.scheduleFit()
}

func (s *Session) scheduleFit() {
	if s.manual {
		return
	}
	s.fitPending = true
	s.fitIn = s.opts.FitDelay
}

// fit frames the visible layout targets, each grown by its full radius.
func (s *Session) fit() {
	s.fitPending = false
	if s.manual {
		return
	}
	if s.cam == nil {
		debug.Errorf("camera: no viewport to fit")
		return
	}
	box, ok := s.targetBounds()
	if !ok {
		debug.Warnf("camera: nothing visible to fit")
		return
	}
	if err := s.cam.FitToBounds(box, s.opts.FitDuration); err != nil {
		if errors.Is(err, camera.ErrInvalidBounds) {
			debug.Warnf("camera: %v", err)
		} else {
			debug.Errorf("camera: %v", err)
		}
	}
}

func (s *Session) targetBounds() (r2.Box, bool) {
	visible := layout.Visible(s.m.Stages, s.detail)
	if len(visible) == 0 {
		return r2.Box{}, false
	}
	var box r2.Box
	for i, n := range visible {
		nb, _ := layout.Bounds([]r2.Vec{{X: n.LayoutX, Y: n.LayoutY}}, s.driver.Radii.Standard(n.Depth))
		if i == 0 {
			box = nb
			continue
		}
		box.Min.X = min(box.Min.X, nb.Min.X)
		box.Min.Y = min(box.Min.Y, nb.Min.Y)
		box.Max.X = max(box.Max.X, nb.Max.X)
		box.Max.Y = max(box.Max.Y, nb.Max.Y)
	}
	return box, true
}
