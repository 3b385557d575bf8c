// Package layout computes target positions for the process map.
//
// Stages run left to right along a horizontal center line. Below each stage
// the tree is expanded to the current detail level: children stack
// vertically, centered on their parent, shifted right by a fixed per-depth
// offset. Nodes deeper than the detail level are pinned to their nearest
// visible ancestor so they can grow out of, or collapse into, it.
package layout

import (
	"github.com/vanderheijden86/procmap/pkg/debug"
	"github.com/vanderheijden86/procmap/pkg/metrics"
	"github.com/vanderheijden86/procmap/pkg/model"
)

// Config holds the spacing parameters.
type Config struct {
	StartX         float64 `yaml:"start_x"`         // X of the first stage
	StageSpacing   float64 `yaml:"stage_spacing"`   // gap after a stage's rightmost node
	DepthOffset    float64 `yaml:"depth_offset"`    // X offset of a child from its parent
	NodeHeight     float64 `yaml:"node_height"`     // base vertical space per node
	SiblingSpacing float64 `yaml:"sibling_spacing"` // gap between stacked siblings
	CenterY        float64 `yaml:"center_y"`        // Y of the stage line
	Relax          bool    `yaml:"relax"`           // run the repulsion post-process
}

// DefaultConfig returns the spacing used by the original diagrams.
func DefaultConfig() Config {
	return Config{
		StartX:         100,
		StageSpacing:   300,
		DepthOffset:    400,
		NodeHeight:     40,
		SiblingSpacing: 10,
		CenterY:        400,
	}
}

// PostProcessor adjusts visible nodes after the tree layout has run. It may
// move LayoutX/LayoutY of the nodes it is given and nothing else.
type PostProcessor interface {
	Adjust(visible []*model.Node)
}

// Engine runs the layout with an optional post-process step.
type Engine struct {
	cfg  Config
	post PostProcessor
}

// Option configures an Engine.
type Option func(*Engine)

// WithPostProcessor installs a post-process step.
func WithPostProcessor(p PostProcessor) Option {
	return func(e *Engine) {
		e.post = p
	}
}

// NewEngine creates an engine. When cfg.Relax is set and no post-processor
// was supplied, the default repulsion pass is used.
func NewEngine(cfg Config, opts ...Option) *Engine {
	e := &Engine{cfg: cfg}
	for _, opt := range opts {
		opt(e)
	}
	if e.post == nil && cfg.Relax {
		e.post = DefaultRepulsion(nil)
	}
	return e
}

// Config returns the engine's spacing configuration.
func (e *Engine) Config() Config {
	return e.cfg
}

// SetCenterY moves the stage line, e.g. after a viewport resize.
func (e *Engine) SetCenterY(y float64) {
	e.cfg.CenterY = y
}

// Compute lays out the stages at the given detail level.
func (e *Engine) Compute(stages []*model.Node, detailLevel int) {
	Compute(stages, detailLevel, e.cfg)
	if e.post == nil {
		return
	}
	visible := Visible(stages, detailLevel)
	if len(visible) < 2 {
		return
	}
	e.post.Adjust(visible)
	for _, s := range stages {
		pinCollapsed(s, 0, detailLevel)
	}
}

// Compute writes LayoutX, LayoutY and SubtreeHeight for every node under the
// stages. It is a pure function of the tree, the detail level and cfg.
func Compute(stages []*model.Node, detailLevel int, cfg Config) {
	defer metrics.Timer(metrics.LayoutCompute)()
	if len(stages) == 0 {
		debug.Log("layout: no stages")
		return
	}
	if detailLevel < 0 {
		detailLevel = 0
	}

	for _, s := range stages {
		reset(s)
	}

	x := cfg.StartX
	for _, s := range stages {
		s.LayoutX = x
		s.LayoutY = cfg.CenterY
		subtreeHeight(s, 0, detailLevel, cfg)
		place(s, cfg.CenterY, 0, detailLevel, cfg)
		x = RightmostX(s) + cfg.StageSpacing
	}
}

func reset(n *model.Node) {
	n.LayoutX = 0
	n.LayoutY = 0
	n.SubtreeHeight = 0
	for _, c := range n.Children {
		reset(c)
	}
}

// subtreeHeight returns the vertical space the node's visible subtree needs.
func subtreeHeight(n *model.Node, depth, detailLevel int, cfg Config) float64 {
	if depth >= detailLevel || len(n.Children) == 0 {
		n.SubtreeHeight = cfg.NodeHeight
		return n.SubtreeHeight
	}
	total := 0.0
	for _, c := range n.Children {
		total += subtreeHeight(c, depth+1, detailLevel, cfg)
	}
	total += cfg.SiblingSpacing * float64(len(n.Children)-1)
	n.SubtreeHeight = max(cfg.NodeHeight, total)
	return n.SubtreeHeight
}

// place assigns positions to the node's descendants. The node's own X must
// already be set.
func place(n *model.Node, centerY float64, depth, detailLevel int, cfg Config) {
	n.LayoutY = centerY
	if len(n.Children) == 0 {
		return
	}

	if depth+1 > detailLevel {
		for _, c := range n.Children {
			c.LayoutX = n.LayoutX
			c.LayoutY = n.LayoutY
			place(c, n.LayoutY, depth+1, detailLevel, cfg)
		}
		return
	}

	total := cfg.SiblingSpacing * float64(len(n.Children)-1)
	for _, c := range n.Children {
		total += c.SubtreeHeight
	}
	y := centerY - total/2
	for _, c := range n.Children {
		cy := y + c.SubtreeHeight/2
		c.LayoutX = n.LayoutX + cfg.DepthOffset
		place(c, cy, depth+1, detailLevel, cfg)
		y += c.SubtreeHeight + cfg.SiblingSpacing
	}
}

// pinCollapsed re-pins hidden nodes to their nearest visible ancestor after
// a post-process has moved visible ones.
func pinCollapsed(n *model.Node, depth, detailLevel int) {
	for _, c := range n.Children {
		if depth+1 > detailLevel {
			c.LayoutX, c.LayoutY = n.LayoutX, n.LayoutY
		}
		pinCollapsed(c, depth+1, detailLevel)
	}
}

// RightmostX returns the largest LayoutX within the node's subtree.
func RightmostX(n *model.Node) float64 {
	x := n.LayoutX
	for _, c := range n.Children {
		x = max(x, RightmostX(c))
	}
	return x
}

// Visible returns the nodes at depth <= detailLevel in pre-order.
func Visible(stages []*model.Node, detailLevel int) []*model.Node {
	var out []*model.Node
	var walk func(n *model.Node, depth int)
	walk = func(n *model.Node, depth int) {
		if depth > detailLevel {
			return
		}
		out = append(out, n)
		for _, c := range n.Children {
			walk(c, depth+1)
		}
	}
	for _, s := range stages {
		walk(s, 0)
	}
	return out
}
