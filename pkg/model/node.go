// Package model holds the process map tree: stages, their nested sub-stages
// and the per-node layout and animation state the engine writes into them.
package model

import (
	"strings"

	"github.com/google/uuid"
)

// Role is a rendering attribute. It has no effect on layout.
type Role string

const (
	RoleAI     Role = "ai"
	RoleHuman  Role = "human"
	RoleHybrid Role = "hybrid"
)

// Roles lists the known roles in legend order.
var Roles = []Role{RoleAI, RoleHuman, RoleHybrid}

// Legend returns the human readable legend entry for the role.
func (r Role) Legend() string {
	switch r {
	case RoleAI:
		return "AI-driven Task"
	case RoleHuman:
		return "Human-required Task"
	case RoleHybrid:
		return "Hybrid Task"
	default:
		return string(r)
	}
}

// BlankLabel is rendered in place of an empty title so the label keeps a
// clickable footprint.
const BlankLabel = " "

// Placeholder titles for nodes created interactively.
const (
	NewChildTitle = "New Node"
	NewStageTitle = "New Main Node"
)

// Node is one entity in the map. Only ID, Title, Role, Description and
// Children are persisted; everything else is derived or transient and is
// excluded from JSON and from deep copies.
type Node struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Role        Role    `json:"role"`
	Description string  `json:"description,omitempty"`
	Children    []*Node `json:"children"`

	// Depth is recomputed by Map.Reindex; stages are depth 0.
	Depth int `json:"-" copier:"-"`

	// Layout target written by the layout engine.
	LayoutX       float64 `json:"-" copier:"-"`
	LayoutY       float64 `json:"-" copier:"-"`
	SubtreeHeight float64 `json:"-" copier:"-"`

	// Display position advanced by the animation driver. The render layer
	// reads only these for placement.
	DisplayX float64 `json:"-" copier:"-"`
	DisplayY float64 `json:"-" copier:"-"`

	// ExpandedX/Y remember the last expanded target of a collapsing node.
	ExpandedX float64 `json:"-" copier:"-"`
	ExpandedY float64 `json:"-" copier:"-"`

	// Transition flags, scoped to a single transition.
	Expanding    bool    `json:"-" copier:"-"`
	Collapsing   bool    `json:"-" copier:"-"`
	NewlyCreated bool    `json:"-" copier:"-"`
	Growth       float64 `json:"-" copier:"-"`

	// Drag state owned by the interaction controller.
	Dragging          bool `json:"-" copier:"-"`
	MarkedForDeletion bool `json:"-" copier:"-"`
}

// NewNodeID returns a fresh unique node id.
func NewNodeID() string {
	return "n-" + uuid.NewString()
}

// NewNode creates a childless node with a fresh id.
func NewNode(title string, role Role, description string) *Node {
	return &Node{
		ID:          NewNodeID(),
		Title:       title,
		Role:        role,
		Description: description,
		Children:    []*Node{},
	}
}

// Label returns the text to render for the node.
func (n *Node) Label() string {
	if strings.TrimSpace(n.Title) == "" {
		return BlankLabel
	}
	return n.Title
}

// Tooltip returns the hover text: the description, or the title when the
// description is empty.
func (n *Node) Tooltip() string {
	if strings.TrimSpace(n.Description) != "" {
		return n.Description
	}
	return n.Title
}

// HasChildren reports whether the node has any children.
func (n *Node) HasChildren() bool {
	return len(n.Children) > 0
}

// Transitioning reports whether the node is mid expand or collapse.
func (n *Node) Transitioning() bool {
	return n.Expanding || n.Collapsing
}

// SnapDisplay moves the display position onto the layout target.
func (n *Node) SnapDisplay() {
	n.DisplayX = n.LayoutX
	n.DisplayY = n.LayoutY
}

// ClearTransition drops expand/collapse flags.
func (n *Node) ClearTransition() {
	n.Expanding = false
	n.Collapsing = false
}
