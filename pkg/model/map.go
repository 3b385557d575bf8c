package model

import (
	"errors"
	"fmt"

	"github.com/jinzhu/copier"
)

// Common errors.
var (
	ErrNodeNotFound = errors.New("node not found")
	ErrDuplicateID  = errors.New("duplicate node id")
	ErrNilNode      = errors.New("nil node")
)

// Map is an ordered sequence of stages plus an id-keyed index of the tree.
// The parent relation lives only in the index and is rebuilt by Reindex after
// every structural change, so nodes never point back at their parents.
type Map struct {
	Name   string
	Stages []*Node

	nodes   map[string]*Node
	parents map[string]string // child id -> parent id; stages absent
	order   []*Node           // pre-order
	dups    []string
}

// NewMap builds a map and indexes it.
func NewMap(name string, stages []*Node) *Map {
	if stages == nil {
		stages = []*Node{}
	}
	m := &Map{Name: name, Stages: stages}
	m.Reindex()
	return m
}

// Reindex recomputes depth, the parent table and the pre-order node list.
func (m *Map) Reindex() {
	m.nodes = make(map[string]*Node)
	m.parents = make(map[string]string)
	m.order = make([]*Node, 0, len(m.order))
	m.dups = nil

	var walk func(n *Node, depth int, parentID string)
	walk = func(n *Node, depth int, parentID string) {
		if n == nil {
			return
		}
		if n.Children == nil {
			n.Children = []*Node{}
		}
		n.Depth = depth
		if _, seen := m.nodes[n.ID]; seen {
			m.dups = append(m.dups, n.ID)
		}
		m.nodes[n.ID] = n
		if parentID != "" {
			m.parents[n.ID] = parentID
		}
		m.order = append(m.order, n)
		for _, c := range n.Children {
			walk(c, depth+1, n.ID)
		}
	}
	for _, s := range m.Stages {
		walk(s, 0, "")
	}
}

// Len returns the number of nodes in the tree.
func (m *Map) Len() int {
	return len(m.order)
}

// Nodes returns every node in pre-order. The slice is shared; callers must
// not modify it.
func (m *Map) Nodes() []*Node {
	return m.order
}

// Node looks up a node by id.
func (m *Map) Node(id string) (*Node, bool) {
	n, ok := m.nodes[id]
	return n, ok
}

// Parent returns the parent of the node. Stages have no parent.
func (m *Map) Parent(id string) (*Node, bool) {
	pid, ok := m.parents[id]
	if !ok {
		return nil, false
	}
	p, ok := m.nodes[pid]
	return p, ok
}

// Ancestor returns the ancestor of id at the given depth, or the node itself
// when it is already at or above that depth. The lookup fails for unknown ids
// and broken chains.
func (m *Map) Ancestor(id string, depth int) (*Node, bool) {
	n, ok := m.nodes[id]
	if !ok {
		return nil, false
	}
	for n.Depth > depth {
		p, ok := m.Parent(n.ID)
		if !ok {
			return nil, false
		}
		n = p
	}
	return n, true
}

// StageOf returns the depth-0 ancestor of the node.
func (m *Map) StageOf(id string) (*Node, bool) {
	return m.Ancestor(id, 0)
}

// StageIndex returns the position of the stage in the root sequence, or -1.
func (m *Map) StageIndex(id string) int {
	for i, s := range m.Stages {
		if s.ID == id {
			return i
		}
	}
	return -1
}

// MaxDepth returns the deepest depth present in the tree.
func (m *Map) MaxDepth() int {
	deepest := 0
	for _, n := range m.order {
		if n.Depth > deepest {
			deepest = n.Depth
		}
	}
	return deepest
}

// ClampDetail clamps a detail level to [0, MaxDepth].
func (m *Map) ClampDetail(level int) int {
	if level < 0 {
		return 0
	}
	if deepest := m.MaxDepth(); level > deepest {
		return deepest
	}
	return level
}

// InsertChild appends child to the parent's children and reindexes.
func (m *Map) InsertChild(parentID string, child *Node) error {
	if child == nil {
		return ErrNilNode
	}
	parent, ok := m.nodes[parentID]
	if !ok {
		return fmt.Errorf("insert child under %q: %w", parentID, ErrNodeNotFound)
	}
	if _, exists := m.nodes[child.ID]; exists {
		return fmt.Errorf("insert child %q: %w", child.ID, ErrDuplicateID)
	}
	parent.Children = append(parent.Children, child)
	m.Reindex()
	return nil
}

// AppendStage adds a stage at the end of the root sequence and reindexes.
func (m *Map) AppendStage(stage *Node) error {
	if stage == nil {
		return ErrNilNode
	}
	if _, exists := m.nodes[stage.ID]; exists {
		return fmt.Errorf("append stage %q: %w", stage.ID, ErrDuplicateID)
	}
	m.Stages = append(m.Stages, stage)
	m.Reindex()
	return nil
}

// RemoveNode detaches the node and its whole subtree. Stages are removed from
// the root sequence. The removed node is returned.
func (m *Map) RemoveNode(id string) (*Node, error) {
	n, ok := m.nodes[id]
	if !ok {
		return nil, fmt.Errorf("remove %q: %w", id, ErrNodeNotFound)
	}
	if parent, ok := m.Parent(id); ok {
		parent.Children = without(parent.Children, id)
	} else {
		m.Stages = without(m.Stages, id)
	}
	m.Reindex()
	return n, nil
}

// Rename sets the node title. Titles do not take part in layout.
func (m *Map) Rename(id, title string) error {
	n, ok := m.nodes[id]
	if !ok {
		return fmt.Errorf("rename %q: %w", id, ErrNodeNotFound)
	}
	n.Title = title
	return nil
}

// Clone deep-copies the persisted part of the tree into a new indexed map.
func (m *Map) Clone() (*Map, error) {
	var stages []*Node
	if err := copier.CopyWithOption(&stages, &m.Stages, copier.Option{DeepCopy: true}); err != nil {
		return nil, fmt.Errorf("clone map: %w", err)
	}
	return NewMap(m.Name, stages), nil
}

func without(nodes []*Node, id string) []*Node {
	out := make([]*Node, 0, len(nodes))
	for _, n := range nodes {
		if n.ID != id {
			out = append(out, n)
		}
	}
	return out
}
