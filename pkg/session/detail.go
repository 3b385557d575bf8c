package session

import (
	"github.com/vanderheijden86/procmap/pkg/debug"
	"github.com/vanderheijden86/procmap/pkg/model"
)

// Expand shows one more level. It reports whether the level changed.
func (s *Session) Expand() bool {
	return s.SetDetailLevel(s.detail + 1)
}

// Collapse hides the deepest visible level. It reports whether the level
// changed.
func (s *Session) Collapse() bool {
	return s.SetDetailLevel(s.detail - 1)
}

// SetDetailLevel moves to level, clamped to [0, max depth], and reports
// whether anything changed.
//
// Nodes that become visible start at the current display position of their
// nearest previously visible ancestor, however many levels are skipped.
// Nodes that become hidden remember their expanded target and are retargeted
// onto their nearest visible ancestor.
func (s *Session) SetDetailLevel(level int) bool {
	level = s.m.ClampDetail(level)
	old := s.detail
	if level == old {
		return false
	}

	if level > old {
		s.seedExpanding(old, level)
	} else {
		s.markCollapsing(level, old)
	}
	s.detail = level
	s.relayout()
	debug.Log("session: detail %d -> %d", old, level)
	s.scheduleFit()
	return true
}

func (s *Session) seedExpanding(old, level int) {
	for _, n := range s.m.Nodes() {
		if n.Depth <= old || n.Depth > level {
			continue
		}
		if n.Collapsing {
			// Still on screen: reverse it in place.
			n.Collapsing = false
			n.Expanding = true
			continue
		}
		anc, ok := s.m.Ancestor(n.ID, old)
		if !ok {
			debug.Log("session: no ancestor at depth %d for %s", old, n.ID)
			continue
		}
		n.DisplayX, n.DisplayY = anc.DisplayX, anc.DisplayY
		n.Expanding = true
		n.Collapsing = false
	}
}

func (s *Session) markCollapsing(level, old int) {
	for _, n := range s.m.Nodes() {
		if n.Depth <= level || n.Depth > old {
			continue
		}
		n.ExpandedX, n.ExpandedY = n.LayoutX, n.LayoutY
		n.Collapsing = true
		n.Expanding = false
	}
}

// raiseTo makes a node at depth visible without touching anything else.
func (s *Session) raiseTo(n *model.Node) {
	if n.Depth > s.detail {
		s.SetDetailLevel(n.Depth)
	}
}
