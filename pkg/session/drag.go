package session

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/vanderheijden86/procmap/pkg/debug"
	"github.com/vanderheijden86/procmap/pkg/model"
)

type dragState struct {
	id    string
	start r2.Vec // display position when the drag began
	grab  r2.Vec // pointer offset from the node center
}

// Dragging returns the id of the node being dragged.
func (s *Session) Dragging() (string, bool) {
	if s.drag == nil {
		return "", false
	}
	return s.drag.id, true
}

// BeginDrag takes a node out of the animation loop; its display position
// follows the pointer until EndDrag. pointer is in world coordinates.
func (s *Session) BeginDrag(id string, pointer r2.Vec) error {
	n, ok := s.m.Node(id)
	if !ok {
		return fmt.Errorf("drag %q: %w", id, model.ErrNodeNotFound)
	}
	if s.drag != nil {
		s.cancelDrag()
	}
	start := r2.Vec{X: n.DisplayX, Y: n.DisplayY}
	s.drag = &dragState{id: id, start: start, grab: r2.Sub(pointer, start)}
	n.Dragging = true
	n.MarkedForDeletion = false
	return nil
}

// DragTo moves the dragged node under the pointer. It reports whether the
// node is now far enough from where the drag began to be deleted on release.
func (s *Session) DragTo(pointer r2.Vec) (bool, error) {
	n, err := s.dragged()
	if err != nil {
		return false, err
	}
	pos := r2.Sub(pointer, s.drag.grab)
	n.DisplayX, n.DisplayY = pos.X, pos.Y
	n.MarkedForDeletion = r2.Norm(r2.Sub(pos, s.drag.start)) >= s.opts.DeleteThreshold
	return n.MarkedForDeletion, nil
}

// EndDrag releases the dragged node. Past the threshold the node and its
// subtree are deleted; otherwise it snaps back to its layout target.
func (s *Session) EndDrag() (deleted bool, err error) {
	n, err := s.dragged()
	if err != nil {
		return false, err
	}
	s.drag = nil
	n.Dragging = false
	if n.MarkedForDeletion {
		n.MarkedForDeletion = false
		debug.Log("session: drag-delete %s", n.ID)
		return true, s.Delete(n.ID)
	}
	n.SnapDisplay()
	return false, nil
}

func (s *Session) cancelDrag() {
	if n, ok := s.m.Node(s.drag.id); ok {
		n.Dragging = false
		n.MarkedForDeletion = false
		n.SnapDisplay()
	}
	s.drag = nil
}

func (s *Session) dragged() (*model.Node, error) {
	if s.drag == nil {
		return nil, ErrNotDragging
	}
	id := s.drag.id
	n, ok := s.m.Node(id)
	if !ok {
		s.drag = nil
		return nil, fmt.Errorf("drag %q: %w", id, model.ErrNodeNotFound)
	}
	return n, nil
}
