package session

import (
	"fmt"

	"github.com/vanderheijden86/procmap/pkg/debug"
	"github.com/vanderheijden86/procmap/pkg/model"
)

// Descriptions given to interactively created nodes.
const (
	NewChildDescription = "Newly created node."
	NewStageDescription = "New main node."
)

// CreateChild appends a placeholder child to the node. The detail level is
// raised if the child would otherwise be hidden, and the child grows out of
// its parent's current display position.
func (s *Session) CreateChild(parentID string) (*model.Node, error) {
	parent, ok := s.m.Node(parentID)
	if !ok {
		return nil, fmt.Errorf("create child of %q: %w", parentID, model.ErrNodeNotFound)
	}
	child := model.NewNode(model.NewChildTitle, model.RoleHuman, NewChildDescription)
	if err := s.m.InsertChild(parentID, child); err != nil {
		return nil, err
	}

	s.raiseTo(child)
	child.DisplayX, child.DisplayY = parent.DisplayX, parent.DisplayY
	child.Expanding = true
	child.Collapsing = false
	s.relayout()
	s.scheduleFit()
	debug.Log("session: created %s under %s", child.ID, parentID)
	return child, nil
}

// CreateStage appends a new stage at the end of the sequence. It appears in
// place and grows from zero radius.
func (s *Session) CreateStage() (*model.Node, error) {
	stage := model.NewNode(model.NewStageTitle, model.RoleHuman, NewStageDescription)
	stage.NewlyCreated = true
	stage.Growth = 0
	if err := s.m.AppendStage(stage); err != nil {
		return nil, err
	}
	s.relayout()
	stage.SnapDisplay()
	s.scheduleFit()
	debug.Log("session: created stage %s", stage.ID)
	return stage, nil
}

// Delete removes a node and its subtree, or a stage from the sequence.
// Connectors re-route around the gap on the same call.
func (s *Session) Delete(id string) error {
	removed, err := s.m.RemoveNode(id)
	if err != nil {
		return err
	}
	if s.drag != nil && s.drag.id == id {
		s.drag = nil
	}
	s.detail = s.m.ClampDetail(s.detail)
	s.relayout()
	s.scheduleFit()
	debug.Log("session: deleted %s", removed.ID)
	return nil
}

// Rename sets a node title. Layout is unaffected.
func (s *Session) Rename(id, title string) error {
	return s.m.Rename(id, title)
}
