package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/vanderheijden86/procmap/pkg/model"
)

// AssertNodeCount verifies the expected number of nodes.
func AssertNodeCount(t *testing.T, m *model.Map, expected int) {
	t.Helper()
	if got := m.Len(); got != expected {
		t.Errorf("expected %d nodes, got %d", expected, got)
	}
}

// AssertValid fails the test when the map does not validate.
func AssertValid(t *testing.T, m *model.Map) {
	t.Helper()
	if err := m.Validate(); err != nil {
		t.Errorf("map %q is invalid: %v", m.Name, err)
	}
}

// AssertDepths checks every node's Depth against its position in the tree.
func AssertDepths(t *testing.T, m *model.Map) {
	t.Helper()
	var walk func(nodes []*model.Node, depth int)
	walk = func(nodes []*model.Node, depth int) {
		for _, n := range nodes {
			if n.Depth != depth {
				t.Errorf("node %s: depth %d, want %d", n.ID, n.Depth, depth)
			}
			walk(n.Children, depth+1)
		}
	}
	walk(m.Stages, 0)
}

// AssertSettled fails when any node is off its layout target or still
// transitioning.
func AssertSettled(t *testing.T, m *model.Map) {
	t.Helper()
	for _, n := range m.Nodes() {
		if n.DisplayX != n.LayoutX || n.DisplayY != n.LayoutY {
			t.Errorf("node %s displayed at (%.1f,%.1f), target (%.1f,%.1f)",
				n.ID, n.DisplayX, n.DisplayY, n.LayoutX, n.LayoutY)
		}
		if n.Transitioning() {
			t.Errorf("node %s still transitioning", n.ID)
		}
	}
}

// WriteMapFile encodes m into dir/name and returns the path.
func WriteMapFile(t *testing.T, dir, name string, m *model.Map) string {
	t.Helper()
	data, err := model.Encode(m)
	if err != nil {
		t.Fatalf("encode map: %v", err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write map: %v", err)
	}
	return path
}

// IDs returns node IDs in tree order.
func IDs(m *model.Map) []string {
	nodes := m.Nodes()
	ids := make([]string, len(nodes))
	for i, n := range nodes {
		ids[i] = n.ID
	}
	return ids
}
