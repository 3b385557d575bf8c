package testutil

import (
	"os"
	"reflect"
	"testing"

	"github.com/vanderheijden86/procmap/pkg/model"
)

func TestUniformShape(t *testing.T) {
	m := NewDefault().Uniform(3, 2, 2)
	// 3 * (1 + 2 + 4)
	AssertNodeCount(t, m, 21)
	AssertValid(t, m)
	AssertDepths(t, m)
	if m.MaxDepth() != 2 {
		t.Errorf("MaxDepth = %d, want 2", m.MaxDepth())
	}
}

func TestGeneratorDeterministic(t *testing.T) {
	a := New(GeneratorConfig{Seed: 7}).Random(5, 3, 3)
	b := New(GeneratorConfig{Seed: 7}).Random(5, 3, 3)
	if !reflect.DeepEqual(IDs(a), IDs(b)) {
		t.Fatal("same seed produced different trees")
	}
	for i, n := range a.Nodes() {
		if n.Role != b.Nodes()[i].Role {
			t.Fatalf("node %s role differs between runs", n.ID)
		}
	}
	AssertValid(t, a)
	if a.MaxDepth() > 3 {
		t.Errorf("MaxDepth = %d exceeds the limit", a.MaxDepth())
	}
}

func TestChainAndFlat(t *testing.T) {
	g := NewDefault()
	chain := g.Chain(4)
	AssertNodeCount(t, chain, 5)
	if chain.MaxDepth() != 4 || len(chain.Stages) != 1 {
		t.Errorf("chain: depth %d, %d stages", chain.MaxDepth(), len(chain.Stages))
	}

	flat := g.Flat(6)
	AssertNodeCount(t, flat, 6)
	AssertValid(t, flat)

	// ids keep counting across calls on one generator
	if _, ok := flat.Node("n1"); ok {
		t.Error("ids from a previous call were reused")
	}
	if got := flat.Stages[0].ID; got != "n6" {
		t.Errorf("first flat stage id = %q, want n6", got)
	}
}

func TestRoleMix(t *testing.T) {
	m := New(GeneratorConfig{Seed: 1, RoleMix: []model.Role{model.RoleHuman}}).Uniform(2, 3, 1)
	for _, n := range m.Nodes() {
		if n.Role != model.RoleHuman {
			t.Fatalf("node %s has role %s", n.ID, n.Role)
		}
	}
}

func TestWriteMapFileRoundTrip(t *testing.T) {
	m := NewDefault().Uniform(2, 1, 1)
	path := WriteMapFile(t, t.TempDir(), "m.json", m)
	got, err := model.Decode(mustRead(t, path))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !reflect.DeepEqual(IDs(got), IDs(m)) {
		t.Errorf("ids = %v, want %v", IDs(got), IDs(m))
	}
}

func mustRead(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return data
}
