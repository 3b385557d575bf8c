package connector

import (
	"fmt"
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"
	"pgregory.net/rapid"

	"github.com/vanderheijden86/procmap/pkg/model"
)

func leaf(id string) *model.Node {
	return &model.Node{ID: id, Title: id, Role: model.RoleAI, Children: []*model.Node{}}
}

func parent(id string, children ...*model.Node) *model.Node {
	n := leaf(id)
	n.Children = children
	return n
}

func keys(edges []Edge) []string {
	out := make([]string, len(edges))
	for i, e := range edges {
		out[i] = e.Key()
	}
	return out
}

func TestComputeDetailZero(t *testing.T) {
	stages := []*model.Node{leaf("a"), parent("b", leaf("b1")), leaf("c")}
	model.NewMap("t", stages)

	got := keys(Compute(stages, 0))
	if fmt.Sprint(got) != "[a-b b-c]" {
		t.Errorf("edges = %v", got)
	}
}

func TestComputeFrontierChildren(t *testing.T) {
	stages := []*model.Node{parent("a", leaf("a1"), leaf("a2"), leaf("a3")), leaf("b")}
	model.NewMap("t", stages)

	got := keys(Compute(stages, 1))
	want := "[a1-b a2-b a3-b a-a1 a-a2 a-a3]"
	if fmt.Sprint(got) != want {
		t.Errorf("edges = %v, want %v", got, want)
	}
}

func TestComputeChildlessStageActsAsFrontier(t *testing.T) {
	stages := []*model.Node{leaf("a"), parent("b", leaf("b1")), leaf("c")}
	model.NewMap("t", stages)

	got := keys(Compute(stages, 1))
	want := "[a-b b1-c b-b1]"
	if fmt.Sprint(got) != want {
		t.Errorf("edges = %v, want %v", got, want)
	}
}

func TestComputeMixedDepthFrontier(t *testing.T) {
	// a1 has children and is expanded; a2 is a leaf at depth 1.
	stages := []*model.Node{
		parent("a", parent("a1", leaf("x"), leaf("y")), leaf("a2")),
		leaf("b"),
	}
	model.NewMap("t", stages)

	var ids []string
	for _, n := range Frontier(stages[0], 2) {
		ids = append(ids, n.ID)
	}
	if fmt.Sprint(ids) != "[x y a2]" {
		t.Errorf("frontier = %v", ids)
	}
	ids = ids[:0]
	for _, n := range Frontier(stages[0], 1) {
		ids = append(ids, n.ID)
	}
	if fmt.Sprint(ids) != "[a1 a2]" {
		t.Errorf("frontier at 1 = %v", ids)
	}
}

func TestComputeAfterStageRemoval(t *testing.T) {
	stages := []*model.Node{parent("a", leaf("a1")), leaf("b"), leaf("c")}
	m := model.NewMap("t", stages)
	if _, err := m.RemoveNode("b"); err != nil {
		t.Fatal(err)
	}

	edges := Compute(m.Stages, 1)
	for _, e := range edges {
		if e.Source.ID == "b" || e.Target.ID == "b" {
			t.Fatalf("edge %s references deleted stage", e.Key())
		}
	}
	got := keys(edges)
	if fmt.Sprint(got) != "[a1-c a-a1]" {
		t.Errorf("edges = %v", got)
	}
	if i := Continuous(m.Stages, edges); i != -1 {
		t.Errorf("path broken after stage %d", i)
	}
}

func TestDiffEdges(t *testing.T) {
	a, b, c, a1 := leaf("a"), leaf("b"), leaf("c"), leaf("a1")
	prev := []Edge{{a, b}, {b, c}}
	next := []Edge{{a1, b}, {b, c}, {a, a1}}

	d := DiffEdges(prev, next)
	if fmt.Sprint(keys(d.Entered)) != "[a1-b a-a1]" {
		t.Errorf("entered = %v", keys(d.Entered))
	}
	if fmt.Sprint(keys(d.Exited)) != "[a-b]" {
		t.Errorf("exited = %v", keys(d.Exited))
	}
	if fmt.Sprint(keys(d.Kept)) != "[b-c]" {
		t.Errorf("kept = %v", keys(d.Kept))
	}
}

func TestTrim(t *testing.T) {
	seg := Trim(r2.Vec{X: 0, Y: 0}, r2.Vec{X: 100, Y: 0}, 10, 20)
	if seg != (Segment{X1: 10, Y1: 0, X2: 80, Y2: 0}) {
		t.Errorf("segment = %+v", seg)
	}

	seg = Trim(r2.Vec{X: 0, Y: 0}, r2.Vec{X: 30, Y: 40}, 5, 5)
	if math.Abs(seg.X1-3) > 1e-9 || math.Abs(seg.Y1-4) > 1e-9 {
		t.Errorf("start = (%v,%v), want (3,4)", seg.X1, seg.Y1)
	}
	if math.Abs(seg.X2-27) > 1e-9 || math.Abs(seg.Y2-36) > 1e-9 {
		t.Errorf("end = (%v,%v), want (27,36)", seg.X2, seg.Y2)
	}

	seg = Trim(r2.Vec{X: 5, Y: 5}, r2.Vec{X: 5, Y: 5}, 10, 10)
	if seg != (Segment{X1: 5, Y1: 5, X2: 5, Y2: 5}) {
		t.Errorf("coincident segment = %+v", seg)
	}
}

func TestGeometryUsesDisplayPositions(t *testing.T) {
	a, b := leaf("a"), leaf("b")
	a.LayoutX, b.LayoutX = 999, 999
	a.DisplayX, b.DisplayX = 0, 50
	seg := Geometry(Edge{a, b}, func(*model.Node) float64 { return 5 })
	if seg.X1 != 5 || seg.X2 != 45 {
		t.Errorf("segment = %+v", seg)
	}
}

func TestContinuousDetectsGap(t *testing.T) {
	a, b, c := leaf("a"), leaf("b"), leaf("c")
	if got := Continuous([]*model.Node{a, b, c}, []Edge{{a, b}}); got != 1 {
		t.Errorf("Continuous = %d, want 1", got)
	}
}

func genStages(t *rapid.T) []*model.Node {
	next := 0
	var gen func(depth int) *model.Node
	gen = func(depth int) *model.Node {
		next++
		n := leaf(fmt.Sprintf("n%d", next))
		if depth >= 3 {
			return n
		}
		k := rapid.IntRange(0, 3).Draw(t, fmt.Sprintf("children-%d", next))
		for i := 0; i < k; i++ {
			n.Children = append(n.Children, gen(depth+1))
		}
		return n
	}
	stages := make([]*model.Node, rapid.IntRange(1, 5).Draw(t, "stages"))
	for i := range stages {
		stages[i] = gen(0)
	}
	model.NewMap("gen", stages)
	return stages
}

func TestPropertyStageCoverageAtZero(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		stages := genStages(t)
		edges := Compute(stages, 0)
		if len(edges) != len(stages)-1 {
			t.Fatalf("got %d edges for %d stages", len(edges), len(stages))
		}
		for i, e := range edges {
			if e.Source != stages[i] || e.Target != stages[i+1] {
				t.Fatalf("edge %d = %s", i, e.Key())
			}
		}
	})
}

func TestPropertyAlwaysContinuous(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		stages := genStages(t)
		detail := rapid.IntRange(0, 4).Draw(t, "detail")
		if i := Continuous(stages, Compute(stages, detail)); i != -1 {
			t.Fatalf("no path from stage %d to %d at detail %d", i, i+1, detail)
		}
	})
}
