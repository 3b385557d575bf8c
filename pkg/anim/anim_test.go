package anim

import (
	"math"
	"testing"
	"time"

	"gonum.org/v1/gonum/spatial/r2"
	"pgregory.net/rapid"

	"github.com/vanderheijden86/procmap/pkg/model"
)

func TestSmooth(t *testing.T) {
	got := Smooth(0, 100, 5, 0.2)
	want := 100 * (1 - math.Exp(-1))
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("Smooth = %v, want %v", got, want)
	}
	if got := Smooth(10, 100, 5, 0); got != 10 {
		t.Errorf("zero dt moved display to %v", got)
	}
	if got := Smooth(10, 100, 5, -1); got != 10 {
		t.Errorf("negative dt moved display to %v", got)
	}
}

func TestStandardRadii(t *testing.T) {
	r := DefaultRadii()
	cases := []struct {
		depth int
		want  float64
	}{
		{0, 50}, {1, 20}, {2, 10}, {3, 9}, {9, 3}, {20, 3},
	}
	for _, tc := range cases {
		if got := r.Standard(tc.depth); got != tc.want {
			t.Errorf("Standard(%d) = %v, want %v", tc.depth, got, tc.want)
		}
	}
}

func TestStepSkipsDragged(t *testing.T) {
	d := NewDriver()
	n := &model.Node{LayoutX: 100, DisplayX: 0, Dragging: true}
	d.Step(n, 1)
	if n.DisplayX != 0 {
		t.Errorf("dragged node moved to %v", n.DisplayX)
	}
}

func TestGrowthRamp(t *testing.T) {
	d := NewDriver()
	n := &model.Node{NewlyCreated: true}

	if r := d.Radius(n, 0); r != 0 {
		t.Fatalf("initial radius = %v", r)
	}
	frames := 0
	for n.NewlyCreated {
		d.Step(n, 1.0/60)
		frames++
		if frames > 100 {
			t.Fatal("growth never finished")
		}
	}
	if frames < 19 || frames > 21 {
		t.Errorf("growth took %d frames, want about 20", frames)
	}
	if r := d.Radius(n, 0); r != 50 {
		t.Errorf("final radius = %v, want 50", r)
	}
}

func TestRadiusHiddenAndTransitioning(t *testing.T) {
	d := NewDriver()
	n := &model.Node{Depth: 2}
	if r := d.Radius(n, 1); r != 0 {
		t.Errorf("hidden radius = %v", r)
	}
	n.Collapsing = true
	if r := d.Radius(n, 1); r != 10 {
		t.Errorf("collapsing radius = %v, want 10", r)
	}
	n.Collapsing = false
	if r := d.Radius(n, 2); r != 10 {
		t.Errorf("visible radius = %v, want 10", r)
	}
}

func TestTransitionClearsWhenSettled(t *testing.T) {
	d := NewDriver()
	n := &model.Node{LayoutX: 400, Expanding: true}
	for i := 0; i < 200 && n.Expanding; i++ {
		d.Step(n, 1.0/30)
	}
	if n.Expanding {
		t.Fatal("expanding flag never cleared")
	}
	if !d.Settled([]*model.Node{n}) {
		t.Error("node should be settled")
	}
}

func TestRetargetWithoutJump(t *testing.T) {
	d := NewDriver()
	n := &model.Node{LayoutX: 100}
	d.Step(n, 0.1)
	mid := n.DisplayX

	n.LayoutX = -100
	d.Step(n, 0)
	if n.DisplayX != mid {
		t.Fatalf("retarget jumped display from %v to %v", mid, n.DisplayX)
	}
	d.Step(n, 1.0/60)
	if n.DisplayX >= mid {
		t.Fatalf("display %v did not move from %v toward the new target", n.DisplayX, mid)
	}
	want := mid + (-100-mid)*(1-math.Exp(-d.Speed/60))
	if math.Abs(n.DisplayX-want) > 1e-9 {
		t.Errorf("display %v, want %v continuing from %v", n.DisplayX, want, mid)
	}
}

func TestTick(t *testing.T) {
	d := NewDriver()
	a := &model.Node{LayoutX: 10}
	b := &model.Node{LayoutY: 10}
	d.Tick([]*model.Node{a, b}, 200*time.Millisecond)
	if a.DisplayX == 0 || b.DisplayY == 0 {
		t.Error("tick did not advance nodes")
	}
}

func TestLabelOpacity(t *testing.T) {
	parent := r2.Vec{X: 0, Y: 0}

	visible := &model.Node{Depth: 1}
	if o := LabelOpacity(visible, parent, 1); o != 1 {
		t.Errorf("visible opacity = %v", o)
	}
	hidden := &model.Node{Depth: 2}
	if o := LabelOpacity(hidden, parent, 1); o != 0 {
		t.Errorf("hidden opacity = %v", o)
	}

	exp := &model.Node{Depth: 1, Expanding: true, LayoutX: 100}
	cases := []struct {
		displayX float64
		want     float64
	}{
		{0, 0}, {40, 0}, {50, 0}, {75, 0.5}, {100, 1},
	}
	for _, tc := range cases {
		exp.DisplayX = tc.displayX
		if o := LabelOpacity(exp, parent, 1); math.Abs(o-tc.want) > 1e-9 {
			t.Errorf("expanding at %v: opacity = %v, want %v", tc.displayX, o, tc.want)
		}
	}

	col := &model.Node{Depth: 2, Collapsing: true, ExpandedX: 100, DisplayX: 90}
	if o := LabelOpacity(col, parent, 1); math.Abs(o-0.8) > 1e-9 {
		t.Errorf("collapsing opacity = %v, want 0.8", o)
	}
	col.DisplayX = 30
	if o := LabelOpacity(col, parent, 1); o != 0 {
		t.Errorf("collapsing near parent opacity = %v, want 0", o)
	}
}

func TestPropertyConvergesMonotonically(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		d := NewDriver()
		n := &model.Node{
			DisplayX: rapid.Float64Range(-5000, 5000).Draw(t, "dx"),
			DisplayY: rapid.Float64Range(-5000, 5000).Draw(t, "dy"),
			LayoutX:  rapid.Float64Range(-5000, 5000).Draw(t, "tx"),
			LayoutY:  rapid.Float64Range(-5000, 5000).Draw(t, "ty"),
		}
		dt := rapid.Float64Range(0.001, 0.1).Draw(t, "dt")

		dist := func() float64 { return math.Hypot(n.LayoutX-n.DisplayX, n.LayoutY-n.DisplayY) }
		prev := dist()
		for i := 0; i < 5000; i++ {
			signX := math.Signbit(n.LayoutX - n.DisplayX)
			d.Step(n, dt)
			cur := dist()
			if cur > prev {
				t.Fatalf("distance grew from %v to %v", prev, cur)
			}
			if n.LayoutX != n.DisplayX && math.Signbit(n.LayoutX-n.DisplayX) != signX {
				t.Fatalf("overshot target on x")
			}
			prev = cur
		}
		if prev > 1e-6 {
			t.Fatalf("did not converge, distance %v", prev)
		}
	})
}
