package camera

import (
	"errors"
	"math"
	"testing"
	"time"

	"gonum.org/v1/gonum/spatial/r2"
)

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestFitToBoundsImmediate(t *testing.T) {
	v := NewViewport(1000, 500)
	box := r2.Box{Min: r2.Vec{X: 0, Y: 0}, Max: r2.Vec{X: 200, Y: 200}}
	if err := v.FitToBounds(box, 0); err != nil {
		t.Fatal(err)
	}
	tr := v.Current()
	if !near(tr.K, 2.5*Margin) {
		t.Errorf("K = %v, want %v", tr.K, 2.5*Margin)
	}
	center := tr.Apply(r2.Vec{X: 100, Y: 100})
	if !near(center.X, 500) || !near(center.Y, 250) {
		t.Errorf("box center maps to %v, want (500,250)", center)
	}
}

func TestFitToBoundsAnimates(t *testing.T) {
	v := NewViewport(100, 100)
	box := r2.Box{Min: r2.Vec{X: 0, Y: 0}, Max: r2.Vec{X: 10, Y: 10}}
	if err := v.FitToBounds(box, 500*time.Millisecond); err != nil {
		t.Fatal(err)
	}
	if !v.Animating() {
		t.Fatal("expected transition")
	}
	start := v.Current()
	v.Advance(250 * time.Millisecond)
	mid := v.Current()
	if mid.K <= start.K || mid.K >= 9 {
		t.Errorf("mid K = %v, want between %v and 9", mid.K, start.K)
	}
	v.Advance(time.Second)
	if v.Animating() {
		t.Error("transition should be finished")
	}
	if !near(v.Current().K, 9) {
		t.Errorf("final K = %v, want 9", v.Current().K)
	}
}

func TestFitToBoundsErrors(t *testing.T) {
	v := NewViewport(100, 100)
	flat := r2.Box{Min: r2.Vec{X: 0, Y: 5}, Max: r2.Vec{X: 10, Y: 5}}
	if err := v.FitToBounds(flat, 0); !errors.Is(err, ErrInvalidBounds) {
		t.Errorf("flat box err = %v", err)
	}
	if v.Current() != Identity {
		t.Error("invalid fit changed the transform")
	}

	empty := NewViewport(0, 0)
	box := r2.Box{Max: r2.Vec{X: 1, Y: 1}}
	if err := empty.FitToBounds(box, 0); !errors.Is(err, ErrNoViewport) {
		t.Errorf("unsized viewport err = %v", err)
	}
}

func TestPanAndZoom(t *testing.T) {
	v := NewViewport(100, 100)
	v.Pan(10, -5)
	if tr := v.Current(); tr.X != 10 || tr.Y != -5 {
		t.Errorf("after pan %+v", tr)
	}

	anchor := r2.Vec{X: 50, Y: 50}
	before := v.Current().Invert(anchor)
	v.Zoom(2, anchor)
	after := v.Current().Invert(anchor)
	if !near(before.X, after.X) || !near(before.Y, after.Y) {
		t.Errorf("zoom anchor drifted from %v to %v", before, after)
	}
	if v.Current().K != 2 {
		t.Errorf("K = %v", v.Current().K)
	}
}

func TestApplyInvertRoundTrip(t *testing.T) {
	tr := Transform{X: 3, Y: -7, K: 0.5}
	p := r2.Vec{X: 12, Y: 40}
	q := tr.Invert(tr.Apply(p))
	if !near(p.X, q.X) || !near(p.Y, q.Y) {
		t.Errorf("round trip %v -> %v", p, q)
	}
}
