package session

import (
	"math"
	"testing"
	"time"

	"github.com/vanderheijden86/procmap/pkg/testutil"
)

func TestGeneratedMapConvergesAtEveryLevel(t *testing.T) {
	m := testutil.NewDefault().Random(8, 3, 3)
	s := New(m, &fakeCamera{}, DefaultOptions())

	for level := 1; level <= m.MaxDepth(); level++ {
		s.SetDetailLevel(level)
		settle(s)
		if !s.Settled() {
			t.Fatalf("level %d did not settle", level)
		}
		for _, n := range m.Nodes() {
			if d := math.Hypot(n.DisplayX-n.LayoutX, n.DisplayY-n.LayoutY); d > 1 {
				t.Errorf("level %d: node %s is %.2fpx off target", level, n.ID, d)
			}
		}
	}
	for s.Collapse() {
		settle(s)
	}
	if s.DetailLevel() != 0 {
		t.Errorf("DetailLevel = %d after collapsing everything", s.DetailLevel())
	}
}

func TestSnapSettlesGeneratedMap(t *testing.T) {
	m := testutil.NewDefault().Uniform(5, 2, 2)
	s := New(m, nil, DefaultOptions())
	s.SetDetailLevel(2)
	s.Tick(time.Second / 30)
	s.Snap()
	testutil.AssertSettled(t, m)
	testutil.AssertDepths(t, m)
}

func BenchmarkTickExpanded(b *testing.B) {
	m := testutil.NewDefault().Uniform(10, 3, 3)
	s := New(m, &fakeCamera{}, DefaultOptions())
	s.SetDetailLevel(3)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.Tick(time.Second / 60)
	}
}

func BenchmarkToggleDetail(b *testing.B) {
	m := testutil.NewDefault().Uniform(10, 3, 3)
	s := New(m, &fakeCamera{}, DefaultOptions())
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.SetDetailLevel(3)
		s.SetDetailLevel(0)
	}
}

func BenchmarkFrame(b *testing.B) {
	m := testutil.NewDefault().Uniform(10, 3, 2)
	s := New(m, nil, DefaultOptions())
	s.SetDetailLevel(2)
	s.Snap()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = s.Frame()
	}
}
