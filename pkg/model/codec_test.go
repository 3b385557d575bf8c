package model

import (
	"errors"
	"strings"
	"testing"
)

func TestEncodeDecode_PreservesTreeWithoutState(t *testing.T) {
	m := sampleMap()
	for _, n := range m.Nodes() {
		n.LayoutX, n.DisplayY, n.Expanding = 1, 2, true
	}

	data, err := Encode(m)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	s := string(data)
	for _, banned := range []string{"LayoutX", "DisplayY", "Expanding", "parent", "Depth"} {
		if strings.Contains(s, banned) {
			t.Errorf("encoded map contains %q:\n%s", banned, s)
		}
	}

	got, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got.Name != "sample" || got.Len() != m.Len() {
		t.Errorf("decoded %q with %d nodes", got.Name, got.Len())
	}
	if n, _ := got.Node("a1x"); n == nil || n.Depth != 2 || n.LayoutX != 0 {
		t.Errorf("a1x = %+v", n)
	}
}

func TestDecode_BareStageArray(t *testing.T) {
	m, err := Decode([]byte(`[{"id":"x","title":"X","role":"ai","children":[]}]`))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(m.Stages) != 1 || m.Stages[0].ID != "x" {
		t.Errorf("stages = %v", m.Stages)
	}
}

func TestDecode_Malformed(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"empty", ``},
		{"syntax", `{"name":`},
		{"bad role", `{"stages":[{"id":"x","title":"X","role":"robot"}]}`},
		{"missing id", `{"stages":[{"title":"X","role":"ai"}]}`},
		{"nested bad role", `{"stages":[{"id":"x","role":"ai","children":[{"id":"y","role":""}]}]}`},
		{"duplicate ids", `{"stages":[{"id":"x","role":"ai"},{"id":"x","role":"human"}]}`},
		{"null child", `{"stages":[{"id":"x","role":"ai","children":[null]}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := Decode([]byte(tt.in))
			if err == nil {
				t.Fatalf("expected error, got map %+v", m)
			}
			if !errors.Is(err, ErrMalformedMap) {
				t.Errorf("error %v does not wrap ErrMalformedMap", err)
			}
			if m != nil {
				t.Error("no partial map should be returned")
			}
		})
	}
}

func TestDefaultMap_LoadsAndIsFresh(t *testing.T) {
	a := DefaultMap()
	b := DefaultMap()

	if len(a.Stages) != 10 {
		t.Errorf("default map has %d stages, want 10", len(a.Stages))
	}
	if a.MaxDepth() < 2 {
		t.Errorf("default map max depth = %d, want >= 2", a.MaxDepth())
	}
	a.Stages[0].Title = "mutated"
	if b.Stages[0].Title == "mutated" {
		t.Error("DefaultMap copies share nodes")
	}
}

func TestBlankMap(t *testing.T) {
	m := BlankMap()
	if len(m.Stages) != 1 || m.Stages[0].Title != "New Map" {
		t.Errorf("blank map = %+v", m.Stages)
	}
	if err := m.Validate(); err != nil {
		t.Errorf("blank map invalid: %v", err)
	}
}
