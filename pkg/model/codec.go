package model

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"

	json "github.com/goccy/go-json"
)

// ErrMalformedMap is returned when a persisted map cannot be parsed or fails
// validation.
var ErrMalformedMap = errors.New("malformed map")

// Document is the persisted form of a map. Parent links and all layout or
// animation state are never part of it.
type Document struct {
	Name   string  `json:"name"`
	Stages []*Node `json:"stages"`
}

// Encode serialises the map as an indented JSON document.
func Encode(m *Map) ([]byte, error) {
	stages := m.Stages
	if stages == nil {
		stages = []*Node{}
	}
	data, err := json.MarshalIndent(Document{Name: m.Name, Stages: stages}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding map: %w", err)
	}
	return data, nil
}

// Decode parses a persisted map. Both the document form and a bare JSON
// array of stages are accepted. Nothing is returned unless the whole tree
// parses and validates.
func Decode(data []byte) (*Map, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: empty document", ErrMalformedMap)
	}

	var doc Document
	if trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &doc.Stages); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedMap, err)
		}
	} else if err := json.Unmarshal(trimmed, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedMap, err)
	}

	if containsNil(doc.Stages) {
		return nil, fmt.Errorf("%w: null node", ErrMalformedMap)
	}

	m := NewMap(doc.Name, doc.Stages)
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedMap, err)
	}
	return m, nil
}

func containsNil(nodes []*Node) bool {
	for _, n := range nodes {
		if n == nil || containsNil(n.Children) {
			return true
		}
	}
	return false
}

//go:embed default_map.json
var defaultMapJSON []byte

var defaultMap = mustDecode(defaultMapJSON)

func mustDecode(data []byte) *Map {
	m, err := Decode(data)
	if err != nil {
		panic(fmt.Sprintf("embedded default map: %v", err))
	}
	return m
}

// DefaultMapName is the name of the implicit default slot.
const DefaultMapName = "Default Map"

// DefaultMap returns a fresh copy of the built-in process map.
func DefaultMap() *Map {
	m, err := defaultMap.Clone()
	if err != nil {
		// Clone only fails on reflection errors, which the embedded tree
		// cannot trigger.
		panic(err)
	}
	return m
}

// BlankMap returns the single-stage map used by "new map".
func BlankMap() *Map {
	stage := NewNode("New Map", RoleHuman, "A brand new map.")
	return NewMap("New Map", []*Node{stage})
}
