// Package testutil provides process map fixtures for tests and benchmarks.
// All generators produce deterministic output for reproducible tests.
package testutil

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/vanderheijden86/procmap/pkg/model"
)

// GeneratorConfig controls map generation.
type GeneratorConfig struct {
	Seed     int64        // Random seed for determinism (0 = use current time)
	IDPrefix string       // Prefix for node IDs (default: "n")
	RoleMix  []model.Role // Roles to draw from (nil = all roles)
}

// DefaultConfig returns a config suitable for most tests.
func DefaultConfig() GeneratorConfig {
	return GeneratorConfig{
		Seed:     42,
		IDPrefix: "n",
		RoleMix:  model.Roles,
	}
}

// Generator creates maps of various shapes.
type Generator struct {
	cfg  GeneratorConfig
	rng  *rand.Rand
	next int
}

// New creates a Generator with the given config.
func New(cfg GeneratorConfig) *Generator {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	if cfg.IDPrefix == "" {
		cfg.IDPrefix = "n"
	}
	if len(cfg.RoleMix) == 0 {
		cfg.RoleMix = model.Roles
	}
	return &Generator{
		cfg: cfg,
		rng: rand.New(rand.NewSource(seed)),
	}
}

// NewDefault creates a Generator with default config.
func NewDefault() *Generator {
	return New(DefaultConfig())
}

func (g *Generator) node(depth int) *model.Node {
	g.next++
	role := g.cfg.RoleMix[g.rng.Intn(len(g.cfg.RoleMix))]
	return &model.Node{
		ID:          fmt.Sprintf("%s%d", g.cfg.IDPrefix, g.next),
		Title:       fmt.Sprintf("Step %d", g.next),
		Role:        role,
		Description: fmt.Sprintf("Generated depth %d node", depth),
		Children:    []*model.Node{},
	}
}

// Uniform builds stages stages where every node down to depth has exactly
// fanout children. Node count is stages * (1 + f + f^2 + ... + f^depth).
func (g *Generator) Uniform(stages, fanout, depth int) *model.Map {
	roots := make([]*model.Node, stages)
	for i := range roots {
		roots[i] = g.uniform(0, fanout, depth)
	}
	return model.NewMap(fmt.Sprintf("Uniform %dx%dx%d", stages, fanout, depth), roots)
}

func (g *Generator) uniform(d, fanout, depth int) *model.Node {
	n := g.node(d)
	if d < depth {
		for i := 0; i < fanout; i++ {
			n.Children = append(n.Children, g.uniform(d+1, fanout, depth))
		}
	}
	return n
}

// Random builds stages stages whose nodes get between 0 and maxFanout
// children, never deeper than depth.
func (g *Generator) Random(stages, maxFanout, depth int) *model.Map {
	roots := make([]*model.Node, stages)
	for i := range roots {
		roots[i] = g.random(0, maxFanout, depth)
	}
	return model.NewMap(fmt.Sprintf("Random %d stages", stages), roots)
}

func (g *Generator) random(d, maxFanout, depth int) *model.Node {
	n := g.node(d)
	if d < depth && maxFanout > 0 {
		for i, k := 0, g.rng.Intn(maxFanout+1); i < k; i++ {
			n.Children = append(n.Children, g.random(d+1, maxFanout, depth))
		}
	}
	return n
}

// Chain builds a single stage with one child per level down to depth.
func (g *Generator) Chain(depth int) *model.Map {
	root := g.node(0)
	cur := root
	for d := 1; d <= depth; d++ {
		c := g.node(d)
		cur.Children = []*model.Node{c}
		cur = c
	}
	return model.NewMap(fmt.Sprintf("Chain %d", depth), []*model.Node{root})
}

// Flat builds stages childless stages.
func (g *Generator) Flat(stages int) *model.Map {
	roots := make([]*model.Node, stages)
	for i := range roots {
		roots[i] = g.node(0)
	}
	return model.NewMap(fmt.Sprintf("Flat %d", stages), roots)
}
