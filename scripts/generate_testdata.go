//go:build ignore

// generate_testdata.go writes generated process maps for manual testing of
// large maps in the TUI and in `procmap export`.
// Usage: go run scripts/generate_testdata.go [output dir]
//
// Creates:
//
//	small.json   (5 stages, fanout 2, depth 2)
//	medium.json  (10 stages, fanout 3, depth 3)
//	large.json   (20 stages, fanout 4, depth 3)
//	ragged.json  (15 random stages, fanout up to 4, depth 4)
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/vanderheijden86/procmap/pkg/model"
	"github.com/vanderheijden86/procmap/pkg/testutil"
)

type dataset struct {
	name string
	make func(g *testutil.Generator) *model.Map
}

var datasets = []dataset{
	{"small", func(g *testutil.Generator) *model.Map { return g.Uniform(5, 2, 2) }},
	{"medium", func(g *testutil.Generator) *model.Map { return g.Uniform(10, 3, 3) }},
	{"large", func(g *testutil.Generator) *model.Map { return g.Uniform(20, 4, 3) }},
	{"ragged", func(g *testutil.Generator) *model.Map { return g.Random(15, 4, 4) }},
}

func main() {
	outputDir := "testdata/maps"
	if len(os.Args) > 1 {
		outputDir = os.Args[1]
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create output directory: %v\n", err)
		os.Exit(1)
	}

	for i, ds := range datasets {
		g := testutil.New(testutil.GeneratorConfig{Seed: int64(i + 1), IDPrefix: ds.name + "-"})
		m := ds.make(g)

		data, err := model.Encode(m)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to encode %s: %v\n", ds.name, err)
			os.Exit(1)
		}
		path := filepath.Join(outputDir, ds.name+".json")
		if err := os.WriteFile(path, data, 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to write %s: %v\n", path, err)
			os.Exit(1)
		}
		fmt.Printf("  Written %s (%d nodes, depth %d)\n", path, m.Len(), m.MaxDepth())
	}
}
