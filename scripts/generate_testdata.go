//go:build ignore

// generate_testdata.go creates standard outlines for benchmarking.
// Usage: go run scripts/generate_testdata.go
//
// Creates, in YAML and SQLite form:
//
//	testdata/benchmark/small    (~100 nodes)
//	testdata/benchmark/medium   (~1000 nodes)
//	testdata/benchmark/large    (~5000 nodes)
//	testdata/benchmark/huge     (~20000 nodes)
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/vanderheijden86/readtree/internal/datasource"
	"github.com/vanderheijden86/readtree/pkg/testutil"
)

type datasetSpec struct {
	name     string
	roots    int
	maxDepth int
	desc     string
}

var datasets = []datasetSpec{
	{"small", 10, 2, "shallow menu"},
	{"medium", 40, 3, "inspector tree"},
	{"large", 80, 4, "deep inventory"},
	{"huge", 150, 5, "stress outline"},
}

var stats = []string{"Armor", "Speed", "Mass", "Food", "Comfort", "Beauty", "Health", "Mood"}

func main() {
	outputDir := filepath.Join("testdata", "benchmark")
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create output directory: %v\n", err)
		os.Exit(1)
	}

	for _, ds := range datasets {
		fmt.Printf("Generating %s dataset (%s)...\n", ds.name, ds.desc)

		gen := testutil.New(testutil.GeneratorConfig{
			Seed:          int64(ds.roots), // Reproducible per-size
			Roots:         ds.roots,
			MaxDepth:      ds.maxDepth,
			MaxChildren:   5,
			ExpandedRatio: 0.2,
			LazyRatio:     0,
		})
		o, err := datasource.OutlineFromSpecs(ds.name+" "+ds.desc, gen.Outline())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to build %s: %v\n", ds.name, err)
			os.Exit(1)
		}
		addRealisticContent(o.Nodes)

		data, err := yaml.Marshal(o)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to encode %s: %v\n", ds.name, err)
			os.Exit(1)
		}
		yamlPath := filepath.Join(outputDir, ds.name+".yaml")
		if err := os.WriteFile(yamlPath, data, 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to write %s: %v\n", yamlPath, err)
			os.Exit(1)
		}

		dbPath := filepath.Join(outputDir, ds.name+".db")
		if err := datasource.ExportSQLite(context.Background(), dbPath, o); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to write %s: %v\n", dbPath, err)
			os.Exit(1)
		}

		fmt.Printf("  Written %s and %s (%d nodes)\n", yamlPath, dbPath, o.Count())
	}

	fmt.Println("\nDone! Outlines created in", outputDir)
}

// addRealisticContent replaces generated labels with stat-like names and
// values so typeahead has shared prefixes to narrow.
func addRealisticContent(nodes []datasource.OutlineNode) {
	var i int
	var walk func(nodes []datasource.OutlineNode)
	walk = func(nodes []datasource.OutlineNode) {
		for j := range nodes {
			nodes[j].Label = fmt.Sprintf("%s %d", stats[i%len(stats)], i)
			if len(nodes[j].Children) == 0 {
				nodes[j].Value = datasource.Value(fmt.Sprintf("%d", (i*37)%100))
			}
			i++
			walk(nodes[j].Children)
		}
	}
	walk(nodes)
}
