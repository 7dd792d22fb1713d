// Package testutil provides outline fixture generators for engine tests.
// Seeded generators produce deterministic output for reproducible tests;
// Rapid* generators plug into pgregory.net/rapid property tests.
package testutil

import (
	"fmt"
	"math/rand"
	"time"

	"pgregory.net/rapid"

	"github.com/vanderheijden86/readtree/pkg/nav"
)

// Item is the payload attached to generated nodes. Pointers to Item give
// reference identity, which is what refresh relocation compares.
type Item struct {
	ID string
}

func (i *Item) String() string { return i.ID }

// GeneratorConfig controls outline generation.
type GeneratorConfig struct {
	Seed          int64   // Random seed for determinism (0 = use current time)
	Roots         int     // Number of top-level nodes (default 3)
	MaxDepth      int     // Maximum nesting below the roots (default 3)
	MaxChildren   int     // Maximum children per node (default 4)
	ExpandedRatio float64 // Probability a branch starts expanded
	LazyRatio     float64 // Probability a branch builds its children lazily
}

// DefaultConfig returns a config suitable for most tests.
func DefaultConfig() GeneratorConfig {
	return GeneratorConfig{
		Seed:          42, // Deterministic
		Roots:         3,
		MaxDepth:      3,
		MaxChildren:   4,
		ExpandedRatio: 0.5,
		LazyRatio:     0.25,
	}
}

// Generator creates outline fixtures.
type Generator struct {
	cfg   GeneratorConfig
	rng   *rand.Rand
	items map[string]*Item
	next  int
}

// New creates a Generator with the given config.
func New(cfg GeneratorConfig) *Generator {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	if cfg.Roots <= 0 {
		cfg.Roots = 3
	}
	if cfg.MaxChildren <= 0 {
		cfg.MaxChildren = 4
	}
	return &Generator{
		cfg:   cfg,
		rng:   rand.New(rand.NewSource(seed)),
		items: make(map[string]*Item),
	}
}

// NewDefault creates a Generator with default config.
func NewDefault() *Generator {
	return New(DefaultConfig())
}

// Item returns the payload generated for id, or nil.
func (g *Generator) Item(id string) *Item {
	return g.items[id]
}

// Outline generates a forest of specs. Labels are unique ("n0", "n1", ...)
// and every node carries an *Item payload with the same ID.
func (g *Generator) Outline() []nav.Spec {
	specs := make([]nav.Spec, g.cfg.Roots)
	for i := range specs {
		specs[i] = g.node(0)
	}
	return specs
}

func (g *Generator) node(depth int) nav.Spec {
	id := fmt.Sprintf("n%d", g.next)
	g.next++
	item := &Item{ID: id}
	g.items[id] = item

	s := nav.Spec{Label: id, Payload: item, Kind: nav.KindInfo}
	if depth >= g.cfg.MaxDepth {
		return s
	}
	n := g.rng.Intn(g.cfg.MaxChildren + 1)
	if n == 0 {
		return s
	}
	kids := make([]nav.Spec, n)
	for i := range kids {
		kids[i] = g.node(depth + 1)
	}
	s.Kind = nav.KindCategory
	s.Expanded = g.rng.Float64() < g.cfg.ExpandedRatio
	if g.rng.Float64() < g.cfg.LazyRatio {
		s.Lazy = func(nav.Node) ([]nav.Spec, error) { return kids, nil }
	} else {
		s.Children = kids
	}
	return s
}

// Chain builds a single path of the given length, every level expanded.
func Chain(length int) []nav.Spec {
	if length <= 0 {
		return nil
	}
	s := nav.Spec{Label: fmt.Sprintf("level%d", length), Payload: &Item{ID: fmt.Sprintf("level%d", length)}}
	for i := length - 1; i >= 1; i-- {
		s = nav.Spec{
			Label:    fmt.Sprintf("level%d", i),
			Payload:  &Item{ID: fmt.Sprintf("level%d", i)},
			Kind:     nav.KindCategory,
			Expanded: true,
			Children: []nav.Spec{s},
		}
	}
	return []nav.Spec{s}
}

// Flat builds a one-level list from labels.
func Flat(labels ...string) []nav.Spec {
	specs := make([]nav.Spec, len(labels))
	for i, l := range labels {
		specs[i] = nav.Spec{Label: l, Payload: &Item{ID: l}}
	}
	return specs
}

// RapidOutline draws a forest with unique labels, random expansion and
// eager children only, so every node is materialized up front.
func RapidOutline(maxDepth, maxChildren int) *rapid.Generator[[]nav.Spec] {
	return rapid.Custom(func(t *rapid.T) []nav.Spec {
		next := 0
		var node func(depth int) nav.Spec
		node = func(depth int) nav.Spec {
			id := fmt.Sprintf("n%d", next)
			next++
			s := nav.Spec{Label: id, Payload: &Item{ID: id}}
			if depth >= maxDepth {
				s.Expanded = rapid.Bool().Draw(t, "expanded")
				return s
			}
			n := rapid.IntRange(0, maxChildren).Draw(t, "children")
			for i := 0; i < n; i++ {
				s.Children = append(s.Children, node(depth+1))
			}
			// Leaves draw Expanded too; the tree must ignore it for them.
			s.Expanded = rapid.Bool().Draw(t, "expanded")
			if n > 0 {
				s.Kind = nav.KindCategory
			}
			return s
		}
		roots := rapid.IntRange(1, 4).Draw(t, "roots")
		specs := make([]nav.Spec, roots)
		for i := range specs {
			specs[i] = node(0)
		}
		return specs
	})
}

// Labels flattens every label in specs in pre-order, collapsed or not.
func Labels(specs []nav.Spec) []string {
	var out []string
	var walk func(s nav.Spec)
	walk = func(s nav.Spec) {
		out = append(out, s.Label)
		for _, c := range s.Children {
			walk(c)
		}
	}
	for _, s := range specs {
		walk(s)
	}
	return out
}

// Without returns a deep copy of specs with the node labelled label removed,
// together with its subtree.
func Without(specs []nav.Spec, label string) []nav.Spec {
	var out []nav.Spec
	for _, s := range specs {
		if s.Label == label {
			continue
		}
		c := s
		c.Children = Without(s.Children, label)
		out = append(out, c)
	}
	return out
}

// Reversed returns a deep copy of specs with every sibling list reversed.
// Payloads are shared with the input, so identity is preserved.
func Reversed(specs []nav.Spec) []nav.Spec {
	out := make([]nav.Spec, len(specs))
	for i, s := range specs {
		c := s
		c.Children = Reversed(s.Children)
		if len(s.Children) == 0 {
			c.Children = nil
		}
		out[len(specs)-1-i] = c
	}
	return out
}
