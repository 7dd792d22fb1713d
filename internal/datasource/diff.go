package datasource

import (
	"fmt"
	"sort"
	"strings"

	"github.com/vanderheijden86/readtree/pkg/nav"
)

// OutlineDiff describes what changed between two loads of the same sources.
// Only nodes present in the specs are compared; children behind lazy
// builders that were never expanded are not seen.
type OutlineDiff struct {
	Added   []string // labels of nodes new in the second load
	Removed []string // labels of nodes gone from the second load
	Changed []NodeChange
}

// NodeChange is a node whose label or value changed.
type NodeChange struct {
	ID       string `json:"id"`
	OldLabel string `json:"old_label"`
	NewLabel string `json:"new_label"`
	OldValue string `json:"old_value"`
	NewValue string `json:"new_value"`
}

// IsEmpty reports whether both loads are the same.
func (d OutlineDiff) IsEmpty() bool {
	return len(d.Added) == 0 && len(d.Removed) == 0 && len(d.Changed) == 0
}

// Summary returns a short phrase suitable for announcing, such as
// "2 added, 1 removed". It is empty when nothing changed.
func (d OutlineDiff) Summary() string {
	var parts []string
	if n := len(d.Added); n > 0 {
		parts = append(parts, fmt.Sprintf("%d added", n))
	}
	if n := len(d.Removed); n > 0 {
		parts = append(parts, fmt.Sprintf("%d removed", n))
	}
	if n := len(d.Changed); n > 0 {
		parts = append(parts, fmt.Sprintf("%d changed", n))
	}
	return strings.Join(parts, ", ")
}

type diffEntry struct {
	id, label, value string
}

// Diff compares two spec forests by Ref payload. Nodes whose payload is not
// a Ref are keyed by their label path.
func Diff(before, after []nav.Spec) OutlineDiff {
	mapA := indexSpecs(before)
	mapB := indexSpecs(after)

	var d OutlineDiff
	for key, a := range mapA {
		b, ok := mapB[key]
		if !ok {
			d.Removed = append(d.Removed, a.label)
			continue
		}
		if a.label != b.label || a.value != b.value {
			d.Changed = append(d.Changed, NodeChange{
				ID:       a.id,
				OldLabel: a.label,
				NewLabel: b.label,
				OldValue: a.value,
				NewValue: b.value,
			})
		}
	}
	for key, b := range mapB {
		if _, ok := mapA[key]; !ok {
			d.Added = append(d.Added, b.label)
		}
	}

	sort.Strings(d.Added)
	sort.Strings(d.Removed)
	sort.Slice(d.Changed, func(i, j int) bool { return d.Changed[i].ID < d.Changed[j].ID })
	return d
}

func indexSpecs(specs []nav.Spec) map[string]diffEntry {
	m := make(map[string]diffEntry)
	var walk func([]nav.Spec, []string)
	walk = func(specs []nav.Spec, path []string) {
		for _, s := range specs {
			p := append(path[:len(path):len(path)], s.Label)
			id := strings.Join(p, " > ")
			key := nav.JoinPath(p...)
			if ref, ok := s.Payload.(Ref); ok {
				id = ref.ID
				key = ref.Source + "\x00" + ref.ID
			}
			m[key] = diffEntry{id: id, label: s.Label, value: s.Value}
			walk(s.Children, p)
		}
	}
	walk(specs, nil)
	return m
}
