package main

import (
	"io"

	json "github.com/goccy/go-json"

	"github.com/vanderheijden86/readtree/pkg/nav"
)

type dumpEntry struct {
	Label      string   `json:"label"`
	Value      string   `json:"value,omitempty"`
	Kind       nav.Kind `json:"kind"`
	Depth      int      `json:"depth"`
	Expandable bool     `json:"expandable"`
	Expanded   bool     `json:"expanded"`
	Position   string   `json:"position,omitempty"`
}

// dumpVisible opens a session and writes its visible sequence as JSON.
// With expandAll every level is opened first, lazy children included.
func dumpVisible(build nav.RootBuilder, opts nav.Options, expandAll bool, w io.Writer) error {
	opts.Sink = nil
	s, err := nav.Open(build, opts)
	if err != nil {
		return err
	}
	defer s.Close()

	tree := s.Tree()
	if expandAll {
		// Opening a node makes its children visible; keep going until a pass
		// opens nothing.
		for opened := true; opened; {
			opened = false
			for i := 0; i < tree.VisibleLen(); i++ {
				n, _ := tree.At(i)
				if n.Expandable && !n.Expanded && tree.Open(n.ID) == nav.OutcomeExpanded {
					opened = true
				}
			}
		}
	}

	entries := make([]dumpEntry, 0, tree.VisibleLen())
	for i := 0; i < tree.VisibleLen(); i++ {
		n, _ := tree.At(i)
		entries = append(entries, dumpEntry{
			Label:      n.Label,
			Value:      n.Value,
			Kind:       n.Kind,
			Depth:      n.Depth,
			Expandable: n.Expandable,
			Expanded:   n.Expanded,
			Position:   nav.FormatPosition(tree.SiblingIndex(n.ID), len(tree.Siblings(n.ID))),
		})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(entries)
}
