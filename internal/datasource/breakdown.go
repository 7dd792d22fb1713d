package datasource

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// ParseBreakdown reads an indented text breakdown:
//
//	# Character sheet
//	Strength: 12
//	  Base: 10
//	  Ring of might: +2
//	Inventory
//	  Rope
//
// One level is two spaces or a tab. "Label: value" lines carry a value, a
// trailing colon is dropped. Blank lines and lines starting with '#' are
// skipped, except that a leading "# " comment before any node sets the title.
// Indenting deeper than one level past the previous line attaches the node
// to the previous line anyway.
func ParseBreakdown(r io.Reader) (Outline, error) {
	// Build a pointer tree first; OutlineNode slices would reallocate under
	// the open-node stack.
	type tmp struct {
		node     OutlineNode
		children []*tmp
	}
	var (
		o     Outline
		roots []*tmp
		open  []*tmp // open[d] is the last node seen at depth d
		line  int
	)

	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line++
		raw := strings.TrimRight(sc.Text(), " \t\r")
		trimmed := strings.TrimLeft(raw, " \t")
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, "#") {
			if len(roots) == 0 && o.Title == "" {
				o.Title = strings.TrimSpace(strings.TrimPrefix(trimmed, "#"))
			}
			continue
		}

		depth := indentDepth(raw[:len(raw)-len(trimmed)])
		if depth > len(open) {
			depth = len(open)
		}
		label, value := splitLabelValue(trimmed)
		if label == "" {
			return Outline{}, fmt.Errorf("line %d: %w", line, ErrEmptyLabel)
		}

		t := &tmp{node: OutlineNode{Label: label, Value: Value(value)}}
		open = open[:depth]
		if depth == 0 {
			roots = append(roots, t)
		} else {
			parent := open[depth-1]
			parent.children = append(parent.children, t)
		}
		open = append(open, t)
	}
	if err := sc.Err(); err != nil {
		return Outline{}, fmt.Errorf("reading breakdown: %w", err)
	}

	var flatten func([]*tmp) []OutlineNode
	flatten = func(ts []*tmp) []OutlineNode {
		if len(ts) == 0 {
			return nil
		}
		out := make([]OutlineNode, len(ts))
		for i, t := range ts {
			out[i] = t.node
			out[i].Children = flatten(t.children)
		}
		return out
	}
	o.Nodes = flatten(roots)
	return o, nil
}

// indentDepth counts levels in a run of leading whitespace.
func indentDepth(ws string) int {
	depth, spaces := 0, 0
	for _, r := range ws {
		switch r {
		case '\t':
			depth++
			spaces = 0
		case ' ':
			spaces++
			if spaces == 2 {
				depth++
				spaces = 0
			}
		}
	}
	return depth
}

func splitLabelValue(s string) (label, value string) {
	if i := strings.Index(s, ": "); i >= 0 {
		return strings.TrimSpace(s[:i]), strings.TrimSpace(s[i+2:])
	}
	return strings.TrimSpace(strings.TrimSuffix(s, ":")), ""
}
