package nav

import (
	"fmt"
	"strings"
)

// Fallback selects how the cursor is placed after a refresh when neither the
// payload nor the label+parent label of the old selection can be found.
type Fallback int

const (
	// FallbackIndex clamps the old numeric index into the new sequence.
	FallbackIndex Fallback = iota
	// FallbackSibling lands on the sibling at the old sibling position under
	// the same parent path, then on the parent, then clamps the old index.
	FallbackSibling
)

// ParseFallback maps a config string to a Fallback.
func ParseFallback(s string) (Fallback, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "index":
		return FallbackIndex, nil
	case "sibling":
		return FallbackSibling, nil
	default:
		return FallbackIndex, fmt.Errorf("unknown refresh fallback %q (want index or sibling)", s)
	}
}

func (f Fallback) String() string {
	if f == FallbackSibling {
		return "sibling"
	}
	return "index"
}

// selection is everything captured about the cursor before a rebuild.
type selection struct {
	valid       bool
	payload     any
	label       string
	parentLabel string
	isRoot      bool
	index       int

	parentKey    string
	siblingIndex int

	expanded map[string]bool
}

// captureSelection records the selected node at cursor and the expansion
// state of every expandable node, keyed by path.
func captureSelection(t *Tree, cursor int) selection {
	sel := selection{index: cursor, expanded: make(map[string]bool)}
	t.Walk(func(n Node, key string) bool {
		if n.Expandable {
			sel.expanded[key] = n.Expanded
		}
		return true
	})

	n, ok := t.At(cursor)
	if !ok {
		return sel
	}
	sel.valid = true
	sel.payload = n.Payload
	sel.label = n.Label
	sel.isRoot = n.Parent == NoNode
	sel.siblingIndex = t.SiblingIndex(n.ID)
	if !sel.isRoot {
		sel.parentLabel = t.nodes[n.Parent].Label
		sel.parentKey = t.PathKey(n.Parent)
	}
	return sel
}

// applyExpansion re-applies a snapshot to a freshly built tree. Nodes whose
// path key is in the snapshot take its value; every other expandable node is
// collapsed. Lazily built children are materialized as needed so nested
// snapshot entries can be honoured too.
func (t *Tree) applyExpansion(snapshot map[string]bool) {
	var apply func(id NodeID, key string)
	apply = func(id NodeID, key string) {
		if t.nodes[id].Expandable {
			if snapshot[key] {
				t.Open(id)
			} else {
				t.Close(id)
			}
		}
		// Re-read children: Open may have materialized them.
		for _, c := range t.nodes[id].Children {
			apply(c, key+pathSep+t.nodes[c].Label)
		}
	}
	for _, r := range t.roots {
		apply(r, t.nodes[r].Label)
	}
	t.dirty = true
}

// relocate finds the new visible index for a captured selection. It returns
// the index and the name of the rule that matched.
func relocate(t *Tree, sel selection, fallback Fallback) (int, string) {
	vis := t.Visible()
	if len(vis) == 0 {
		return 0, "empty"
	}
	if !sel.valid {
		return clampIndex(sel.index, len(vis)), "index"
	}

	if sel.payload != nil {
		for i, id := range vis {
			if samePayload(t.nodes[id].Payload, sel.payload) {
				return i, "payload"
			}
		}
	}

	for i, id := range vis {
		n := t.nodes[id]
		if n.Label != sel.label {
			continue
		}
		if sel.isRoot {
			if n.Parent == NoNode {
				return i, "label"
			}
			continue
		}
		if n.Parent != NoNode && t.nodes[n.Parent].Label == sel.parentLabel {
			return i, "label"
		}
	}

	if fallback == FallbackSibling {
		if i, ok := siblingFallback(t, sel); ok {
			return i, "sibling"
		}
	}
	return clampIndex(sel.index, len(vis)), "index"
}

func siblingFallback(t *Tree, sel selection) (int, bool) {
	var sibs []NodeID
	parent := NoNode
	if sel.isRoot {
		sibs = t.roots
	} else {
		for _, id := range t.Visible() {
			if t.PathKey(id) == sel.parentKey {
				parent = id
				break
			}
		}
		if parent == NoNode {
			return 0, false
		}
		if t.nodes[parent].Expanded {
			sibs = t.nodes[parent].Children
		}
	}
	if len(sibs) > 0 {
		target := sibs[clampIndex(sel.siblingIndex, len(sibs))]
		if i := t.VisibleIndex(target); i >= 0 {
			return i, true
		}
	}
	if parent != NoNode {
		return t.VisibleIndex(parent), true
	}
	return 0, false
}
