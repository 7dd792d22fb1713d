package nav

import (
	"errors"
	"fmt"
	"time"

	"github.com/vanderheijden86/readtree/pkg/debug"
	"github.com/vanderheijden86/readtree/pkg/metrics"
)

// ErrBuilderFailed wraps errors and panics from a ChildBuilder.
var ErrBuilderFailed = errors.New("nav: child builder failed")

// LabelFunc extracts the searchable text of a node. The default is the label.
type LabelFunc func(Node) string

// DefaultLabel returns the node label.
func DefaultLabel(n Node) string { return n.Label }

// Tree is an arena of nodes plus the cached visible sequence.
type Tree struct {
	nodes []Node
	roots []NodeID

	// Visible sequence cache, invalidated by any expansion or structural change.
	visible []NodeID
	index   map[NodeID]int
	dirty   bool

	// lastBuildErr is the most recent contained builder failure.
	lastBuildErr error
}

// NewTree places the specs in a fresh arena. Nodes that request Expanded and
// build lazily are materialized immediately; if that yields nothing they stay
// collapsed.
func NewTree(specs []Spec) *Tree {
	t := &Tree{dirty: true}
	for _, s := range specs {
		t.roots = append(t.roots, t.add(s, 0, NoNode))
	}
	return t
}

// add appends spec and its eager children. Returns the new node's ID.
func (t *Tree) add(s Spec, depth int, parent NodeID) NodeID {
	id := NodeID(len(t.nodes))
	kind := s.Kind
	if kind == "" {
		kind = KindInfo
	}
	t.nodes = append(t.nodes, Node{
		ID:         id,
		Label:      s.Label,
		Value:      s.Value,
		Kind:       kind,
		Payload:    s.Payload,
		Depth:      depth,
		Parent:     parent,
		Expandable: len(s.Children) > 0 || s.Lazy != nil,
		lazy:       s.Lazy,
		built:      len(s.Children) > 0,
	})
	t.dirty = true

	if len(s.Children) > 0 {
		children := make([]NodeID, 0, len(s.Children))
		for _, c := range s.Children {
			children = append(children, t.add(c, depth+1, id))
		}
		t.nodes[id].Children = children
	}
	if s.Expanded && t.nodes[id].Expandable {
		t.Open(id)
	}
	return id
}

// Len returns the number of materialized nodes.
func (t *Tree) Len() int {
	return len(t.nodes)
}

// Roots returns the top-level nodes in display order.
func (t *Tree) Roots() []NodeID {
	return t.roots
}

// Node returns a copy of the node with the given ID.
func (t *Tree) Node(id NodeID) (Node, bool) {
	if !t.valid(id) {
		return Node{ID: NoNode, Parent: NoNode}, false
	}
	return t.nodes[id], true
}

func (t *Tree) valid(id NodeID) bool {
	return id >= 0 && int(id) < len(t.nodes)
}

// Parent returns the parent of id, or NoNode for roots and invalid IDs.
func (t *Tree) Parent(id NodeID) NodeID {
	if !t.valid(id) {
		return NoNode
	}
	return t.nodes[id].Parent
}

// Siblings returns the children of id's parent, or the roots for top-level
// nodes. The node itself is included.
func (t *Tree) Siblings(id NodeID) []NodeID {
	if !t.valid(id) {
		return nil
	}
	if p := t.nodes[id].Parent; p != NoNode {
		return t.nodes[p].Children
	}
	return t.roots
}

// SiblingIndex returns id's position among its siblings, or -1.
func (t *Tree) SiblingIndex(id NodeID) int {
	for i, s := range t.Siblings(id) {
		if s == id {
			return i
		}
	}
	return -1
}

// NearestExpandableAncestor walks parents upward until one is expandable.
func (t *Tree) NearestExpandableAncestor(id NodeID) NodeID {
	for p := t.Parent(id); p != NoNode; p = t.nodes[p].Parent {
		if t.nodes[p].Expandable {
			return p
		}
	}
	return NoNode
}

// PathKey is the chain of labels from the root down to id.
func (t *Tree) PathKey(id NodeID) string {
	if !t.valid(id) {
		return ""
	}
	var labels []string
	for cur := id; cur != NoNode; cur = t.nodes[cur].Parent {
		labels = append(labels, t.nodes[cur].Label)
	}
	for i, j := 0, len(labels)-1; i < j; i, j = i+1, j-1 {
		labels[i], labels[j] = labels[j], labels[i]
	}
	return JoinPath(labels...)
}

// Visible returns the pre-order flattening of the tree where children are
// included only under expanded nodes. The returned slice must not be modified.
func (t *Tree) Visible() []NodeID {
	if !t.dirty {
		metrics.VisibleCache.Hit()
		return t.visible
	}
	metrics.VisibleCache.Miss()
	defer metrics.Timer(metrics.Flatten)()

	visible := make([]NodeID, 0, len(t.visible))
	for _, r := range t.roots {
		visible = t.appendVisible(visible, r)
	}
	index := make(map[NodeID]int, len(visible))
	for i, id := range visible {
		index[id] = i
	}
	t.visible = visible
	t.index = index
	t.dirty = false
	return t.visible
}

func (t *Tree) appendVisible(dst []NodeID, id NodeID) []NodeID {
	dst = append(dst, id)
	if t.nodes[id].Expanded {
		for _, c := range t.nodes[id].Children {
			dst = t.appendVisible(dst, c)
		}
	}
	return dst
}

// VisibleLen is len(Visible()).
func (t *Tree) VisibleLen() int {
	return len(t.Visible())
}

// VisibleIndex returns the position of id in the visible sequence, or -1.
func (t *Tree) VisibleIndex(id NodeID) int {
	t.Visible()
	if i, ok := t.index[id]; ok {
		return i
	}
	return -1
}

// At returns the node at visible position i.
func (t *Tree) At(i int) (Node, bool) {
	vis := t.Visible()
	if i < 0 || i >= len(vis) {
		return Node{ID: NoNode, Parent: NoNode}, false
	}
	return t.nodes[vis[i]], true
}

// Labels returns the searchable text of every visible node, in order.
func (t *Tree) Labels(fn LabelFunc) []string {
	if fn == nil {
		fn = DefaultLabel
	}
	vis := t.Visible()
	labels := make([]string, len(vis))
	for i, id := range vis {
		labels[i] = fn(t.nodes[id])
	}
	return labels
}

// VisibleDescendants counts the nodes under id that are currently visible.
func (t *Tree) VisibleDescendants(id NodeID) int {
	if !t.valid(id) || !t.nodes[id].Expanded {
		return 0
	}
	n := 0
	for _, c := range t.nodes[id].Children {
		n += 1 + t.VisibleDescendants(c)
	}
	return n
}

// LastVisibleDescendant descends through expanded last children.
func (t *Tree) LastVisibleDescendant(id NodeID) NodeID {
	if !t.valid(id) {
		return NoNode
	}
	for t.nodes[id].Expanded && len(t.nodes[id].Children) > 0 {
		kids := t.nodes[id].Children
		id = kids[len(kids)-1]
	}
	return id
}

// Materialize builds the children of id if it has a lazy builder and none
// have been built yet. It returns the number of children available. Failures
// are contained: they are logged, counted and reported as zero children.
func (t *Tree) Materialize(id NodeID) int {
	if !t.valid(id) {
		return 0
	}
	n := t.nodes[id]
	if n.built || len(n.Children) > 0 || n.lazy == nil {
		return len(n.Children)
	}

	specs, err := callBuilder(n.lazy, n)
	if err != nil {
		t.lastBuildErr = err
		metrics.BuilderFailures.Inc()
		debug.Log("children of %q unavailable: %v", n.Label, err)
		return 0
	}
	if len(specs) == 0 {
		return 0
	}

	children := make([]NodeID, 0, len(specs))
	for _, s := range specs {
		children = append(children, t.add(s, n.Depth+1, id))
	}
	// t.nodes may have been reallocated by add.
	t.nodes[id].Children = children
	t.nodes[id].built = true
	t.dirty = true
	return len(children)
}

func callBuilder(b ChildBuilder, n Node) (specs []Spec, err error) {
	start := time.Now()
	defer func() {
		metrics.ChildBuild.Record(time.Since(start))
		if r := recover(); r != nil {
			specs = nil
			err = fmt.Errorf("%w: panic: %v", ErrBuilderFailed, r)
		}
	}()
	specs, err = b(n)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuilderFailed, err)
	}
	return specs, nil
}

// LastBuildError returns the most recent contained builder failure, if any.
func (t *Tree) LastBuildError() error {
	return t.lastBuildErr
}

// Open expands id. Non-expandable nodes are rejected; a lazy node whose
// builder yields nothing stays collapsed and reports OutcomeNothingToShow.
func (t *Tree) Open(id NodeID) Outcome {
	if !t.valid(id) || !t.nodes[id].Expandable {
		return OutcomeRejected
	}
	if t.nodes[id].Expanded {
		return OutcomeAlreadyExpanded
	}
	if t.Materialize(id) == 0 {
		return OutcomeNothingToShow
	}
	t.nodes[id].Expanded = true
	t.dirty = true
	return OutcomeExpanded
}

// Close collapses id. Collapsed and leaf nodes report OutcomeUnchanged.
func (t *Tree) Close(id NodeID) Outcome {
	if !t.valid(id) || !t.nodes[id].Expanded {
		return OutcomeUnchanged
	}
	t.nodes[id].Expanded = false
	t.dirty = true
	return OutcomeCollapsed
}

// OpenSiblings expands every collapsed expandable sibling of id, id included.
func (t *Tree) OpenSiblings(id NodeID) (int, Outcome) {
	var expandable, collapsed, opened int
	for _, s := range t.Siblings(id) {
		if !t.nodes[s].Expandable {
			continue
		}
		expandable++
		if t.nodes[s].Expanded {
			continue
		}
		collapsed++
		if t.Open(s) == OutcomeExpanded {
			opened++
		}
	}
	switch {
	case opened > 0:
		return opened, OutcomeExpanded
	case collapsed > 0:
		return 0, OutcomeNothingToShow
	case expandable > 0:
		return 0, OutcomeAlreadyExpanded
	default:
		return 0, OutcomeNoExpandableSiblings
	}
}

// Walk visits every materialized node in pre-order, collapsed subtrees
// included. Returning false from fn stops the walk.
func (t *Tree) Walk(fn func(n Node, pathKey string) bool) {
	var walk func(id NodeID, key string) bool
	walk = func(id NodeID, key string) bool {
		if !fn(t.nodes[id], key) {
			return false
		}
		for _, c := range t.nodes[id].Children {
			if !walk(c, key+pathSep+t.nodes[c].Label) {
				return false
			}
		}
		return true
	}
	for _, r := range t.roots {
		if !walk(r, t.nodes[r].Label) {
			return
		}
	}
}
