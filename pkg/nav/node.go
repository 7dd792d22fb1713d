// Package nav implements the navigable-collection engine: a single cursor over
// the visible sequence of a lazily expandable tree, typeahead search,
// hierarchy-aware Home/End, level announcements and stable selection across
// rebuilds.
//
// Nodes live in an arena owned by a Tree and refer to each other by NodeID.
// Parents are indices, never pointers, so there are no reference cycles.
//
// Everything in this package is synchronous and single-threaded. A Session is
// created by Open and dropped by Close; callers drive it from one input loop.
package nav

import (
	"reflect"
	"strings"
)

// NodeID indexes a node in its Tree's arena.
type NodeID int

// NoNode is the parent of root nodes and the result of failed lookups.
const NoNode NodeID = -1

// Kind tags what a node is so activation can be dispatched through a table
// supplied by the caller instead of closures stored on the node.
type Kind string

const (
	KindInfo     Kind = "info"     // read-only, nothing happens on Enter
	KindAction   Kind = "action"   // has a business action
	KindCategory Kind = "category" // grouping node, usually expandable
)

// ChildBuilder materializes the children of a node on first expansion.
// It may perform arbitrary synchronous lookups. Errors and panics are
// contained by the engine and treated as "no children".
type ChildBuilder func(parent Node) ([]Spec, error)

// Spec describes a node to be placed in the arena. Builders return specs;
// the engine assigns depth, parent and identity.
type Spec struct {
	Label   string
	Value   string // optional secondary value, appended when announced
	Kind    Kind
	Payload any // opaque; compared only for identity during refresh

	// Expanded requests the node start open. Ignored unless expandable.
	Expanded bool

	Children []Spec
	// Lazy builds the children on first expansion when Children is empty.
	Lazy ChildBuilder
}

// Node is one entry in the hierarchy.
type Node struct {
	ID         NodeID
	Label      string
	Value      string
	Kind       Kind
	Payload    any
	Depth      int
	Parent     NodeID
	Children   []NodeID
	Expandable bool
	Expanded   bool

	lazy  ChildBuilder
	built bool
}

// IsLeaf reports whether the node can never show children.
func (n Node) IsLeaf() bool {
	return !n.Expandable
}

// Text returns the label with the secondary value appended, if any.
func (n Node) Text() string {
	if n.Value == "" {
		return n.Label
	}
	return n.Label + ", " + n.Value
}

// pathSep joins labels in a path key. Unit separator never appears in labels
// typed by humans.
const pathSep = "\x1f"

// JoinPath builds a path key from a chain of labels, root first.
func JoinPath(labels ...string) string {
	return strings.Join(labels, pathSep)
}

// samePayload reports whether two payloads are the same reference or value.
// Nil payloads never match and non-comparable payloads only match when they
// are the same pointer-shaped value.
func samePayload(a, b any) bool {
	if a == nil || b == nil {
		return false
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb {
		return false
	}
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	// Value.Comparable also looks inside interface fields, which may hold
	// slices or maps even when the static type is comparable.
	if va.Comparable() && vb.Comparable() {
		return a == b
	}
	switch va.Kind() {
	case reflect.Map, reflect.Slice, reflect.Func:
		return va.Pointer() != 0 && va.Pointer() == vb.Pointer()
	}
	return false
}
