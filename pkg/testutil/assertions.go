package testutil

import (
	"reflect"
	"strings"
	"testing"

	json "github.com/goccy/go-json"

	"github.com/vanderheijden86/readtree/pkg/nav"
)

// AssertVisible verifies the visible sequence of tree, label by label.
func AssertVisible(t testing.TB, tree *nav.Tree, want ...string) {
	t.Helper()
	got := tree.Labels(nil)
	if !reflect.DeepEqual(got, want) {
		t.Errorf("visible = [%s], want [%s]", strings.Join(got, " "), strings.Join(want, " "))
	}
}

// AssertNodeCount verifies how many specs a forest holds, collapsed and eager
// children included. Lazy children are not counted.
func AssertNodeCount(t testing.TB, specs []nav.Spec, want int) {
	t.Helper()
	if got := len(Labels(specs)); got != want {
		t.Errorf("expected %d nodes, got %d", want, got)
	}
}

// AssertUniqueLabels verifies no label repeats anywhere in the forest.
func AssertUniqueLabels(t testing.TB, specs []nav.Spec) {
	t.Helper()
	seen := make(map[string]bool)
	for _, l := range Labels(specs) {
		if seen[l] {
			t.Errorf("duplicate label: %s", l)
		}
		seen[l] = true
	}
}

// AssertDepthBound verifies no eager child sits deeper than maxDepth below
// the roots.
func AssertDepthBound(t testing.TB, specs []nav.Spec, maxDepth int) {
	t.Helper()
	var walk func(s nav.Spec, depth int)
	walk = func(s nav.Spec, depth int) {
		if depth > maxDepth {
			t.Errorf("%s at depth %d exceeds %d", s.Label, depth, maxDepth)
		}
		for _, c := range s.Children {
			walk(c, depth+1)
		}
	}
	for _, s := range specs {
		walk(s, 0)
	}
}

// AssertJSONEqual compares two values by their JSON encoding.
func AssertJSONEqual(t testing.TB, expected, actual any) {
	t.Helper()
	want, err := json.Marshal(expected)
	if err != nil {
		t.Fatalf("failed to marshal expected: %v", err)
	}
	got, err := json.Marshal(actual)
	if err != nil {
		t.Fatalf("failed to marshal actual: %v", err)
	}
	if string(want) != string(got) {
		t.Errorf("JSON mismatch:\nexpected: %s\nactual:   %s", want, got)
	}
}
