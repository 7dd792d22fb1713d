package ui

import (
	"fmt"
	"strings"
	"testing"

	"github.com/vanderheijden86/readtree/pkg/nav"
)

func openTree(t *testing.T, specs []nav.Spec) *nav.Session {
	t.Helper()
	s, err := nav.Open(func() ([]nav.Spec, error) { return specs, nil }, nav.Options{})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(s.Close)
	return s
}

func TestBuildTreePrefix(t *testing.T) {
	s := openTree(t, []nav.Spec{
		{Label: "A", Expanded: true, Children: []nav.Spec{
			{Label: "A1", Expanded: true, Children: []nav.Spec{{Label: "A1x"}}},
			{Label: "A2", Expanded: true, Children: []nav.Spec{{Label: "A2x"}}},
		}},
		{Label: "B"},
	})
	tv := NewTreeView(PlainTheme(TestTheme().Renderer))
	tree := s.Tree()

	want := map[string]string{
		"A":   "",
		"A1":  "├── ",
		"A1x": "│   └── ",
		"A2":  "└── ",
		"A2x": "    └── ",
		"B":   "",
	}
	for i := 0; i < tree.VisibleLen(); i++ {
		n, _ := tree.At(i)
		if got := tv.buildTreePrefix(tree, n); got != want[n.Label] {
			t.Errorf("prefix(%s) = %q, want %q", n.Label, got, want[n.Label])
		}
	}
}

func TestTreeView_ScrollsWithCursor(t *testing.T) {
	specs := make([]nav.Spec, 30)
	for i := range specs {
		specs[i] = nav.Spec{Label: fmt.Sprintf("item %02d", i)}
	}
	s := openTree(t, specs)
	tv := NewTreeView(PlainTheme(TestTheme().Renderer))
	tv.SetSize(40, 11) // header + 9 rows + indicator

	view := tv.View(s, "list")
	if !strings.Contains(view, "item 00") || strings.Contains(view, "item 09") {
		t.Errorf("first page wrong:\n%s", view)
	}
	if !strings.Contains(view, "1-9 of 30") {
		t.Errorf("missing position indicator:\n%s", view)
	}

	s.JumpToLast(true)
	tv.Follow(s)
	view = tv.View(s, "list")
	if !strings.Contains(view, "item 29") || strings.Contains(view, "item 20") {
		t.Errorf("last page wrong:\n%s", view)
	}
	if !strings.Contains(view, "22-30 of 30") {
		t.Errorf("indicator after jump:\n%s", view)
	}

	// Wrap back to the top.
	s.SelectNext()
	tv.Follow(s)
	if view = tv.View(s, "list"); !strings.Contains(view, "item 00") {
		t.Errorf("after wrap:\n%s", view)
	}
}

func TestTreeView_TruncatesLongValues(t *testing.T) {
	s := openTree(t, []nav.Spec{{Label: "Description", Value: strings.Repeat("x", 200)}})
	tv := NewTreeView(PlainTheme(TestTheme().Renderer))
	tv.SetSize(40, 5)

	view := tv.View(s, "t")
	if !strings.Contains(view, "…") {
		t.Errorf("long value should be truncated:\n%s", view)
	}
	for _, line := range strings.Split(view, "\n") {
		if len([]rune(line)) > 40 {
			t.Errorf("line too wide (%d): %q", len([]rune(line)), line)
		}
	}
}

func TestTreeView_HighlightsMatches(t *testing.T) {
	s := openTree(t, []nav.Spec{{Label: "Apple"}, {Label: "Banana"}})
	tv := NewTreeView(PlainTheme(TestTheme().Renderer))
	s.HandleCharacter('b')

	if got := tv.highlightPrefix("Banana", s.SearchBuffer(), tv.theme.Base); got != "Banana" {
		// Plain styles render without escapes, so the text is unchanged.
		t.Errorf("highlightPrefix = %q", got)
	}
	if !strings.Contains(tv.View(s, "t"), "Banana") {
		t.Error("matched label missing from view")
	}
}

func TestMatchedRunes(t *testing.T) {
	tests := []struct {
		label, query string
		want         int
	}{
		{"Apple", "ap", 2},
		{"Apple", "APPLE", 5},
		{"Straße", "strass", 5},
		{"Straße", "strasse", 6},
		{"ß", "s", 1},
		{"Pear", "pearl", 4},
	}
	for _, tt := range tests {
		if got := matchedRunes([]rune(tt.label), tt.query); got != tt.want {
			t.Errorf("matchedRunes(%q, %q) = %d, want %d", tt.label, tt.query, got, tt.want)
		}
	}
}
