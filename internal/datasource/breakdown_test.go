package datasource

import (
	"errors"
	"strings"
	"testing"
)

func TestParseBreakdown(t *testing.T) {
	input := `# Character sheet

Strength: 12
  Base: 10
  Ring of might: +2
Inventory:
	Rope
	Lantern
		Oil: 3 flasks
# a comment after nodes
Notes
`
	o, err := ParseBreakdown(strings.NewReader(input))
	if err != nil {
		t.Fatal(err)
	}
	if o.Title != "Character sheet" {
		t.Errorf("title = %q", o.Title)
	}
	if len(o.Nodes) != 3 {
		t.Fatalf("expected 3 roots, got %d: %+v", len(o.Nodes), o.Nodes)
	}

	str := o.Nodes[0]
	if str.Label != "Strength" || str.Value != "12" || len(str.Children) != 2 {
		t.Errorf("Strength = %+v", str)
	}
	if str.Children[1].Label != "Ring of might" || str.Children[1].Value != "+2" {
		t.Errorf("modifier = %+v", str.Children[1])
	}

	inv := o.Nodes[1]
	if inv.Label != "Inventory" || inv.Value != "" {
		t.Errorf("trailing colon should be dropped, got %+v", inv)
	}
	if len(inv.Children) != 2 || len(inv.Children[1].Children) != 1 {
		t.Fatalf("inventory children = %+v", inv.Children)
	}
	if oil := inv.Children[1].Children[0]; oil.Label != "Oil" || oil.Value != "3 flasks" {
		t.Errorf("oil = %+v", oil)
	}
	if o.Nodes[2].Label != "Notes" {
		t.Errorf("third root = %+v", o.Nodes[2])
	}
}

func TestParseBreakdown_OverIndentClamps(t *testing.T) {
	o, err := ParseBreakdown(strings.NewReader("A\n      B\n  C\n"))
	if err != nil {
		t.Fatal(err)
	}
	if len(o.Nodes) != 1 || len(o.Nodes[0].Children) != 2 {
		t.Fatalf("expected B and C under A, got %+v", o.Nodes)
	}
}

func TestParseBreakdown_ColonInValue(t *testing.T) {
	o, err := ParseBreakdown(strings.NewReader("Time: 10:30\nURL: http://x\n"))
	if err != nil {
		t.Fatal(err)
	}
	if o.Nodes[0].Value != "10:30" || o.Nodes[1].Value != "http://x" {
		t.Errorf("values = %q, %q", o.Nodes[0].Value, o.Nodes[1].Value)
	}
}

func TestParseBreakdown_EmptyLabel(t *testing.T) {
	_, err := ParseBreakdown(strings.NewReader("A\n  : 3\n"))
	if !errors.Is(err, ErrEmptyLabel) {
		t.Fatalf("expected ErrEmptyLabel, got %v", err)
	}
	if !strings.Contains(err.Error(), "line 2") {
		t.Errorf("error should name the line, got %q", err)
	}
}

func TestIndentDepth(t *testing.T) {
	tests := []struct {
		ws   string
		want int
	}{
		{"", 0},
		{" ", 0},
		{"  ", 1},
		{"   ", 1},
		{"    ", 2},
		{"\t", 1},
		{"\t\t", 2},
		{"\t  ", 2},
	}
	for _, tt := range tests {
		if got := indentDepth(tt.ws); got != tt.want {
			t.Errorf("indentDepth(%q) = %d, want %d", tt.ws, got, tt.want)
		}
	}
}
