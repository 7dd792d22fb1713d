package nav

import (
	"testing"

	"pgregory.net/rapid"
)

func TestCursorSelectNextWraps(t *testing.T) {
	var c Cursor
	c.Set(2, 3)
	if got := c.SelectNext(3); got != 0 {
		t.Errorf("SelectNext at end = %d, want 0", got)
	}
	if got := c.SelectPrevious(3); got != 2 {
		t.Errorf("SelectPrevious at start = %d, want 2", got)
	}
}

func TestCursorEmptyIsNoop(t *testing.T) {
	var c Cursor
	if got := c.SelectNext(0); got != 0 {
		t.Errorf("SelectNext(0) = %d, want 0", got)
	}
	if got := c.SelectPrevious(0); got != 0 {
		t.Errorf("SelectPrevious(0) = %d, want 0", got)
	}
}

func TestCursorSetClamps(t *testing.T) {
	var c Cursor
	c.Set(10, 4)
	if c.Index() != 3 {
		t.Errorf("Set(10, 4) = %d, want 3", c.Index())
	}
	c.Set(-5, 4)
	if c.Index() != 0 {
		t.Errorf("Set(-5, 4) = %d, want 0", c.Index())
	}
	c.Set(3, 4)
	c.Clamp(2)
	if c.Index() != 1 {
		t.Errorf("Clamp(2) = %d, want 1", c.Index())
	}
}

// TestCursorFullCycle verifies n steps in either direction return to the start.
func TestCursorFullCycle(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(1, 50).Draw(t, "n")
		start := rapid.IntRange(0, n-1).Draw(t, "start")
		var c Cursor
		c.Set(start, n)
		for i := 0; i < n; i++ {
			c.SelectNext(n)
		}
		if c.Index() != start {
			t.Fatalf("after %d nexts index = %d, want %d", n, c.Index(), start)
		}
		for i := 0; i < n; i++ {
			c.SelectPrevious(n)
		}
		if c.Index() != start {
			t.Fatalf("after %d previous index = %d, want %d", n, c.Index(), start)
		}
	})
}

func TestFormatPosition(t *testing.T) {
	tests := []struct {
		index, total int
		want         string
	}{
		{0, 0, ""},
		{0, 1, ""},
		{2, 7, "3 of 7"},
		{0, 2, "1 of 2"},
	}
	for _, tt := range tests {
		if got := FormatPosition(tt.index, tt.total); got != tt.want {
			t.Errorf("FormatPosition(%d, %d) = %q, want %q", tt.index, tt.total, got, tt.want)
		}
	}
}

func TestSamePayload(t *testing.T) {
	type item struct{ id string }
	a, b := &item{"x"}, &item{"x"}
	m := map[string]int{}

	if samePayload(nil, nil) {
		t.Error("nil payloads must not match")
	}
	if !samePayload(a, a) {
		t.Error("same pointer should match")
	}
	if samePayload(a, b) {
		t.Error("distinct pointers should not match")
	}
	if !samePayload("k", "k") {
		t.Error("equal strings should match")
	}
	if samePayload(1, int64(1)) {
		t.Error("different types should not match")
	}
	if !samePayload(m, m) {
		t.Error("same map should match")
	}

	type boxed struct{ X any }
	if samePayload(boxed{X: []int{1}}, boxed{X: []int{1}}) {
		t.Error("structs holding slices should not match")
	}
	if samePayload(boxed{X: []int{1}}, boxed{X: 1}) {
		t.Error("mixed boxed payloads should not match")
	}
	if !samePayload(boxed{X: "k"}, boxed{X: "k"}) {
		t.Error("structs holding equal strings should match")
	}
}
