package nav

import "fmt"

// Cursor is an index into a visible sequence of a given length.
// It never goes negative; with an empty sequence it rests at 0.
type Cursor struct {
	index int
}

// Index returns the current position.
func (c *Cursor) Index() int {
	return c.index
}

// Set moves the cursor to i, clamped to [0, count-1] (0 when count is 0).
func (c *Cursor) Set(i, count int) {
	c.index = clampIndex(i, count)
}

// Clamp pulls the cursor back into range after the sequence shrank.
func (c *Cursor) Clamp(count int) {
	c.index = clampIndex(c.index, count)
}

// SelectNext advances with wraparound. No-op when count is 0.
func (c *Cursor) SelectNext(count int) int {
	if count <= 0 {
		return c.index
	}
	c.index = (c.index + 1) % count
	return c.index
}

// SelectPrevious steps back with wraparound. No-op when count is 0.
func (c *Cursor) SelectPrevious(count int) int {
	if count <= 0 {
		return c.index
	}
	c.index = ((c.index-1)%count + count) % count
	return c.index
}

// FormatPosition renders a 1-based "i of n" position. Singleton and empty
// collections return "" so they are not announced.
func FormatPosition(index, total int) string {
	if total <= 1 {
		return ""
	}
	return fmt.Sprintf("%d of %d", index+1, total)
}

func clampIndex(i, count int) int {
	if count <= 0 || i < 0 {
		return 0
	}
	if i >= count {
		return count - 1
	}
	return i
}
