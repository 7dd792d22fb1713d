package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"golang.org/x/text/cases"

	"github.com/vanderheijden86/readtree/pkg/metrics"
	"github.com/vanderheijden86/readtree/pkg/nav"
)

// TreeView draws the visible sequence of a session. It owns only the scroll
// offset; the cursor and expansion state live in the session.
type TreeView struct {
	theme          Theme
	width          int
	height         int
	viewportOffset int
}

// NewTreeView returns a view with the given theme.
func NewTreeView(theme Theme) TreeView {
	return TreeView{theme: theme}
}

// SetSize sets the rows and columns available to the tree, header included.
func (t *TreeView) SetSize(width, height int) {
	t.width = width
	t.height = height
}

// Follow scrolls so the session's cursor is on screen. Call it after every
// operation that can move the cursor; View does not scroll by itself.
func (t *TreeView) Follow(s *nav.Session) {
	cursor, total := s.CurrentPosition()
	t.ensureCursorVisible(cursor, total)
}

// View renders the window of the visible sequence that contains the cursor.
func (t TreeView) View(s *nav.Session, title string) string {
	start := time.Now()
	defer func() { metrics.RenderFrame.Record(time.Since(start)) }()

	tree := s.Tree()
	if tree == nil || tree.VisibleLen() == 0 {
		return t.renderEmptyState(title)
	}

	cursor, total := s.CurrentPosition()

	var sb strings.Builder
	sb.WriteString(t.RenderHeader(title))
	sb.WriteString("\n")

	matches := make(map[int]bool)
	for _, i := range s.SearchMatches() {
		matches[i] = true
	}

	first, last := t.visibleRange(total)
	for i := first; i < last; i++ {
		n, ok := tree.At(i)
		if !ok {
			continue
		}
		line := t.renderNode(tree, n, matches[i], s.SearchBuffer())
		if i == cursor {
			line = t.theme.Selected.Render(line)
		}
		sb.WriteString(line)
		sb.WriteString("\n")
	}

	if total > t.effectiveVisibleCount(total) {
		sb.WriteString(t.renderPositionIndicator(first, last, total))
	}
	return strings.TrimRight(sb.String(), "\n")
}

// RenderHeader returns the title bar.
func (t *TreeView) RenderHeader(title string) string {
	width := t.width
	if width <= 0 {
		width = 80
	}
	return t.theme.Header.Width(width).Render(truncate(title, width-2))
}

func (t *TreeView) renderEmptyState(title string) string {
	var sb strings.Builder
	sb.WriteString(t.theme.PrimaryBold.Render(title))
	sb.WriteString("\n\n")
	sb.WriteString(t.theme.MutedText.Render("Nothing to show."))
	sb.WriteString("\n")
	sb.WriteString(t.theme.MutedText.Render("Press ctrl+r to reload the source."))
	return sb.String()
}

// renderNode lays out one row: [tree-prefix] [indicator] label [value].
func (t *TreeView) renderNode(tree *nav.Tree, n nav.Node, isMatch bool, query string) string {
	prefix := t.buildTreePrefix(tree, n)
	indicator := expandIndicator(n.Expandable, n.Expanded)

	width := t.width
	if width <= 0 {
		width = 80
	}
	// prefix cells + indicator + space, plus the selection border and padding
	used := 4*n.Depth + 2 + SpaceSM
	room := width - used
	if room < 4 {
		room = 4
	}

	label := n.Label
	value := ""
	if n.Value != "" {
		value = "  " + n.Value
	}
	if lw := runewidth.StringWidth(label); lw+runewidth.StringWidth(value) > room {
		if lw >= room {
			label, value = truncate(label, room), ""
		} else {
			value = truncate(value, room-lw)
		}
	}

	labelStyle := t.theme.Base.Foreground(t.theme.KindColor(n.Kind))
	if t.theme.Name == ThemePlain {
		labelStyle = t.theme.Base
	}
	rendered := labelStyle.Render(label)
	if isMatch && query != "" {
		rendered = t.highlightPrefix(label, query, labelStyle)
	}

	var sb strings.Builder
	sb.WriteString(prefix)
	sb.WriteString(t.theme.MutedText.Render(indicator))
	sb.WriteString(" ")
	sb.WriteString(rendered)
	if value != "" {
		sb.WriteString(t.theme.ValueText.Render(value))
	}
	return sb.String()
}

// highlightPrefix marks the part of label that the search matched.
func (t *TreeView) highlightPrefix(label, query string, rest lipgloss.Style) string {
	runes := []rune(label)
	n := matchedRunes(runes, query)
	return t.theme.MatchText.Render(string(runes[:n])) + rest.Render(string(runes[n:]))
}

// matchedRunes returns how many leading runes of label the case-folded query
// covers. Folding can change length ("ß" folds to "ss"), so the prefix is
// folded rune by rune until it reaches the query.
func matchedRunes(label []rune, query string) int {
	fold := cases.Fold()
	want := fold.String(query)
	for i := 1; i <= len(label); i++ {
		got := fold.String(string(label[:i]))
		if len(got) >= len(want) {
			if strings.HasPrefix(got, want) {
				return i
			}
			break
		}
	}
	return min(len([]rune(query)), len(label))
}

// buildTreePrefix builds the indentation and branch characters for a node.
func (t *TreeView) buildTreePrefix(tree *nav.Tree, n nav.Node) string {
	if n.Depth == 0 {
		return ""
	}

	// Ancestors from the top-level node down to the parent.
	ancestors := make([]nav.NodeID, n.Depth)
	for i, p := n.Depth-1, n.Parent; i >= 0 && p != nav.NoNode; i, p = i-1, tree.Parent(p) {
		ancestors[i] = p
	}

	var sb strings.Builder
	// The top-level ancestor draws no column, like the root itself.
	for _, a := range ancestors[1:] {
		if hasSiblingsBelow(tree, a) {
			sb.WriteString("│   ")
		} else {
			sb.WriteString("    ")
		}
	}
	if hasSiblingsBelow(tree, n.ID) {
		sb.WriteString("├── ")
	} else {
		sb.WriteString("└── ")
	}
	return t.theme.MutedText.Render(sb.String())
}

func hasSiblingsBelow(tree *nav.Tree, id nav.NodeID) bool {
	i := tree.SiblingIndex(id)
	return i >= 0 && i < len(tree.Siblings(id))-1
}

// renderPositionIndicator shows "start-end of total" using 1-indexed numbers.
func (t *TreeView) renderPositionIndicator(start, end, total int) string {
	return t.theme.MutedText.Render(fmt.Sprintf(" %d-%d of %d", start+1, end, total))
}

// effectiveVisibleCount is the number of node rows that fit.
func (t *TreeView) effectiveVisibleCount(total int) int {
	visibleCount := t.height - 1 // header row
	if visibleCount <= 0 {
		visibleCount = 19
	}
	// Reserve a line for the position indicator when scrolling is needed
	if total > visibleCount {
		visibleCount--
	}
	if visibleCount < 1 {
		visibleCount = 1
	}
	return visibleCount
}

func (t *TreeView) visibleRange(total int) (start, end int) {
	if total == 0 {
		return 0, 0
	}
	visibleCount := t.effectiveVisibleCount(total)

	start = t.viewportOffset
	if start < 0 {
		start = 0
	}
	end = start + visibleCount
	if end > total {
		end = total
		start = end - visibleCount
		if start < 0 {
			start = 0
		}
	}
	return start, end
}

// ensureCursorVisible scrolls just enough to keep the cursor on screen.
func (t *TreeView) ensureCursorVisible(cursor, total int) {
	if total == 0 {
		t.viewportOffset = 0
		return
	}
	visibleCount := t.effectiveVisibleCount(total)

	if cursor < t.viewportOffset {
		t.viewportOffset = cursor
	}
	if cursor >= t.viewportOffset+visibleCount {
		t.viewportOffset = cursor - visibleCount + 1
	}

	maxOffset := total - visibleCount
	if maxOffset < 0 {
		maxOffset = 0
	}
	if t.viewportOffset > maxOffset {
		t.viewportOffset = maxOffset
	}
	if t.viewportOffset < 0 {
		t.viewportOffset = 0
	}
}
