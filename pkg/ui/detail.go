package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/glamour"

	"github.com/vanderheijden86/readtree/pkg/nav"
)

// DetailPane shows the selected node as rendered markdown.
type DetailPane struct {
	vp         viewport.Model
	mdRenderer *glamour.TermRenderer
	style      string
	wrap       int
	current    nav.NodeID
}

// NewDetailPane returns a pane for the named theme.
func NewDetailPane(theme string) DetailPane {
	style := "auto"
	switch theme {
	case ThemeDark:
		style = "dark"
	case ThemeLight:
		style = "light"
	case ThemePlain:
		style = "notty"
	}
	d := DetailPane{vp: viewport.New(40, 20), style: style, current: nav.NoNode}
	d.setWrap(40)
	return d
}

func (d *DetailPane) setWrap(width int) {
	if width < 20 {
		width = 20
	}
	if width == d.wrap && d.mdRenderer != nil {
		return
	}
	opts := []glamour.TermRendererOption{glamour.WithWordWrap(width)}
	if d.style == "auto" {
		opts = append(opts, glamour.WithAutoStyle())
	} else {
		opts = append(opts, glamour.WithStandardStyle(d.style))
	}
	// A nil renderer falls back to raw markdown in Show.
	d.mdRenderer, _ = glamour.NewTermRenderer(opts...)
	d.wrap = width
}

// SetSize resizes the pane, border excluded.
func (d *DetailPane) SetSize(width, height int) {
	d.vp.Width = width
	d.vp.Height = height
	d.setWrap(width - 2)
	d.current = nav.NoNode
}

// Show renders the current node of s unless it is already shown.
func (d *DetailPane) Show(s *nav.Session) {
	n, ok := s.CurrentNode()
	if !ok {
		d.vp.SetContent("")
		d.current = nav.NoNode
		return
	}
	if n.ID == d.current {
		return
	}
	md := detailMarkdown(s, n)
	content := md
	if d.mdRenderer != nil {
		if out, err := d.mdRenderer.Render(md); err == nil {
			content = out
		}
	}
	d.vp.SetContent(content)
	d.vp.GotoTop()
	d.current = n.ID
}

// Invalidate forces the next Show to re-render, e.g. after a refresh reused
// node IDs.
func (d *DetailPane) Invalidate() { d.current = nav.NoNode }

// View renders the viewport.
func (d DetailPane) View() string { return d.vp.View() }

// detailMarkdown describes a node: label, value, and where it sits.
func detailMarkdown(s *nav.Session, n nav.Node) string {
	tree := s.Tree()
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", n.Label)
	if n.Value != "" {
		fmt.Fprintf(&sb, "%s\n\n", n.Value)
	}
	fmt.Fprintf(&sb, "- **Kind:** %s\n", n.Kind)
	fmt.Fprintf(&sb, "- **Level:** %d\n", n.Depth+1)
	siblings := tree.Siblings(n.ID)
	fmt.Fprintf(&sb, "- **Position:** %d of %d\n", tree.SiblingIndex(n.ID)+1, len(siblings))
	if p := tree.Parent(n.ID); p != nav.NoNode {
		if pn, ok := tree.Node(p); ok {
			fmt.Fprintf(&sb, "- **Parent:** %s\n", pn.Label)
		}
	}
	switch {
	case n.IsLeaf():
	case len(n.Children) > 0:
		fmt.Fprintf(&sb, "- **Children:** %d\n", len(n.Children))
	default:
		sb.WriteString("- **Children:** not loaded yet\n")
	}
	return sb.String()
}
