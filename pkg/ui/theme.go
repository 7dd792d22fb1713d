package ui

import (
	"os"

	"github.com/charmbracelet/colorprofile"
	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/readtree/pkg/nav"
)

// TermProfile holds the detected terminal color profile. Computed once at
// package init so every style helper can branch without re-detecting.
var TermProfile colorprofile.Profile

func init() {
	TermProfile = colorprofile.Detect(os.Stdout, os.Environ())
}

// ThemeBg returns the given hex color for TrueColor terminals and
// lipgloss.NoColor{} otherwise, so 16/256-color terminals keep their own
// background.
func ThemeBg(hex string) lipgloss.TerminalColor {
	if TermProfile < colorprofile.TrueColor {
		return lipgloss.NoColor{}
	}
	return lipgloss.Color(hex)
}

// ThemeFg returns the given hex color for ANSI256+ terminals and a safe
// ANSI white (color 7) for 16-color or lower terminals.
func ThemeFg(hex string) lipgloss.TerminalColor {
	if TermProfile < colorprofile.ANSI256 {
		return lipgloss.ANSIColor(7)
	}
	return lipgloss.Color(hex)
}

// Theme names accepted by NewTheme (and by ui.theme in the config file).
const (
	ThemeAuto  = "auto"
	ThemeDark  = "dark"
	ThemeLight = "light"
	ThemePlain = "plain"
)

type Theme struct {
	Renderer *lipgloss.Renderer
	Name     string

	// Colors
	Primary   lipgloss.AdaptiveColor
	Secondary lipgloss.AdaptiveColor
	Subtext   lipgloss.AdaptiveColor

	// Kinds
	Action   lipgloss.AdaptiveColor
	Category lipgloss.AdaptiveColor
	Info     lipgloss.AdaptiveColor

	// UI Elements
	Border    lipgloss.AdaptiveColor
	Highlight lipgloss.AdaptiveColor
	Muted     lipgloss.AdaptiveColor

	// Styles
	Base     lipgloss.Style
	Selected lipgloss.Style
	Header   lipgloss.Style

	// Pre-computed row styles, created once instead of per frame.
	MutedText   lipgloss.Style // tree connectors, position indicator
	ValueText   lipgloss.Style // secondary value after the label
	MatchText   lipgloss.Style // typeahead match
	SearchBar   lipgloss.Style
	FailedText  lipgloss.Style // rejected search, failed activation
	StatusLine  lipgloss.Style
	PrimaryBold lipgloss.Style
}

// DefaultTheme returns the standard Dracula-inspired theme (adaptive).
func DefaultTheme(r *lipgloss.Renderer) Theme {
	t := Theme{
		Renderer: r,
		Name:     ThemeAuto,

		Primary:   lipgloss.AdaptiveColor{Light: "#6B47D9", Dark: "#BD93F9"}, // Purple
		Secondary: lipgloss.AdaptiveColor{Light: "#555555", Dark: "#6272A4"}, // Gray
		Subtext:   lipgloss.AdaptiveColor{Light: "#666666", Dark: "#BFBFBF"},

		Action:   lipgloss.AdaptiveColor{Light: "#007700", Dark: "#50FA7B"}, // Green
		Category: lipgloss.AdaptiveColor{Light: "#006080", Dark: "#8BE9FD"}, // Cyan
		Info:     lipgloss.AdaptiveColor{Light: "#1A1A1A", Dark: "#F8F8F2"},

		Border:    lipgloss.AdaptiveColor{Light: "#AAAAAA", Dark: "#44475A"},
		Highlight: lipgloss.AdaptiveColor{Light: "#E0E0E0", Dark: "#44475A"},
		Muted:     lipgloss.AdaptiveColor{Light: "#555555", Dark: "#6272A4"},
	}

	t.Base = r.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#000000", Dark: "#F8F8F2"})

	t.Selected = r.NewStyle().
		Background(t.Highlight).
		Border(lipgloss.ThickBorder(), false, false, false, true).
		BorderForeground(t.Primary).
		PaddingLeft(1).
		Bold(true)

	t.Header = r.NewStyle().
		Background(t.Primary).
		Foreground(lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#282A36"}).
		Bold(true).
		Padding(0, 1)

	t.MutedText = r.NewStyle().Foreground(t.Muted)
	t.ValueText = r.NewStyle().Foreground(ColorInfo)
	t.MatchText = r.NewStyle().Foreground(ThemeFg("#FFD700")).Background(ThemeBg("#44475A")).Bold(true)
	t.SearchBar = r.NewStyle().Foreground(t.Primary).Bold(true)
	t.FailedText = r.NewStyle().Foreground(ColorDanger)
	t.StatusLine = r.NewStyle().Foreground(t.Subtext)
	t.PrimaryBold = r.NewStyle().Foreground(t.Primary).Bold(true)

	return t
}

// PlainTheme renders without colors. Selection is shown by reverse video.
func PlainTheme(r *lipgloss.Renderer) Theme {
	t := Theme{Renderer: r, Name: ThemePlain}
	t.Base = r.NewStyle()
	t.Selected = r.NewStyle().Reverse(true)
	t.Header = r.NewStyle().Bold(true).Padding(0, 1)
	t.MutedText = r.NewStyle()
	t.ValueText = r.NewStyle()
	t.MatchText = r.NewStyle().Underline(true)
	t.SearchBar = r.NewStyle().Bold(true)
	t.FailedText = r.NewStyle().Bold(true)
	t.StatusLine = r.NewStyle()
	t.PrimaryBold = r.NewStyle().Bold(true)
	return t
}

// NewTheme returns the named theme. Dark and light pin the adaptive colors
// instead of asking the terminal. Unknown names fall back to auto.
func NewTheme(name string, r *lipgloss.Renderer) Theme {
	switch name {
	case ThemePlain:
		return PlainTheme(r)
	case ThemeDark:
		r.SetHasDarkBackground(true)
	case ThemeLight:
		r.SetHasDarkBackground(false)
	default:
		name = ThemeAuto
	}
	t := DefaultTheme(r)
	t.Name = name
	return t
}

// KindColor returns the label color for a node kind.
func (t Theme) KindColor(k nav.Kind) lipgloss.AdaptiveColor {
	switch k {
	case nav.KindAction:
		return t.Action
	case nav.KindCategory:
		return t.Category
	default:
		return t.Info
	}
}

// TestTheme returns a theme suitable for use in tests.
func TestTheme() Theme {
	return DefaultTheme(lipgloss.NewRenderer(os.Stdout))
}
