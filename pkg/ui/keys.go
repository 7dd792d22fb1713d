package ui

import "github.com/charmbracelet/bubbles/key"

// KeyMap holds the tree screen bindings. Printable characters that match no
// binding go to typeahead search.
type KeyMap struct {
	Up             key.Binding
	Down           key.Binding
	Expand         key.Binding
	Collapse       key.Binding
	ExpandSiblings key.Binding
	Activate       key.Binding
	Home           key.Binding
	End            key.Binding
	Top            key.Binding
	Bottom         key.Binding
	Backspace      key.Binding
	ClearSearch    key.Binding
	Refresh        key.Binding
	Remove         key.Binding
	ToggleDetail   key.Binding
	Where          key.Binding
	Help           key.Binding
	Quit           key.Binding
}

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Expand, k.Collapse, k.Activate, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Home, k.End, k.Top, k.Bottom},
		{k.Expand, k.Collapse, k.ExpandSiblings, k.Activate, k.Remove},
		{k.Backspace, k.ClearSearch, k.Refresh, k.ToggleDetail, k.Where, k.Help, k.Quit},
	}
}

// DefaultKeyMap returns the standard bindings. Letters are left free for
// typeahead, so everything else uses arrows and control keys.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up"),
			key.WithHelp("↑", "previous"),
		),
		Down: key.NewBinding(
			key.WithKeys("down"),
			key.WithHelp("↓", "next"),
		),
		Expand: key.NewBinding(
			key.WithKeys("right"),
			key.WithHelp("→", "expand"),
		),
		Collapse: key.NewBinding(
			key.WithKeys("left"),
			key.WithHelp("←", "collapse"),
		),
		ExpandSiblings: key.NewBinding(
			key.WithKeys("*"),
			key.WithHelp("*", "expand siblings"),
		),
		Activate: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "activate"),
		),
		Home: key.NewBinding(
			key.WithKeys("home"),
			key.WithHelp("home", "first sibling"),
		),
		End: key.NewBinding(
			key.WithKeys("end"),
			key.WithHelp("end", "last sibling"),
		),
		Top: key.NewBinding(
			key.WithKeys("ctrl+home"),
			key.WithHelp("ctrl+home", "top"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("ctrl+end"),
			key.WithHelp("ctrl+end", "bottom"),
		),
		Backspace: key.NewBinding(
			key.WithKeys("backspace"),
			key.WithHelp("backspace", "shorten search"),
		),
		ClearSearch: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "clear search"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("ctrl+r", "f5"),
			key.WithHelp("ctrl+r", "reload"),
		),
		Remove: key.NewBinding(
			key.WithKeys("delete"),
			key.WithHelp("del", "remove"),
		),
		ToggleDetail: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "detail pane"),
		),
		Where: key.NewBinding(
			key.WithKeys("ctrl+w"),
			key.WithHelp("ctrl+w", "where am I"),
		),
		Help: key.NewBinding(
			key.WithKeys("f1"),
			key.WithHelp("f1", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "ctrl+q"),
			key.WithHelp("ctrl+q", "quit"),
		),
	}
}
