package main

import (
	"errors"

	"github.com/atotto/clipboard"

	"github.com/vanderheijden86/readtree/internal/datasource"
	"github.com/vanderheijden86/readtree/pkg/nav"
)

// Node kinds with an activation beyond the engine's own.
const (
	kindCopy   nav.Kind = "copy"
	kindRemove nav.Kind = "remove"
)

var errNoClipboard = errors.New("clipboard not available")

func copyToClipboard(text string) error {
	if clipboard.Unsupported {
		return errNoClipboard
	}
	return clipboard.WriteAll(text)
}

// actionTable maps node kinds to what Enter does. Plain actions only
// announce; copy puts the node text on the clipboard; remove deletes the
// node from its SQLite source; see changesSource for the reload.
func actionTable(loader *datasource.Loader, copyText func(string) error) map[nav.Kind]nav.ActionFunc {
	return map[nav.Kind]nav.ActionFunc{
		nav.KindAction: func(nav.Node) error { return nil },
		kindCopy:       func(n nav.Node) error { return copyText(n.Text()) },
		kindRemove:     loader.Remove,
	}
}

// changesSource reports whether activating n edits the source, so hosts
// without a watcher know to reload.
func changesSource(n nav.Node) bool { return n.Kind == kindRemove }
