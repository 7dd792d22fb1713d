// Package console is the line-oriented surface of readtree. It reads one
// command per line and writes every announcement as a line of text, which
// suits screen readers, pipes and transcript tests alike.
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/vanderheijden86/readtree/internal/datasource"
	"github.com/vanderheijden86/readtree/pkg/debug"
	"github.com/vanderheijden86/readtree/pkg/nav"
	"github.com/vanderheijden86/readtree/pkg/watcher"
)

// Options configures a Console.
type Options struct {
	// Prompt is written before each command is read. Empty means no prompt.
	Prompt string
	// ShowCues prints cues as bracketed lines, e.g. "[boundary]".
	ShowCues bool
	// Loader enables remove and change summaries after reloads.
	Loader *datasource.Loader
	// Watcher, when set, refreshes the session whenever the source changes.
	Watcher *watcher.Watcher
	// ChangesSource reports whether activating a node edits the source.
	// Without a watcher the console reloads after such an activation.
	ChangesSource func(nav.Node) bool
}

// Console drives a nav.Session from text commands.
type Console struct {
	session *nav.Session
	out     *lineSink
	loader  *datasource.Loader
	watcher *watcher.Watcher
	changes func(nav.Node) bool
	prompt  string
}

type lineSink struct {
	w       io.Writer
	cues    bool
	forward nav.Sink
	err     error
}

func (l *lineSink) Announce(text string) {
	if l.forward != nil {
		l.forward.Announce(text)
	}
	l.println(text)
}

func (l *lineSink) PlayCue(c nav.Cue) {
	if l.forward != nil {
		l.forward.PlayCue(c)
	}
	if l.cues {
		l.println("[" + c.String() + "]")
	}
}

func (l *lineSink) println(s string) {
	if l.err != nil {
		return
	}
	_, l.err = fmt.Fprintln(l.w, s)
}

// New opens a session over build that announces to out. A sink already set
// in navOpts keeps receiving every announcement.
func New(build nav.RootBuilder, navOpts nav.Options, out io.Writer, opts Options) (*Console, error) {
	sink := &lineSink{w: out, cues: opts.ShowCues, forward: navOpts.Sink}
	navOpts.Sink = sink
	s, err := nav.Open(build, navOpts)
	if err != nil {
		return nil, err
	}
	return &Console{
		session: s,
		out:     sink,
		loader:  opts.Loader,
		watcher: opts.Watcher,
		changes: opts.ChangesSource,
		prompt:  opts.Prompt,
	}, nil
}

// Session returns the underlying session.
func (c *Console) Session() *nav.Session { return c.session }

// Close closes the session.
func (c *Console) Close() { c.session.Close() }

type command struct {
	help string
	run  func(c *Console, arg string)
}

var commands map[string]command

func init() {
	commands = map[string]command{
		"next":    {"move to the next item", func(c *Console, _ string) { c.session.SelectNext() }},
		"prev":    {"move to the previous item", func(c *Console, _ string) { c.session.SelectPrevious() }},
		"right":   {"expand, or enter an expanded item", func(c *Console, _ string) { c.session.Expand() }},
		"left":    {"collapse, or go to the parent", func(c *Console, _ string) { c.session.Collapse() }},
		"*":       {"expand all siblings", func(c *Console, _ string) { c.session.ExpandAllSiblings() }},
		"enter":   {"activate the item", func(c *Console, _ string) { c.activate() }},
		"home":    {"first sibling", func(c *Console, _ string) { c.session.JumpToFirst(false) }},
		"end":     {"last sibling", func(c *Console, _ string) { c.session.JumpToLast(false) }},
		"top":     {"first item", func(c *Console, _ string) { c.session.JumpToFirst(true) }},
		"bottom":  {"last visible item", func(c *Console, _ string) { c.session.JumpToLast(true) }},
		"type":    {"search by typing <text>", (*Console).typeText},
		"back":    {"delete the last search character", func(c *Console, _ string) { c.session.HandleBackspace() }},
		"clear":   {"clear the search", func(c *Console, _ string) { c.session.ClearSearch() }},
		"refresh": {"reload the source", func(c *Console, _ string) { c.reload() }},
		"remove":  {"remove the item from the source", func(c *Console, _ string) { c.remove() }},
		"where":   {"repeat the current item", func(c *Console, _ string) { c.out.Announce(c.session.Describe()) }},
		"help":    {"list commands", func(c *Console, _ string) { c.printHelp() }},
	}
}

var aliases = map[string]string{
	"n":         "next",
	"down":      "next",
	"j":         "next",
	"p":         "prev",
	"up":        "prev",
	"k":         "prev",
	"expand":    "right",
	"l":         "right",
	"collapse":  "left",
	"h":         "left",
	"activate":  "enter",
	"backspace": "back",
	"esc":       "clear",
	"reload":    "refresh",
	"delete":    "remove",
	"del":       "remove",
	"?":         "help",
}

// Exec runs one command line. It reports false when the line asks to quit.
func (c *Console) Exec(line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return true
	}
	name, arg, _ := strings.Cut(line, " ")
	name = strings.ToLower(name)
	if name == "quit" || name == "q" || name == "exit" {
		return false
	}
	if full, ok := aliases[name]; ok {
		name = full
	}
	cmd, ok := commands[name]
	if !ok {
		c.out.Announce(fmt.Sprintf("unknown command %q, type help", name))
		return true
	}
	cmd.run(c, arg)
	return true
}

// typeText feeds arg to the typeahead one character at a time.
func (c *Console) typeText(arg string) {
	if arg == "" {
		c.out.Announce("type what?")
		return
	}
	for _, r := range arg {
		c.session.HandleCharacter(r)
	}
}

// reload refreshes the session and, with a loader, announces what changed.
func (c *Console) reload() {
	var before []nav.Spec
	if c.loader != nil {
		before = c.loader.Last()
	}
	res := c.session.Refresh()
	if res.Outcome != nav.OutcomeRefreshed || c.loader == nil {
		return
	}
	if sum := datasource.Diff(before, c.loader.Last()).Summary(); sum != "" {
		c.out.Announce("source changed: " + sum)
	}
}

// activate runs the selected node's action. An action that edited the
// source is followed by a reload unless the watcher will deliver one.
func (c *Console) activate() {
	n, ok := c.session.CurrentNode()
	res := c.session.ActivateSelected()
	if ok && res.Outcome == nav.OutcomeActivated && c.watcher == nil && c.changes != nil && c.changes(n) {
		c.reload()
	}
}

func (c *Console) remove() {
	n, ok := c.session.CurrentNode()
	if !ok {
		return
	}
	if c.loader == nil {
		c.out.PlayCue(nav.CueReject)
		c.out.Announce("not available")
		return
	}
	if err := c.loader.Remove(n); err != nil {
		c.out.PlayCue(nav.CueReject)
		c.out.Announce(fmt.Sprintf("cannot remove %s: %v", n.Label, err))
		return
	}
	c.out.Announce("removed " + n.Label)
	c.reload()
}

func (c *Console) printHelp() {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		c.out.println(fmt.Sprintf("%-8s %s", name, commands[name].help))
	}
	c.out.println(fmt.Sprintf("%-8s %s", "quit", "leave"))
}

// Run announces the current item, then executes commands read from in until
// quit, end of input or ctx cancellation. Source changes reported by the
// watcher are applied between commands, so the session is only ever touched
// from the calling goroutine.
func (c *Console) Run(ctx context.Context, in io.Reader) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	c.out.Announce(c.session.Describe())

	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr <- sc.Err()
	}()

	var changed <-chan struct{}
	if c.watcher != nil {
		changed = c.watcher.Changed()
	}

	for {
		c.writePrompt()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-changed:
			debug.Log("console: source changed on disk")
			c.reload()
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-scanErr:
					if err != nil {
						return fmt.Errorf("reading commands: %w", err)
					}
				default:
				}
				return c.out.err
			}
			if !c.Exec(line) {
				return c.out.err
			}
		}
		if c.out.err != nil {
			return fmt.Errorf("writing output: %w", c.out.err)
		}
	}
}

func (c *Console) writePrompt() {
	if c.prompt == "" || c.out.err != nil {
		return
	}
	_, c.out.err = io.WriteString(c.out.w, c.prompt)
}
