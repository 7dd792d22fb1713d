// Package ui is the full-screen terminal surface of readtree: a Bubble Tea
// model that forwards keys to a nav.Session, draws its visible sequence and
// shows every announcement on a status line.
package ui

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/vanderheijden86/readtree/internal/datasource"
	"github.com/vanderheijden86/readtree/pkg/debug"
	"github.com/vanderheijden86/readtree/pkg/nav"
	"github.com/vanderheijden86/readtree/pkg/watcher"
)

// View width thresholds for adaptive layout
const (
	SplitViewThreshold = 100
	MinDetailPaneWidth = 40
)

// FileChangedMsg is sent when the watched source changes on disk.
type FileChangedMsg struct{}

// WatchFileCmd returns a command that waits for file changes and sends FileChangedMsg
func WatchFileCmd(w *watcher.Watcher) tea.Cmd {
	return func() tea.Msg {
		<-w.Changed()
		return FileChangedMsg{}
	}
}

// Options configures NewModel.
type Options struct {
	Title      string
	Theme      string // auto, dark, light or plain
	ShowDetail bool
	Keys       *KeyMap
	// Loader, when set, enables Delete and change summaries after reloads.
	Loader *datasource.Loader
	// Watcher, when set, triggers a refresh whenever the source changes.
	Watcher *watcher.Watcher
	// ChangesSource reports whether activating a node edits the source.
	// Without a watcher the model reloads after such an activation.
	ChangesSource func(nav.Node) bool
}

// Model is the Bubble Tea model.
type Model struct {
	session *nav.Session
	log     *SpokenLog
	loader  *datasource.Loader
	watcher *watcher.Watcher
	changes func(nav.Node) bool

	keys   KeyMap
	help   help.Model
	theme  Theme
	tree   TreeView
	detail DetailPane
	title  string

	width      int
	height     int
	treeWidth  int
	ready      bool
	showDetail bool
	showHelp   bool
	quitting   bool
}

// NewModel opens a session over build. The session's sink is replaced by the
// model's spoken log; a sink already set in navOpts still receives everything.
func NewModel(build nav.RootBuilder, navOpts nav.Options, opts Options) (Model, error) {
	log := NewSpokenLog(navOpts.Sink)
	navOpts.Sink = log

	session, err := nav.Open(build, navOpts)
	if err != nil {
		return Model{}, err
	}

	theme := NewTheme(opts.Theme, lipgloss.NewRenderer(os.Stdout))
	keys := DefaultKeyMap()
	if opts.Keys != nil {
		keys = *opts.Keys
	}
	title := opts.Title
	if title == "" {
		title = "readtree"
	}

	m := Model{
		session:    session,
		log:        log,
		loader:     opts.Loader,
		watcher:    opts.Watcher,
		changes:    opts.ChangesSource,
		keys:       keys,
		help:       help.New(),
		theme:      theme,
		tree:       NewTreeView(theme),
		detail:     NewDetailPane(theme.Name),
		title:      title,
		showDetail: opts.ShowDetail,
	}
	m.tree.SetSize(80, 24)
	m.detail.Show(session)
	return m, nil
}

// Session exposes the underlying session, mostly for tests and the caller's
// cleanup.
func (m Model) Session() *nav.Session { return m.session }

// Log exposes the spoken log.
func (m Model) Log() *SpokenLog { return m.log }

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{func() tea.Msg {
		// Say where the user starts.
		return whereMsg{}
	}}
	if m.watcher != nil {
		cmds = append(cmds, WatchFileCmd(m.watcher))
	}
	return tea.Batch(cmds...)
}

type whereMsg struct{}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.ready = true
		m.layout()
		return m, nil

	case whereMsg:
		m.log.Announce(m.session.Describe())
		return m, nil

	case FileChangedMsg:
		debug.Log("ui: source changed on disk")
		m.reload()
		m.sync()
		if m.watcher != nil {
			return m, WatchFileCmd(m.watcher)
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	s := m.session
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		m.help.ShowAll = m.showHelp
		m.layout()
		return m, nil
	case key.Matches(msg, m.keys.ToggleDetail):
		m.showDetail = !m.showDetail
		m.layout()
		return m, nil

	case key.Matches(msg, m.keys.Up):
		s.SelectPrevious()
	case key.Matches(msg, m.keys.Down):
		s.SelectNext()
	case key.Matches(msg, m.keys.Expand):
		s.Expand()
	case key.Matches(msg, m.keys.Collapse):
		s.Collapse()
	case key.Matches(msg, m.keys.ExpandSiblings):
		s.ExpandAllSiblings()
	case key.Matches(msg, m.keys.Activate):
		m.activate()
	case key.Matches(msg, m.keys.Home):
		s.JumpToFirst(false)
	case key.Matches(msg, m.keys.End):
		s.JumpToLast(false)
	case key.Matches(msg, m.keys.Top):
		s.JumpToFirst(true)
	case key.Matches(msg, m.keys.Bottom):
		s.JumpToLast(true)
	case key.Matches(msg, m.keys.Backspace):
		s.HandleBackspace()
	case key.Matches(msg, m.keys.ClearSearch):
		s.ClearSearch()
	case key.Matches(msg, m.keys.Refresh):
		m.reload()
	case key.Matches(msg, m.keys.Remove):
		m.remove()
	case key.Matches(msg, m.keys.Where):
		m.log.Announce(s.Describe())

	case msg.Type == tea.KeySpace:
		s.HandleCharacter(' ')
	case msg.Type == tea.KeyRunes && !msg.Alt:
		for _, r := range msg.Runes {
			s.HandleCharacter(r)
		}
	default:
		return m, nil
	}
	m.sync()
	return m, nil
}

// reload rebuilds the session and, with a loader, announces what changed.
func (m *Model) reload() {
	var before []nav.Spec
	if m.loader != nil {
		before = m.loader.Last()
	}
	res := m.session.Refresh()
	m.detail.Invalidate()
	if res.Outcome != nav.OutcomeRefreshed || m.loader == nil {
		return
	}
	if sum := datasource.Diff(before, m.loader.Last()).Summary(); sum != "" {
		m.log.Announce("source changed: " + sum)
	}
}

// activate runs the selected node's action and reloads when it edited the
// source and no watcher will.
func (m *Model) activate() {
	n, ok := m.session.CurrentNode()
	res := m.session.ActivateSelected()
	if ok && res.Outcome == nav.OutcomeActivated && m.watcher == nil && m.changes != nil && m.changes(n) {
		m.reload()
	}
}

// remove deletes the selected node through the loader and reloads.
func (m *Model) remove() {
	n, ok := m.session.CurrentNode()
	if !ok {
		return
	}
	if m.loader == nil {
		m.log.Announce("not available")
		m.log.PlayCue(nav.CueReject)
		return
	}
	if err := m.loader.Remove(n); err != nil {
		m.log.Announce(fmt.Sprintf("cannot remove %s: %v", n.Label, err))
		m.log.PlayCue(nav.CueReject)
		return
	}
	m.log.Announce("removed " + n.Label)
	m.reload()
}

// sync scrolls the tree and refreshes the detail pane after an operation.
func (m *Model) sync() {
	m.tree.Follow(m.session)
	if m.detailVisible() {
		m.detail.Show(m.session)
	}
}

func (m Model) detailVisible() bool {
	return m.showDetail && m.width >= SplitViewThreshold
}

func (m Model) footerHeight() int {
	if !m.showHelp {
		return 2
	}
	rows := 0
	for _, col := range m.keys.FullHelp() {
		rows = max(rows, len(col))
	}
	return 1 + rows
}

func (m *Model) layout() {
	bodyHeight := m.height - m.footerHeight()
	if bodyHeight < 3 {
		bodyHeight = 3
	}
	m.treeWidth = m.width
	if m.detailVisible() {
		detailWidth := m.width * 2 / 5
		if detailWidth < MinDetailPaneWidth {
			detailWidth = MinDetailPaneWidth
		}
		m.treeWidth = m.width - detailWidth
		m.detail.SetSize(detailWidth-2, bodyHeight-2) // border
		m.detail.Show(m.session)
	}
	m.tree.SetSize(m.treeWidth, bodyHeight)
	m.help.Width = m.width
	m.tree.Follow(m.session)
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "Loading..."
	}

	body := m.tree.View(m.session, m.title)
	if m.detailVisible() {
		left := lipgloss.NewStyle().Width(m.treeWidth).Render(body)
		right := panelStyle(false).Render(m.detail.View())
		body = lipgloss.JoinHorizontal(lipgloss.Top, left, right)
	}

	var sb strings.Builder
	sb.WriteString(body)
	sb.WriteString("\n")
	sb.WriteString(m.renderStatusLine())
	sb.WriteString("\n")
	sb.WriteString(m.help.View(m.keys))
	return sb.String()
}

// renderStatusLine shows the search buffer while typing, then the last
// announcement. Rejections are drawn in the failure color.
func (m Model) renderStatusLine() string {
	width := m.width
	if width <= 0 {
		width = 80
	}
	var sb strings.Builder
	if buf := m.session.SearchBuffer(); buf != "" {
		search := truncate("search: "+buf, width)
		sb.WriteString(m.theme.SearchBar.Render(search))
		width -= runewidth.StringWidth(search) + SpaceSM
		if width <= 0 {
			return sb.String()
		}
		sb.WriteString(strings.Repeat(" ", SpaceSM))
	}
	last := truncate(m.log.Last(), width)
	if m.log.LastCue() == nav.CueReject {
		sb.WriteString(m.theme.FailedText.Render(last))
	} else {
		sb.WriteString(m.theme.StatusLine.Render(last))
	}
	return sb.String()
}
