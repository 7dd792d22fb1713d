package nav

import (
	"fmt"

	"github.com/vanderheijden86/readtree/pkg/debug"
	"github.com/vanderheijden86/readtree/pkg/metrics"
)

// RootBuilder produces the top-level specs of a tree. It is called on Open
// and again on every Refresh.
type RootBuilder func() ([]Spec, error)

// ActionFunc runs the business action for an activated node.
type ActionFunc func(n Node) error

// Options configures a Session.
type Options struct {
	// Sink receives announcements and cues. Defaults to DiscardSink.
	Sink Sink
	// Labels extracts the typeahead text of a node. Defaults to the label.
	Labels LabelFunc
	// Actions dispatches activation by node kind.
	Actions map[Kind]ActionFunc
	// Context names this session for level announcements.
	Context string
	// Levels may be shared between sessions; each uses its own Context.
	Levels *LevelTracker
	// Fallback picks the last-resort cursor placement after Refresh.
	Fallback Fallback
	// Describe controls announcement contents. Nil announces everything.
	Describe *DescribeOptions
	// DisableTypeahead turns HandleCharacter into a no-op.
	DisableTypeahead bool
}

// Session is one open screen: a tree, a cursor and a search state. All
// methods are synchronous and must be called from a single goroutine.
type Session struct {
	opts  Options
	build RootBuilder

	tree   *Tree
	cursor Cursor
	search Typeahead

	// lastChild remembers, per parent, which child the user left it from.
	lastChild map[NodeID]NodeID

	open bool
}

// Open builds the tree and returns a session with the cursor on the first
// visible node. The level tracker for the session's context is reset.
func Open(build RootBuilder, opts Options) (*Session, error) {
	if build == nil {
		return nil, ErrNoBuilder
	}
	if opts.Sink == nil {
		opts.Sink = DiscardSink{}
	}
	if opts.Labels == nil {
		opts.Labels = DefaultLabel
	}
	if opts.Levels == nil {
		opts.Levels = NewLevelTracker()
	}
	if opts.Context == "" {
		opts.Context = "nav"
	}
	if opts.Describe == nil {
		d := DefaultDescribeOptions()
		opts.Describe = &d
	}

	specs, err := build()
	if err != nil {
		return nil, fmt.Errorf("building root nodes: %w", err)
	}

	s := &Session{
		opts:      opts,
		build:     build,
		tree:      NewTree(specs),
		lastChild: make(map[NodeID]NodeID),
		open:      true,
	}
	s.opts.Levels.ResetLevel(opts.Context)
	debug.Log("session %q opened with %d visible nodes", opts.Context, s.tree.VisibleLen())
	return s, nil
}

// Close drops the tree and search state. The session is inert afterwards.
func (s *Session) Close() {
	if !s.open {
		return
	}
	s.opts.Levels.ResetLevel(s.opts.Context)
	s.tree = nil
	s.search = Typeahead{}
	s.lastChild = nil
	s.cursor = Cursor{}
	s.open = false
}

// IsOpen reports whether Close has not been called yet.
func (s *Session) IsOpen() bool { return s.open }

// Tree exposes the underlying tree for rendering. Callers must treat it as
// read-only and mutate only through Session methods.
func (s *Session) Tree() *Tree { return s.tree }

// CurrentNode returns the node at the cursor.
func (s *Session) CurrentNode() (Node, bool) {
	if !s.open {
		return Node{ID: NoNode, Parent: NoNode}, false
	}
	return s.tree.At(s.cursor.Index())
}

// CurrentPosition returns the cursor index and the visible sequence length.
func (s *Session) CurrentPosition() (index, total int) {
	if !s.open {
		return 0, 0
	}
	return s.cursor.Index(), s.tree.VisibleLen()
}

// SearchBuffer returns the committed typeahead text.
func (s *Session) SearchBuffer() string { return s.search.Buffer() }

// SearchActive reports whether a typeahead search is in progress.
func (s *Session) SearchActive() bool { return s.search.Active() }

// SearchMatches returns the visible indices matching the search.
func (s *Session) SearchMatches() []int { return s.search.Matches() }

// LastFailedSearch returns the most recently rejected search text.
func (s *Session) LastFailedSearch() string { return s.search.LastFailed() }

// Describe returns the announcement for the current node without consuming
// the level suffix.
func (s *Session) Describe() string {
	if !s.open {
		return ""
	}
	n, ok := s.CurrentNode()
	if !ok {
		return "empty"
	}
	opts := *s.opts.Describe
	opts.Level = false
	return describe(s.tree, n.ID, opts, nil, "")
}

func (s *Session) currentID() NodeID {
	if n, ok := s.CurrentNode(); ok {
		return n.ID
	}
	return NoNode
}

func (s *Session) moveTo(id NodeID) {
	s.cursor.Set(s.tree.VisibleIndex(id), s.tree.VisibleLen())
}

// SelectNext moves down with wraparound, or to the next match while a
// search is active.
func (s *Session) SelectNext() Result {
	return s.step(true)
}

// SelectPrevious moves up with wraparound, or to the previous match while a
// search is active.
func (s *Session) SelectPrevious() Result {
	return s.step(false)
}

func (s *Session) step(forward bool) Result {
	if !s.open {
		return Result{Outcome: OutcomeUnchanged, Err: ErrNotOpen}
	}
	count := s.tree.VisibleLen()
	if count == 0 {
		return s.report(Result{Outcome: OutcomeUnchanged})
	}
	if s.search.Active() {
		var idx int
		if forward {
			idx, _ = s.search.NextMatch(s.cursor.Index())
		} else {
			idx, _ = s.search.PreviousMatch(s.cursor.Index())
		}
		s.cursor.Set(idx, count)
	} else if forward {
		s.cursor.SelectNext(count)
	} else {
		s.cursor.SelectPrevious(count)
	}
	return s.report(Result{Outcome: OutcomeMoved})
}

// Expand opens the current node. On an already open node it moves into the
// child the user last left from, or the first child.
func (s *Session) Expand() Result {
	if !s.open {
		return Result{Outcome: OutcomeUnchanged, Err: ErrNotOpen}
	}
	id := s.currentID()
	if id == NoNode {
		return s.report(Result{Outcome: OutcomeUnchanged})
	}
	s.search.Clear()

	n, _ := s.tree.Node(id)
	if n.IsLeaf() {
		return s.report(Result{Outcome: OutcomeRejected})
	}
	if n.Expanded {
		target := n.Children[0]
		if remembered, ok := s.lastChild[id]; ok && s.tree.VisibleIndex(remembered) >= 0 {
			target = remembered
		}
		s.moveTo(target)
		return s.report(Result{Outcome: OutcomeMoved})
	}

	out := s.tree.Open(id)
	s.moveTo(id)
	return s.report(Result{Outcome: out})
}

// Collapse closes the current node, or when it is already closed moves to
// the nearest expandable ancestor. At top level it is rejected.
func (s *Session) Collapse() Result {
	if !s.open {
		return Result{Outcome: OutcomeUnchanged, Err: ErrNotOpen}
	}
	id := s.currentID()
	if id == NoNode {
		return s.report(Result{Outcome: OutcomeUnchanged})
	}
	s.search.Clear()

	if out := s.tree.Close(id); out == OutcomeCollapsed {
		s.moveTo(id)
		s.cursor.Clamp(s.tree.VisibleLen())
		return s.report(Result{Outcome: out})
	}

	ancestor := s.tree.NearestExpandableAncestor(id)
	if ancestor == NoNode {
		return s.report(Result{Outcome: OutcomeRejected})
	}
	s.lastChild[ancestor] = id
	s.moveTo(ancestor)
	return s.report(Result{Outcome: OutcomeMoved})
}

// ExpandAllSiblings opens every collapsed expandable sibling of the current
// node. The cursor stays on the same node.
func (s *Session) ExpandAllSiblings() Result {
	if !s.open {
		return Result{Outcome: OutcomeUnchanged, Err: ErrNotOpen}
	}
	id := s.currentID()
	if id == NoNode {
		return s.report(Result{Outcome: OutcomeUnchanged})
	}
	s.search.Clear()
	count, out := s.tree.OpenSiblings(id)
	s.moveTo(id)
	return s.report(Result{Outcome: out, Count: count})
}

// ActivateSelected dispatches the current node to the action registered for
// its kind. Nodes without an action are rejected.
func (s *Session) ActivateSelected() Result {
	if !s.open {
		return Result{Outcome: OutcomeUnchanged, Err: ErrNotOpen}
	}
	n, ok := s.CurrentNode()
	if !ok {
		return s.report(Result{Outcome: OutcomeUnchanged})
	}
	action := s.opts.Actions[n.Kind]
	if action == nil {
		return s.report(Result{Outcome: OutcomeRejected})
	}
	if err := action(n); err != nil {
		debug.Log("activating %q: %v", n.Label, err)
		return s.report(Result{Outcome: OutcomeFailed, Err: err})
	}
	return s.report(Result{Outcome: OutcomeActivated})
}

// HandleCharacter feeds one typed character to the typeahead search.
func (s *Session) HandleCharacter(c rune) Result {
	if !s.open {
		return Result{Outcome: OutcomeUnchanged, Err: ErrNotOpen}
	}
	if s.opts.DisableTypeahead {
		return Result{Outcome: OutcomeUnchanged}
	}
	labels := s.tree.Labels(s.opts.Labels)
	idx, res := s.search.OnCharacter(c, labels, s.cursor.Index())
	if res.Outcome == OutcomeMoved {
		s.cursor.Set(idx, len(labels))
	}
	return s.report(res)
}

// HandleBackspace removes the last typeahead character.
func (s *Session) HandleBackspace() Result {
	if !s.open {
		return Result{Outcome: OutcomeUnchanged, Err: ErrNotOpen}
	}
	labels := s.tree.Labels(s.opts.Labels)
	idx, res := s.search.OnBackspace(labels, s.cursor.Index())
	if res.Outcome == OutcomeMoved {
		s.cursor.Set(idx, len(labels))
	}
	return s.report(res)
}

// ClearSearch abandons the current search.
func (s *Session) ClearSearch() Result {
	if !s.open {
		return Result{Outcome: OutcomeUnchanged, Err: ErrNotOpen}
	}
	if !s.search.Active() {
		return Result{Outcome: OutcomeUnchanged}
	}
	s.search.Clear()
	return s.report(Result{Outcome: OutcomeSearchCleared})
}

// JumpToFirst is Home. With absolute it goes to the first visible node,
// otherwise to the first sibling of the current node.
func (s *Session) JumpToFirst(absolute bool) Result {
	return s.jump(true, absolute)
}

// JumpToLast is End. With absolute it goes to the deepest visible last node,
// otherwise to the last sibling of the current node.
func (s *Session) JumpToLast(absolute bool) Result {
	return s.jump(false, absolute)
}

func (s *Session) jump(first, absolute bool) Result {
	if !s.open {
		return Result{Outcome: OutcomeUnchanged, Err: ErrNotOpen}
	}
	id := s.currentID()
	if id == NoNode {
		return s.report(Result{Outcome: OutcomeUnchanged})
	}
	s.search.Clear()

	var target NodeID
	var out Outcome
	if first {
		target, out = s.tree.HomeTarget(id, absolute)
	} else {
		target, out = s.tree.EndTarget(id, absolute)
	}
	if out == OutcomeMoved {
		s.moveTo(target)
	}
	return s.report(Result{Outcome: out})
}

// Refresh rebuilds the tree from the root builder, restores expansion by
// path and relocates the cursor onto the same item when it still exists.
// When the builder fails the previous tree is kept.
func (s *Session) Refresh() Result {
	if !s.open {
		return Result{Outcome: OutcomeUnchanged, Err: ErrNotOpen}
	}
	defer metrics.Timer(metrics.Refresh)()
	defer debug.LogEnterExit("Refresh")()

	sel := captureSelection(s.tree, s.cursor.Index())
	specs, err := s.build()
	if err != nil {
		err = fmt.Errorf("refreshing %q: %w", s.opts.Context, err)
		debug.Log("%v", err)
		return s.report(Result{Outcome: OutcomeFailed, Err: err})
	}

	tree := NewTree(specs)
	tree.applyExpansion(sel.expanded)
	idx, rule := relocate(tree, sel, s.opts.Fallback)
	debug.Log("refresh relocated cursor %d -> %d by %s", sel.index, idx, rule)

	s.tree = tree
	s.cursor.Set(idx, tree.VisibleLen())
	s.search.Clear()
	s.lastChild = make(map[NodeID]NodeID)
	return s.report(Result{Outcome: OutcomeRefreshed})
}

// report sends the cue and announcement for res and returns it unchanged.
func (s *Session) report(res Result) Result {
	sink := s.opts.Sink
	if cue := CueFor(res.Outcome); cue != CueNone {
		sink.PlayCue(cue)
	}

	var text string
	switch res.Outcome {
	case OutcomeMoved, OutcomeExpanded, OutcomeCollapsed, OutcomeRefreshed, OutcomeSearchCleared:
		text = s.announceCurrent()
		if res.Outcome == OutcomeExpanded && res.Count > 0 {
			text = fmt.Sprintf("expanded %d, %s", res.Count, text)
		}
	case OutcomeActivated:
		if n, ok := s.CurrentNode(); ok {
			text = "activated " + n.Label
		}
	default:
		text = outcomeMessage(res)
	}
	if text != "" {
		sink.Announce(text)
	}
	return res
}

func (s *Session) announceCurrent() string {
	id := s.currentID()
	if id == NoNode {
		return "empty"
	}
	return describe(s.tree, id, *s.opts.Describe, s.opts.Levels, s.opts.Context)
}
