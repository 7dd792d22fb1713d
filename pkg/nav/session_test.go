package nav_test

import (
	"errors"
	"reflect"
	"testing"

	"github.com/vanderheijden86/readtree/pkg/nav"
)

type recordingSink struct {
	said []string
	cues []nav.Cue
}

func (r *recordingSink) Announce(text string) { r.said = append(r.said, text) }
func (r *recordingSink) PlayCue(c nav.Cue)    { r.cues = append(r.cues, c) }

func (r *recordingSink) last() string {
	if len(r.said) == 0 {
		return ""
	}
	return r.said[len(r.said)-1]
}

func (r *recordingSink) lastCue() nav.Cue {
	if len(r.cues) == 0 {
		return nav.CueNone
	}
	return r.cues[len(r.cues)-1]
}

func openSession(t testing.TB, specs []nav.Spec, opts nav.Options) (*nav.Session, *recordingSink) {
	t.Helper()
	sink := &recordingSink{}
	if opts.Sink == nil {
		opts.Sink = sink
	}
	s, err := nav.Open(func() ([]nav.Spec, error) { return specs, nil }, opts)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return s, sink
}

// selectLabel walks the cursor forward until it sits on label.
func selectLabel(t testing.TB, s *nav.Session, label string) {
	t.Helper()
	_, total := s.CurrentPosition()
	for i := 0; i <= total; i++ {
		if n, ok := s.CurrentNode(); ok && n.Label == label {
			return
		}
		s.SelectNext()
	}
	t.Fatalf("label %q is not visible", label)
}

func currentLabel(s *nav.Session) string {
	n, _ := s.CurrentNode()
	return n.Label
}

func TestOpenErrors(t *testing.T) {
	if _, err := nav.Open(nil, nav.Options{}); !errors.Is(err, nav.ErrNoBuilder) {
		t.Errorf("Open(nil) = %v, want ErrNoBuilder", err)
	}
	boom := errors.New("no database")
	_, err := nav.Open(func() ([]nav.Spec, error) { return nil, boom }, nav.Options{})
	if !errors.Is(err, boom) {
		t.Errorf("Open with failing builder = %v, want it to wrap %v", err, boom)
	}
}

func TestSessionStartsOnFirstNode(t *testing.T) {
	s, sink := openSession(t, fruitSpecs(), nav.Options{})
	if currentLabel(s) != "Apple" {
		t.Errorf("initial node = %q, want Apple", currentLabel(s))
	}
	if len(sink.said) != 0 {
		t.Errorf("Open should not announce, got %v", sink.said)
	}
}

func fruitSpecs() []nav.Spec {
	return []nav.Spec{leaf("Apple"), leaf("Apricot"), leaf("Banana")}
}

func TestSessionAnnouncesMoves(t *testing.T) {
	s, sink := openSession(t, fruitSpecs(), nav.Options{})

	if res := s.SelectNext(); res.Outcome != nav.OutcomeMoved {
		t.Fatalf("SelectNext = %v", res.Outcome)
	}
	if got := sink.last(); got != "Apricot, 2 of 3, level 1" {
		t.Errorf("announcement = %q", got)
	}
	s.SelectNext()
	if got := sink.last(); got != "Banana, 3 of 3" {
		t.Errorf("announcement = %q, want no level suffix at the same depth", got)
	}
	s.SelectNext()
	if currentLabel(s) != "Apple" {
		t.Errorf("SelectNext did not wrap, on %q", currentLabel(s))
	}
	s.SelectPrevious()
	if currentLabel(s) != "Banana" {
		t.Errorf("SelectPrevious did not wrap, on %q", currentLabel(s))
	}
	if sink.lastCue() != nav.CueMove {
		t.Errorf("cue = %v, want move", sink.lastCue())
	}
}

func TestSessionAnnouncesValue(t *testing.T) {
	s, sink := openSession(t, []nav.Spec{
		{Label: "Speed", Value: "120 wpm"},
		{Label: "Voice", Value: "default"},
	}, nav.Options{Describe: &nav.DescribeOptions{Values: true}})
	s.SelectNext()
	if got := sink.last(); got != "Voice, default" {
		t.Errorf("announcement = %q, want %q", got, "Voice, default")
	}
	if got := s.Describe(); got != "Voice, default" {
		t.Errorf("Describe = %q", got)
	}
}

func TestSessionExpandCollapse(t *testing.T) {
	s, sink := openSession(t, []nav.Spec{
		branch("P", false, leaf("a"), leaf("b"), leaf("c")),
	}, nav.Options{})

	if res := s.Expand(); res.Outcome != nav.OutcomeExpanded {
		t.Fatalf("Expand = %v, want expanded", res.Outcome)
	}
	if got := sink.last(); got != "P, expanded, level 1" {
		t.Errorf("announcement = %q", got)
	}
	if sink.lastCue() != nav.CueExpand {
		t.Errorf("cue = %v, want expand", sink.lastCue())
	}

	selectLabel(t, s, "b")
	if res := s.Expand(); res.Outcome != nav.OutcomeRejected {
		t.Errorf("Expand on leaf = %v, want rejected", res.Outcome)
	}
	if got := sink.last(); got != "not available" {
		t.Errorf("announcement = %q", got)
	}

	// Left from a child goes to the parent and remembers the child.
	if res := s.Collapse(); res.Outcome != nav.OutcomeMoved || currentLabel(s) != "P" {
		t.Fatalf("Collapse from child = %v on %q, want moved to P", res.Outcome, currentLabel(s))
	}
	if res := s.Expand(); res.Outcome != nav.OutcomeMoved || currentLabel(s) != "b" {
		t.Errorf("Expand on open parent = %v on %q, want back on b", res.Outcome, currentLabel(s))
	}

	s.Collapse()
	if res := s.Collapse(); res.Outcome != nav.OutcomeCollapsed {
		t.Fatalf("Collapse on open parent = %v, want collapsed", res.Outcome)
	}
	if _, total := s.CurrentPosition(); total != 1 {
		t.Errorf("visible length after collapse = %d, want 1", total)
	}
	if res := s.Collapse(); res.Outcome != nav.OutcomeRejected {
		t.Errorf("Collapse at top level = %v, want rejected", res.Outcome)
	}
}

func TestSessionExpandMovesToFirstChild(t *testing.T) {
	s, _ := openSession(t, []nav.Spec{branch("P", true, leaf("a"), leaf("b"))}, nav.Options{})
	if res := s.Expand(); res.Outcome != nav.OutcomeMoved || currentLabel(s) != "a" {
		t.Errorf("Expand on open node = %v on %q, want moved to a", res.Outcome, currentLabel(s))
	}
}

func TestSessionExpandNothingToShow(t *testing.T) {
	s, sink := openSession(t, []nav.Spec{{
		Label: "empty",
		Lazy:  func(nav.Node) ([]nav.Spec, error) { return nil, nil },
	}}, nav.Options{})
	if res := s.Expand(); res.Outcome != nav.OutcomeNothingToShow {
		t.Errorf("Expand = %v, want nothing to show", res.Outcome)
	}
	if got := sink.last(); got != "nothing to show" {
		t.Errorf("announcement = %q", got)
	}
	if sink.lastCue() != nav.CueReject {
		t.Errorf("cue = %v, want reject", sink.lastCue())
	}
}

func TestSessionExpandAllSiblings(t *testing.T) {
	s, sink := openSession(t, []nav.Spec{
		branch("A", false, leaf("A1")),
		branch("B", false, leaf("B1")),
	}, nav.Options{})
	res := s.ExpandAllSiblings()
	if res.Outcome != nav.OutcomeExpanded || res.Count != 2 {
		t.Fatalf("ExpandAllSiblings = %v/%d, want expanded/2", res.Outcome, res.Count)
	}
	if got := sink.last(); got != "expanded 2, A, expanded, 1 of 2, level 1" {
		t.Errorf("announcement = %q", got)
	}
	if currentLabel(s) != "A" {
		t.Errorf("cursor moved to %q", currentLabel(s))
	}
	if res := s.ExpandAllSiblings(); res.Outcome != nav.OutcomeAlreadyExpanded {
		t.Errorf("second ExpandAllSiblings = %v, want already expanded", res.Outcome)
	}
}

func TestSessionActivation(t *testing.T) {
	var ran []string
	failing := errors.New("clipboard unavailable")
	s, sink := openSession(t, []nav.Spec{
		{Label: "Run", Kind: nav.KindAction},
		{Label: "Broken", Kind: "copy"},
		{Label: "Info"},
	}, nav.Options{Actions: map[nav.Kind]nav.ActionFunc{
		nav.KindAction: func(n nav.Node) error {
			ran = append(ran, n.Label)
			return nil
		},
		"copy": func(nav.Node) error { return failing },
	}})

	if res := s.ActivateSelected(); res.Outcome != nav.OutcomeActivated {
		t.Errorf("activate Run = %v", res.Outcome)
	}
	if !reflect.DeepEqual(ran, []string{"Run"}) {
		t.Errorf("actions ran = %v", ran)
	}
	if got := sink.last(); got != "activated Run" {
		t.Errorf("announcement = %q", got)
	}

	s.SelectNext()
	res := s.ActivateSelected()
	if res.Outcome != nav.OutcomeFailed || !errors.Is(res.Err, failing) {
		t.Errorf("activate Broken = %v/%v, want failed wrapping %v", res.Outcome, res.Err, failing)
	}
	if got := sink.last(); got != "failed: clipboard unavailable" {
		t.Errorf("announcement = %q", got)
	}

	s.SelectNext()
	if res := s.ActivateSelected(); res.Outcome != nav.OutcomeRejected {
		t.Errorf("activate Info = %v, want rejected", res.Outcome)
	}
}

func TestSessionSearch(t *testing.T) {
	labels := []string{"cat", "dog", "cow", "crow", "duck"}
	specs := make([]nav.Spec, len(labels))
	for i, l := range labels {
		specs[i] = leaf(l)
	}
	s, sink := openSession(t, specs, nav.Options{})
	s.SelectNext() // dog

	if res := s.HandleCharacter('c'); res.Outcome != nav.OutcomeMoved || currentLabel(s) != "cow" {
		t.Fatalf("typing c = %v on %q, want moved to cow", res.Outcome, currentLabel(s))
	}
	s.SelectNext()
	if currentLabel(s) != "crow" {
		t.Errorf("next match = %q, want crow", currentLabel(s))
	}
	s.SelectNext()
	if currentLabel(s) != "cat" {
		t.Errorf("next match wraps to %q, want cat", currentLabel(s))
	}
	s.SelectPrevious()
	if currentLabel(s) != "crow" {
		t.Errorf("previous match = %q, want crow", currentLabel(s))
	}

	if res := s.HandleCharacter('z'); res.Outcome != nav.OutcomeNoMatch {
		t.Errorf("typing z = %v, want no match", res.Outcome)
	}
	if got := sink.last(); got != "no match for cz" {
		t.Errorf("announcement = %q", got)
	}
	if s.SearchBuffer() != "c" || s.LastFailedSearch() != "cz" {
		t.Errorf("buffer/failed = %q/%q, want c/cz", s.SearchBuffer(), s.LastFailedSearch())
	}

	if res := s.ClearSearch(); res.Outcome != nav.OutcomeSearchCleared {
		t.Errorf("ClearSearch = %v", res.Outcome)
	}
	if s.SearchActive() {
		t.Error("search still active after ClearSearch")
	}
	s.SelectNext()
	if currentLabel(s) != "duck" {
		t.Errorf("plain next after clearing = %q, want duck", currentLabel(s))
	}
}

func TestSessionStructuralOpsClearSearch(t *testing.T) {
	s, _ := openSession(t, []nav.Spec{branch("alpha", false, leaf("a1")), leaf("beta")}, nav.Options{})
	s.HandleCharacter('a')
	if !s.SearchActive() {
		t.Fatal("search should be active")
	}
	s.Expand()
	if s.SearchActive() {
		t.Error("Expand should clear the search")
	}
	s.HandleCharacter('b')
	s.JumpToFirst(true)
	if s.SearchActive() {
		t.Error("Home should clear the search")
	}
}

func TestSessionDisableTypeahead(t *testing.T) {
	s, _ := openSession(t, fruitSpecs(), nav.Options{DisableTypeahead: true})
	if res := s.HandleCharacter('b'); res.Outcome != nav.OutcomeUnchanged {
		t.Errorf("HandleCharacter = %v, want unchanged", res.Outcome)
	}
	if currentLabel(s) != "Apple" {
		t.Errorf("cursor moved to %q", currentLabel(s))
	}
}

func TestSessionJumps(t *testing.T) {
	s, sink := openSession(t, []nav.Spec{
		branch("P", true, leaf("c1"), leaf("c2"), leaf("c3"), leaf("c4"), leaf("c5")),
		branch("Q", true, branch("R", true, leaf("deep"))),
	}, nav.Options{})

	selectLabel(t, s, "c4")
	if res := s.JumpToFirst(false); res.Outcome != nav.OutcomeMoved || currentLabel(s) != "c1" {
		t.Errorf("Home = %v on %q, want c1", res.Outcome, currentLabel(s))
	}
	if res := s.JumpToFirst(false); res.Outcome != nav.OutcomeAtTop {
		t.Errorf("Home at first sibling = %v, want top", res.Outcome)
	}
	if got := sink.last(); got != "top" {
		t.Errorf("announcement = %q", got)
	}
	if sink.lastCue() != nav.CueBoundary {
		t.Errorf("cue = %v, want boundary", sink.lastCue())
	}
	if res := s.JumpToLast(false); res.Outcome != nav.OutcomeMoved || currentLabel(s) != "c5" {
		t.Errorf("End = %v on %q, want c5", res.Outcome, currentLabel(s))
	}
	if res := s.JumpToLast(true); res.Outcome != nav.OutcomeMoved || currentLabel(s) != "deep" {
		t.Errorf("Ctrl+End = %v on %q, want deep", res.Outcome, currentLabel(s))
	}
	if res := s.JumpToLast(true); res.Outcome != nav.OutcomeAtBottom {
		t.Errorf("Ctrl+End at deepest = %v, want bottom", res.Outcome)
	}
	if res := s.JumpToFirst(true); res.Outcome != nav.OutcomeMoved || currentLabel(s) != "P" {
		t.Errorf("Ctrl+Home = %v on %q, want P", res.Outcome, currentLabel(s))
	}
}

func TestSessionsShareLevelTracker(t *testing.T) {
	levels := nav.NewLevelTracker()
	a, sinkA := openSession(t, fruitSpecs(), nav.Options{Levels: levels, Context: "left"})
	b, sinkB := openSession(t, fruitSpecs(), nav.Options{Levels: levels, Context: "right"})

	a.SelectNext()
	b.SelectNext()
	if got := sinkA.last(); got != "Apricot, 2 of 3, level 1" {
		t.Errorf("left announcement = %q", got)
	}
	if got := sinkB.last(); got != "Apricot, 2 of 3, level 1" {
		t.Errorf("right announcement = %q (contexts must not share depth)", got)
	}
}

func TestClosedSessionIsInert(t *testing.T) {
	s, _ := openSession(t, fruitSpecs(), nav.Options{})
	s.Close()
	s.Close()
	if s.IsOpen() {
		t.Fatal("IsOpen after Close")
	}
	for name, op := range map[string]func() nav.Result{
		"next":     s.SelectNext,
		"expand":   s.Expand,
		"collapse": s.Collapse,
		"activate": s.ActivateSelected,
		"refresh":  s.Refresh,
	} {
		if res := op(); !errors.Is(res.Err, nav.ErrNotOpen) {
			t.Errorf("%s on closed session: err = %v, want ErrNotOpen", name, res.Err)
		}
	}
	if _, ok := s.CurrentNode(); ok {
		t.Error("CurrentNode on closed session should fail")
	}
}

func TestEmptySession(t *testing.T) {
	s, sink := openSession(t, nil, nav.Options{})
	if res := s.SelectNext(); res.Outcome != nav.OutcomeUnchanged {
		t.Errorf("SelectNext on empty = %v, want unchanged", res.Outcome)
	}
	if res := s.Expand(); res.Outcome != nav.OutcomeUnchanged {
		t.Errorf("Expand on empty = %v, want unchanged", res.Outcome)
	}
	if len(sink.said) != 0 {
		t.Errorf("empty session announced %v", sink.said)
	}
	if got := s.Describe(); got != "empty" {
		t.Errorf("Describe = %q, want empty", got)
	}
}
