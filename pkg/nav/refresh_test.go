package nav_test

import (
	"errors"
	"testing"

	"pgregory.net/rapid"

	"github.com/vanderheijden86/readtree/pkg/nav"
	"github.com/vanderheijden86/readtree/pkg/testutil"
)

// swappable is a root builder whose output can be replaced between refreshes.
type swappable struct {
	specs []nav.Spec
	err   error
}

func (b *swappable) build() ([]nav.Spec, error) {
	if b.err != nil {
		return nil, b.err
	}
	return b.specs, nil
}

// fataler is satisfied by both *testing.T and *rapid.T.
type fataler interface {
	Fatalf(format string, args ...any)
}

func openSwappable(t fataler, specs []nav.Spec, opts nav.Options) (*nav.Session, *swappable) {
	b := &swappable{specs: specs}
	s, err := nav.Open(b.build, opts)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return s, b
}

// TestRefreshKeepsPayload verifies that when the selected item still exists
// the cursor lands on it, even if every sibling list was reordered.
func TestRefreshKeepsPayload(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		specs := testutil.RapidOutline(3, 3).Draw(t, "outline")
		s, b := openSwappable(t, specs, nav.Options{})

		_, total := s.CurrentPosition()
		steps := rapid.IntRange(0, total-1).Draw(t, "steps")
		for i := 0; i < steps; i++ {
			s.SelectNext()
		}
		before, _ := s.CurrentNode()

		b.specs = testutil.Reversed(specs)
		if res := s.Refresh(); res.Outcome != nav.OutcomeRefreshed {
			t.Fatalf("Refresh = %v", res.Outcome)
		}
		after, ok := s.CurrentNode()
		if !ok || after.Payload != before.Payload {
			t.Fatalf("cursor on %q after refresh, want %q", after.Label, before.Label)
		}
	})
}

// TestRefreshRemovedItemStaysInRange verifies the cursor is valid when the
// selected item disappears.
func TestRefreshRemovedItemStaysInRange(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		specs := testutil.RapidOutline(3, 3).Draw(t, "outline")
		fallback := rapid.SampledFrom([]nav.Fallback{nav.FallbackIndex, nav.FallbackSibling}).Draw(t, "fallback")
		s, b := openSwappable(t, specs, nav.Options{Fallback: fallback})

		_, total := s.CurrentPosition()
		steps := rapid.IntRange(0, total-1).Draw(t, "steps")
		for i := 0; i < steps; i++ {
			s.SelectNext()
		}
		gone, _ := s.CurrentNode()

		b.specs = testutil.Without(specs, gone.Label)
		s.Refresh()

		idx, total := s.CurrentPosition()
		if total == 0 {
			if idx != 0 {
				t.Fatalf("empty tree with cursor %d", idx)
			}
			return
		}
		if idx < 0 || idx >= total {
			t.Fatalf("cursor %d out of range [0, %d)", idx, total)
		}
		if n, _ := s.CurrentNode(); n.Label == gone.Label {
			t.Fatalf("cursor on removed node %q", gone.Label)
		}
	})
}

func TestRefreshMatchesLabelAndParent(t *testing.T) {
	build := func() []nav.Spec {
		// Fresh specs without payloads, so only labels can match.
		return []nav.Spec{
			branch("Fruit", true, leaf("Apple"), leaf("Pear")),
			branch("Trees", true, leaf("Apple"), leaf("Oak")),
		}
	}
	s, b := openSwappable(t, build(), nav.Options{})
	selectLabel(t, s, "Oak")
	s.SelectPrevious() // Trees > Apple

	next := build()
	next[0].Children = append([]nav.Spec{leaf("Banana")}, next[0].Children...)
	b.specs = next
	s.Refresh()

	n, _ := s.CurrentNode()
	tree := s.Tree()
	parent, _ := tree.Node(n.Parent)
	if n.Label != "Apple" || parent.Label != "Trees" {
		t.Errorf("cursor on %q under %q, want Apple under Trees", n.Label, parent.Label)
	}
}

func TestRefreshRestoresExpansion(t *testing.T) {
	lazyKids := func(nav.Node) ([]nav.Spec, error) {
		return []nav.Spec{leaf("k1"), leaf("k2"), branch("k3", false, leaf("k3a"))}, nil
	}
	build := func() []nav.Spec {
		return []nav.Spec{
			{Label: "lazy", Lazy: lazyKids},
			branch("open", true, leaf("o1")),
		}
	}
	s, b := openSwappable(t, build(), nav.Options{})
	s.Expand()
	selectLabel(t, s, "k3")
	s.Expand()
	selectLabel(t, s, "open")
	s.Collapse()
	selectLabel(t, s, "k2")

	b.specs = build()
	if res := s.Refresh(); res.Outcome != nav.OutcomeRefreshed {
		t.Fatalf("Refresh = %v", res.Outcome)
	}

	want := []string{"lazy", "k1", "k2", "k3", "k3a", "open"}
	got := s.Tree().Labels(nil)
	if len(got) != len(want) {
		t.Fatalf("visible = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("visible = %v, want %v", got, want)
		}
	}
	if currentLabel(s) != "k2" {
		t.Errorf("cursor on %q, want k2", currentLabel(s))
	}
}

func TestRefreshCollapsesNewNodes(t *testing.T) {
	s, b := openSwappable(t, []nav.Spec{leaf("old")}, nav.Options{})
	b.specs = []nav.Spec{leaf("old"), branch("new", true, leaf("child"))}
	s.Refresh()
	if got := s.Tree().VisibleLen(); got != 2 {
		t.Errorf("VisibleLen = %d, want 2 (unknown nodes start collapsed)", got)
	}
}

func TestRefreshFallbacks(t *testing.T) {
	build := func(children ...string) []nav.Spec {
		var kids []nav.Spec
		for _, c := range children {
			kids = append(kids, leaf(c))
		}
		return []nav.Spec{branch("P", true, kids...), leaf("Q")}
	}
	tests := []struct {
		fallback nav.Fallback
		want     string
	}{
		{nav.FallbackIndex, "Q"},
		{nav.FallbackSibling, "c"},
	}
	for _, tt := range tests {
		t.Run(tt.fallback.String(), func(t *testing.T) {
			s, b := openSwappable(t, build("a", "b", "c"), nav.Options{Fallback: tt.fallback})
			selectLabel(t, s, "b")

			b.specs = build("c")
			s.Refresh()
			if currentLabel(s) != tt.want {
				t.Errorf("cursor on %q, want %q", currentLabel(s), tt.want)
			}
		})
	}
}

func TestRefreshSiblingFallbackToParent(t *testing.T) {
	s, b := openSwappable(t, []nav.Spec{
		leaf("top"),
		branch("P", true, leaf("only")),
	}, nav.Options{Fallback: nav.FallbackSibling})
	selectLabel(t, s, "only")

	b.specs = []nav.Spec{leaf("top"), {Label: "P", Lazy: func(nav.Node) ([]nav.Spec, error) { return nil, nil }}}
	s.Refresh()
	if currentLabel(s) != "P" {
		t.Errorf("cursor on %q, want parent P", currentLabel(s))
	}
}

func TestRefreshFailureKeepsTree(t *testing.T) {
	s, b := openSwappable(t, fruitSpecs(), nav.Options{})
	s.SelectNext()
	tree := s.Tree()

	boom := errors.New("disk gone")
	b.err = boom
	res := s.Refresh()
	if res.Outcome != nav.OutcomeFailed || !errors.Is(res.Err, boom) {
		t.Fatalf("Refresh = %v/%v, want failed wrapping %v", res.Outcome, res.Err, boom)
	}
	if s.Tree() != tree {
		t.Error("failed refresh replaced the tree")
	}
	if currentLabel(s) != "Apricot" {
		t.Errorf("cursor on %q, want Apricot", currentLabel(s))
	}
}

func TestRefreshClearsSearch(t *testing.T) {
	s, _ := openSwappable(t, fruitSpecs(), nav.Options{})
	s.HandleCharacter('b')
	s.Refresh()
	if s.SearchActive() {
		t.Error("search survived refresh")
	}
	if currentLabel(s) != "Banana" {
		t.Errorf("cursor on %q, want Banana", currentLabel(s))
	}
}

func TestParseFallback(t *testing.T) {
	for in, want := range map[string]nav.Fallback{
		"":         nav.FallbackIndex,
		"index":    nav.FallbackIndex,
		" Sibling": nav.FallbackSibling,
	} {
		got, err := nav.ParseFallback(in)
		if err != nil || got != want {
			t.Errorf("ParseFallback(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := nav.ParseFallback("nearest"); err == nil {
		t.Error("expected error for unknown fallback")
	}
}

// TestRefreshUncomparablePayload verifies payloads that cannot be compared
// with == fall through to label matching instead of failing the refresh.
func TestRefreshUncomparablePayload(t *testing.T) {
	type boxed struct{ X any }
	specs := []nav.Spec{
		{Label: "A", Payload: boxed{X: []int{1}}},
		{Label: "B", Payload: boxed{X: []int{2}}},
	}
	s, _ := openSwappable(t, specs, nav.Options{})
	s.SelectNext()

	if res := s.Refresh(); res.Outcome != nav.OutcomeRefreshed {
		t.Fatalf("Refresh = %v", res.Outcome)
	}
	if n, ok := s.CurrentNode(); !ok || n.Label != "B" {
		t.Errorf("cursor on %q after refresh, want B", n.Label)
	}
}
