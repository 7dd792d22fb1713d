package nav_test

import (
	"testing"

	"github.com/vanderheijden86/readtree/pkg/nav"
	"github.com/vanderheijden86/readtree/pkg/testutil"
)

func nestedFive() *nav.Tree {
	return nav.NewTree([]nav.Spec{
		leaf("before"),
		branch("parent", true, leaf("c1"), leaf("c2"), leaf("c3"), leaf("c4"), leaf("c5")),
		branch("after", true, branch("inner", true, leaf("x"), branch("last", true, leaf("deepest")))),
	})
}

func TestHomeTargetsFirstSibling(t *testing.T) {
	tree := nestedFive()
	c4 := findID(t, tree, "c4")
	c1 := findID(t, tree, "c1")

	target, out := tree.HomeTarget(c4, false)
	if target != c1 || out != nav.OutcomeMoved {
		t.Errorf("Home from c4 = %d, %v; want %d, moved", target, out, c1)
	}
	if _, out := tree.HomeTarget(c1, false); out != nav.OutcomeAtTop {
		t.Errorf("Home from c1 = %v, want top", out)
	}
}

func TestHomeAbsoluteTargetsFirstVisible(t *testing.T) {
	tree := nestedFive()
	before := findID(t, tree, "before")

	target, out := tree.HomeTarget(findID(t, tree, "c3"), true)
	if target != before || out != nav.OutcomeMoved {
		t.Errorf("Ctrl+Home = %d, %v; want %d, moved", target, out, before)
	}
	if _, out := tree.HomeTarget(before, true); out != nav.OutcomeAtTop {
		t.Errorf("Ctrl+Home at first node = %v, want top", out)
	}
}

func TestEndTargets(t *testing.T) {
	tree := nestedFive()
	c2 := findID(t, tree, "c2")
	c5 := findID(t, tree, "c5")
	deepest := findID(t, tree, "deepest")

	if target, out := tree.EndTarget(c2, false); target != c5 || out != nav.OutcomeMoved {
		t.Errorf("End from c2 = %d, %v; want %d, moved", target, out, c5)
	}
	if _, out := tree.EndTarget(c5, false); out != nav.OutcomeAtBottom {
		t.Errorf("End from c5 = %v, want bottom", out)
	}
	if target, out := tree.EndTarget(c2, true); target != deepest || out != nav.OutcomeMoved {
		t.Errorf("Ctrl+End = %d, %v; want deepest %d, moved", target, out, deepest)
	}
	if _, out := tree.EndTarget(deepest, true); out != nav.OutcomeAtBottom {
		t.Errorf("Ctrl+End at deepest = %v, want bottom", out)
	}

	// A collapsed last branch stops the descent.
	tree.Close(findID(t, tree, "last"))
	if target, _ := tree.EndTarget(c2, true); target != findID(t, tree, "last") {
		t.Errorf("Ctrl+End with collapsed last branch = %d, want last", target)
	}
}

func TestEndAbsoluteIsLastVisible(t *testing.T) {
	tree := nav.NewTree(testutil.NewDefault().Outline())
	vis := tree.Visible()
	target, _ := tree.EndTarget(vis[0], true)
	if target != vis[len(vis)-1] {
		t.Errorf("Ctrl+End = %d, want last visible %d", target, vis[len(vis)-1])
	}
}

func TestLevelTracker(t *testing.T) {
	l := nav.NewLevelTracker()
	if got := l.LevelSuffix("a", 0); got != "level 1" {
		t.Errorf("first suffix = %q, want level 1", got)
	}
	if got := l.LevelSuffix("a", 0); got != "" {
		t.Errorf("unchanged depth = %q, want empty", got)
	}
	if got := l.LevelSuffix("a", 2); got != "level 3" {
		t.Errorf("changed depth = %q, want level 3", got)
	}
	if got := l.LevelSuffix("b", 2); got != "level 3" {
		t.Errorf("other context = %q, want level 3 (contexts are independent)", got)
	}
	l.ResetLevel("a")
	if got := l.LevelSuffix("a", 2); got != "level 3" {
		t.Errorf("after reset = %q, want level 3", got)
	}
}
