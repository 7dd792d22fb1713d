package nav

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"

	"github.com/vanderheijden86/readtree/pkg/metrics"
)

// Typeahead is an incremental, case-insensitive prefix search over a list of
// labels. It works on indices only, so it does not care whether the labels
// came from a flat list or a flattened tree.
//
// The buffer is never left with zero matches: a character that would empty
// the match list is rejected and remembered in LastFailed instead.
type Typeahead struct {
	buffer     string
	matches    []int
	pos        int
	lastFailed string

	fold  cases.Caser
	ready bool
}

// Active reports whether a search is in progress.
func (s *Typeahead) Active() bool { return s.buffer != "" }

// Buffer returns the committed search text.
func (s *Typeahead) Buffer() string { return s.buffer }

// LastFailed returns the last rejected search text. It survives Clear.
func (s *Typeahead) LastFailed() string { return s.lastFailed }

// Position returns the index into Matches of the current match.
func (s *Typeahead) Position() int { return s.pos }

// Matches returns a copy of the matching indices in visible order.
func (s *Typeahead) Matches() []int {
	out := make([]int, len(s.matches))
	copy(out, s.matches)
	return out
}

// Clear drops the buffer and matches. LastFailed is kept.
func (s *Typeahead) Clear() {
	s.buffer = ""
	s.matches = nil
	s.pos = 0
}

// OnCharacter appends c to the buffer if at least one label still matches,
// and returns the index the cursor should jump to: the first match at or
// after cursor, wrapping to the first match.
func (s *Typeahead) OnCharacter(c rune, labels []string, cursor int) (int, Result) {
	candidate := s.buffer + string(c)
	matches := s.find(candidate, labels)
	if len(matches) == 0 {
		s.lastFailed = candidate
		return cursor, Result{Outcome: OutcomeNoMatch, Query: candidate}
	}
	s.buffer = candidate
	s.matches = matches
	s.lastFailed = ""
	s.pos = atOrAfter(matches, cursor)
	return matches[s.pos], Result{Outcome: OutcomeMoved, Query: candidate}
}

// OnBackspace removes the last character. An emptied buffer clears the
// search; otherwise matches are recomputed and the cursor repositioned.
func (s *Typeahead) OnBackspace(labels []string, cursor int) (int, Result) {
	if s.buffer == "" {
		return cursor, Result{Outcome: OutcomeUnchanged}
	}
	runes := []rune(s.buffer)
	s.buffer = string(runes[:len(runes)-1])
	if s.buffer == "" {
		s.Clear()
		return cursor, Result{Outcome: OutcomeSearchCleared}
	}

	matches := s.find(s.buffer, labels)
	if len(matches) == 0 {
		// The labels changed underneath us; nothing is left to narrow.
		s.Clear()
		return cursor, Result{Outcome: OutcomeSearchCleared}
	}
	s.matches = matches
	s.pos = atOrAfter(matches, cursor)
	return matches[s.pos], Result{Outcome: OutcomeMoved, Query: s.buffer}
}

// NextMatch moves to the following match, wrapping at the end. When current
// is not itself a match, the first match after it is chosen.
func (s *Typeahead) NextMatch(current int) (int, bool) {
	n := len(s.matches)
	if n == 0 {
		return current, false
	}
	if p := s.positionOf(current); p >= 0 {
		s.pos = (p + 1) % n
	} else {
		s.pos = sort.SearchInts(s.matches, current+1) % n
	}
	return s.matches[s.pos], true
}

// PreviousMatch moves to the preceding match, wrapping at the start.
func (s *Typeahead) PreviousMatch(current int) (int, bool) {
	n := len(s.matches)
	if n == 0 {
		return current, false
	}
	if p := s.positionOf(current); p >= 0 {
		s.pos = (p - 1 + n) % n
	} else {
		// Last match strictly before current.
		s.pos = (sort.SearchInts(s.matches, current) - 1 + n) % n
	}
	return s.matches[s.pos], true
}

func (s *Typeahead) positionOf(index int) int {
	p := sort.SearchInts(s.matches, index)
	if p < len(s.matches) && s.matches[p] == index {
		return p
	}
	return -1
}

// find returns the sorted indices of labels starting with query, ignoring case.
func (s *Typeahead) find(query string, labels []string) []int {
	defer metrics.Timer(metrics.Typeahead)()
	prefix := s.normalize(query)
	var out []int
	for i, l := range labels {
		if strings.HasPrefix(s.normalize(l), prefix) {
			out = append(out, i)
		}
	}
	return out
}

func (s *Typeahead) normalize(str string) string {
	if !s.ready {
		s.fold = cases.Fold()
		s.ready = true
	}
	return s.fold.String(str)
}

// atOrAfter returns the position in matches of the first index >= cursor,
// or 0 when every match lies before it.
func atOrAfter(matches []int, cursor int) int {
	p := sort.SearchInts(matches, cursor)
	if p >= len(matches) {
		return 0
	}
	return p
}
