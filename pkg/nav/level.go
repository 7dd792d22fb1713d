package nav

import "fmt"

// LevelTracker remembers the last depth announced per context so a level is
// only spoken when it changes. Contexts keep independent trees from
// interfering with each other.
type LevelTracker struct {
	last map[string]int
}

// NewLevelTracker returns an empty tracker.
func NewLevelTracker() *LevelTracker {
	return &LevelTracker{last: make(map[string]int)}
}

// LevelSuffix returns "level N" (N = depth+1) when depth differs from the
// last value stored for context, and "" otherwise. The stored value is
// updated either way.
func (l *LevelTracker) LevelSuffix(context string, depth int) string {
	if l.last == nil {
		l.last = make(map[string]int)
	}
	prev, seen := l.last[context]
	l.last[context] = depth
	if seen && prev == depth {
		return ""
	}
	return fmt.Sprintf("level %d", depth+1)
}

// ResetLevel forgets the stored depth for context.
func (l *LevelTracker) ResetLevel(context string) {
	delete(l.last, context)
}
