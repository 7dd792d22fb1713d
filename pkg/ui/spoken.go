package ui

import (
	"sync"

	"github.com/vanderheijden86/readtree/pkg/nav"
)

const spokenLogSize = 50

// SpokenLog is the nav.Sink of the terminal screen. It keeps the most recent
// announcements for the status line and forwards them to an optional
// external sink, such as a screen reader bridge.
type SpokenLog struct {
	mu      sync.Mutex
	lines   []string
	lastCue nav.Cue
	forward nav.Sink
}

// NewSpokenLog returns an empty log. forward may be nil.
func NewSpokenLog(forward nav.Sink) *SpokenLog {
	return &SpokenLog{forward: forward}
}

// Announce implements nav.Sink.
func (l *SpokenLog) Announce(text string) {
	l.mu.Lock()
	l.lines = append(l.lines, text)
	if len(l.lines) > spokenLogSize {
		l.lines = l.lines[len(l.lines)-spokenLogSize:]
	}
	l.mu.Unlock()
	if l.forward != nil {
		l.forward.Announce(text)
	}
}

// PlayCue implements nav.Sink. The terminal has no audio, so the cue is only
// recorded for the status line marker.
func (l *SpokenLog) PlayCue(c nav.Cue) {
	l.mu.Lock()
	l.lastCue = c
	l.mu.Unlock()
	if l.forward != nil {
		l.forward.PlayCue(c)
	}
}

// Last returns the newest announcement.
func (l *SpokenLog) Last() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.lines) == 0 {
		return ""
	}
	return l.lines[len(l.lines)-1]
}

// LastCue returns the newest cue.
func (l *SpokenLog) LastCue() nav.Cue {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lastCue
}

// Lines returns a copy of the kept announcements, oldest first.
func (l *SpokenLog) Lines() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.lines...)
}
