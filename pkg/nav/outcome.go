package nav

import "errors"

var (
	// ErrNotOpen is returned when a session operation needs an open tree.
	ErrNotOpen = errors.New("nav: session is not open")
	// ErrNoBuilder is returned by Open and Refresh without a root builder.
	ErrNoBuilder = errors.New("nav: no root builder")
)

// Outcome is the signalled result of a navigation operation. None of these
// are errors; callers turn them into cues and short messages.
type Outcome int

const (
	OutcomeMoved                Outcome = iota // cursor landed on a (possibly new) node
	OutcomeUnchanged                           // nothing to do, e.g. empty sequence
	OutcomeExpanded                            // node opened
	OutcomeCollapsed                           // node closed
	OutcomeRejected                            // expand on a leaf, collapse at top level
	OutcomeNothingToShow                       // lazy build produced no children
	OutcomeAlreadyExpanded                     // expand siblings found nothing closed
	OutcomeNoExpandableSiblings                // expand siblings found nothing to open
	OutcomeAtTop                               // Home at first sibling or first node
	OutcomeAtBottom                            // End at last sibling or last node
	OutcomeNoMatch                             // typeahead character rejected
	OutcomeSearchCleared                       // search buffer emptied
	OutcomeActivated                           // activation handler ran
	OutcomeFailed                              // activation handler returned an error
	OutcomeRefreshed                           // tree rebuilt and cursor relocated
)

var outcomeNames = [...]string{
	OutcomeMoved:                "moved",
	OutcomeUnchanged:            "unchanged",
	OutcomeExpanded:             "expanded",
	OutcomeCollapsed:            "collapsed",
	OutcomeRejected:             "rejected",
	OutcomeNothingToShow:        "nothing to show",
	OutcomeAlreadyExpanded:      "already expanded",
	OutcomeNoExpandableSiblings: "no expandable siblings",
	OutcomeAtTop:                "top",
	OutcomeAtBottom:             "bottom",
	OutcomeNoMatch:              "no match",
	OutcomeSearchCleared:        "search cleared",
	OutcomeActivated:            "activated",
	OutcomeFailed:               "failed",
	OutcomeRefreshed:            "refreshed",
}

func (o Outcome) String() string {
	if o < 0 || int(o) >= len(outcomeNames) {
		return "unknown"
	}
	return outcomeNames[o]
}

// Result carries an Outcome plus the data some outcomes need.
type Result struct {
	Outcome Outcome
	// Count is the number of nodes expanded by ExpandAllSiblings.
	Count int
	// Query is the rejected search text for OutcomeNoMatch.
	Query string
	// Err is set for OutcomeFailed.
	Err error
}

// Cue is a short non-verbal signal for the caller's audio layer.
type Cue int

const (
	CueNone Cue = iota
	CueMove
	CueExpand
	CueCollapse
	CueReject
	CueBoundary
	CueActivate
	CueRefresh
)

func (c Cue) String() string {
	switch c {
	case CueMove:
		return "move"
	case CueExpand:
		return "expand"
	case CueCollapse:
		return "collapse"
	case CueReject:
		return "reject"
	case CueBoundary:
		return "boundary"
	case CueActivate:
		return "activate"
	case CueRefresh:
		return "refresh"
	default:
		return "none"
	}
}

// CueFor maps an outcome to the cue a caller would normally play.
func CueFor(o Outcome) Cue {
	switch o {
	case OutcomeMoved:
		return CueMove
	case OutcomeExpanded:
		return CueExpand
	case OutcomeCollapsed:
		return CueCollapse
	case OutcomeRejected, OutcomeNothingToShow, OutcomeNoMatch, OutcomeFailed,
		OutcomeNoExpandableSiblings, OutcomeAlreadyExpanded:
		return CueReject
	case OutcomeAtTop, OutcomeAtBottom:
		return CueBoundary
	case OutcomeActivated:
		return CueActivate
	case OutcomeRefreshed:
		return CueRefresh
	default:
		return CueNone
	}
}

// Sink receives everything the engine wants said or played. The engine never
// performs I/O itself.
type Sink interface {
	Announce(text string)
	PlayCue(cue Cue)
}

// DiscardSink drops all output.
type DiscardSink struct{}

func (DiscardSink) Announce(string) {}
func (DiscardSink) PlayCue(Cue)     {}
