package nav

import (
	"fmt"
	"strings"
)

// DescribeOptions controls what goes into a node announcement.
type DescribeOptions struct {
	Values   bool // append the secondary value
	Position bool // append "i of n" among siblings
	Level    bool // append "level N" when the depth changed
	State    bool // append expanded/collapsed for expandable nodes
}

// DefaultDescribeOptions announces everything.
func DefaultDescribeOptions() DescribeOptions {
	return DescribeOptions{Values: true, Position: true, Level: true, State: true}
}

// describe builds the sentence for node id. The level suffix is consumed from
// levels, so describing the same depth twice only mentions it once.
func describe(t *Tree, id NodeID, opts DescribeOptions, levels *LevelTracker, context string) string {
	n, ok := t.Node(id)
	if !ok {
		return "empty"
	}
	parts := []string{n.Label}
	if opts.Values && n.Value != "" {
		parts = append(parts, n.Value)
	}
	if opts.State && n.Expandable {
		if n.Expanded {
			parts = append(parts, "expanded")
		} else {
			parts = append(parts, "collapsed")
		}
	}
	if opts.Position {
		if pos := FormatPosition(t.SiblingIndex(id), len(t.Siblings(id))); pos != "" {
			parts = append(parts, pos)
		}
	}
	if opts.Level && levels != nil {
		if lvl := levels.LevelSuffix(context, n.Depth); lvl != "" {
			parts = append(parts, lvl)
		}
	}
	return strings.Join(parts, ", ")
}

// outcomeMessage is the short phrase announced for outcomes that do not move
// the cursor.
func outcomeMessage(res Result) string {
	switch res.Outcome {
	case OutcomeNoMatch:
		return fmt.Sprintf("no match for %s", res.Query)
	case OutcomeFailed:
		if res.Err != nil {
			return fmt.Sprintf("failed: %v", res.Err)
		}
		return "failed"
	case OutcomeRejected:
		return "not available"
	case OutcomeUnchanged:
		return ""
	default:
		return res.Outcome.String()
	}
}
