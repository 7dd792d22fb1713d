package nav

// HomeTarget resolves Home for the node id. The plain variant targets the
// first sibling under the same parent; the absolute variant targets the first
// visible node. OutcomeAtTop means id already is the target.
func (t *Tree) HomeTarget(id NodeID, absolute bool) (NodeID, Outcome) {
	var target NodeID
	if absolute {
		vis := t.Visible()
		if len(vis) == 0 {
			return NoNode, OutcomeUnchanged
		}
		target = vis[0]
	} else {
		sibs := t.Siblings(id)
		if len(sibs) == 0 {
			return NoNode, OutcomeUnchanged
		}
		target = sibs[0]
	}
	if target == id {
		return id, OutcomeAtTop
	}
	return target, OutcomeMoved
}

// EndTarget resolves End for the node id. The plain variant targets the last
// sibling; the absolute variant targets the last visible descendant of the
// last root, descending through expanded last children.
func (t *Tree) EndTarget(id NodeID, absolute bool) (NodeID, Outcome) {
	var target NodeID
	if absolute {
		if len(t.roots) == 0 {
			return NoNode, OutcomeUnchanged
		}
		target = t.LastVisibleDescendant(t.roots[len(t.roots)-1])
	} else {
		sibs := t.Siblings(id)
		if len(sibs) == 0 {
			return NoNode, OutcomeUnchanged
		}
		target = sibs[len(sibs)-1]
	}
	if target == id {
		return id, OutcomeAtBottom
	}
	return target, OutcomeMoved
}
