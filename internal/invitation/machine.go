package invitation

import "slices"

// transitions lists the legal status changes per kind.
var transitions = map[Kind]map[Status][]Status{
	KindEvent: {
		StatusOpen:      {StatusFull, StatusConfirmed, StatusCancelled},
		StatusFull:      {StatusOpen, StatusConfirmed, StatusCancelled},
		StatusConfirmed: {StatusCompleted},
	},
	KindMatchmaking: {
		StatusOpen: {StatusFull, StatusCancelled, StatusCompleted},
		StatusFull: {StatusOpen, StatusCompleted},
	},
}

// CanTransition reports whether an invitation of the given kind may move from
// one status to another.
func CanTransition(kind Kind, from, to Status) bool {
	return slices.Contains(transitions[kind][from], to)
}

// TransitionTo moves the invitation to a new status. Staying in the current
// status is a no-op.
func (inv *Invitation) TransitionTo(to Status) error {
	if inv.Status == to {
		return nil
	}
	if !CanTransition(inv.Kind, inv.Status, to) {
		return Validation("cannot move %s from %s to %s", inv.Kind, inv.Status, to)
	}
	inv.Status = to
	return nil
}
