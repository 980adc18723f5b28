package invitation

import (
	"slices"
	"time"
)

// Ledger applies roster changes to an invitation. Every mutation recounts the
// accepted players, so AvailableSlots is never edited by hand.
type Ledger struct {
	inv    *Invitation
	policy Policy
}

// NewLedger wraps an invitation with its kind's policy.
func NewLedger(inv *Invitation, policy Policy) *Ledger {
	return &Ledger{inv: inv, policy: policy}
}

// Remaining is the number of players that can still be accepted.
func (l *Ledger) Remaining() int {
	return max(l.policy.Capacity(l.inv)-l.inv.AcceptedCount(), 0)
}

// Recount refreshes AvailableSlots after the capacity or roster changed. It
// fails when more players are accepted than the capacity allows.
func (l *Ledger) Recount() error {
	if l.policy.Capacity(l.inv) < l.inv.AcceptedCount() {
		return CapacityExceeded("%d players are already accepted, more than the %s can hold", l.inv.AcceptedCount(), l.policy.Noun)
	}
	l.sync()
	return nil
}

func (l *Ledger) sync() {
	if l.policy.TrackSlots {
		l.inv.AvailableSlots = l.Remaining()
	}
}

func (l *Ledger) index(userID string) int {
	return slices.IndexFunc(l.inv.InterestedPlayers, func(p Participant) bool {
		return p.UserID == userID
	})
}

// AddInterest appends userID as a pending player.
func (l *Ledger) AddInterest(userID, note string, at time.Time) error {
	if i := l.index(userID); i >= 0 {
		return Conflict("%s", l.interestConflict(l.inv.InterestedPlayers[i].Status))
	}
	if l.policy.InterestChecksCapacity && l.Remaining() <= 0 {
		return CapacityExceeded("this %s is already full", l.policy.Noun)
	}
	l.inv.InterestedPlayers = append(l.inv.InterestedPlayers, Participant{
		UserID:      userID,
		Status:      ParticipantPending,
		RequestedAt: at,
		Note:        note,
	})
	return nil
}

func (l *Ledger) interestConflict(existing ParticipantStatus) string {
	if !l.policy.DetailedConflicts {
		return "you have already shown interest in this " + l.policy.Noun
	}
	switch existing {
	case ParticipantAccepted:
		return "you have already been accepted to this " + l.policy.Noun
	case ParticipantRejected:
		return "your request to join this " + l.policy.Noun + " was rejected"
	default:
		return "you have already requested to join this " + l.policy.Noun
	}
}

// Accept marks a listed player as accepted.
func (l *Ledger) Accept(userID string) error {
	i := l.index(userID)
	if i < 0 {
		return NotFound("player has not shown interest in this %s", l.policy.Noun)
	}
	p := &l.inv.InterestedPlayers[i]
	if p.Status == ParticipantAccepted {
		return Conflict("player has already been accepted")
	}
	if l.Remaining() <= 0 {
		return CapacityExceeded("this %s is already full", l.policy.Noun)
	}
	p.Status = ParticipantAccepted
	l.sync()
	return nil
}

// Reject marks a listed player as rejected. It reports whether the player
// had been accepted and so freed a slot.
func (l *Ledger) Reject(userID string) (bool, error) {
	i := l.index(userID)
	if i < 0 {
		return false, NotFound("player has not shown interest in this %s", l.policy.Noun)
	}
	p := &l.inv.InterestedPlayers[i]
	if p.Status == ParticipantRejected {
		return false, Conflict("player has already been rejected")
	}
	refunded := p.Status == ParticipantAccepted
	p.Status = ParticipantRejected
	l.sync()
	return refunded, nil
}

// Remove deletes a player from the roster. It reports whether the player had
// been accepted and so freed a slot.
func (l *Ledger) Remove(userID string) (bool, error) {
	i := l.index(userID)
	if i < 0 {
		return false, NotFound("player is not part of this %s", l.policy.Noun)
	}
	refunded := l.inv.InterestedPlayers[i].Status == ParticipantAccepted
	l.inv.InterestedPlayers = slices.Delete(l.inv.InterestedPlayers, i, i+1)
	l.sync()
	return refunded, nil
}
