package invitation

import (
	"github.com/mauv0809/fieldmatch/internal/booking"
	"github.com/mauv0809/fieldmatch/internal/facility"
)

// Reopen says when a full invitation goes back to open after a player leaves
// its roster.
type Reopen int

const (
	ReopenNever Reopen = iota
	// ReopenOnRefund reopens only when an accepted player freed a slot.
	ReopenOnRefund
	ReopenAlways
)

func (r Reopen) applies(refunded bool) bool {
	switch r {
	case ReopenAlways:
		return true
	case ReopenOnRefund:
		return refunded
	}
	return false
}

// Policy holds everything that differs between events and matchmaking.
type Policy struct {
	Kind Kind
	// Noun names the invitation in user facing messages.
	Noun string

	// Capacity is how many players besides the organizer can be accepted.
	Capacity func(inv *Invitation) int
	// TrackSlots keeps AvailableSlots equal to the remaining capacity.
	TrackSlots bool

	// DetailedConflicts words duplicate interest after the existing entry.
	DetailedConflicts bool
	// InterestClosesAtDeadline rejects interest after the deadline.
	InterestClosesAtDeadline bool
	// InterestChecksCapacity rejects interest once no slot is left.
	InterestChecksCapacity bool

	ReopenOnReject Reopen
	ReopenOnRemove Reopen

	// RequiredAccepted is the number of accepted players needed to convert.
	RequiredAccepted func(inv *Invitation) int
	// ConvertFrom lists the statuses a conversion may start from.
	ConvertFrom []Status
	// ConvertedStatus is the invitation status after conversion.
	ConvertedStatus Status
	// Draft describes the booking for a converting invitation.
	Draft func(inv *Invitation, field *facility.Field, accepted []string) booking.Draft
}
