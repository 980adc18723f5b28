package matchmaking

import (
	"github.com/mauv0809/fieldmatch/internal/booking"
	"github.com/mauv0809/fieldmatch/internal/facility"
	"github.com/mauv0809/fieldmatch/internal/invitation"
)

// Policy describes matchmaking: the slot count is fixed at creation and the
// creator's slot is counted in it, so conversion tolerates one missing
// player. The resulting shared booking is priced later.
var Policy = invitation.Policy{
	Kind:             invitation.KindMatchmaking,
	Noun:             "matchmaking",
	Capacity:         func(inv *invitation.Invitation) int { return inv.AvailableSlots },
	ReopenOnReject:   invitation.ReopenNever,
	ReopenOnRemove:   invitation.ReopenAlways,
	RequiredAccepted: func(inv *invitation.Invitation) int { return inv.AvailableSlots - 1 },
	ConvertFrom:      []invitation.Status{invitation.StatusOpen, invitation.StatusFull},
	ConvertedStatus:  invitation.StatusCompleted,
	Draft:            draft,
}

func draft(inv *invitation.Invitation, _ *facility.Field, accepted []string) booking.Draft {
	joinDeadline := inv.StartTime
	return booking.Draft{
		FieldID:     inv.FieldID,
		OrganizerID: inv.CreatedBy,
		StartTime:   inv.StartTime,
		EndTime:     inv.EndTime,
		Type:        booking.TypeShared,
		Status:      booking.StatusPending,
		Members:     accepted,
		// The slots are for the others; the creator takes one more.
		MaxParticipants: inv.AvailableSlots + 1,
		JoinDeadline:    &joinDeadline,
		Notes:           inv.Description,
	}
}
