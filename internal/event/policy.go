package event

import (
	"fmt"

	"github.com/mauv0809/fieldmatch/internal/booking"
	"github.com/mauv0809/fieldmatch/internal/facility"
	"github.com/mauv0809/fieldmatch/internal/invitation"
	"github.com/mauv0809/fieldmatch/internal/pricing"
)

// Policy describes events: the organizer plays, so MaxPlayers-1 others can
// be accepted, and conversion produces a confirmed, priced booking.
var Policy = invitation.Policy{
	Kind:                     invitation.KindEvent,
	Noun:                     "event",
	Capacity:                 func(inv *invitation.Invitation) int { return inv.MaxPlayers - 1 },
	TrackSlots:               true,
	DetailedConflicts:        true,
	InterestClosesAtDeadline: true,
	InterestChecksCapacity:   true,
	ReopenOnReject:           invitation.ReopenOnRefund,
	ReopenOnRemove:           invitation.ReopenOnRefund,
	RequiredAccepted:         func(inv *invitation.Invitation) int { return inv.MinPlayers - 1 },
	ConvertFrom:              []invitation.Status{invitation.StatusOpen, invitation.StatusFull, invitation.StatusConfirmed},
	ConvertedStatus:          invitation.StatusConfirmed,
	Draft:                    draft,
}

func draft(inv *invitation.Invitation, field *facility.Field, accepted []string) booking.Draft {
	quote := pricing.For(field.PricePerHour, inv.EndTime.Sub(inv.StartTime), inv.DiscountPercent, len(accepted)+1)
	perPerson := quote.PerPerson
	return booking.Draft{
		FieldID:         inv.FieldID,
		OrganizerID:     inv.CreatedBy,
		StartTime:       inv.StartTime,
		EndTime:         inv.EndTime,
		Type:            booking.TypeEventMatching,
		Status:          booking.StatusConfirmed,
		Members:         accepted,
		MaxParticipants: inv.MaxPlayers,
		TotalPrice:      quote.Total,
		PricePerPerson:  &perPerson,
		Notes:           fmt.Sprintf("Event matching: %s. Discount %g%%. Price per person: %d", inv.Name, inv.DiscountPercent, perPerson),
	}
}
