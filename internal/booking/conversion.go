package booking

import (
	"fmt"
	"time"
)

// Draft describes the booking an invitation turns into once its roster is
// settled. Members are the accepted players besides the organizer.
type Draft struct {
	FieldID         string
	OrganizerID     string
	StartTime       time.Time
	EndTime         time.Time
	Type            Type
	Status          Status
	Members         []string
	MinParticipants int
	MaxParticipants int
	TotalPrice      int64
	PricePerPerson  *int64
	JoinDeadline    *time.Time
	Notes           string
}

// Build assembles a booking from a draft. The organizer always comes first in
// the participant list, each participant appears once and has a matching
// detail entry with a pending payment.
func Build(d Draft, now time.Time) (*Booking, error) {
	if d.OrganizerID == "" {
		return nil, fmt.Errorf("booking needs an organizer")
	}
	if !d.EndTime.After(d.StartTime) {
		return nil, fmt.Errorf("booking end time must be after start time")
	}

	participants := make([]string, 0, len(d.Members)+1)
	seen := make(map[string]bool, len(d.Members)+1)
	for _, id := range append([]string{d.OrganizerID}, d.Members...) {
		if seen[id] {
			return nil, fmt.Errorf("participant %s listed more than once", id)
		}
		seen[id] = true
		participants = append(participants, id)
	}
	if len(participants) < d.MinParticipants {
		return nil, fmt.Errorf("booking needs at least %d participants, has %d", d.MinParticipants, len(participants))
	}

	details := make([]ParticipantDetail, len(participants))
	for i, id := range participants {
		details[i] = ParticipantDetail{
			UserID:        id,
			PaymentStatus: PaymentPending,
			JoinedAt:      now,
		}
		if d.PricePerPerson != nil {
			price := *d.PricePerPerson
			details[i].PricePerPerson = &price
		}
	}

	var deadline *time.Time
	if d.JoinDeadline != nil {
		t := *d.JoinDeadline
		deadline = &t
	}

	return &Booking{
		FieldID:            d.FieldID,
		UserID:             d.OrganizerID,
		StartTime:          d.StartTime,
		EndTime:            d.EndTime,
		Type:               d.Type,
		Status:             d.Status,
		Participants:       participants,
		ParticipantDetails: details,
		TotalPrice:         d.TotalPrice,
		MaxParticipants:    d.MaxParticipants,
		JoinDeadline:       deadline,
		Notes:              d.Notes,
		CreatedAt:          now,
		UpdatedAt:          now,
	}, nil
}
