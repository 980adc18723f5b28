package event

import (
	"time"

	"github.com/mauv0809/fieldmatch/internal/invitation"
)

const (
	MinPlayersLimit = 4
	MaxPlayersLimit = 8

	// DefaultDeadlineLead is how long before the start registration closes
	// when the organizer does not pick a deadline.
	DefaultDeadlineLead = 2 * time.Hour
	// WarningWindow is how far ahead of the deadline under-subscribed events
	// are warned about.
	WarningWindow = 2 * time.Hour
	// Retention is how long cancelled and completed events are kept.
	Retention = 7 * 24 * time.Hour
)

// CreateRequest carries the organizer's choices for a new event. Zero values
// fall back to the defaults.
type CreateRequest struct {
	Name            string
	Description     string
	Image           string
	FieldID         string
	StartTime       time.Time
	EndTime         time.Time
	Deadline        *time.Time
	MinPlayers      int
	MaxPlayers      int
	PlayerLevel     invitation.PlayerLevel
	PlayStyle       invitation.PlayStyle
	TeamPreference  invitation.TeamPreference
	DiscountPercent *float64
}

// Patch lists the fields an organizer may change on an open event. Nil
// fields are left alone.
type Patch struct {
	Name           *string
	Description    *string
	Image          *string
	PlayerLevel    *invitation.PlayerLevel
	PlayStyle      *invitation.PlayStyle
	TeamPreference *invitation.TeamPreference
	Deadline       *time.Time
	MinPlayers     *int
	MaxPlayers     *int
}

// Outcome is the result of advancing one event.
type Outcome struct {
	Event   *invitation.Invitation
	From    invitation.Status
	To      invitation.Status
	Changed bool
}
