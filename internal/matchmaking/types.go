package matchmaking

import (
	"time"

	"github.com/mauv0809/fieldmatch/internal/invitation"
)

const (
	MinSlots = 1
	MaxSlots = 4
)

// CreateRequest describes a new matchmaking request. Deadline defaults to the
// start time.
type CreateRequest struct {
	FieldID        string
	Description    string
	StartTime      time.Time
	EndTime        time.Time
	Deadline       *time.Time
	AvailableSlots int
	PlayerLevel    invitation.PlayerLevel
	PlayStyle      invitation.PlayStyle
	TeamPreference invitation.TeamPreference
}

// Patch lists the fields a creator may change. Nil fields are left alone.
type Patch struct {
	PlayerLevel    *invitation.PlayerLevel
	PlayStyle      *invitation.PlayStyle
	TeamPreference *invitation.TeamPreference
	Description    *string
	Deadline       *time.Time
}
