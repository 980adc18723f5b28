package notifier

import (
	"time"

	"github.com/mauv0809/fieldmatch/internal/invitation"
)

// Template selects the message sent to the participants of an invitation.
type Template string

const (
	TemplateConfirmed Template = "confirmed"
	TemplateCancelled Template = "cancelled"
	TemplateWarning   Template = "warning"
)

// Notification is everything a provider needs to render a message. It travels
// over Pub/Sub, so it carries no pointers into the domain model.
type Notification struct {
	Template       Template        `msgpack:"template" json:"template"`
	Kind           invitation.Kind `msgpack:"kind" json:"kind"`
	InvitationID   string          `msgpack:"invitation_id" json:"invitation_id"`
	Name           string          `msgpack:"name" json:"name"`
	Description    string          `msgpack:"description" json:"description"`
	FieldName      string          `msgpack:"field_name" json:"field_name"`
	FieldLocation  string          `msgpack:"field_location" json:"field_location"`
	StartTime      time.Time       `msgpack:"start_time" json:"start_time"`
	EndTime        time.Time       `msgpack:"end_time" json:"end_time"`
	Deadline       time.Time       `msgpack:"deadline" json:"deadline"`
	Players        int             `msgpack:"players" json:"players"`
	MinPlayers     int             `msgpack:"min_players" json:"min_players"`
	MaxPlayers     int             `msgpack:"max_players" json:"max_players"`
	EstimatedPrice int64           `msgpack:"estimated_price" json:"estimated_price"`
	TimeLeft       string          `msgpack:"time_left" json:"time_left"`
	Recipients     []string        `msgpack:"recipients" json:"recipients"`
}

// Title is the human name of the invitation the notification is about.
func (n *Notification) Title() string {
	if n.Name != "" {
		return n.Name
	}
	if n.Kind == invitation.KindMatchmaking {
		return "Matchmaking"
	}
	return "Event"
}

// Notifier defines a high-level interface for sending notifications about business events.
// This decouples the rest of the application from the specific notification provider (e.g., Slack).
type Notifier interface {
	// For sweeper outcomes: confirmation, cancellation and deadline warnings
	SendInvitationNotification(n *Notification, dryRun bool) error

	// For formatting responses for slash commands
	FormatInvitationList(invs []*invitation.Invitation, title string) (any, error)
}
