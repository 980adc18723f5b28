package invitation

import (
	"database/sql"
	"sync"
	"time"
)

// Kind discriminates the two flavours of invitation.
type Kind string

const (
	KindEvent       Kind = "event"
	KindMatchmaking Kind = "matchmaking"
)

// Status is the lifecycle state of an invitation.
type Status string

const (
	StatusOpen      Status = "open"
	StatusFull      Status = "full"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
)

// ParticipantStatus is where a player stands on an invitation's roster.
type ParticipantStatus string

const (
	ParticipantPending  ParticipantStatus = "pending"
	ParticipantAccepted ParticipantStatus = "accepted"
	ParticipantRejected ParticipantStatus = "rejected"
)

type PlayerLevel string

const (
	LevelBeginner     PlayerLevel = "beginner"
	LevelIntermediate PlayerLevel = "intermediate"
	LevelAdvanced     PlayerLevel = "advanced"
	LevelAny          PlayerLevel = "any"
)

type PlayStyle string

const (
	StyleCasual      PlayStyle = "casual"
	StyleCompetitive PlayStyle = "competitive"
	StyleAny         PlayStyle = "any"
)

type TeamPreference string

const (
	TeamRandom TeamPreference = "random"
	TeamAny    TeamPreference = "any"
	TeamMale   TeamPreference = "male"
	TeamFemale TeamPreference = "female"
	TeamMixed  TeamPreference = "mixed"
)

// Participant is one entry of the interest list.
type Participant struct {
	UserID      string            `json:"user_id"`
	Status      ParticipantStatus `json:"status"`
	RequestedAt time.Time         `json:"requested_at"`
	Note        string            `json:"note,omitempty"`
}

// Invitation is an open call for players on a field and time window, either
// an organizer-run event or a matchmaking request.
type Invitation struct {
	ID                string         `json:"id"`
	Kind              Kind           `json:"kind"`
	FieldID           string         `json:"field_id"`
	CreatedBy         string         `json:"created_by"`
	Name              string         `json:"name,omitempty"`
	Description       string         `json:"description,omitempty"`
	Image             string         `json:"image,omitempty"`
	StartTime         time.Time      `json:"start_time"`
	EndTime           time.Time      `json:"end_time"`
	Deadline          time.Time      `json:"deadline"`
	Status            Status         `json:"status"`
	MinPlayers        int            `json:"min_players,omitempty"`
	MaxPlayers        int            `json:"max_players,omitempty"`
	AvailableSlots    int            `json:"available_slots"`
	PlayerLevel       PlayerLevel    `json:"player_level"`
	PlayStyle         PlayStyle      `json:"play_style"`
	TeamPreference    TeamPreference `json:"team_preference"`
	DiscountPercent   float64        `json:"discount_percent,omitempty"`
	EstimatedPrice    int64          `json:"estimated_price,omitempty"`
	BookingID         *string        `json:"booking_id,omitempty"`
	RepresentativeID  *string        `json:"representative_id,omitempty"`
	InterestedPlayers []Participant  `json:"interested_players"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
	Version           int64          `json:"version"`
}

// IsOwner reports whether userID created the invitation.
func (inv *Invitation) IsOwner(userID string) bool {
	return userID != "" && inv.CreatedBy == userID
}

// Participant returns the roster entry of userID.
func (inv *Invitation) Participant(userID string) (Participant, bool) {
	for _, p := range inv.InterestedPlayers {
		if p.UserID == userID {
			return p, true
		}
	}
	return Participant{}, false
}

// AcceptedIDs lists the accepted players in roster order.
func (inv *Invitation) AcceptedIDs() []string {
	var ids []string
	for _, p := range inv.InterestedPlayers {
		if p.Status == ParticipantAccepted {
			ids = append(ids, p.UserID)
		}
	}
	return ids
}

// AcceptedCount is the number of accepted players, organizer excluded.
func (inv *Invitation) AcceptedCount() int {
	n := 0
	for _, p := range inv.InterestedPlayers {
		if p.Status == ParticipantAccepted {
			n++
		}
	}
	return n
}

// store handles database operations for invitations.
type store struct {
	db *sql.DB
	mu sync.RWMutex
}
