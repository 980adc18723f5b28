package booking

import (
	"database/sql"
	"errors"
	"sync"
	"time"
)

// Type is how a booking was made.
type Type string

const (
	TypePrivate       Type = "private"
	TypeShared        Type = "shared"
	TypeEventMatching Type = "event-matching"
)

// Status is the lifecycle state of a booking.
type Status string

const (
	StatusPending   Status = "pending"
	StatusWaiting   Status = "waiting"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
)

// PaymentStatus tracks what a single participant owes.
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentRefunded PaymentStatus = "refunded"
)

// MinSharedParticipants is the head count a shared booking needs before its
// join deadline to be played.
const MinSharedParticipants = 4

// ErrNotFound is returned when no booking has the requested id.
var ErrNotFound = errors.New("booking not found")

// ParticipantDetail is the per-participant record of a booking.
type ParticipantDetail struct {
	UserID         string        `json:"user_id"`
	PaymentStatus  PaymentStatus `json:"payment_status"`
	JoinedAt       time.Time     `json:"joined_at"`
	PricePerPerson *int64        `json:"price_per_person,omitempty"`
}

// Booking is a reservation of a field for a time window.
type Booking struct {
	ID                 string              `json:"id"`
	FieldID            string              `json:"field_id"`
	UserID             string              `json:"user_id"`
	StartTime          time.Time           `json:"start_time"`
	EndTime            time.Time           `json:"end_time"`
	Type               Type                `json:"type"`
	Status             Status              `json:"status"`
	Participants       []string            `json:"participants"`
	ParticipantDetails []ParticipantDetail `json:"participant_details"`
	TotalPrice         int64               `json:"total_price"`
	MaxParticipants    int                 `json:"max_participants"`
	JoinDeadline       *time.Time          `json:"join_deadline,omitempty"`
	Notes              string              `json:"notes,omitempty"`
	CreatedAt          time.Time           `json:"created_at"`
	UpdatedAt          time.Time           `json:"updated_at"`
	Version            int64               `json:"version"`
}

func (b *Booking) capacity() int {
	if b.MaxParticipants > 0 {
		return b.MaxParticipants
	}
	return MinSharedParticipants
}

// HasParticipant reports whether userID is on the booking.
func (b *Booking) HasParticipant(userID string) bool {
	for _, p := range b.Participants {
		if p == userID {
			return true
		}
	}
	return false
}

// store handles database operations for bookings.
type store struct {
	db *sql.DB
	mu sync.RWMutex
}
