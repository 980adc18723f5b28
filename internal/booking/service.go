package booking

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/fieldmatch/internal/facility"
	"github.com/mauv0809/fieldmatch/internal/pricing"
)

// JoinWindow is how long before kick-off a shared booking stops taking
// players.
const JoinWindow = 24 * time.Hour

// FieldLookup finds the field a booking is made on.
type FieldLookup interface {
	GetField(ctx context.Context, id string) (*facility.Field, error)
}

// CreateRequest books a field directly, either for the caller alone or as a
// shared slot other players can join.
type CreateRequest struct {
	FieldID   string    `json:"field_id" validate:"required"`
	StartTime time.Time `json:"start_time" validate:"required"`
	EndTime   time.Time `json:"end_time" validate:"required"`
	Type      Type      `json:"type" validate:"omitempty,oneof=private shared"`
	Notes     string    `json:"notes"`
}

// Service runs direct bookings: private slots and shared slots that fill up
// to MinSharedParticipants players before they are confirmed.
type Service struct {
	store  Store
	fields FieldLookup
	now    func() time.Time
}

func NewService(store Store, fields FieldLookup) *Service {
	return &Service{store: store, fields: fields, now: time.Now}
}

// SetClock replaces the service clock.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

func (s *Service) Get(ctx context.Context, id string) (*Booking, error) {
	return s.store.Get(ctx, id)
}

// Create books a field. A shared request first looks for a waiting booking on
// the same field and window and joins it when one has room.
func (s *Service) Create(ctx context.Context, userID string, req CreateRequest) (*Booking, error) {
	now := s.now()
	if req.Type == "" {
		req.Type = TypePrivate
	}
	if req.Type != TypePrivate && req.Type != TypeShared {
		return nil, invalid("booking type must be private or shared")
	}
	if !req.StartTime.After(now) {
		return nil, invalid("start time must be in the future")
	}
	if !req.EndTime.After(req.StartTime) {
		return nil, invalid("end time must be after start time")
	}
	field, err := s.fields.GetField(ctx, req.FieldID)
	if errors.Is(err, facility.ErrFieldNotFound) {
		return nil, &Error{Kind: ErrNotFound, Msg: "field not found"}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up field: %w", err)
	}

	if req.Type == TypeShared {
		existing, err := s.store.FindOpenShared(ctx, field.ID, req.StartTime, req.EndTime)
		switch {
		case err == nil:
			log.Info("Joining existing shared booking", "bookingID", existing.ID, "userID", userID)
			return s.Join(ctx, existing.ID, userID)
		case !errors.Is(err, ErrNotFound):
			return nil, err
		}
	}

	draft := Draft{
		FieldID:     field.ID,
		OrganizerID: userID,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Type:        req.Type,
		Status:      StatusConfirmed,
		Notes:       req.Notes,
	}
	duration := req.EndTime.Sub(req.StartTime)
	if req.Type == TypeShared {
		quote := pricing.For(field.PricePerHour, duration, 0, MinSharedParticipants)
		deadline := req.StartTime.Add(-JoinWindow)
		draft.Status = StatusWaiting
		draft.MaxParticipants = MinSharedParticipants
		draft.TotalPrice = quote.Total
		draft.PricePerPerson = &quote.PerPerson
		draft.JoinDeadline = &deadline
	} else {
		quote := pricing.For(field.PricePerHour, duration, 0, 1)
		draft.MaxParticipants = 1
		draft.TotalPrice = quote.Total
		draft.PricePerPerson = &quote.PerPerson
	}

	b, err := Build(draft, now)
	if err != nil {
		return nil, invalid("%v", err)
	}
	if err := s.store.Create(ctx, b); err != nil {
		return nil, err
	}
	log.Info("Booking created", "bookingID", b.ID, "type", b.Type, "status", b.Status)
	return b, nil
}

// Join adds a player to a waiting shared booking. The booking is confirmed
// once it reaches MinSharedParticipants.
func (s *Service) Join(ctx context.Context, id, userID string) (*Booking, error) {
	return s.mutate(ctx, id, func(b *Booking, now time.Time) error {
		if b.Type != TypeShared {
			return invalid("only shared bookings can be joined")
		}
		if b.Status != StatusWaiting {
			return conflict("this booking is no longer taking players")
		}
		if len(b.Participants) >= b.capacity() {
			return conflict("this booking is already full")
		}
		if b.HasParticipant(userID) {
			return conflict("you are already in this booking")
		}
		detail := ParticipantDetail{UserID: userID, PaymentStatus: PaymentPending, JoinedAt: now}
		if n := len(b.ParticipantDetails); n > 0 && b.ParticipantDetails[0].PricePerPerson != nil {
			price := *b.ParticipantDetails[0].PricePerPerson
			detail.PricePerPerson = &price
		}
		b.Participants = append(b.Participants, userID)
		b.ParticipantDetails = append(b.ParticipantDetails, detail)
		if len(b.Participants) >= MinSharedParticipants {
			b.Status = StatusConfirmed
		}
		return nil
	})
}

// Cancel withdraws a player. The organizer of a private booking cancels it
// outright. Leaving a shared booking reopens it, and the last player out
// cancels it. Paid shares are marked refunded.
func (s *Service) Cancel(ctx context.Context, id, userID string) (*Booking, error) {
	return s.mutate(ctx, id, func(b *Booking, now time.Time) error {
		if b.Status == StatusCancelled || b.Status == StatusCompleted {
			return conflict("booking is already %s", b.Status)
		}
		switch b.Type {
		case TypePrivate:
			if b.UserID != userID {
				return forbidden("you cannot cancel this booking")
			}
			for i := range b.ParticipantDetails {
				refund(&b.ParticipantDetails[i])
			}
			b.Status = StatusCancelled
			return nil
		case TypeShared:
			i := slices.Index(b.Participants, userID)
			if i < 0 {
				return forbidden("you cannot cancel this booking")
			}
			b.Participants = slices.Delete(b.Participants, i, i+1)
			b.ParticipantDetails = slices.DeleteFunc(b.ParticipantDetails, func(d ParticipantDetail) bool {
				return d.UserID == userID
			})
			switch {
			case len(b.Participants) == 0:
				b.Status = StatusCancelled
			case b.Status == StatusConfirmed:
				b.Status = StatusWaiting
			}
			return nil
		}
		return invalid("%s bookings are managed through their invitation", b.Type)
	})
}

func refund(d *ParticipantDetail) {
	if d.PaymentStatus == PaymentPaid {
		d.PaymentStatus = PaymentRefunded
	}
}

// UpdatePayment records a participant's payment. Players update their own
// share; staff may update anyone's.
func (s *Service) UpdatePayment(ctx context.Context, id, actorID, participantID string, staff bool, status PaymentStatus) (*Booking, error) {
	switch status {
	case PaymentPending, PaymentPaid, PaymentRefunded:
	default:
		return nil, invalid("unknown payment status %q", status)
	}
	if participantID == "" {
		participantID = actorID
	}
	if participantID != actorID && !staff {
		return nil, forbidden("only staff can update another participant's payment")
	}
	return s.mutate(ctx, id, func(b *Booking, now time.Time) error {
		for i := range b.ParticipantDetails {
			if b.ParticipantDetails[i].UserID == participantID {
				b.ParticipantDetails[i].PaymentStatus = status
				return nil
			}
		}
		return invalid("user is not a participant in this booking")
	})
}

// ListWaiting returns the shared bookings players can still join.
func (s *Service) ListWaiting(ctx context.Context) ([]*Booking, error) {
	return s.store.ListWaiting(ctx, s.now())
}

func (s *Service) mutate(ctx context.Context, id string, fn func(b *Booking, now time.Time) error) (*Booking, error) {
	b, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	from := b.Status
	if err := fn(b, s.now()); err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, b, from); err != nil {
		return nil, err
	}
	return b, nil
}
