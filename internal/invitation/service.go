package invitation

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/fieldmatch/internal/booking"
	"github.com/mauv0809/fieldmatch/internal/facility"
)

// Service runs the operations shared by events and matchmaking. The kind
// specific behaviour comes from its Policy.
type Service struct {
	store    Store
	fields   FieldLookup
	bookings BookingWriter
	policy   Policy
	now      func() time.Time
}

// NewService creates a Service for the invitations described by policy.
func NewService(store Store, fields FieldLookup, bookings BookingWriter, policy Policy) *Service {
	return &Service{
		store:    store,
		fields:   fields,
		bookings: bookings,
		policy:   policy,
		now:      time.Now,
	}
}

// SetClock replaces the time source.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

func (s *Service) Now() time.Time {
	return s.now()
}

func (s *Service) Policy() Policy {
	return s.policy
}

// Ledger returns the roster ledger of inv.
func (s *Service) Ledger(inv *Invitation) *Ledger {
	return NewLedger(inv, s.policy)
}

// Get loads an invitation of this service's kind.
func (s *Service) Get(ctx context.Context, id string) (*Invitation, error) {
	inv, err := s.store.Get(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, NotFound("%s not found", s.policy.Noun)
	}
	if err != nil {
		return nil, err
	}
	if inv.Kind != s.policy.Kind {
		return nil, NotFound("%s not found", s.policy.Noun)
	}
	return inv, nil
}

// Create stamps and persists a new invitation. Callers validate the input.
func (s *Service) Create(ctx context.Context, inv *Invitation, now time.Time) error {
	inv.Kind = s.policy.Kind
	inv.Status = StatusOpen
	inv.CreatedAt = now
	inv.UpdatedAt = now
	return s.store.Create(ctx, inv)
}

// Field looks up the field an invitation is played on.
func (s *Service) Field(ctx context.Context, id string) (*facility.Field, error) {
	field, err := s.fields.GetField(ctx, id)
	if errors.Is(err, facility.ErrFieldNotFound) {
		return nil, NotFound("field not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up field: %w", err)
	}
	return field, nil
}

// Mutate loads an invitation, applies fn and saves the result on the
// condition that nobody else changed the record in between.
func (s *Service) Mutate(ctx context.Context, id string, fn func(inv *Invitation, now time.Time) error) (*Invitation, error) {
	inv, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	from := inv.Status
	now := s.now()
	if err := fn(inv, now); err != nil {
		return nil, err
	}
	inv.UpdatedAt = now
	if err := s.store.Save(ctx, inv, from); err != nil {
		return nil, err
	}
	return inv, nil
}

// Advance moves a loaded invitation to another status and persists it only
// if the stored record is still in the status it was read with.
func (s *Service) Advance(ctx context.Context, inv *Invitation, to Status) error {
	from := inv.Status
	if err := inv.TransitionTo(to); err != nil {
		return err
	}
	inv.UpdatedAt = s.now()
	if err := s.store.Save(ctx, inv, from); err != nil {
		inv.Status = from
		return err
	}
	return nil
}

func (s *Service) requireOwner(inv *Invitation, userID string) error {
	if !inv.IsOwner(userID) {
		return Forbidden("only the organizer can do this")
	}
	return nil
}

// ShowInterest adds userID to the roster as a pending player.
func (s *Service) ShowInterest(ctx context.Context, id, userID, note string) (*Invitation, error) {
	return s.Mutate(ctx, id, func(inv *Invitation, now time.Time) error {
		if inv.Status != StatusOpen {
			return Validation("this %s is not open for new players", s.policy.Noun)
		}
		if s.policy.InterestClosesAtDeadline && now.After(inv.Deadline) {
			return Validation("the deadline to join this %s has passed", s.policy.Noun)
		}
		if inv.IsOwner(userID) {
			return Validation("you cannot join your own %s", s.policy.Noun)
		}
		return s.Ledger(inv).AddInterest(userID, note, now)
	})
}

// AcceptPlayer accepts a pending or rejected player. An invitation with no
// slot left becomes full.
func (s *Service) AcceptPlayer(ctx context.Context, id, ownerID, playerID string) (*Invitation, error) {
	inv, err := s.Mutate(ctx, id, func(inv *Invitation, now time.Time) error {
		if err := s.requireOwner(inv, ownerID); err != nil {
			return err
		}
		if inv.Status != StatusOpen {
			return Validation("players can only be accepted while the %s is open", s.policy.Noun)
		}
		ledger := s.Ledger(inv)
		if err := ledger.Accept(playerID); err != nil {
			return err
		}
		if ledger.Remaining() == 0 {
			return inv.TransitionTo(StatusFull)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Info("Player accepted", "kind", inv.Kind, "id", inv.ID, "player", playerID, "status", inv.Status)
	return inv, nil
}

// RejectPlayer rejects a listed player.
func (s *Service) RejectPlayer(ctx context.Context, id, ownerID, playerID string) (*Invitation, error) {
	return s.changeRoster(ctx, id, ownerID, s.policy.ReopenOnReject, func(l *Ledger) (bool, error) {
		return l.Reject(playerID)
	})
}

// RemovePlayer drops a player from the roster.
func (s *Service) RemovePlayer(ctx context.Context, id, ownerID, playerID string) (*Invitation, error) {
	return s.changeRoster(ctx, id, ownerID, s.policy.ReopenOnRemove, func(l *Ledger) (bool, error) {
		return l.Remove(playerID)
	})
}

func (s *Service) changeRoster(ctx context.Context, id, ownerID string, reopen Reopen, op func(*Ledger) (bool, error)) (*Invitation, error) {
	return s.Mutate(ctx, id, func(inv *Invitation, now time.Time) error {
		if err := s.requireOwner(inv, ownerID); err != nil {
			return err
		}
		if inv.Status != StatusOpen && inv.Status != StatusFull {
			return Validation("the roster of a %s %s cannot be changed", inv.Status, s.policy.Noun)
		}
		refunded, err := op(s.Ledger(inv))
		if err != nil {
			return err
		}
		if inv.Status == StatusFull && reopen.applies(refunded) {
			return inv.TransitionTo(StatusOpen)
		}
		return nil
	})
}

// Cancel calls the invitation off.
func (s *Service) Cancel(ctx context.Context, id, ownerID string) (*Invitation, error) {
	inv, err := s.Mutate(ctx, id, func(inv *Invitation, now time.Time) error {
		if err := s.requireOwner(inv, ownerID); err != nil {
			return err
		}
		if inv.Status == StatusCancelled {
			return Conflict("this %s is already cancelled", s.policy.Noun)
		}
		if !CanTransition(inv.Kind, inv.Status, StatusCancelled) {
			return Validation("a %s %s cannot be cancelled", inv.Status, s.policy.Noun)
		}
		return inv.TransitionTo(StatusCancelled)
	})
	if err != nil {
		return nil, err
	}
	log.Info("Invitation cancelled", "kind", inv.Kind, "id", inv.ID)
	return inv, nil
}

// Convert turns the invitation into a booking for the organizer and the
// accepted players. It succeeds at most once per invitation.
func (s *Service) Convert(ctx context.Context, id, ownerID string) (*Invitation, *booking.Booking, error) {
	var created *booking.Booking
	inv, err := s.Mutate(ctx, id, func(inv *Invitation, now time.Time) error {
		if err := s.requireOwner(inv, ownerID); err != nil {
			return err
		}
		if inv.BookingID != nil {
			return Conflict("this %s has already been converted to a booking", s.policy.Noun)
		}
		if !slices.Contains(s.policy.ConvertFrom, inv.Status) {
			return Validation("a %s %s cannot be converted to a booking", inv.Status, s.policy.Noun)
		}
		accepted := inv.AcceptedIDs()
		need := s.policy.RequiredAccepted(inv)
		if len(accepted) < need {
			return Validation("not enough players: %d accepted, at least %d needed", len(accepted), need)
		}
		field, err := s.Field(ctx, inv.FieldID)
		if err != nil {
			return err
		}

		draft := s.policy.Draft(inv, field, accepted)
		draft.MinParticipants = need + 1
		b, err := booking.Build(draft, now)
		if err != nil {
			return Validation("cannot build booking: %s", err)
		}
		if err := s.bookings.Create(ctx, b); err != nil {
			return fmt.Errorf("failed to create booking: %w", err)
		}
		created = b
		inv.BookingID = &b.ID
		return inv.TransitionTo(s.policy.ConvertedStatus)
	})
	if err != nil {
		if created != nil {
			// The booking exists but the invitation could not record it.
			if _, cerr := s.bookings.UpdateStatus(ctx, created.ID, created.Status, booking.StatusCancelled); cerr != nil {
				log.Error("Failed to cancel orphaned booking", "bookingID", created.ID, "error", cerr)
			}
		}
		return nil, nil, err
	}
	log.Info("Converted invitation to booking", "kind", inv.Kind, "id", inv.ID, "bookingID", created.ID, "participants", len(created.Participants))
	return inv, created, nil
}
