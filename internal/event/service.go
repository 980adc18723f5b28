package event

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/fieldmatch/internal/invitation"
	"github.com/mauv0809/fieldmatch/internal/pricing"
)

// Service runs the event lifecycle. The roster, cancellation, conversion and
// query operations come from the embedded invitation service.
type Service struct {
	*invitation.Service
}

// NewService creates an event Service.
func NewService(store invitation.Store, fields invitation.FieldLookup, bookings invitation.BookingWriter) *Service {
	return &Service{
		Service: invitation.NewService(store, fields, bookings, Policy),
	}
}

func validatePlayers(minPlayers, maxPlayers int) error {
	if minPlayers < MinPlayersLimit || minPlayers > MaxPlayersLimit {
		return invitation.Validation("minimum players must be between %d and %d", MinPlayersLimit, MaxPlayersLimit)
	}
	if maxPlayers < MinPlayersLimit || maxPlayers > MaxPlayersLimit {
		return invitation.Validation("maximum players must be between %d and %d", MinPlayersLimit, MaxPlayersLimit)
	}
	if maxPlayers < minPlayers {
		return invitation.Validation("maximum players must be greater than or equal to minimum players")
	}
	return nil
}

// Create opens a new event organized by ownerID.
func (s *Service) Create(ctx context.Context, ownerID string, req CreateRequest) (*invitation.Invitation, error) {
	now := s.Now()
	if !req.StartTime.After(now) {
		return nil, invitation.Validation("start time must be in the future")
	}
	if !req.EndTime.After(req.StartTime) {
		return nil, invitation.Validation("end time must be after start time")
	}
	deadline := req.StartTime.Add(-DefaultDeadlineLead)
	if req.Deadline != nil {
		deadline = *req.Deadline
	}
	if !deadline.Before(req.StartTime) {
		return nil, invitation.Validation("deadline must be before start time")
	}

	minPlayers, maxPlayers := req.MinPlayers, req.MaxPlayers
	if minPlayers == 0 {
		minPlayers = MinPlayersLimit
	}
	if maxPlayers == 0 {
		maxPlayers = MaxPlayersLimit
	}
	if err := validatePlayers(minPlayers, maxPlayers); err != nil {
		return nil, err
	}

	discount := float64(pricing.DefaultDiscountPercent)
	if req.DiscountPercent != nil {
		discount = *req.DiscountPercent
	}
	if discount < 0 || discount > 100 {
		return nil, invitation.Validation("discount must be between 0 and 100 percent")
	}

	field, err := s.Field(ctx, req.FieldID)
	if err != nil {
		return nil, err
	}

	open, err := s.HasOpen(ctx, ownerID, &now)
	if err != nil {
		return nil, err
	}
	if open {
		return nil, invitation.Conflict("you already have an open event, complete or cancel it before creating a new one")
	}

	inv := &invitation.Invitation{
		FieldID:         req.FieldID,
		CreatedBy:       ownerID,
		Name:            req.Name,
		Description:     req.Description,
		Image:           req.Image,
		StartTime:       req.StartTime,
		EndTime:         req.EndTime,
		Deadline:        deadline,
		MinPlayers:      minPlayers,
		MaxPlayers:      maxPlayers,
		AvailableSlots:  maxPlayers - 1,
		PlayerLevel:     orDefault(req.PlayerLevel, invitation.LevelAny),
		PlayStyle:       orDefault(req.PlayStyle, invitation.StyleCasual),
		TeamPreference:  orDefault(req.TeamPreference, invitation.TeamRandom),
		DiscountPercent: discount,
		EstimatedPrice:  pricing.Estimate(field.PricePerHour, req.EndTime.Sub(req.StartTime), discount, maxPlayers),
	}
	if err := s.Service.Create(ctx, inv, now); err != nil {
		return nil, err
	}
	log.Info("Event created", "eventID", inv.ID, "createdBy", ownerID, "start", inv.StartTime, "estimatedPrice", inv.EstimatedPrice)
	return inv, nil
}

func orDefault[T ~string](v, def T) T {
	if v == "" {
		return def
	}
	return v
}

// Update applies an organizer's patch to an open event.
func (s *Service) Update(ctx context.Context, id, ownerID string, p Patch) (*invitation.Invitation, error) {
	return s.Mutate(ctx, id, func(inv *invitation.Invitation, now time.Time) error {
		if !inv.IsOwner(ownerID) {
			return invitation.Forbidden("only the organizer can update this event")
		}
		if inv.Status != invitation.StatusOpen {
			return invitation.Validation("only open events can be updated")
		}
		if p.Name != nil {
			inv.Name = *p.Name
		}
		if p.Description != nil {
			inv.Description = *p.Description
		}
		if p.Image != nil {
			inv.Image = *p.Image
		}
		if p.PlayerLevel != nil {
			inv.PlayerLevel = *p.PlayerLevel
		}
		if p.PlayStyle != nil {
			inv.PlayStyle = *p.PlayStyle
		}
		if p.TeamPreference != nil {
			inv.TeamPreference = *p.TeamPreference
		}
		if p.Deadline != nil {
			if !p.Deadline.Before(inv.StartTime) {
				return invitation.Validation("deadline must be before start time")
			}
			inv.Deadline = *p.Deadline
		}
		if p.MinPlayers != nil || p.MaxPlayers != nil {
			if p.MinPlayers != nil {
				inv.MinPlayers = *p.MinPlayers
			}
			if p.MaxPlayers != nil {
				inv.MaxPlayers = *p.MaxPlayers
			}
			if err := validatePlayers(inv.MinPlayers, inv.MaxPlayers); err != nil {
				return err
			}
			ledger := s.Ledger(inv)
			if err := ledger.Recount(); err != nil {
				return err
			}
			if ledger.Remaining() == 0 {
				return inv.TransitionTo(invitation.StatusFull)
			}
		}
		return nil
	})
}

// Leave takes userID off the roster. The organizer has to cancel instead.
func (s *Service) Leave(ctx context.Context, id, userID string) (*invitation.Invitation, error) {
	inv, err := s.Mutate(ctx, id, func(inv *invitation.Invitation, now time.Time) error {
		if inv.IsOwner(userID) {
			return invitation.Validation("the organizer cannot leave the event, cancel it instead")
		}
		if _, listed := inv.Participant(userID); !listed {
			return invitation.NotFound("you are not part of this event")
		}
		if inv.Status == invitation.StatusConfirmed || inv.Status == invitation.StatusCompleted {
			return invitation.Validation("cannot leave a confirmed or completed event")
		}
		if now.After(inv.Deadline) {
			return invitation.Validation("the deadline to leave this event has passed")
		}
		// A full event stays full here, unlike reject and remove.
		_, err := s.Ledger(inv).Remove(userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	log.Info("Player left event", "eventID", inv.ID, "userID", userID, "availableSlots", inv.AvailableSlots)
	return inv, nil
}

// Decide returns the status an event should move to at now, and false when
// it should stay where it is. Open and full events are settled once the
// deadline passed; confirmed events complete once they ended.
func Decide(inv *invitation.Invitation, now time.Time) (invitation.Status, bool) {
	switch inv.Status {
	case invitation.StatusOpen, invitation.StatusFull:
		if !now.After(inv.Deadline) {
			return "", false
		}
		if inv.AcceptedCount()+1 >= inv.MinPlayers {
			return invitation.StatusConfirmed, true
		}
		return invitation.StatusCancelled, true
	case invitation.StatusConfirmed:
		if now.After(inv.EndTime) {
			return invitation.StatusCompleted, true
		}
	}
	return "", false
}

// AutoAdvance moves inv to the status Decide picks. The write only lands if
// the stored event still has the status inv was read with; a lost race is
// reported as unchanged.
func (s *Service) AutoAdvance(ctx context.Context, inv *invitation.Invitation) (Outcome, error) {
	out := Outcome{Event: inv, From: inv.Status, To: inv.Status}
	to, ok := Decide(inv, s.Now())
	if !ok {
		return out, nil
	}
	if err := s.Advance(ctx, inv, to); err != nil {
		if errors.Is(err, invitation.ErrStale) {
			log.Warn("Event changed before it could be advanced, skipping", "eventID", inv.ID, "from", out.From, "to", to)
			return out, nil
		}
		return out, err
	}
	out.To = to
	out.Changed = true
	log.Info("Event advanced", "eventID", inv.ID, "from", out.From, "to", to, "players", inv.AcceptedCount()+1, "minPlayers", inv.MinPlayers)
	return out, nil
}

// CheckStatus loads one event and advances it if it is due.
func (s *Service) CheckStatus(ctx context.Context, id string) (Outcome, error) {
	inv, err := s.Get(ctx, id)
	if err != nil {
		return Outcome{}, err
	}
	return s.AutoAdvance(ctx, inv)
}

// NeedsWarning reports whether an open event closes within the warning
// window without enough players.
func NeedsWarning(inv *invitation.Invitation, now time.Time) bool {
	return inv.Status == invitation.StatusOpen &&
		inv.Deadline.After(now) &&
		!inv.Deadline.After(now.Add(WarningWindow)) &&
		inv.AcceptedCount()+1 < inv.MinPlayers
}

// DueForDecision lists open and full events whose deadline passed.
func (s *Service) DueForDecision(ctx context.Context, now time.Time) ([]*invitation.Invitation, error) {
	return s.List(ctx, invitation.Query{
		Statuses:       []invitation.Status{invitation.StatusOpen, invitation.StatusFull},
		DeadlineBefore: &now,
	})
}

// DueForCompletion lists confirmed events that ended.
func (s *Service) DueForCompletion(ctx context.Context, now time.Time) ([]*invitation.Invitation, error) {
	return s.List(ctx, invitation.Query{
		Statuses:  []invitation.Status{invitation.StatusConfirmed},
		EndBefore: &now,
	})
}

// DueForWarning lists the events NeedsWarning holds for.
func (s *Service) DueForWarning(ctx context.Context, now time.Time) ([]*invitation.Invitation, error) {
	until := now.Add(WarningWindow).Add(time.Millisecond)
	candidates, err := s.List(ctx, invitation.Query{
		Statuses:       []invitation.Status{invitation.StatusOpen},
		DeadlineAfter:  &now,
		DeadlineBefore: &until,
	})
	if err != nil {
		return nil, err
	}
	var due []*invitation.Invitation
	for _, inv := range candidates {
		if NeedsWarning(inv, now) {
			due = append(due, inv)
		}
	}
	return due, nil
}
