package matchmaking

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/fieldmatch/internal/invitation"
)

// Service runs the matchmaking lifecycle on top of the shared invitation
// operations.
type Service struct {
	*invitation.Service
}

// NewService creates a matchmaking Service.
func NewService(store invitation.Store, fields invitation.FieldLookup, bookings invitation.BookingWriter) *Service {
	return &Service{
		Service: invitation.NewService(store, fields, bookings, Policy),
	}
}

// Create opens a matchmaking request for creatorID.
func (s *Service) Create(ctx context.Context, creatorID string, req CreateRequest) (*invitation.Invitation, error) {
	now := s.Now()
	if !req.StartTime.After(now) {
		return nil, invitation.Validation("start time must be in the future")
	}
	if !req.EndTime.After(req.StartTime) {
		return nil, invitation.Validation("end time must be after start time")
	}
	if req.AvailableSlots < MinSlots || req.AvailableSlots > MaxSlots {
		return nil, invitation.Validation("available slots must be between %d and %d", MinSlots, MaxSlots)
	}
	deadline := req.StartTime
	if req.Deadline != nil {
		deadline = *req.Deadline
	}
	if deadline.After(req.StartTime) {
		return nil, invitation.Validation("deadline cannot be after start time")
	}
	if _, err := s.Field(ctx, req.FieldID); err != nil {
		return nil, err
	}

	open, err := s.HasOpen(ctx, creatorID, nil)
	if err != nil {
		return nil, err
	}
	if open {
		return nil, invitation.Conflict("you already have an open matchmaking request")
	}

	inv := &invitation.Invitation{
		FieldID:        req.FieldID,
		CreatedBy:      creatorID,
		Description:    req.Description,
		StartTime:      req.StartTime,
		EndTime:        req.EndTime,
		Deadline:       deadline,
		AvailableSlots: req.AvailableSlots,
		PlayerLevel:    req.PlayerLevel,
		PlayStyle:      req.PlayStyle,
		TeamPreference: req.TeamPreference,
	}
	if inv.PlayerLevel == "" {
		inv.PlayerLevel = invitation.LevelAny
	}
	if inv.PlayStyle == "" {
		inv.PlayStyle = invitation.StyleAny
	}
	if inv.TeamPreference == "" {
		inv.TeamPreference = invitation.TeamRandom
	}
	if err := s.Service.Create(ctx, inv, now); err != nil {
		return nil, err
	}
	log.Info("Matchmaking created", "matchmakingID", inv.ID, "createdBy", creatorID, "slots", inv.AvailableSlots)
	return inv, nil
}

// Update changes the descriptive fields of a matchmaking request.
func (s *Service) Update(ctx context.Context, id, creatorID string, p Patch) (*invitation.Invitation, error) {
	return s.Mutate(ctx, id, func(inv *invitation.Invitation, now time.Time) error {
		if !inv.IsOwner(creatorID) {
			return invitation.Forbidden("only the creator can update this matchmaking")
		}
		if inv.Status != invitation.StatusOpen && inv.Status != invitation.StatusFull {
			return invitation.Validation("a %s matchmaking cannot be updated", inv.Status)
		}
		if p.Deadline != nil {
			if p.Deadline.After(inv.StartTime) {
				return invitation.Validation("deadline cannot be after start time")
			}
			inv.Deadline = *p.Deadline
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
		if p.Description != nil {
			inv.Description = *p.Description
		}
		return nil
	})
}

// JoinAsRepresentative lets one user claim the whole request on behalf of a
// group. It bypasses the roster and fills the request at once.
func (s *Service) JoinAsRepresentative(ctx context.Context, id, userID string) (*invitation.Invitation, error) {
	inv, err := s.Mutate(ctx, id, func(inv *invitation.Invitation, now time.Time) error {
		if inv.Status != invitation.StatusOpen {
			return invitation.Validation("this matchmaking is full or closed")
		}
		if inv.RepresentativeID != nil {
			return invitation.Conflict("this matchmaking already has a representative")
		}
		if inv.IsOwner(userID) {
			return invitation.Validation("you cannot join your own matchmaking")
		}
		inv.RepresentativeID = &userID
		return inv.TransitionTo(invitation.StatusFull)
	})
	if err != nil {
		return nil, err
	}
	log.Info("Representative joined matchmaking", "matchmakingID", inv.ID, "representativeID", userID)
	return inv, nil
}
