package invitation

import (
	"context"
	"fmt"
	"time"
)

// Filters narrows a search over open invitations. Empty values match
// everything; an invitation marked "any" matches every level or style.
type Filters struct {
	PlayerLevel    PlayerLevel
	PlayStyle      PlayStyle
	TeamPreference TeamPreference
	MinSlots       int
	StartFrom      *time.Time
	StartTo        *time.Time
}

func (f Filters) match(inv *Invitation, remaining int) bool {
	if f.PlayerLevel != "" && f.PlayerLevel != LevelAny && inv.PlayerLevel != f.PlayerLevel && inv.PlayerLevel != LevelAny {
		return false
	}
	if f.PlayStyle != "" && f.PlayStyle != StyleAny && inv.PlayStyle != f.PlayStyle && inv.PlayStyle != StyleAny {
		return false
	}
	if f.TeamPreference != "" && f.TeamPreference != TeamAny && inv.TeamPreference != f.TeamPreference && inv.TeamPreference != TeamAny {
		return false
	}
	return remaining >= f.MinSlots
}

// Search lists open invitations matching the filters, soonest first.
func (s *Service) Search(ctx context.Context, f Filters) ([]*Invitation, error) {
	q := Query{Kind: s.policy.Kind, Statuses: []Status{StatusOpen}}
	if f.StartFrom != nil {
		from := f.StartFrom.Add(-time.Millisecond)
		q.StartAfter = &from
	}
	if f.StartTo != nil {
		to := f.StartTo.Add(time.Millisecond)
		q.StartBefore = &to
	}
	all, err := s.store.List(ctx, q)
	if err != nil {
		return nil, err
	}
	var found []*Invitation
	for _, inv := range all {
		if f.match(inv, s.Ledger(inv).Remaining()) {
			found = append(found, inv)
		}
	}
	return found, nil
}

// Available lists open invitations that still have room and whose deadline
// has not passed, soonest first.
func (s *Service) Available(ctx context.Context) ([]*Invitation, error) {
	now := s.now()
	all, err := s.store.List(ctx, Query{
		Kind:          s.policy.Kind,
		Statuses:      []Status{StatusOpen},
		DeadlineAfter: &now,
	})
	if err != nil {
		return nil, err
	}
	var found []*Invitation
	for _, inv := range all {
		if s.Ledger(inv).Remaining() > 0 {
			found = append(found, inv)
		}
	}
	return found, nil
}

// Mine lists the invitations userID organizes, appears on or represents,
// latest first.
func (s *Service) Mine(ctx context.Context, userID string) ([]*Invitation, error) {
	all, err := s.store.List(ctx, Query{Kind: s.policy.Kind, NewestFirst: true})
	if err != nil {
		return nil, err
	}
	var found []*Invitation
	for _, inv := range all {
		_, listed := inv.Participant(userID)
		represents := inv.RepresentativeID != nil && *inv.RepresentativeID == userID
		if listed || represents || inv.IsOwner(userID) {
			found = append(found, inv)
		}
	}
	return found, nil
}

// HasOpen reports whether userID already organizes an open invitation. When
// startAfter is set only invitations starting after it count.
func (s *Service) HasOpen(ctx context.Context, userID string, startAfter *time.Time) (bool, error) {
	open, err := s.store.List(ctx, Query{
		Kind:       s.policy.Kind,
		Statuses:   []Status{StatusOpen},
		CreatedBy:  userID,
		StartAfter: startAfter,
	})
	if err != nil {
		return false, err
	}
	return len(open) > 0, nil
}

// List runs q over this service's kind.
func (s *Service) List(ctx context.Context, q Query) ([]*Invitation, error) {
	q.Kind = s.policy.Kind
	return s.store.List(ctx, q)
}

// Purge deletes cancelled and completed invitations of every kind last
// updated before cutoff.
func (s *Service) Purge(ctx context.Context, cutoff time.Time) (int64, error) {
	n, err := s.store.DeleteFinishedBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to purge invitations: %w", err)
	}
	return n, nil
}
