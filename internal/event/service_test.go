package event

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/mauv0809/fieldmatch/internal/booking"
	"github.com/mauv0809/fieldmatch/internal/facility"
	"github.com/mauv0809/fieldmatch/internal/invitation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	store    *invitation.MockStore
	bookings *booking.MockStore
	svc      *Service
}

func setup(t *testing.T) fixture {
	t.Helper()
	fields := facility.NewMock()
	fields.Fields["court-1"] = facility.Field{ID: "court-1", Name: "Court 1", PricePerHour: 200000}
	f := fixture{store: invitation.NewMock(), bookings: booking.NewMock()}
	f.svc = NewService(f.store, fields, f.bookings)
	f.svc.SetClock(func() time.Time { return now })
	return f
}

func validRequest() CreateRequest {
	return CreateRequest{
		Name:      "Sunday doubles",
		FieldID:   "court-1",
		StartTime: now.Add(24 * time.Hour),
		EndTime:   now.Add(26 * time.Hour),
	}
}

// withPlayers creates an event and accepts n players onto it.
func (f fixture) withPlayers(t *testing.T, req CreateRequest, n int) *invitation.Invitation {
	t.Helper()
	ctx := context.Background()
	inv, err := f.svc.Create(ctx, "owner", req)
	require.NoError(t, err)
	for i := 1; i <= n; i++ {
		player := fmt.Sprintf("p%d", i)
		_, err := f.svc.ShowInterest(ctx, inv.ID, player, "")
		require.NoError(t, err)
		inv, err = f.svc.AcceptPlayer(ctx, inv.ID, "owner", player)
		require.NoError(t, err)
	}
	return inv
}

func TestCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("applies defaults", func(t *testing.T) {
		f := setup(t)
		inv, err := f.svc.Create(ctx, "owner", validRequest())
		require.NoError(t, err)

		assert.Equal(t, invitation.KindEvent, inv.Kind)
		assert.Equal(t, invitation.StatusOpen, inv.Status)
		assert.Equal(t, 4, inv.MinPlayers)
		assert.Equal(t, 8, inv.MaxPlayers)
		assert.Equal(t, 7, inv.AvailableSlots)
		assert.Equal(t, now.Add(22*time.Hour), inv.Deadline)
		assert.Equal(t, 20.0, inv.DiscountPercent)
		// 200000 * 2h * 0.8 / 8 players
		assert.Equal(t, int64(40000), inv.EstimatedPrice)
		assert.Equal(t, invitation.LevelAny, inv.PlayerLevel)
		assert.Equal(t, invitation.StyleCasual, inv.PlayStyle)
		assert.Equal(t, invitation.TeamRandom, inv.TeamPreference)
	})

	tests := []struct {
		name    string
		mutate  func(r *CreateRequest)
		wantErr error
		msg     string
	}{
		{"start in the past", func(r *CreateRequest) { r.StartTime = now.Add(-time.Hour) }, invitation.ErrValidation, "start time must be in the future"},
		{"end before start", func(r *CreateRequest) { r.EndTime = r.StartTime }, invitation.ErrValidation, "end time must be after start time"},
		{"deadline after start", func(r *CreateRequest) { d := r.StartTime; r.Deadline = &d }, invitation.ErrValidation, "deadline must be before start time"},
		{"too few players", func(r *CreateRequest) { r.MinPlayers = 3 }, invitation.ErrValidation, "minimum players must be between 4 and 8"},
		{"too many players", func(r *CreateRequest) { r.MaxPlayers = 9 }, invitation.ErrValidation, "maximum players must be between 4 and 8"},
		{"max below min", func(r *CreateRequest) { r.MinPlayers = 6; r.MaxPlayers = 5 }, invitation.ErrValidation, "maximum players must be greater than or equal to minimum players"},
		{"unknown field", func(r *CreateRequest) { r.FieldID = "nope" }, invitation.ErrNotFound, "field not found"},
		{"discount out of range", func(r *CreateRequest) { d := 120.0; r.DiscountPercent = &d }, invitation.ErrValidation, "discount must be between 0 and 100 percent"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setup(t)
			req := validRequest()
			tt.mutate(&req)
			_, err := f.svc.Create(ctx, "owner", req)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.EqualError(t, err, tt.msg)
		})
	}

	t.Run("one open event per organizer", func(t *testing.T) {
		f := setup(t)
		_, err := f.svc.Create(ctx, "owner", validRequest())
		require.NoError(t, err)

		_, err = f.svc.Create(ctx, "owner", validRequest())
		assert.ErrorIs(t, err, invitation.ErrConflict)

		_, err = f.svc.Create(ctx, "someone-else", validRequest())
		assert.NoError(t, err)
	})
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	inv := f.withPlayers(t, validRequest(), 4)

	name := "Renamed"
	_, err := f.svc.Update(ctx, inv.ID, "p1", Patch{Name: &name})
	assert.ErrorIs(t, err, invitation.ErrForbidden)

	maxPlayers := 6
	updated, err := f.svc.Update(ctx, inv.ID, "owner", Patch{Name: &name, MaxPlayers: &maxPlayers})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)
	assert.Equal(t, 1, updated.AvailableSlots)

	maxPlayers = 4
	_, err = f.svc.Update(ctx, inv.ID, "owner", Patch{MaxPlayers: &maxPlayers})
	assert.ErrorIs(t, err, invitation.ErrCapacityExceeded)

	late := inv.StartTime.Add(time.Minute)
	_, err = f.svc.Update(ctx, inv.ID, "owner", Patch{Deadline: &late})
	assert.ErrorIs(t, err, invitation.ErrValidation)

	stored, err := f.svc.Get(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, 6, stored.MaxPlayers, "failed updates leave the event untouched")
	assert.Equal(t, int64(40000), stored.EstimatedPrice, "the estimate is fixed at creation")

	maxPlayers = 5
	updated, err = f.svc.Update(ctx, inv.ID, "owner", Patch{MaxPlayers: &maxPlayers})
	require.NoError(t, err)
	assert.Equal(t, 0, updated.AvailableSlots)
	assert.Equal(t, invitation.StatusFull, updated.Status, "no slot left closes the event")

	_, err = f.svc.Update(ctx, inv.ID, "owner", Patch{Name: &name})
	assert.ErrorIs(t, err, invitation.ErrValidation, "a full event is no longer editable")
}

func TestLeave(t *testing.T) {
	ctx := context.Background()

	t.Run("organizer cannot leave", func(t *testing.T) {
		f := setup(t)
		inv := f.withPlayers(t, validRequest(), 0)
		_, err := f.svc.Leave(ctx, inv.ID, "owner")
		assert.ErrorIs(t, err, invitation.ErrValidation)
	})

	t.Run("refunds the slot but keeps a full event full", func(t *testing.T) {
		f := setup(t)
		req := validRequest()
		req.MaxPlayers = 4
		inv := f.withPlayers(t, req, 3)
		require.Equal(t, invitation.StatusFull, inv.Status)

		inv, err := f.svc.Leave(ctx, inv.ID, "p2")
		require.NoError(t, err)
		assert.Equal(t, invitation.StatusFull, inv.Status)
		assert.Equal(t, 1, inv.AvailableSlots)
		_, listed := inv.Participant("p2")
		assert.False(t, listed)
	})

	t.Run("not listed", func(t *testing.T) {
		f := setup(t)
		inv := f.withPlayers(t, validRequest(), 0)
		_, err := f.svc.Leave(ctx, inv.ID, "stranger")
		assert.ErrorIs(t, err, invitation.ErrNotFound)
	})

	t.Run("after the deadline", func(t *testing.T) {
		f := setup(t)
		inv := f.withPlayers(t, validRequest(), 1)
		f.svc.SetClock(func() time.Time { return inv.Deadline.Add(time.Second) })
		_, err := f.svc.Leave(ctx, inv.ID, "p1")
		assert.ErrorIs(t, err, invitation.ErrValidation)
	})
}

func TestConvert(t *testing.T) {
	ctx := context.Background()

	t.Run("one player short", func(t *testing.T) {
		f := setup(t)
		inv := f.withPlayers(t, validRequest(), 2)
		_, _, err := f.svc.Convert(ctx, inv.ID, "owner")
		assert.ErrorIs(t, err, invitation.ErrValidation)
	})

	t.Run("exactly the minimum", func(t *testing.T) {
		f := setup(t)
		inv := f.withPlayers(t, validRequest(), 3)

		converted, b, err := f.svc.Convert(ctx, inv.ID, "owner")
		require.NoError(t, err)
		assert.Equal(t, invitation.StatusConfirmed, converted.Status)
		assert.ElementsMatch(t, []string{"owner", "p1", "p2", "p3"}, b.Participants)
		assert.Len(t, b.ParticipantDetails, 4)
		assert.Equal(t, booking.TypeEventMatching, b.Type)
		assert.Equal(t, booking.StatusConfirmed, b.Status)
		// 200000 * 2h * 0.8 split four ways
		assert.Equal(t, int64(320000), b.TotalPrice)
		for _, d := range b.ParticipantDetails {
			require.NotNil(t, d.PricePerPerson)
			assert.Equal(t, int64(80000), *d.PricePerPerson)
			assert.Equal(t, booking.PaymentPending, d.PaymentStatus)
		}
		assert.Contains(t, b.Notes, "Sunday doubles")

		_, _, err = f.svc.Convert(ctx, inv.ID, "owner")
		assert.ErrorIs(t, err, invitation.ErrConflict)
	})
}

func TestDecide(t *testing.T) {
	base := func(status invitation.Status, accepted int) *invitation.Invitation {
		inv := &invitation.Invitation{
			Status:     status,
			MinPlayers: 4,
			MaxPlayers: 6,
			Deadline:   now.Add(-time.Minute),
			EndTime:    now.Add(time.Hour),
		}
		for i := 0; i < accepted; i++ {
			inv.InterestedPlayers = append(inv.InterestedPlayers, invitation.Participant{
				UserID: fmt.Sprintf("p%d", i), Status: invitation.ParticipantAccepted,
			})
		}
		return inv
	}

	tests := []struct {
		name   string
		inv    *invitation.Invitation
		want   invitation.Status
		change bool
	}{
		{"enough players confirms", base(invitation.StatusOpen, 3), invitation.StatusConfirmed, true},
		{"too few players cancels", base(invitation.StatusOpen, 2), invitation.StatusCancelled, true},
		{"full past deadline confirms", base(invitation.StatusFull, 5), invitation.StatusConfirmed, true},
		{"deadline not reached", func() *invitation.Invitation {
			inv := base(invitation.StatusOpen, 0)
			inv.Deadline = now
			return inv
		}(), "", false},
		{"confirmed still running", base(invitation.StatusConfirmed, 3), "", false},
		{"confirmed and over", func() *invitation.Invitation {
			inv := base(invitation.StatusConfirmed, 3)
			inv.EndTime = now.Add(-time.Second)
			return inv
		}(), invitation.StatusCompleted, true},
		{"cancelled is terminal", base(invitation.StatusCancelled, 0), "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Decide(tt.inv, now)
			assert.Equal(t, tt.change, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAutoAdvance(t *testing.T) {
	ctx := context.Background()

	t.Run("sweep scenario", func(t *testing.T) {
		f := setup(t)
		req := validRequest()
		req.MaxPlayers = 6
		confirmed := f.withPlayers(t, req, 3)
		f2 := setup(t)
		cancelled := f2.withPlayers(t, req, 2)

		later := confirmed.Deadline.Add(time.Minute)
		f.svc.SetClock(func() time.Time { return later })
		f2.svc.SetClock(func() time.Time { return later })

		due, err := f.svc.DueForDecision(ctx, later)
		require.NoError(t, err)
		require.Len(t, due, 1)
		out, err := f.svc.AutoAdvance(ctx, due[0])
		require.NoError(t, err)
		assert.True(t, out.Changed)
		assert.Equal(t, invitation.StatusConfirmed, out.To)

		out, err = f2.svc.CheckStatus(ctx, cancelled.ID)
		require.NoError(t, err)
		assert.Equal(t, invitation.StatusCancelled, out.To)

		stored, err := f2.svc.Get(ctx, cancelled.ID)
		require.NoError(t, err)
		assert.Equal(t, invitation.StatusCancelled, stored.Status)
	})

	t.Run("lost race is a no-op", func(t *testing.T) {
		f := setup(t)
		inv := f.withPlayers(t, validRequest(), 3)
		stale, err := f.svc.Get(ctx, inv.ID)
		require.NoError(t, err)

		_, err = f.svc.Cancel(ctx, inv.ID, "owner")
		require.NoError(t, err)

		f.svc.SetClock(func() time.Time { return inv.Deadline.Add(time.Minute) })
		out, err := f.svc.AutoAdvance(ctx, stale)
		require.NoError(t, err)
		assert.False(t, out.Changed)
		assert.Equal(t, invitation.StatusOpen, stale.Status)

		stored, err := f.svc.Get(ctx, inv.ID)
		require.NoError(t, err)
		assert.Equal(t, invitation.StatusCancelled, stored.Status)
	})

	t.Run("completion", func(t *testing.T) {
		f := setup(t)
		inv := f.withPlayers(t, validRequest(), 3)
		_, _, err := f.svc.Convert(ctx, inv.ID, "owner")
		require.NoError(t, err)

		after := inv.EndTime.Add(time.Minute)
		due, err := f.svc.DueForCompletion(ctx, after)
		require.NoError(t, err)
		require.Len(t, due, 1)

		f.svc.SetClock(func() time.Time { return after })
		out, err := f.svc.AutoAdvance(ctx, due[0])
		require.NoError(t, err)
		assert.Equal(t, invitation.StatusCompleted, out.To)
	})
}

func TestWarnings(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	soon := validRequest()
	soon.StartTime = now.Add(3 * time.Hour)
	soon.EndTime = now.Add(4 * time.Hour)
	under := f.withPlayers(t, soon, 1)

	other := setup(t)
	enough := other.withPlayers(t, soon, 3)

	due, err := f.svc.DueForWarning(ctx, now)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, under.ID, due[0].ID)

	assert.False(t, NeedsWarning(enough, now), "enough players")
	assert.False(t, NeedsWarning(under, now.Add(-2*time.Hour)), "deadline outside the window")
	assert.False(t, NeedsWarning(under, under.Deadline.Add(time.Second)), "deadline passed")

	// Nothing marks an event as warned, so the next sweep finds it again.
	due, err = f.svc.DueForWarning(ctx, now.Add(30*time.Minute))
	require.NoError(t, err)
	assert.Len(t, due, 1)
}
