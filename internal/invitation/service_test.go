package invitation

import (
	"context"
	"testing"
	"time"

	"github.com/mauv0809/fieldmatch/internal/booking"
	"github.com/mauv0809/fieldmatch/internal/facility"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

type testDeps struct {
	store    *MockStore
	fields   *facility.MockStore
	bookings *booking.MockStore
	svc      *Service
}

func setupService(t *testing.T) testDeps {
	t.Helper()
	d := testDeps{
		store:    NewMock(),
		fields:   facility.NewMock(),
		bookings: booking.NewMock(),
	}
	d.fields.Fields["field-1"] = facility.Field{ID: "field-1", PricePerHour: 100000}
	d.svc = NewService(d.store, d.fields, d.bookings, testPolicy())
	d.svc.SetClock(func() time.Time { return testNow })
	return d
}

func (d testDeps) putEvent(t *testing.T, maxPlayers int, mutate ...func(*Invitation)) *Invitation {
	t.Helper()
	inv := newEvent(maxPlayers)
	inv.FieldID = "field-1"
	inv.StartTime = testNow.Add(48 * time.Hour)
	inv.EndTime = inv.StartTime.Add(2 * time.Hour)
	inv.Deadline = inv.StartTime.Add(-2 * time.Hour)
	inv.Version = 1
	for _, m := range mutate {
		m(inv)
	}
	d.store.Put(inv)
	return inv
}

func (d testDeps) join(t *testing.T, id string, users ...string) {
	t.Helper()
	for _, u := range users {
		_, err := d.svc.ShowInterest(context.Background(), id, u, "")
		require.NoError(t, err)
	}
}

func (d testDeps) accept(t *testing.T, id string, users ...string) {
	t.Helper()
	for _, u := range users {
		_, err := d.svc.AcceptPlayer(context.Background(), id, "owner", u)
		require.NoError(t, err)
	}
}

func TestService_Get(t *testing.T) {
	d := setupService(t)
	ctx := context.Background()
	d.putEvent(t, 8)
	d.store.Put(&Invitation{ID: "m1", Kind: KindMatchmaking, Status: StatusOpen})

	_, err := d.svc.Get(ctx, "e1")
	require.NoError(t, err)

	_, err = d.svc.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.EqualError(t, err, "event not found")

	_, err = d.svc.Get(ctx, "m1")
	assert.ErrorIs(t, err, ErrNotFound, "records of another kind are invisible")
}

func TestService_ShowInterest(t *testing.T) {
	ctx := context.Background()

	t.Run("adds a pending player", func(t *testing.T) {
		d := setupService(t)
		d.putEvent(t, 8)
		inv, err := d.svc.ShowInterest(ctx, "e1", "p1", "left handed")
		require.NoError(t, err)
		require.Len(t, inv.InterestedPlayers, 1)
		assert.Equal(t, testNow, inv.InterestedPlayers[0].RequestedAt)
		assert.Equal(t, int64(2), inv.Version)

		stored, err := d.svc.Get(ctx, "e1")
		require.NoError(t, err)
		assert.Len(t, stored.InterestedPlayers, 1)
	})

	t.Run("organizer cannot join", func(t *testing.T) {
		d := setupService(t)
		d.putEvent(t, 8)
		_, err := d.svc.ShowInterest(ctx, "e1", "owner", "")
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("closed after the deadline", func(t *testing.T) {
		d := setupService(t)
		d.putEvent(t, 8, func(inv *Invitation) { inv.Deadline = testNow.Add(-time.Minute) })
		_, err := d.svc.ShowInterest(ctx, "e1", "p1", "")
		assert.ErrorIs(t, err, ErrValidation)
		assert.ErrorContains(t, err, "deadline")
	})

	t.Run("only while open", func(t *testing.T) {
		d := setupService(t)
		d.putEvent(t, 8, func(inv *Invitation) { inv.Status = StatusFull })
		_, err := d.svc.ShowInterest(ctx, "e1", "p1", "")
		assert.ErrorIs(t, err, ErrValidation)
		assert.NotErrorIs(t, err, ErrConflict)
	})
}

func TestService_AcceptFillsAndRejectReopens(t *testing.T) {
	d := setupService(t)
	ctx := context.Background()
	d.putEvent(t, 3)
	d.join(t, "e1", "p1", "p2", "p3")

	_, err := d.svc.AcceptPlayer(ctx, "e1", "p3", "p1")
	assert.ErrorIs(t, err, ErrForbidden)

	d.accept(t, "e1", "p1", "p2")
	inv, err := d.svc.Get(ctx, "e1")
	require.NoError(t, err)
	assert.Equal(t, StatusFull, inv.Status)
	assert.Equal(t, 0, inv.AvailableSlots)

	_, err = d.svc.AcceptPlayer(ctx, "e1", "owner", "p3")
	assert.ErrorIs(t, err, ErrValidation, "a full event accepts nobody")

	// Rejecting a pending player frees nothing.
	inv, err = d.svc.RejectPlayer(ctx, "e1", "owner", "p3")
	require.NoError(t, err)
	assert.Equal(t, StatusFull, inv.Status)

	inv, err = d.svc.RejectPlayer(ctx, "e1", "owner", "p2")
	require.NoError(t, err)
	assert.Equal(t, StatusOpen, inv.Status)
	assert.Equal(t, 1, inv.AvailableSlots)

	d.accept(t, "e1", "p3")
	inv, err = d.svc.RemovePlayer(ctx, "e1", "owner", "p3")
	require.NoError(t, err)
	assert.Equal(t, StatusOpen, inv.Status)
	assert.Equal(t, 1, inv.AvailableSlots)
}

func TestService_RosterLockedOnceSettled(t *testing.T) {
	d := setupService(t)
	ctx := context.Background()
	d.putEvent(t, 8, func(inv *Invitation) {
		inv.Status = StatusConfirmed
		inv.InterestedPlayers = []Participant{{UserID: "p1", Status: ParticipantAccepted}}
	})

	_, err := d.svc.RemovePlayer(ctx, "e1", "owner", "p1")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestService_Cancel(t *testing.T) {
	ctx := context.Background()

	d := setupService(t)
	d.putEvent(t, 8)
	_, err := d.svc.Cancel(ctx, "e1", "p1")
	assert.ErrorIs(t, err, ErrForbidden)

	inv, err := d.svc.Cancel(ctx, "e1", "owner")
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, inv.Status)

	_, err = d.svc.Cancel(ctx, "e1", "owner")
	assert.ErrorIs(t, err, ErrConflict)

	d = setupService(t)
	d.putEvent(t, 8, func(inv *Invitation) { inv.Status = StatusConfirmed })
	_, err = d.svc.Cancel(ctx, "e1", "owner")
	assert.ErrorIs(t, err, ErrValidation)
	assert.NotErrorIs(t, err, ErrConflict)
}

func TestService_Convert(t *testing.T) {
	ctx := context.Background()

	t.Run("too few accepted players", func(t *testing.T) {
		d := setupService(t)
		d.putEvent(t, 8)
		d.join(t, "e1", "p1", "p2")
		d.accept(t, "e1", "p1", "p2")

		_, _, err := d.svc.Convert(ctx, "e1", "owner")
		assert.ErrorIs(t, err, ErrValidation)
		assert.Empty(t, d.bookings.CreateCalls)
	})

	t.Run("converts exactly once", func(t *testing.T) {
		d := setupService(t)
		d.putEvent(t, 8)
		d.join(t, "e1", "p1", "p2", "p3", "p4")
		d.accept(t, "e1", "p1", "p2", "p3")

		inv, b, err := d.svc.Convert(ctx, "e1", "owner")
		require.NoError(t, err)
		assert.Equal(t, StatusConfirmed, inv.Status)
		require.NotNil(t, inv.BookingID)
		assert.Equal(t, b.ID, *inv.BookingID)
		assert.Equal(t, []string{"owner", "p1", "p2", "p3"}, b.Participants)

		_, _, err = d.svc.Convert(ctx, "e1", "owner")
		assert.ErrorIs(t, err, ErrConflict)
		assert.Len(t, d.bookings.CreateCalls, 1)
	})

	t.Run("only the organizer converts", func(t *testing.T) {
		d := setupService(t)
		d.putEvent(t, 8)
		_, _, err := d.svc.Convert(ctx, "e1", "p1")
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("cancelled invitations are not converted", func(t *testing.T) {
		d := setupService(t)
		d.putEvent(t, 8, func(inv *Invitation) { inv.Status = StatusCancelled })
		_, _, err := d.svc.Convert(ctx, "e1", "owner")
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("missing field", func(t *testing.T) {
		d := setupService(t)
		d.putEvent(t, 2, func(inv *Invitation) { inv.MinPlayers = 1; inv.FieldID = "gone" })
		_, _, err := d.svc.Convert(ctx, "e1", "owner")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("lost race cancels the orphaned booking", func(t *testing.T) {
		d := setupService(t)
		d.putEvent(t, 2, func(inv *Invitation) { inv.MinPlayers = 1 })
		d.store.SaveFunc = func(ctx context.Context, inv *Invitation, from Status) error {
			return ErrStale
		}

		_, _, err := d.svc.Convert(ctx, "e1", "owner")
		assert.ErrorIs(t, err, ErrConflict)
		require.Len(t, d.bookings.CreateCalls, 1)
		require.Len(t, d.bookings.UpdateStatusCalls, 1)
		assert.Equal(t, booking.StatusCancelled, d.bookings.UpdateStatusCalls[0].To)
	})
}

func TestService_ConcurrentWritersConflict(t *testing.T) {
	d := setupService(t)
	ctx := context.Background()
	d.putEvent(t, 8)

	stale, err := d.svc.Get(ctx, "e1")
	require.NoError(t, err)

	d.join(t, "e1", "p1")

	stale.Name = "renamed"
	err = d.store.Save(ctx, stale, stale.Status)
	assert.ErrorIs(t, err, ErrConflict)
	assert.EqualError(t, err, "invitation was modified concurrently")
}

func TestService_Queries(t *testing.T) {
	d := setupService(t)
	ctx := context.Background()

	d.putEvent(t, 8, func(inv *Invitation) { inv.PlayerLevel = LevelAny; inv.PlayStyle = StyleCasual })
	d.putEvent(t, 4, func(inv *Invitation) {
		inv.ID = "e2"
		inv.CreatedBy = "other"
		inv.StartTime = testNow.Add(24 * time.Hour)
		inv.PlayerLevel = LevelAdvanced
		inv.PlayStyle = StyleCompetitive
		inv.InterestedPlayers = []Participant{{UserID: "owner", Status: ParticipantPending}}
	})
	d.putEvent(t, 8, func(inv *Invitation) {
		inv.ID = "e3"
		inv.CreatedBy = "other"
		inv.PlayerLevel = LevelBeginner
		inv.Deadline = testNow.Add(-time.Hour)
	})
	d.putEvent(t, 8, func(inv *Invitation) {
		inv.ID = "e4"
		inv.CreatedBy = "third"
		inv.Status = StatusCancelled
	})

	found, err := d.svc.Search(ctx, Filters{PlayerLevel: LevelBeginner})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"e1", "e3"}, ids(found), "any matches every level")

	found, err = d.svc.Search(ctx, Filters{PlayStyle: StyleCompetitive, MinSlots: 3})
	require.NoError(t, err)
	assert.Equal(t, []string{"e2"}, ids(found))

	found, err = d.svc.Search(ctx, Filters{MinSlots: 4})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"e1", "e3"}, ids(found))

	found, err = d.svc.Available(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"e2", "e1"}, ids(found), "soonest first, past deadlines excluded")

	found, err = d.svc.Mine(ctx, "owner")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"e1", "e2"}, ids(found))

	has, err := d.svc.HasOpen(ctx, "owner", &testNow)
	require.NoError(t, err)
	assert.True(t, has)
	has, err = d.svc.HasOpen(ctx, "third", nil)
	require.NoError(t, err)
	assert.False(t, has)
}

func ids(invs []*Invitation) []string {
	out := make([]string, len(invs))
	for i, inv := range invs {
		out[i] = inv.ID
	}
	return out
}
