package booking_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/mauv0809/fieldmatch/internal/booking"
	"github.com/mauv0809/fieldmatch/internal/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) (booking.Store, *sql.DB, func()) {
	t.Helper()

	db, dbTeardown, err := database.InitDB(":memory:", "", "")
	require.NoError(t, err)

	return booking.New(db), db, dbTeardown
}

func sharedBooking(now time.Time, deadline time.Time, participants ...string) *booking.Booking {
	b := &booking.Booking{
		FieldID:      "field-1",
		UserID:       participants[0],
		StartTime:    deadline,
		EndTime:      deadline.Add(time.Hour),
		Type:         booking.TypeShared,
		Status:       booking.StatusWaiting,
		Participants: participants,
		JoinDeadline: &deadline,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	for _, p := range participants {
		b.ParticipantDetails = append(b.ParticipantDetails, booking.ParticipantDetail{
			UserID: p, PaymentStatus: booking.PaymentPending, JoinedAt: now,
		})
	}
	return b
}

func TestStore_CreateAndGet(t *testing.T) {
	store, _, teardown := setupTestDB(t)
	defer teardown()
	ctx := context.Background()

	now := time.Now().Truncate(time.Millisecond)
	price := int64(12000)
	b, err := booking.Build(booking.Draft{
		FieldID:         "field-1",
		OrganizerID:     "owner",
		StartTime:       now.Add(24 * time.Hour),
		EndTime:         now.Add(26 * time.Hour),
		Type:            booking.TypeEventMatching,
		Status:          booking.StatusConfirmed,
		Members:         []string{"a", "b", "c"},
		MinParticipants: 4,
		MaxParticipants: 6,
		TotalPrice:      48000,
		PricePerPerson:  &price,
		Notes:           "notes",
	}, now)
	require.NoError(t, err)

	require.NoError(t, store.Create(ctx, b))
	require.NotEmpty(t, b.ID)

	got, err := store.Get(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, b.Participants, got.Participants)
	require.Len(t, got.ParticipantDetails, 4)
	assert.Equal(t, price, *got.ParticipantDetails[2].PricePerPerson)
	assert.True(t, b.StartTime.Equal(got.StartTime))
	assert.Equal(t, int64(48000), got.TotalPrice)
	assert.Equal(t, booking.StatusConfirmed, got.Status)
	assert.Nil(t, got.JoinDeadline)

	_, err = store.Get(ctx, "missing")
	assert.ErrorIs(t, err, booking.ErrNotFound)
}

func TestStore_UpdateStatusIsConditional(t *testing.T) {
	store, _, teardown := setupTestDB(t)
	defer teardown()
	ctx := context.Background()
	now := time.Now()

	b := sharedBooking(now, now.Add(time.Hour), "u1", "u2")
	require.NoError(t, store.Create(ctx, b))

	ok, err := store.UpdateStatus(ctx, b.ID, booking.StatusWaiting, booking.StatusCancelled)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.UpdateStatus(ctx, b.ID, booking.StatusWaiting, booking.StatusCancelled)
	require.NoError(t, err)
	assert.False(t, ok, "second transition from a stale status must not apply")
}

func TestStore_ListExpiredShared(t *testing.T) {
	store, _, teardown := setupTestDB(t)
	defer teardown()
	ctx := context.Background()
	now := time.Now()

	expired := sharedBooking(now, now.Add(-time.Minute), "u1", "u2")
	future := sharedBooking(now, now.Add(time.Hour), "u3")
	confirmed := sharedBooking(now, now.Add(-time.Hour), "u4")
	confirmed.Status = booking.StatusConfirmed
	for _, b := range []*booking.Booking{expired, future, confirmed} {
		require.NoError(t, store.Create(ctx, b))
	}

	got, err := store.ListExpiredShared(ctx, now)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, expired.ID, got[0].ID)
}

func TestStore_DeleteFinishedBefore(t *testing.T) {
	store, db, teardown := setupTestDB(t)
	defer teardown()
	ctx := context.Background()
	now := time.Now()

	old := sharedBooking(now, now, "u1")
	old.Status = booking.StatusCancelled
	old.UpdatedAt = now.Add(-8 * 24 * time.Hour)
	recent := sharedBooking(now, now, "u2")
	recent.Status = booking.StatusCompleted
	active := sharedBooking(now, now, "u3")
	active.UpdatedAt = now.Add(-30 * 24 * time.Hour)
	for _, b := range []*booking.Booking{old, recent, active} {
		require.NoError(t, store.Create(ctx, b))
	}

	n, err := store.DeleteFinishedBefore(ctx, now.Add(-7*24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM bookings").Scan(&count))
	assert.Equal(t, 2, count)
}

func TestStore_SaveIsVersioned(t *testing.T) {
	store, _, teardown := setupTestDB(t)
	defer teardown()
	ctx := context.Background()

	now := time.Now().Truncate(time.Millisecond)
	b := sharedBooking(now, now.Add(48*time.Hour), "a")
	require.NoError(t, store.Create(ctx, b))

	first, err := store.Get(ctx, b.ID)
	require.NoError(t, err)
	second, err := store.Get(ctx, b.ID)
	require.NoError(t, err)

	first.Participants = append(first.Participants, "b")
	first.ParticipantDetails = append(first.ParticipantDetails, booking.ParticipantDetail{
		UserID: "b", PaymentStatus: booking.PaymentPaid, JoinedAt: now,
	})
	require.NoError(t, store.Save(ctx, first, booking.StatusWaiting))
	assert.Equal(t, int64(1), first.Version)

	second.Status = booking.StatusCancelled
	err = store.Save(ctx, second, booking.StatusWaiting)
	assert.ErrorIs(t, err, booking.ErrStale)
	assert.ErrorIs(t, err, booking.ErrConflict)

	got, err := store.Get(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, got.Participants)
	assert.Equal(t, booking.PaymentPaid, got.ParticipantDetails[1].PaymentStatus)
	assert.Equal(t, booking.StatusWaiting, got.Status)

	// A status sweep also bumps the version.
	ok, err := store.UpdateStatus(ctx, b.ID, booking.StatusWaiting, booking.StatusCancelled)
	require.NoError(t, err)
	require.True(t, ok)
	assert.ErrorIs(t, store.Save(ctx, got, booking.StatusWaiting), booking.ErrStale)
}

func TestStore_FindOpenShared(t *testing.T) {
	store, _, teardown := setupTestDB(t)
	defer teardown()
	ctx := context.Background()

	now := time.Now().Truncate(time.Millisecond)
	start := now.Add(72 * time.Hour)
	full := sharedBooking(now, start, "a", "b", "c", "d")
	open := sharedBooking(now.Add(time.Second), start, "e")
	other := sharedBooking(now, start.Add(time.Hour), "f")
	for _, b := range []*booking.Booking{full, open, other} {
		require.NoError(t, store.Create(ctx, b))
	}

	got, err := store.FindOpenShared(ctx, "field-1", start, start.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, open.ID, got.ID)

	_, err = store.FindOpenShared(ctx, "field-2", start, start.Add(time.Hour))
	assert.ErrorIs(t, err, booking.ErrNotFound)
}

func TestStore_ListWaiting(t *testing.T) {
	store, _, teardown := setupTestDB(t)
	defer teardown()
	ctx := context.Background()

	now := time.Now().Truncate(time.Millisecond)
	later := sharedBooking(now, now.Add(96*time.Hour), "a")
	sooner := sharedBooking(now, now.Add(48*time.Hour), "b")
	expired := sharedBooking(now, now.Add(-time.Hour), "c")
	for _, b := range []*booking.Booking{later, sooner, expired} {
		require.NoError(t, store.Create(ctx, b))
	}

	waiting, err := store.ListWaiting(ctx, now)
	require.NoError(t, err)
	require.Len(t, waiting, 2)
	assert.Equal(t, sooner.ID, waiting[0].ID)
	assert.Equal(t, later.ID, waiting[1].ID)
}
