package sweeper

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/mauv0809/fieldmatch/internal/booking"
	"github.com/mauv0809/fieldmatch/internal/event"
	"github.com/mauv0809/fieldmatch/internal/facility"
	"github.com/mauv0809/fieldmatch/internal/invitation"
	"github.com/mauv0809/fieldmatch/internal/metrics"
	"github.com/mauv0809/fieldmatch/internal/notifier"
	"github.com/mauv0809/fieldmatch/internal/pubsub"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	store    *invitation.MockStore
	bookings *booking.MockStore
	notif    *notifier.Mock
	metrics  *metrics.Mock
	counters *metrics.MockCounters
	sweeper  *Sweeper
}

func setup(t *testing.T) fixture {
	t.Helper()
	fields := facility.NewMock()
	fields.Fields["court-1"] = facility.Field{ID: "court-1", Name: "Court 1", Location: "Hall A", PricePerHour: 200000}
	fields.Users["owner"] = facility.User{ID: "owner", Email: "owner@example.com"}
	fields.Users["p1"] = facility.User{ID: "p1", Email: "p1@example.com"}
	fields.Users["p2"] = facility.User{ID: "p2"}

	f := fixture{
		store:    invitation.NewMock(),
		bookings: booking.NewMock(),
		notif:    notifier.NewMock(),
		metrics:  metrics.NewMock(),
		counters: metrics.NewMockCounters(),
	}
	events := event.NewService(f.store, fields, f.bookings)
	events.SetClock(func() time.Time { return now })
	f.sweeper = New(events, f.bookings, fields, f.notif, nil, f.metrics, f.counters)
	f.sweeper.SetWorkers(2)
	return f
}

// putEvent stores an event with the given accepted players.
func (f fixture) putEvent(id string, status invitation.Status, deadline time.Time, minPlayers, accepted int) {
	inv := &invitation.Invitation{
		ID:         id,
		Kind:       invitation.KindEvent,
		FieldID:    "court-1",
		CreatedBy:  "owner",
		Name:       "Event " + id,
		StartTime:  deadline.Add(2 * time.Hour),
		EndTime:    deadline.Add(4 * time.Hour),
		Deadline:   deadline,
		Status:     status,
		MinPlayers: minPlayers,
		MaxPlayers: 8,
		Version:    1,
	}
	for i := 1; i <= accepted; i++ {
		inv.InterestedPlayers = append(inv.InterestedPlayers, invitation.Participant{
			UserID: fmt.Sprintf("p%d", i),
			Status: invitation.ParticipantAccepted,
		})
	}
	inv.AvailableSlots = inv.MaxPlayers - 1 - accepted
	f.store.Put(inv)
}

func (f fixture) status(t *testing.T, id string) invitation.Status {
	t.Helper()
	inv, err := f.store.Get(context.Background(), id)
	require.NoError(t, err)
	return inv.Status
}

func sentFor(notes []*notifier.Notification, id string) *notifier.Notification {
	for _, n := range notes {
		if n.InvitationID == id {
			return n
		}
	}
	return nil
}

func TestResolveDeadlines(t *testing.T) {
	ctx := context.Background()

	t.Run("confirms or cancels events past their deadline", func(t *testing.T) {
		f := setup(t)
		f.putEvent("enough", invitation.StatusOpen, now.Add(-time.Minute), 4, 3)
		f.putEvent("short", invitation.StatusOpen, now.Add(-time.Minute), 4, 1)
		f.putEvent("full", invitation.StatusFull, now.Add(-time.Minute), 4, 7)
		f.putEvent("later", invitation.StatusOpen, now.Add(time.Hour), 4, 0)

		report, err := f.sweeper.Run(ctx, TaskDeadlines, false)
		require.NoError(t, err)
		assert.Equal(t, Report{Task: TaskDeadlines, Scanned: 3, Changed: 3}, report)

		assert.Equal(t, invitation.StatusConfirmed, f.status(t, "enough"))
		assert.Equal(t, invitation.StatusCancelled, f.status(t, "short"))
		assert.Equal(t, invitation.StatusConfirmed, f.status(t, "full"))
		assert.Equal(t, invitation.StatusOpen, f.status(t, "later"))

		sent := f.notif.Sent()
		require.Len(t, sent, 3)
		confirmed := sentFor(sent, "enough")
		require.NotNil(t, confirmed)
		assert.Equal(t, notifier.TemplateConfirmed, confirmed.Template)
		assert.Equal(t, "Court 1", confirmed.FieldName)
		assert.Equal(t, "Hall A", confirmed.FieldLocation)
		assert.Equal(t, 4, confirmed.Players)
		assert.ElementsMatch(t, []string{"owner@example.com", "p1@example.com"}, confirmed.Recipients)

		cancelled := sentFor(sent, "short")
		require.NotNil(t, cancelled)
		assert.Equal(t, notifier.TemplateCancelled, cancelled.Template)
		assert.Equal(t, 2, cancelled.Players)

		assert.Equal(t, 2, f.metrics.Transitions("event", "confirmed"))
		assert.Equal(t, 1, f.metrics.Transitions("event", "cancelled"))
		assert.Equal(t, 1, f.metrics.SweepRuns(string(TaskDeadlines)))
		assert.Len(t, f.metrics.SweepDurations(string(TaskDeadlines)), 1)

		counters, err := f.counters.GetAll()
		require.NoError(t, err)
		assert.Equal(t, int64(1), counters["sweep.deadlines.runs"])
		assert.Equal(t, int64(3), counters["sweep.deadlines.changed"])
	})

	t.Run("dry run changes nothing", func(t *testing.T) {
		f := setup(t)
		f.putEvent("enough", invitation.StatusOpen, now.Add(-time.Minute), 4, 3)

		report, err := f.sweeper.Run(ctx, TaskDeadlines, true)
		require.NoError(t, err)
		assert.True(t, report.DryRun)
		assert.Equal(t, 1, report.Scanned)
		assert.Zero(t, report.Changed)
		assert.Equal(t, invitation.StatusOpen, f.status(t, "enough"))
		assert.Empty(t, f.notif.Sent())

		counters, err := f.counters.GetAll()
		require.NoError(t, err)
		assert.Empty(t, counters)
	})

	t.Run("one failing record does not stop the sweep", func(t *testing.T) {
		f := setup(t)
		f.putEvent("broken", invitation.StatusOpen, now.Add(-time.Minute), 4, 3)
		f.putEvent("fine", invitation.StatusOpen, now.Add(-2*time.Minute), 4, 3)
		f.store.SaveFunc = func(ctx context.Context, inv *invitation.Invitation, from invitation.Status) error {
			if inv.ID == "broken" {
				return errors.New("disk full")
			}
			return nil
		}

		report, err := f.sweeper.Run(ctx, TaskDeadlines, false)
		require.NoError(t, err)
		assert.Equal(t, 2, report.Scanned)
		assert.Equal(t, 1, report.Changed)
		assert.Equal(t, 1, report.Failed)
		assert.Equal(t, 1, f.metrics.SweepFailures(string(TaskDeadlines)))
		require.Len(t, f.notif.Sent(), 1)
		assert.Equal(t, "fine", f.notif.Sent()[0].InvitationID)
	})

	t.Run("a lost race is skipped quietly", func(t *testing.T) {
		f := setup(t)
		f.putEvent("raced", invitation.StatusOpen, now.Add(-time.Minute), 4, 3)
		f.store.SaveFunc = func(ctx context.Context, inv *invitation.Invitation, from invitation.Status) error {
			return invitation.ErrStale
		}

		report, err := f.sweeper.Run(ctx, TaskDeadlines, false)
		require.NoError(t, err)
		assert.Zero(t, report.Changed)
		assert.Zero(t, report.Failed)
		assert.Empty(t, f.notif.Sent())
	})

	t.Run("a notification failure keeps the transition", func(t *testing.T) {
		f := setup(t)
		f.putEvent("enough", invitation.StatusOpen, now.Add(-time.Minute), 4, 3)
		f.notif.SendInvitationNotificationFunc = func(n *notifier.Notification, dryRun bool) error {
			return errors.New("slack down")
		}

		report, err := f.sweeper.Run(ctx, TaskDeadlines, false)
		require.NoError(t, err)
		assert.Equal(t, 1, report.Changed)
		assert.Equal(t, invitation.StatusConfirmed, f.status(t, "enough"))
	})

	t.Run("listing failure fails the sweep", func(t *testing.T) {
		f := setup(t)
		f.store.ListFunc = func(ctx context.Context, q invitation.Query) ([]*invitation.Invitation, error) {
			return nil, errors.New("db gone")
		}
		_, err := f.sweeper.Run(ctx, TaskDeadlines, false)
		require.Error(t, err)
		assert.Equal(t, 1, f.metrics.SweepFailures(string(TaskDeadlines)))
	})
}

func TestNotificationsGoThroughPubSub(t *testing.T) {
	f := setup(t)
	ps := pubsub.NewMock()
	f.sweeper.pubsub = ps
	f.putEvent("enough", invitation.StatusOpen, now.Add(-time.Minute), 4, 3)

	_, err := f.sweeper.Run(context.Background(), TaskDeadlines, false)
	require.NoError(t, err)

	assert.Empty(t, f.notif.Sent(), "the push handler delivers, not the sweeper")
	require.Len(t, ps.SendMessageCalls, 1)
	assert.Equal(t, pubsub.EventNotifyInvitation, ps.SendMessageCalls[0].Topic)
	n, ok := ps.SendMessageCalls[0].Data.(*notifier.Notification)
	require.True(t, ok)
	assert.Equal(t, "enough", n.InvitationID)

	raw, err := pubsub.Encode(n)
	require.NoError(t, err)
	var decoded notifier.Notification
	require.NoError(t, ps.ProcessMessage(raw, &decoded))
	assert.Equal(t, n.Recipients, decoded.Recipients)
	assert.True(t, n.StartTime.Equal(decoded.StartTime))
}

func TestSendWarnings(t *testing.T) {
	f := setup(t)
	f.putEvent("closing", invitation.StatusOpen, now.Add(90*time.Minute), 4, 1)
	f.putEvent("far", invitation.StatusOpen, now.Add(3*time.Hour), 4, 1)
	f.putEvent("ready", invitation.StatusOpen, now.Add(time.Hour), 4, 3)

	report, err := f.sweeper.Run(context.Background(), TaskWarnings, false)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Changed)

	sent := f.notif.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "closing", sent[0].InvitationID)
	assert.Equal(t, notifier.TemplateWarning, sent[0].Template)
	assert.Equal(t, "1h 30m", sent[0].TimeLeft)
	assert.Equal(t, invitation.StatusOpen, f.status(t, "closing"), "a warning never changes the status")

	// No deduplication: the next run warns again.
	_, err = f.sweeper.Run(context.Background(), TaskWarnings, false)
	require.NoError(t, err)
	assert.Len(t, f.notif.Sent(), 2)
}

func TestCompleteFinished(t *testing.T) {
	f := setup(t)
	// Ended one minute ago.
	f.putEvent("played", invitation.StatusConfirmed, now.Add(-4*time.Hour-time.Minute), 4, 3)
	f.putEvent("running", invitation.StatusConfirmed, now.Add(-3*time.Hour), 4, 3)

	report, err := f.sweeper.Run(context.Background(), TaskCompletion, false)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Changed)
	assert.Equal(t, invitation.StatusCompleted, f.status(t, "played"))
	assert.Equal(t, invitation.StatusConfirmed, f.status(t, "running"))
	assert.Empty(t, f.notif.Sent())
	assert.Equal(t, 1, f.metrics.Transitions("event", "completed"))
}

func TestCleanup(t *testing.T) {
	f := setup(t)
	f.store.DeleteFinishedBeforeFunc = func(ctx context.Context, cutoff time.Time) (int64, error) { return 3, nil }
	f.bookings.DeleteFinishedBeforeFunc = func(ctx context.Context, cutoff time.Time) (int64, error) { return 2, nil }

	report, err := f.sweeper.Run(context.Background(), TaskCleanup, false)
	require.NoError(t, err)
	assert.Equal(t, int64(5), report.Purged)

	cutoff := now.Add(-event.Retention)
	assert.Equal(t, []time.Time{cutoff}, f.store.DeleteFinishedBeforeCalls)
	assert.Equal(t, []time.Time{cutoff}, f.bookings.DeleteFinishedBeforeCalls)

	counters, err := f.counters.GetAll()
	require.NoError(t, err)
	assert.Equal(t, int64(5), counters["sweep.cleanup.purged"])

	t.Run("dry run deletes nothing", func(t *testing.T) {
		f := setup(t)
		_, err := f.sweeper.Run(context.Background(), TaskCleanup, true)
		require.NoError(t, err)
		assert.Empty(t, f.store.DeleteFinishedBeforeCalls)
		assert.Empty(t, f.bookings.DeleteFinishedBeforeCalls)
	})
}

func TestExpireSharedBookings(t *testing.T) {
	f := setup(t)
	f.bookings.ListExpiredSharedFunc = func(ctx context.Context, at time.Time) ([]*booking.Booking, error) {
		assert.Equal(t, now, at)
		return []*booking.Booking{
			{ID: "b1", Participants: []string{"a", "b"}},
			{ID: "b2", Participants: []string{"a", "b", "c", "d"}},
			{ID: "b3", Participants: []string{"a"}},
		}, nil
	}
	f.bookings.UpdateStatusFunc = func(ctx context.Context, id string, from, to booking.Status) (bool, error) {
		return id != "b3", nil
	}

	report, err := f.sweeper.Run(context.Background(), TaskSharedBookings, false)
	require.NoError(t, err)
	assert.Equal(t, 3, report.Scanned)
	assert.Equal(t, 1, report.Changed)
	require.Len(t, f.bookings.UpdateStatusCalls, 2)
	for _, call := range f.bookings.UpdateStatusCalls {
		assert.NotEqual(t, "b2", call.ID, "a shared booking with enough players is kept")
		assert.Equal(t, booking.StatusWaiting, call.From)
		assert.Equal(t, booking.StatusCancelled, call.To)
	}
}

func TestRunUnknownTask(t *testing.T) {
	f := setup(t)
	_, err := f.sweeper.Run(context.Background(), "reindex", false)
	assert.EqualError(t, err, `unknown sweep task "reindex"`)
}

func TestRunAll(t *testing.T) {
	f := setup(t)
	f.bookings.DeleteFinishedBeforeFunc = func(ctx context.Context, cutoff time.Time) (int64, error) {
		return 0, errors.New("locked")
	}
	reports, err := f.sweeper.RunAll(context.Background(), false)
	require.Error(t, err)
	assert.Len(t, reports, len(Tasks))
	for _, task := range Tasks {
		assert.Equal(t, 1, f.metrics.SweepRuns(string(task)))
	}
}

func TestStart(t *testing.T) {
	f := setup(t)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		f.sweeper.Start(ctx, Schedule{Deadlines: 5 * time.Millisecond})
		close(done)
	}()

	require.Eventually(t, func() bool {
		return f.metrics.SweepRuns(string(TaskDeadlines)) >= 2
	}, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop")
	}
	assert.Zero(t, f.metrics.SweepRuns(string(TaskCleanup)), "zero interval disables a task")
}

func TestFormatTimeLeft(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{45 * time.Minute, "45 min"},
		{time.Hour, "1h 0m"},
		{95 * time.Minute, "1h 35m"},
		{-time.Minute, "0 min"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatTimeLeft(tt.in))
	}
}
