package sweeper

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/fieldmatch/internal/booking"
	"github.com/mauv0809/fieldmatch/internal/event"
	"github.com/mauv0809/fieldmatch/internal/facility"
	"github.com/mauv0809/fieldmatch/internal/invitation"
	"github.com/mauv0809/fieldmatch/internal/metrics"
	"github.com/mauv0809/fieldmatch/internal/notifier"
	"github.com/mauv0809/fieldmatch/internal/pubsub"
	"github.com/panjf2000/ants/v2"
)

// New creates a new Sweeper. pubsub and counters may be nil: notifications
// then go straight to the notifier and no counters are persisted.
func New(events *event.Service, bookings booking.Store, facility facility.Store, notifier notifier.Notifier, pubsub pubsub.PubSubClient, metrics metrics.Metrics, counters metrics.CounterStore) *Sweeper {
	return &Sweeper{
		events:   events,
		bookings: bookings,
		facility: facility,
		notifier: notifier,
		pubsub:   pubsub,
		metrics:  metrics,
		counters: counters,
		workers:  DefaultWorkers,
	}
}

// SetWorkers changes the size of the per-sweep worker pool.
func (s *Sweeper) SetWorkers(n int) {
	if n > 0 {
		s.workers = n
	}
}

// Run executes one task and records its outcome.
func (s *Sweeper) Run(ctx context.Context, task Task, dryRun bool) (Report, error) {
	log.Info("Starting sweep", "task", task, "dryRun", dryRun)
	start := time.Now()

	var (
		report Report
		err    error
	)
	switch task {
	case TaskDeadlines:
		report, err = s.resolveDeadlines(ctx, dryRun)
	case TaskWarnings:
		report, err = s.sendWarnings(ctx, dryRun)
	case TaskCompletion:
		report, err = s.completeFinished(ctx, dryRun)
	case TaskCleanup:
		report, err = s.cleanup(ctx, dryRun)
	case TaskSharedBookings:
		report, err = s.expireSharedBookings(ctx, dryRun)
	default:
		return Report{}, fmt.Errorf("unknown sweep task %q", task)
	}
	report.Task = task
	report.DryRun = dryRun

	s.metrics.IncSweepRuns(string(task))
	s.metrics.ObserveSweepDuration(string(task), time.Since(start).Seconds())
	for i := 0; i < report.Failed; i++ {
		s.metrics.IncSweepFailures(string(task))
	}
	if err != nil {
		s.metrics.IncSweepFailures(string(task))
		log.Error("Sweep failed", "task", task, "error", err)
		return report, err
	}
	if !dryRun {
		s.record(report)
	}
	log.Info("Sweep finished", "task", task, "scanned", report.Scanned, "changed", report.Changed, "failed", report.Failed, "purged", report.Purged)
	return report, nil
}

// RunAll executes every task once. A failing task does not stop the others.
func (s *Sweeper) RunAll(ctx context.Context, dryRun bool) ([]Report, error) {
	var (
		reports []Report
		errs    []error
	)
	for _, task := range Tasks {
		r, err := s.Run(ctx, task, dryRun)
		if err != nil {
			errs = append(errs, err)
		}
		reports = append(reports, r)
	}
	if len(errs) > 0 {
		return reports, fmt.Errorf("%d of %d sweeps failed: %w", len(errs), len(Tasks), errs[0])
	}
	return reports, nil
}

func (s *Sweeper) record(r Report) {
	if s.counters == nil {
		return
	}
	prefix := "sweep." + string(r.Task) + "."
	s.counters.Increment(prefix + "runs")
	s.counters.Add(prefix+"changed", int64(r.Changed))
	s.counters.Add(prefix+"failed", int64(r.Failed))
	if r.Purged > 0 {
		s.counters.Add(prefix+"purged", r.Purged)
	}
}

// fanOut hands every item to fn on a bounded pool and waits for all of them.
// fn reports whether it changed the item; an error only marks that item as
// failed.
func fanOut[T any](ctx context.Context, workers int, task Task, items []T, id func(T) string, fn func(context.Context, T) (bool, error)) (changed, failed int, err error) {
	if len(items) == 0 {
		return 0, 0, nil
	}
	pool, err := ants.NewPool(workers)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to create worker pool: %w", err)
	}
	defer pool.Release()

	var changedCount, failedCount atomic.Int32
	var wg sync.WaitGroup
	for _, item := range items {
		wg.Add(1)
		if err := pool.Submit(func() {
			defer wg.Done()
			ok, err := fn(ctx, item)
			if err != nil {
				failedCount.Add(1)
				log.Error("Failed to sweep record", "task", task, "id", id(item), "error", err)
				return
			}
			if ok {
				changedCount.Add(1)
			}
		}); err != nil {
			wg.Done()
			failedCount.Add(1)
			log.Error("Failed to submit record to worker pool", "task", task, "id", id(item), "error", err)
		}
	}
	wg.Wait()
	return int(changedCount.Load()), int(failedCount.Load()), nil
}

func invitationID(inv *invitation.Invitation) string { return inv.ID }

func bookingID(b *booking.Booking) string { return b.ID }

// advanceEach moves every event to the status event.Decide picks and tells
// its participants about confirmations and cancellations.
func (s *Sweeper) advanceEach(ctx context.Context, task Task, due []*invitation.Invitation, dryRun bool) (Report, error) {
	report := Report{Scanned: len(due)}
	now := s.events.Now()
	changed, failed, err := fanOut(ctx, s.workers, task, due, invitationID, func(ctx context.Context, inv *invitation.Invitation) (bool, error) {
		if dryRun {
			if to, ok := event.Decide(inv, now); ok {
				log.Info("[Dry Run] Would advance event", "eventID", inv.ID, "from", inv.Status, "to", to)
			}
			return false, nil
		}
		out, err := s.events.AutoAdvance(ctx, inv)
		if err != nil {
			return false, err
		}
		if !out.Changed {
			return false, nil
		}
		s.metrics.IncTransitions(string(inv.Kind), string(out.To))
		if tmpl, ok := templateFor(out.To); ok {
			if err := s.notify(ctx, tmpl, inv, now, false); err != nil {
				log.Error("Failed to notify participants", "eventID", inv.ID, "template", tmpl, "error", err)
			}
		}
		return true, nil
	})
	report.Changed, report.Failed = changed, failed
	return report, err
}

func templateFor(to invitation.Status) (notifier.Template, bool) {
	switch to {
	case invitation.StatusConfirmed:
		return notifier.TemplateConfirmed, true
	case invitation.StatusCancelled:
		return notifier.TemplateCancelled, true
	}
	return "", false
}

func (s *Sweeper) resolveDeadlines(ctx context.Context, dryRun bool) (Report, error) {
	due, err := s.events.DueForDecision(ctx, s.events.Now())
	if err != nil {
		return Report{}, fmt.Errorf("failed to list events past their deadline: %w", err)
	}
	return s.advanceEach(ctx, TaskDeadlines, due, dryRun)
}

func (s *Sweeper) completeFinished(ctx context.Context, dryRun bool) (Report, error) {
	due, err := s.events.DueForCompletion(ctx, s.events.Now())
	if err != nil {
		return Report{}, fmt.Errorf("failed to list finished events: %w", err)
	}
	return s.advanceEach(ctx, TaskCompletion, due, dryRun)
}

func (s *Sweeper) sendWarnings(ctx context.Context, dryRun bool) (Report, error) {
	now := s.events.Now()
	due, err := s.events.DueForWarning(ctx, now)
	if err != nil {
		return Report{}, fmt.Errorf("failed to list events to warn about: %w", err)
	}
	report := Report{Scanned: len(due)}
	report.Changed, report.Failed, err = fanOut(ctx, s.workers, TaskWarnings, due, invitationID, func(ctx context.Context, inv *invitation.Invitation) (bool, error) {
		if err := s.notify(ctx, notifier.TemplateWarning, inv, now, dryRun); err != nil {
			return false, err
		}
		return true, nil
	})
	return report, err
}

func (s *Sweeper) cleanup(ctx context.Context, dryRun bool) (Report, error) {
	cutoff := s.events.Now().Add(-event.Retention)
	if dryRun {
		log.Info("[Dry Run] Would delete finished invitations and bookings", "cutoff", cutoff)
		return Report{}, nil
	}
	invitations, err := s.events.Purge(ctx, cutoff)
	if err != nil {
		return Report{}, err
	}
	bookings, err := s.bookings.DeleteFinishedBefore(ctx, cutoff)
	if err != nil {
		return Report{Purged: invitations}, fmt.Errorf("failed to purge bookings: %w", err)
	}
	log.Info("Deleted finished records", "invitations", invitations, "bookings", bookings, "cutoff", cutoff)
	return Report{Purged: invitations + bookings}, nil
}

// expireSharedBookings cancels shared bookings that did not gather enough
// players before their join deadline.
func (s *Sweeper) expireSharedBookings(ctx context.Context, dryRun bool) (Report, error) {
	expired, err := s.bookings.ListExpiredShared(ctx, s.events.Now())
	if err != nil {
		return Report{}, fmt.Errorf("failed to list expired shared bookings: %w", err)
	}
	report := Report{Scanned: len(expired)}
	report.Changed, report.Failed, err = fanOut(ctx, s.workers, TaskSharedBookings, expired, bookingID, func(ctx context.Context, b *booking.Booking) (bool, error) {
		if len(b.Participants) >= booking.MinSharedParticipants {
			return false, nil
		}
		if dryRun {
			log.Info("[Dry Run] Would cancel shared booking", "bookingID", b.ID, "participants", len(b.Participants))
			return false, nil
		}
		ok, err := s.bookings.UpdateStatus(ctx, b.ID, booking.StatusWaiting, booking.StatusCancelled)
		if err != nil {
			return false, err
		}
		if !ok {
			log.Warn("Shared booking changed before it could be cancelled, skipping", "bookingID", b.ID)
			return false, nil
		}
		log.Info("Shared booking cancelled", "bookingID", b.ID, "participants", len(b.Participants))
		return true, nil
	})
	return report, err
}
