package sweeper

import (
	"time"

	"github.com/mauv0809/fieldmatch/internal/booking"
	"github.com/mauv0809/fieldmatch/internal/event"
	"github.com/mauv0809/fieldmatch/internal/facility"
	"github.com/mauv0809/fieldmatch/internal/metrics"
	"github.com/mauv0809/fieldmatch/internal/notifier"
	"github.com/mauv0809/fieldmatch/internal/pubsub"
)

// Task names one periodic job.
type Task string

const (
	TaskDeadlines      Task = "deadlines"
	TaskWarnings       Task = "warnings"
	TaskCompletion     Task = "completion"
	TaskCleanup        Task = "cleanup"
	TaskSharedBookings Task = "shared-bookings"
)

// Tasks lists every task in the order the scheduler starts them.
var Tasks = []Task{TaskDeadlines, TaskWarnings, TaskCompletion, TaskCleanup, TaskSharedBookings}

// DefaultWorkers bounds how many records one sweep handles at a time.
const DefaultWorkers = 8

// Report summarises one sweep.
type Report struct {
	Task    Task  `json:"task"`
	DryRun  bool  `json:"dry_run"`
	Scanned int   `json:"scanned"`
	Changed int   `json:"changed"`
	Failed  int   `json:"failed"`
	Purged  int64 `json:"purged,omitempty"`
}

// Schedule holds the interval of each task. A zero interval disables it.
type Schedule struct {
	Deadlines      time.Duration
	Warnings       time.Duration
	Completion     time.Duration
	Cleanup        time.Duration
	SharedBookings time.Duration
}

// DefaultSchedule is the production cadence.
var DefaultSchedule = Schedule{
	Deadlines:      5 * time.Minute,
	Warnings:       30 * time.Minute,
	Completion:     10 * time.Minute,
	Cleanup:        24 * time.Hour,
	SharedBookings: time.Hour,
}

func (s Schedule) interval(task Task) time.Duration {
	switch task {
	case TaskDeadlines:
		return s.Deadlines
	case TaskWarnings:
		return s.Warnings
	case TaskCompletion:
		return s.Completion
	case TaskCleanup:
		return s.Cleanup
	case TaskSharedBookings:
		return s.SharedBookings
	}
	return 0
}

// Sweeper runs the scheduled maintenance of events and shared bookings.
type Sweeper struct {
	events   *event.Service
	bookings booking.Store
	facility facility.Store
	notifier notifier.Notifier
	pubsub   pubsub.PubSubClient
	metrics  metrics.Metrics
	counters metrics.CounterStore
	workers  int
}
