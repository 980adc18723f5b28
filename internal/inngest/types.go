package inngest

import (
	"context"

	"github.com/inngest/inngestgo"
	"github.com/mauv0809/fieldmatch/internal/sweeper"
)

// SweepRequested asks for one sweep outside its cron schedule.
const SweepRequested = "fieldmatch/sweep.requested"

// Runner executes a sweep task. *sweeper.Sweeper satisfies it.
type Runner interface {
	Run(ctx context.Context, task sweeper.Task, dryRun bool) (sweeper.Report, error)
}

type client struct {
	inngestClient inngestgo.Client
	runner        Runner
}

// DefaultCrons mirrors sweeper.DefaultSchedule. Cleanup runs at 03:00.
var DefaultCrons = map[sweeper.Task]string{
	sweeper.TaskDeadlines:      "*/5 * * * *",
	sweeper.TaskWarnings:       "*/30 * * * *",
	sweeper.TaskCompletion:     "*/10 * * * *",
	sweeper.TaskCleanup:        "0 3 * * *",
	sweeper.TaskSharedBookings: "0 * * * *",
}

// SweepData is the payload of a SweepRequested event.
type SweepData struct {
	Task   string `json:"task"`
	DryRun bool   `json:"dry_run"`
}
