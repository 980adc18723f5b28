package inngest

import (
	"context"
	"fmt"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/inngest/inngestgo"
	"github.com/inngest/inngestgo/step"
	"github.com/mauv0809/fieldmatch/internal/sweeper"
)

// New registers one cron function per sweep task plus an on-demand sweep
// function, all running through runner.
func New(inngestClient inngestgo.Client, runner Runner, crons map[sweeper.Task]string) (InngestClient, error) {
	c := &client{
		inngestClient: inngestClient,
		runner:        runner,
	}
	for _, task := range sweeper.Tasks {
		cron, ok := crons[task]
		if !ok {
			continue
		}
		if _, err := c.createCronFunction(task, cron); err != nil {
			return nil, err
		}
	}
	if _, err := c.createRequestedSweepFunction(); err != nil {
		return nil, err
	}
	return c, nil
}

func (i *client) createCronFunction(task sweeper.Task, cron string) (inngestgo.ServableFunction, error) {
	config := inngestgo.FunctionOpts{
		ID:   "sweep-" + string(task),
		Name: fmt.Sprintf("Sweep %s", task),
	}
	f, err := inngestgo.CreateFunction(
		i.inngestClient,
		config,
		inngestgo.CronTrigger(cron),
		func(ctx context.Context, input inngestgo.Input[map[string]any]) (any, error) {
			return i.sweep(ctx, task, false)
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create cron function for %s: %w", task, err)
	}
	log.Debug("Registered sweep cron", "task", task, "cron", cron)
	return f, nil
}

func (i *client) createRequestedSweepFunction() (inngestgo.ServableFunction, error) {
	config := inngestgo.FunctionOpts{
		ID:   "sweep-requested",
		Name: "Run a requested sweep",
	}
	f, err := inngestgo.CreateFunction(
		i.inngestClient,
		config,
		inngestgo.EventTrigger(SweepRequested, nil),
		func(ctx context.Context, input inngestgo.Input[SweepData]) (any, error) {
			return i.sweep(ctx, sweeper.Task(input.Event.Data.Task), input.Event.Data.DryRun)
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create requested sweep function: %w", err)
	}
	return f, nil
}

// sweep wraps the run in a step so Inngest retries it on failure.
func (i *client) sweep(ctx context.Context, task sweeper.Task, dryRun bool) (sweeper.Report, error) {
	return step.Run(ctx, "run-"+string(task), func(ctx context.Context) (sweeper.Report, error) {
		return i.runner.Run(ctx, task, dryRun)
	})
}

func (i *client) Serve() http.Handler {
	return i.inngestClient.Serve()
}

func (i *client) RequestSweep(ctx context.Context, task string, dryRun bool) error {
	id, err := i.inngestClient.Send(ctx, inngestgo.Event{
		Name: SweepRequested,
		Data: map[string]any{"task": task, "dry_run": dryRun},
	})
	if err != nil {
		return fmt.Errorf("failed to send sweep event: %w", err)
	}
	log.Info("Sweep requested", "task", task, "dryRun", dryRun, "eventID", id)
	return nil
}
