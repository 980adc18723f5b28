package sweeper

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// Start runs every task with a non-zero interval on its own ticker until ctx
// is cancelled, then waits for running sweeps to return.
func (s *Sweeper) Start(ctx context.Context, schedule Schedule) {
	var wg sync.WaitGroup
	for _, task := range Tasks {
		interval := schedule.interval(task)
		if interval <= 0 {
			log.Info("Sweep disabled", "task", task)
			continue
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.loop(ctx, task, interval)
		}()
	}
	log.Info("Sweeper started")
	wg.Wait()
	log.Info("Sweeper stopped")
}

func (s *Sweeper) loop(ctx context.Context, task Task, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// Errors are already logged and counted by Run.
			_, _ = s.Run(ctx, task, false)
		}
	}
}
