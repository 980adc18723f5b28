package handlers

import (
	"net/http"
	"slices"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/fieldmatch/internal/inngest"
	"github.com/mauv0809/fieldmatch/internal/invitation"
	"github.com/mauv0809/fieldmatch/internal/sweeper"
)

// SweepHandler runs one sweep task now, or every task for "all". Cloud
// Scheduler calls it when the in-process tickers are off.
func SweepHandler(sw *sweeper.Sweeper) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		task := r.PathValue("task")
		isDryRun := IsDryRunFromContext(r)
		log.Info("Sweep triggered over HTTP", "task", task, "dryRun", isDryRun)

		if task == "all" {
			reports, err := sw.RunAll(r.Context(), isDryRun)
			if err != nil {
				log.Error("Sweep run had failures", "error", err)
				writeJSON(w, http.StatusInternalServerError, reports)
				return
			}
			writeJSON(w, http.StatusOK, reports)
			return
		}

		if !slices.Contains(sweeper.Tasks, sweeper.Task(task)) {
			writeError(w, invitation.NotFound("unknown sweep task %q", task))
			return
		}
		report, err := sw.Run(r.Context(), sweeper.Task(task), isDryRun)
		if err != nil {
			http.Error(w, "Sweep failed", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, report)
	}
}

// EnqueueSweepHandler hands a sweep to Inngest instead of running it inline.
func EnqueueSweepHandler(client inngest.InngestClient) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		task := r.PathValue("task")
		if !slices.Contains(sweeper.Tasks, sweeper.Task(task)) {
			writeError(w, invitation.NotFound("unknown sweep task %q", task))
			return
		}
		if err := client.RequestSweep(r.Context(), task, IsDryRunFromContext(r)); err != nil {
			log.Error("Failed to enqueue sweep", "task", task, "error", err)
			http.Error(w, "Failed to enqueue sweep", http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusAccepted)
		w.Write([]byte("Sweep enqueued"))
	}
}
