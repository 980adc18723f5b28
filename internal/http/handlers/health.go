package handlers

import (
	"fmt"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/fieldmatch/internal/metrics"
)

func HealthCheckHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Debug("Received health check request")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "OK!")
	}
}

// StatsHandler exposes the persisted sweep counters.
func StatsHandler(counters metrics.CounterStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		all, err := counters.GetAll()
		if err != nil {
			log.Error("Failed to read counters", "error", err)
			http.Error(w, "Failed to read counters", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, all)
	}
}
