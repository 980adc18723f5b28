package metrics

import (
	"database/sql"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Service holds all the Prometheus metrics for the application.
// By defining them all in one place, we ensure consistency in naming and labeling.
type Service struct {
	SweepRuns          *prometheus.CounterVec
	SweepFailures      *prometheus.CounterVec
	SweepDuration      *prometheus.HistogramVec
	Transitions        *prometheus.CounterVec
	Conversions        *prometheus.CounterVec
	NotifSent          prometheus.Counter
	NotifFailed        prometheus.Counter
	StartupTimeSeconds prometheus.Gauge
}

// store handles counter persistence.
type store struct {
	db *sql.DB
	mu sync.Mutex
}
