package metrics

// Metrics defines the interface for collecting application metrics.
// This decouples the application from the specific metrics implementation (e.g., Prometheus).
type Metrics interface {
	IncSweepRuns(task string)
	IncSweepFailures(task string)
	ObserveSweepDuration(task string, seconds float64)
	IncTransitions(kind, to string)
	IncConversions(kind string)
	IncNotifSent()
	IncNotifFailed()
	SetStartupTime(duration float64)
}

// CounterStore keeps counters that survive restarts.
type CounterStore interface {
	Increment(key string)
	Add(key string, delta int64)
	GetAll() (map[string]int64, error)
}
