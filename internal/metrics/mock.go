package metrics

import "sync"

// Mock is a mock implementation of the Metrics interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu             sync.Mutex
	sweepRuns      map[string]int
	sweepFailures  map[string]int
	sweepDurations map[string][]float64
	transitions    map[string]int
	conversions    map[string]int
	notifSent      int
	notifFailed    int
	startupTime    float64
}

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{
		sweepRuns:      make(map[string]int),
		sweepFailures:  make(map[string]int),
		sweepDurations: make(map[string][]float64),
		transitions:    make(map[string]int),
		conversions:    make(map[string]int),
	}
}

func (m *Mock) IncSweepRuns(task string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sweepRuns[task]++
}

func (m *Mock) IncSweepFailures(task string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sweepFailures[task]++
}

func (m *Mock) ObserveSweepDuration(task string, seconds float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sweepDurations[task] = append(m.sweepDurations[task], seconds)
}

func (m *Mock) IncTransitions(kind, to string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transitions[kind+"/"+to]++
}

func (m *Mock) IncConversions(kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.conversions[kind]++
}

func (m *Mock) IncNotifSent() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notifSent++
}

func (m *Mock) IncNotifFailed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notifFailed++
}

func (m *Mock) SetStartupTime(duration float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.startupTime = duration
}

// SweepRuns returns how often IncSweepRuns was called for task.
func (m *Mock) SweepRuns(task string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sweepRuns[task]
}

// SweepFailures returns how often IncSweepFailures was called for task.
func (m *Mock) SweepFailures(task string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sweepFailures[task]
}

// SweepDurations returns the durations observed for task.
func (m *Mock) SweepDurations(task string) []float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]float64(nil), m.sweepDurations[task]...)
}

// Transitions returns how many transitions of kind to the given status were counted.
func (m *Mock) Transitions(kind, to string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.transitions[kind+"/"+to]
}

// Conversions returns how many conversions of kind were counted.
func (m *Mock) Conversions(kind string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.conversions[kind]
}

// NotifSent returns the number of times IncNotifSent was called.
func (m *Mock) NotifSent() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.notifSent
}

// NotifFailed returns the number of times IncNotifFailed was called.
func (m *Mock) NotifFailed() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.notifFailed
}

// StartupTime returns the last value passed to SetStartupTime.
func (m *Mock) StartupTime() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.startupTime
}

// MockCounters is an in-memory CounterStore for testing.
type MockCounters struct {
	mu     sync.Mutex
	values map[string]int64
}

// NewMockCounters creates an empty counter mock.
func NewMockCounters() *MockCounters {
	return &MockCounters{values: make(map[string]int64)}
}

func (m *MockCounters) Increment(key string) {
	m.Add(key, 1)
}

func (m *MockCounters) Add(key string, delta int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] += delta
}

func (m *MockCounters) GetAll() (map[string]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]int64, len(m.values))
	for k, v := range m.values {
		out[k] = v
	}
	return out, nil
}
