package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var _ Metrics = (*Service)(nil)

// NewMetricsHandler returns an http.Handler for the given Gatherer.
// If no gatherer is provided, it uses the default one.
func NewMetricsHandler(gatherer ...prometheus.Gatherer) http.Handler {
	gath := prometheus.DefaultGatherer
	if len(gatherer) > 0 {
		gath = gatherer[0]
	}
	return promhttp.HandlerFor(gath, promhttp.HandlerOpts{})
}

// NewService creates and registers the Prometheus metrics.
// If no registerer is provided, it uses the default Prometheus registerer.
func NewService(registerer ...prometheus.Registerer) *Service {
	reg := prometheus.DefaultRegisterer
	if len(registerer) > 0 {
		reg = registerer[0]
	}

	s := &Service{
		SweepRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fieldmatch_sweep_runs_total",
			Help: "The total number of sweeper task runs.",
		}, []string{"task"}),
		SweepFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fieldmatch_sweep_record_failures_total",
			Help: "The total number of records a sweeper task failed to process.",
		}, []string{"task"}),
		SweepDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "fieldmatch_sweep_duration_seconds",
			Help:    "The duration of sweeper task runs.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"task"}),
		Transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fieldmatch_invitation_transitions_total",
			Help: "The total number of automatic invitation status transitions.",
		}, []string{"kind", "to"}),
		Conversions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fieldmatch_booking_conversions_total",
			Help: "The total number of invitations converted to bookings.",
		}, []string{"kind"}),
		NotifSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fieldmatch_notifications_sent_total",
			Help: "The total number of notifications successfully sent.",
		}),
		NotifFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fieldmatch_notifications_failed_total",
			Help: "The total number of notifications that failed to send.",
		}),
		StartupTimeSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "fieldmatch_startup_duration_seconds",
			Help: "The duration of the application startup in seconds.",
		}),
	}

	reg.MustRegister(
		s.SweepRuns,
		s.SweepFailures,
		s.SweepDuration,
		s.Transitions,
		s.Conversions,
		s.NotifSent,
		s.NotifFailed,
		s.StartupTimeSeconds,
	)

	return s
}

func (s *Service) IncSweepRuns(task string) {
	s.SweepRuns.WithLabelValues(task).Inc()
}

func (s *Service) IncSweepFailures(task string) {
	s.SweepFailures.WithLabelValues(task).Inc()
}

func (s *Service) ObserveSweepDuration(task string, seconds float64) {
	s.SweepDuration.WithLabelValues(task).Observe(seconds)
}

func (s *Service) IncTransitions(kind, to string) {
	s.Transitions.WithLabelValues(kind, to).Inc()
}

func (s *Service) IncConversions(kind string) {
	s.Conversions.WithLabelValues(kind).Inc()
}

func (s *Service) IncNotifSent() {
	s.NotifSent.Inc()
}

func (s *Service) IncNotifFailed() {
	s.NotifFailed.Inc()
}

func (s *Service) SetStartupTime(duration float64) {
	s.StartupTimeSeconds.Set(duration)
}
