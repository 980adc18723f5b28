package http

import (
	"net/http"

	"github.com/mauv0809/fieldmatch/internal/booking"
	"github.com/mauv0809/fieldmatch/internal/config"
	"github.com/mauv0809/fieldmatch/internal/event"
	"github.com/mauv0809/fieldmatch/internal/http/handlers"
	"github.com/mauv0809/fieldmatch/internal/inngest"
	"github.com/mauv0809/fieldmatch/internal/matchmaking"
	"github.com/mauv0809/fieldmatch/internal/metrics"
	"github.com/mauv0809/fieldmatch/internal/notifier"
	"github.com/mauv0809/fieldmatch/internal/pubsub"
	"github.com/mauv0809/fieldmatch/internal/sweeper"
)

func NewServer(
	events *event.Service,
	mm *matchmaking.Service,
	bookings *booking.Service,
	sw *sweeper.Sweeper,
	notifier notifier.Notifier,
	metricsSvc metrics.Metrics,
	metricsHandler http.Handler,
	counters metrics.CounterStore,
	cfg config.Config,
	pubsub pubsub.PubSubClient,
	inngestClient inngest.InngestClient,
) *Server {
	server := &Server{
		Events:         events,
		Matchmaking:    mm,
		Bookings:       bookings,
		Sweeper:        sw,
		Notifier:       notifier,
		Metrics:        metricsSvc,
		MetricsHandler: metricsHandler,
		Counters:       counters,
		Cfg:            cfg,
		Router:         http.NewServeMux(),
		pubsub:         pubsub,
		inngestClient:  inngestClient,
	}

	server.routes()
	return server
}

func (s *Server) routes() {
	// Public API routes need a caller identity; ops routes only take the
	// common query parameters.
	api := func(h http.HandlerFunc) http.Handler {
		return Chain(h, paramsMiddleware, identityMiddleware)
	}
	ops := func(h http.HandlerFunc) http.Handler {
		return Chain(h, paramsMiddleware)
	}
	slackCmd := func(h http.HandlerFunc) http.Handler {
		return Chain(h, paramsMiddleware, slackVerifyMiddleware(s.Cfg.Slack.SigningSecret))
	}

	s.Router.Handle("/metrics", s.MetricsHandler)
	s.Router.Handle("GET /health", ops(handlers.HealthCheckHandler()))
	s.Router.Handle("GET /stats", ops(handlers.StatsHandler(s.Counters)))

	// Events
	s.Router.Handle("GET /api/v1/events/search", api(handlers.SearchEventsHandler(s.Events)))
	s.Router.Handle("GET /api/v1/events/available", api(handlers.AvailableEventsHandler(s.Events)))
	s.Router.Handle("GET /api/v1/events/my-events", api(handlers.MyEventsHandler(s.Events)))
	s.Router.Handle("POST /api/v1/events", api(handlers.CreateEventHandler(s.Events)))
	s.Router.Handle("GET /api/v1/events/{id}", api(handlers.GetEventHandler(s.Events)))
	s.Router.Handle("PUT /api/v1/events/{id}", api(handlers.UpdateEventHandler(s.Events)))
	s.Router.Handle("DELETE /api/v1/events/{id}", api(handlers.StaffOnly(handlers.CancelHandler(s.Events.Service, s.Metrics))))
	s.Router.Handle("POST /api/v1/events/{id}/interest", api(handlers.ShowInterestHandler(s.Events.Service)))
	s.Router.Handle("POST /api/v1/events/{id}/leave", api(handlers.LeaveEventHandler(s.Events)))
	s.Router.Handle("POST /api/v1/events/{id}/accept/{playerId}", api(handlers.StaffOnly(handlers.AcceptPlayerHandler(s.Events.Service))))
	s.Router.Handle("POST /api/v1/events/{id}/reject/{playerId}", api(handlers.StaffOnly(handlers.RejectPlayerHandler(s.Events.Service))))
	s.Router.Handle("POST /api/v1/events/{id}/remove/{playerId}", api(handlers.StaffOnly(handlers.RemovePlayerHandler(s.Events.Service))))
	s.Router.Handle("POST /api/v1/events/{id}/convert-to-booking", api(handlers.StaffOnly(handlers.ConvertHandler(s.Events.Service, s.Metrics))))
	s.Router.Handle("POST /api/v1/events/{id}/check-status", api(handlers.CheckEventStatusHandler(s.Events, s.Metrics)))

	// Matchmaking
	s.Router.Handle("GET /api/v1/matchmaking/search", api(handlers.SearchMatchmakingHandler(s.Matchmaking)))
	s.Router.Handle("GET /api/v1/matchmaking/available", api(handlers.AvailableMatchmakingHandler(s.Matchmaking)))
	s.Router.Handle("GET /api/v1/matchmaking/my-matchmaking", api(handlers.MyMatchmakingHandler(s.Matchmaking)))
	s.Router.Handle("POST /api/v1/matchmaking", api(handlers.CreateMatchmakingHandler(s.Matchmaking)))
	s.Router.Handle("GET /api/v1/matchmaking/{id}", api(handlers.GetMatchmakingHandler(s.Matchmaking)))
	s.Router.Handle("PUT /api/v1/matchmaking/{id}", api(handlers.UpdateMatchmakingHandler(s.Matchmaking)))
	s.Router.Handle("DELETE /api/v1/matchmaking/{id}", api(handlers.CancelHandler(s.Matchmaking.Service, s.Metrics)))
	s.Router.Handle("POST /api/v1/matchmaking/{id}/interest", api(handlers.ShowInterestHandler(s.Matchmaking.Service)))
	s.Router.Handle("POST /api/v1/matchmaking/{id}/join-as-representative", api(handlers.JoinAsRepresentativeHandler(s.Matchmaking)))
	s.Router.Handle("POST /api/v1/matchmaking/{id}/accept/{playerId}", api(handlers.AcceptPlayerHandler(s.Matchmaking.Service)))
	s.Router.Handle("POST /api/v1/matchmaking/{id}/reject/{playerId}", api(handlers.RejectPlayerHandler(s.Matchmaking.Service)))
	s.Router.Handle("POST /api/v1/matchmaking/{id}/remove/{playerId}", api(handlers.RemovePlayerHandler(s.Matchmaking.Service)))
	s.Router.Handle("POST /api/v1/matchmaking/{id}/convert-to-booking", api(handlers.ConvertHandler(s.Matchmaking.Service, s.Metrics)))

	s.Router.Handle("POST /api/v1/bookings", api(handlers.CreateBookingHandler(s.Bookings)))
	s.Router.Handle("GET /api/v1/bookings/waiting", api(handlers.WaitingBookingsHandler(s.Bookings)))
	s.Router.Handle("GET /api/v1/bookings/{id}", api(handlers.GetBookingHandler(s.Bookings)))
	s.Router.Handle("POST /api/v1/bookings/{id}/join", api(handlers.JoinBookingHandler(s.Bookings)))
	s.Router.Handle("POST /api/v1/bookings/{id}/cancel", api(handlers.CancelBookingHandler(s.Bookings)))
	s.Router.Handle("PATCH /api/v1/bookings/{id}/payment", api(handlers.UpdatePaymentHandler(s.Bookings)))

	// Ops
	s.Router.Handle("POST /sweeps/{task}", ops(handlers.SweepHandler(s.Sweeper)))
	s.Router.Handle("POST /slack/command/events", slackCmd(handlers.ListCommandHandler(s.Events.Service, s.Notifier, "Open events")))
	s.Router.Handle("POST /slack/command/matchmaking", slackCmd(handlers.ListCommandHandler(s.Matchmaking.Service, s.Notifier, "Looking for players")))

	if s.pubsub != nil {
		s.Router.Handle("POST /notify-invitation", ops(handlers.NotifyInvitationHandler(s.Notifier, s.pubsub)))
	}
	if s.inngestClient != nil {
		s.Router.Handle("POST /sweeps/{task}/enqueue", ops(handlers.EnqueueSweepHandler(s.inngestClient)))
		s.Router.Handle("/api/inngest", s.inngestClient.Serve())
	}
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}
