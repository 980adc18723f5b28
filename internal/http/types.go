package http

import (
	"net/http"

	"github.com/mauv0809/fieldmatch/internal/booking"
	"github.com/mauv0809/fieldmatch/internal/config"
	"github.com/mauv0809/fieldmatch/internal/event"
	"github.com/mauv0809/fieldmatch/internal/inngest"
	"github.com/mauv0809/fieldmatch/internal/matchmaking"
	"github.com/mauv0809/fieldmatch/internal/metrics"
	"github.com/mauv0809/fieldmatch/internal/notifier"
	"github.com/mauv0809/fieldmatch/internal/pubsub"
	"github.com/mauv0809/fieldmatch/internal/sweeper"
)

type Server struct {
	Events         *event.Service
	Matchmaking    *matchmaking.Service
	Bookings       *booking.Service
	Sweeper        *sweeper.Sweeper
	Notifier       notifier.Notifier
	Metrics        metrics.Metrics
	MetricsHandler http.Handler
	Counters       metrics.CounterStore
	Cfg            config.Config
	Router         *http.ServeMux
	// optional, nil when not configured
	pubsub        pubsub.PubSubClient
	inngestClient inngest.InngestClient
}
