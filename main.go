package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/inngest/inngestgo"
	"github.com/mauv0809/fieldmatch/internal/booking"
	"github.com/mauv0809/fieldmatch/internal/config"
	"github.com/mauv0809/fieldmatch/internal/database"
	"github.com/mauv0809/fieldmatch/internal/event"
	"github.com/mauv0809/fieldmatch/internal/facility"
	server "github.com/mauv0809/fieldmatch/internal/http"
	"github.com/mauv0809/fieldmatch/internal/inngest"
	"github.com/mauv0809/fieldmatch/internal/invitation"
	"github.com/mauv0809/fieldmatch/internal/matchmaking"
	"github.com/mauv0809/fieldmatch/internal/metrics"
	"github.com/mauv0809/fieldmatch/internal/notifier/slack"
	"github.com/mauv0809/fieldmatch/internal/pubsub"
	"github.com/mauv0809/fieldmatch/internal/sweeper"
)

func main() {
	// Start profiling timer
	startTime := time.Now()
	log.SetFormatter(log.JSONFormatter)
	cfg := config.Load()
	db, dbTeardown, err := database.InitDB(cfg.DBName, cfg.Turso.PrimaryURL, cfg.Turso.AuthToken)
	dbInitDuration := time.Since(startTime)
	log.Info("Database initialization time recorded", "duration_ms", dbInitDuration.Milliseconds())
	if err != nil {
		log.Fatalf("Failed to initialize database: %s", err)
	}
	defer func() {
		log.Info("Closing database connection")
		dbTeardown()
	}()

	facilityStore := facility.New(db)
	invitationStore := invitation.NewStore(db)
	bookingStore := booking.New(db)
	counters := metrics.New(db)
	metricsSvc := metrics.NewService()
	metricsHandler := metrics.NewMetricsHandler()

	events := event.NewService(invitationStore, facilityStore, bookingStore)
	mm := matchmaking.NewService(invitationStore, facilityStore, bookingStore)
	bookings := booking.NewService(bookingStore, facilityStore)
	notifier := slack.NewNotifier(cfg.Slack.Token, cfg.Slack.ChannelID, metricsSvc)

	var pubsubClient pubsub.PubSubClient
	if cfg.ProjectID != "" {
		pubsubClient, err = pubsub.New(cfg.ProjectID)
		if err != nil {
			log.Fatalf("Failed to initialize pubsub: %s", err)
		}
		defer pubsubClient.Close()
	}

	sw := sweeper.New(events, bookingStore, facilityStore, notifier, pubsubClient, metricsSvc, counters)
	sw.SetWorkers(cfg.Sweeper.Workers)

	var inngestClient inngest.InngestClient
	if cfg.Inngest.Enabled() {
		dev := cfg.Inngest.Dev
		options := inngestgo.ClientOpts{
			AppID:      cfg.Inngest.AppID,
			SigningKey: &cfg.Inngest.SigningKey,
			EventKey:   &cfg.Inngest.EventKey,
			Dev:        &dev,
		}
		inngestProvider, err := inngestgo.NewClient(options)
		if err != nil {
			log.Fatalf("Failed to initialize inngest: %s", err)
		}
		inngestClient, err = inngest.New(inngestProvider, sw, inngest.DefaultCrons)
		if err != nil {
			log.Fatalf("Failed to register inngest functions: %s", err)
		}
	}

	s := server.NewServer(
		events,
		mm,
		bookings,
		sw,
		notifier,
		metricsSvc,
		metricsHandler,
		counters,
		cfg,
		pubsubClient,
		inngestClient,
	)

	// Inngest crons replace the in-process tickers when configured.
	sweepCtx, stopSweeper := context.WithCancel(context.Background())
	sweeperDone := make(chan struct{})
	if cfg.Sweeper.Enabled && inngestClient == nil {
		go func() {
			defer close(sweeperDone)
			sw.Start(sweepCtx, sweeper.Schedule{
				Deadlines:      cfg.Sweeper.Deadlines,
				Warnings:       cfg.Sweeper.Warnings,
				Completion:     cfg.Sweeper.Completion,
				Cleanup:        cfg.Sweeper.Cleanup,
				SharedBookings: cfg.Sweeper.SharedBookings,
			})
		}()
	} else {
		close(sweeperDone)
		log.Info("In-process sweeper disabled", "inngest", inngestClient != nil)
	}

	// --- Record startup time ---
	startupDuration := time.Since(startTime)
	metricsSvc.SetStartupTime(startupDuration.Seconds())
	log.Info("Startup time recorded", "duration_ms", startupDuration.Milliseconds())

	// --- Graceful shutdown setup ---
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: s,
	}

	// Channel to listen for errors coming from the server
	serverErrors := make(chan error, 1)

	go func() {
		log.Info("Server started", "port", cfg.Port)
		serverErrors <- srv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	case sig := <-shutdown:
		log.Info("Shutdown signal received", "signal", sig)

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("Server shutdown failed", "error", err)
		} else {
			log.Info("Server gracefully stopped")
		}
	}

	stopSweeper()
	<-sweeperDone
	log.Info("Server process shutting down")
}
