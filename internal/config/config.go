package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
)

// Load reads configuration from environment variables and .env file.
func Load() Config {
	err := godotenv.Load()
	if err != nil {
		log.Info("No .env file found, reading from environment variables")
	}
	cfg, err := FromEnv(os.LookupEnv)
	if err != nil {
		log.Fatalf("Error: %s", err)
	}
	return cfg
}

// FromEnv builds a Config from lookup. DB_NAME and PORT are required; every
// optional integration stays off while its variables are unset.
func FromEnv(lookup func(string) (string, bool)) (Config, error) {
	var missing []string
	required := func(key string) string {
		if value, ok := lookup(key); ok && value != "" {
			return value
		}
		missing = append(missing, key)
		return ""
	}
	optional := func(key string) string {
		value, _ := lookup(key)
		return value
	}

	var parseErr error
	boolean := func(key string, def bool) bool {
		raw, ok := lookup(key)
		if !ok || raw == "" {
			return def
		}
		v, err := strconv.ParseBool(raw)
		if err != nil && parseErr == nil {
			parseErr = fmt.Errorf("invalid %s %q: %w", key, raw, err)
		}
		return v
	}
	integer := func(key string, def int) int {
		raw, ok := lookup(key)
		if !ok || raw == "" {
			return def
		}
		v, err := strconv.Atoi(raw)
		if err != nil && parseErr == nil {
			parseErr = fmt.Errorf("invalid %s %q: %w", key, raw, err)
		}
		return v
	}
	duration := func(key string, def time.Duration) time.Duration {
		raw, ok := lookup(key)
		if !ok || raw == "" {
			return def
		}
		v, err := time.ParseDuration(raw)
		if err != nil && parseErr == nil {
			parseErr = fmt.Errorf("invalid %s %q: %w", key, raw, err)
		}
		return v
	}

	cfg := Config{
		DBName: required("DB_NAME"),
		Port:   required("PORT"),
		Slack: SlackConfig{
			Token:         optional("SLACK_BOT_TOKEN"),
			ChannelID:     optional("SLACK_CHANNEL_ID"),
			SigningSecret: optional("SLACK_SIGNING_SECRET"),
		},
		Turso: TursoConfig{
			PrimaryURL: optional("TURSO_PRIMARY_URL"),
			AuthToken:  optional("TURSO_AUTH_TOKEN"),
		},
		Inngest: InngestConfig{
			AppID:      optional("INNGEST_APP_ID"),
			SigningKey: optional("INNGEST_SIGNING_KEY"),
			EventKey:   optional("INNGEST_EVENT_KEY"),
			Dev:        boolean("INNGEST_DEV", false),
		},
		ProjectID: optional("GCP_PROJECT"),
		Sweeper: SweeperConfig{
			Enabled:        boolean("SWEEPER_ENABLED", true),
			Workers:        integer("SWEEPER_WORKERS", 8),
			Deadlines:      duration("SWEEP_DEADLINE_INTERVAL", 5*time.Minute),
			Warnings:       duration("SWEEP_WARNING_INTERVAL", 30*time.Minute),
			Completion:     duration("SWEEP_COMPLETION_INTERVAL", 10*time.Minute),
			Cleanup:        duration("SWEEP_CLEANUP_INTERVAL", 24*time.Hour),
			SharedBookings: duration("SWEEP_SHARED_BOOKING_INTERVAL", time.Hour),
		},
	}
	if len(missing) > 0 {
		return Config{}, fmt.Errorf("required environment variables not set: %v", missing)
	}
	if parseErr != nil {
		return Config{}, parseErr
	}
	return cfg, nil
}
