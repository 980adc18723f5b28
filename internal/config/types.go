package config

import "time"

// Config holds all configuration for the application.
type Config struct {
	DBName    string
	Port      string
	Slack     SlackConfig
	Turso     TursoConfig
	Inngest   InngestConfig
	ProjectID string
	Sweeper   SweeperConfig
}
type SlackConfig struct {
	Token         string
	ChannelID     string
	SigningSecret string
}

// Enabled reports whether notifications can be posted to Slack.
func (s SlackConfig) Enabled() bool {
	return s.Token != "" && s.ChannelID != ""
}

type TursoConfig struct {
	PrimaryURL string
	AuthToken  string
}
type InngestConfig struct {
	SigningKey string
	EventKey   string
	AppID      string
	Dev        bool
}

// Enabled reports whether sweeps are triggered by Inngest crons.
func (i InngestConfig) Enabled() bool {
	return i.AppID != ""
}

// SweeperConfig controls the in-process sweep tickers.
type SweeperConfig struct {
	Enabled        bool
	Workers        int
	Deadlines      time.Duration
	Warnings       time.Duration
	Completion     time.Duration
	Cleanup        time.Duration
	SharedBookings time.Duration
}
