package main

import (
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(sweepCmd)
	rootCmd.AddCommand(enqueueCmd)
	rootCmd.AddCommand(eventsCmd)
	rootCmd.AddCommand(matchmakingCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(metricsCmd)
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the health of the server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodGet, "/health")
	},
}

var sweepCmd = &cobra.Command{
	Use:       "sweep [deadlines|warnings|completion|cleanup|shared-bookings|all]",
	Short:     "Run a sweep task now",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"deadlines", "warnings", "completion", "cleanup", "shared-bookings", "all"},
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodPost, "/sweeps/"+url.PathEscape(args[0]))
	},
}

var enqueueCmd = &cobra.Command{
	Use:   "enqueue [task]",
	Short: "Hand a sweep task to Inngest",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodPost, "/sweeps/"+url.PathEscape(args[0])+"/enqueue")
	},
}

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "List the events that are open for players",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodGet, "/api/v1/events/available")
	},
}

var matchmakingCmd = &cobra.Command{
	Use:   "matchmaking",
	Short: "List the matchmaking requests that are open for players",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodGet, "/api/v1/matchmaking/available")
	},
}

var statusCmd = &cobra.Command{
	Use:   "check-status [eventID]",
	Short: "Advance one event if its deadline or end has passed",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodPost, "/api/v1/events/"+url.PathEscape(args[0])+"/check-status")
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show the persisted sweep counters",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodGet, "/stats")
	},
}

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Get application metrics",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodGet, "/metrics")
	},
}

func performRequest(method, endpoint string) error {
	target := host + endpoint
	if dryRun {
		target += "?dry_run=true"
	}
	fmt.Printf("Making request to %s %s\n", method, target)

	req, err := http.NewRequest(method, target, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("X-User-ID", userID)
	req.Header.Set("X-User-Role", role)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	fmt.Printf("Status Code: %d\n", resp.StatusCode)
	fmt.Println("Response Body:")
	fmt.Println(string(body))

	return nil
}
