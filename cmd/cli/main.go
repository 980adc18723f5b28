package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	host   string
	userID string
	role   string
	dryRun bool
)

var rootCmd = &cobra.Command{
	Use:   "fieldmatch-cli",
	Short: "A CLI to interact with the fieldmatch server",
	Long: `A command-line interface for making requests to the various endpoints
of the fieldmatch application.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&host, "host", "http://localhost:8080", "The host address of the server")
	rootCmd.PersistentFlags().StringVar(&userID, "user", "cli", "The user ID sent as X-User-ID")
	rootCmd.PersistentFlags().StringVar(&role, "role", "staff", "The role sent as X-User-Role")
	rootCmd.PersistentFlags().BoolVar(&dryRun, "dry-run", false, "Ask the server not to change anything")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Whoops. There was an error while executing your command '%s'", err)
		os.Exit(1)
	}
}

func main() {
	Execute()
}
