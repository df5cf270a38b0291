package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"watchdog/cli/api"
)

var (
	apiURL string
	client *api.Client
)

var rootCmd = &cobra.Command{
	Use:   "watchdog",
	Short: "CLI for the watchdog dead-man's-switch service",
	Long: `Watchdog — heartbeat monitoring from the terminal.

Register a watchdog with a timeout and two webhooks, ping it more often
than the timeout, and the service calls your alert webhook when the pings
stop and your recover webhook when they resume.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		client = api.New(apiURL)
	},
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	defaultURL := os.Getenv("WATCHDOG_URL")
	if defaultURL == "" {
		defaultURL = "http://localhost:8700"
	}
	rootCmd.PersistentFlags().StringVar(&apiURL, "api", defaultURL, "Watchdog API URL")
}
