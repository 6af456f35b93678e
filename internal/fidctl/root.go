// Package fidctl implements the fidctl command line client: a terminal
// front end for the flight board service, driving the same progressive
// session used by display clients.
package fidctl

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	serverURL string
	timeout   time.Duration

	rootCmd = &cobra.Command{
		Use:   "fidctl",
		Short: "Flight information display client",
		Long:  `fidctl drives a flight board service from the terminal: load departure boards, look up airports, and resolve the nearest airport by coordinates.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// .env is optional; flags and real env still win.
			_ = godotenv.Load()
			if serverURL == "" {
				serverURL = os.Getenv("FID_SERVER")
			}
			if serverURL == "" {
				serverURL = "http://localhost:8080"
			}
			return nil
		},
	}
)

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "service base URL (default $FID_SERVER or http://localhost:8080)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "request timeout")
}
