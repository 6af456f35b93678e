package fidctl

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jkhliffz09/airport-fid-service/internal/session"
)

var nearestCmd = &cobra.Command{
	Use:   "nearest <lat> <lon>",
	Short: "Find the nearest airport to coordinates",
	Args:  cobra.ExactArgs(2),
	RunE:  runNearest,
}

func init() {
	rootCmd.AddCommand(nearestCmd)
}

func runNearest(cmd *cobra.Command, args []string) error {
	lat, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return fmt.Errorf("invalid latitude %q", args[0])
	}
	lon, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return fmt.Errorf("invalid longitude %q", args[1])
	}

	api := session.NewHTTPBoardAPI(serverURL, timeout)
	nearest, err := api.Nearest(context.Background(), lat, lon)
	if err != nil {
		return fmt.Errorf("nearest airport: %w", err)
	}
	fmt.Printf("%s  %s  %s\n", nearest.Code, nearest.Name, nearest.Distance)
	return nil
}
