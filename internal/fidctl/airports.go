package fidctl

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jkhliffz09/airport-fid-service/internal/session"
)

var airportsCmd = &cobra.Command{
	Use:   "airports <query>",
	Short: "Search the airport index",
	Long:  `Search the airport index by IATA code prefix or name fragment. Queries need at least three characters.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runAirports,
}

func init() {
	rootCmd.AddCommand(airportsCmd)
}

func runAirports(cmd *cobra.Command, args []string) error {
	api := session.NewHTTPBoardAPI(serverURL, timeout)
	matches, err := api.Airports(context.Background(), args[0])
	if err != nil {
		return fmt.Errorf("search airports: %w", err)
	}
	if len(matches) == 0 {
		fmt.Println("No matches.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "CODE\tNAME")
	for _, m := range matches {
		fmt.Fprintf(w, "%s\t%s\n", m.Code, m.Name)
	}
	return w.Flush()
}
