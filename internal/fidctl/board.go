package fidctl

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jkhliffz09/airport-fid-service/internal/session"
)

var boardCmd = &cobra.Command{
	Use:   "board <airport>",
	Short: "Load the departure board for an airport",
	Long:  `Load the departure board for an airport: checks the server board cache first, then fans out timetable fetches per destination and prints the merged, sorted flight list.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runBoard,
}

var (
	boardDate     string
	boardSort     string
	boardOrder    string
	boardAll      bool
	boardProgress bool
)

func init() {
	rootCmd.AddCommand(boardCmd)

	boardCmd.Flags().StringVar(&boardDate, "date", "", "board date as YYYYMMDD (default today)")
	boardCmd.Flags().StringVar(&boardSort, "sort", "departure_time", "sort key (departure_time, arrival_time, duration, airline, airport)")
	boardCmd.Flags().StringVar(&boardOrder, "order", "asc", "sort order (asc, desc)")
	boardCmd.Flags().BoolVar(&boardAll, "all", false, "print all flights instead of the first page")
	boardCmd.Flags().BoolVar(&boardProgress, "progress", false, "print partial tables as destination fetches settle")
}

func runBoard(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	api := session.NewHTTPBoardAPI(serverURL, timeout)
	view := newTerminalView(os.Stdout, os.Stderr, boardProgress)
	sess := session.New(api, view)
	sess.SetSort(session.ParseSortKey(boardSort), session.ParseOrder(boardOrder))

	if err := sess.LoadBoard(ctx, args[0], boardDate); err != nil {
		return fmt.Errorf("load board: %w", err)
	}

	flights := sess.Flights()
	if !boardAll && len(flights) > session.PageSize {
		flights = flights[:session.PageSize]
	}
	view.PrintFinal(flights)
	if !boardAll && len(flights) < len(sess.Flights()) {
		fmt.Fprintf(os.Stdout, "(%d of %d flights, use --all for the full list)\n", len(flights), len(sess.Flights()))
	}
	return nil
}
