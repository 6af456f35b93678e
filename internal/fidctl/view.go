package fidctl

import (
	"fmt"
	"io"
	"sync"
	"text/tabwriter"

	"github.com/jkhliffz09/airport-fid-service/internal/models"
)

// terminalView renders the session's flight list as a text table. Render
// calls arrive from fetch goroutines; the mutex keeps rows from interleaving.
type terminalView struct {
	mu       sync.Mutex
	out      io.Writer
	status   io.Writer
	progress bool
}

func newTerminalView(out, status io.Writer, progress bool) *terminalView {
	return &terminalView{out: out, status: status, progress: progress}
}

// RenderFlights prints the visible slice. During a progressive load only the
// final render should reach the terminal, so intermediate pages are skipped
// unless progress output was requested.
func (v *terminalView) RenderFlights(visible []models.FlightRecord, total int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.progress {
		return
	}
	v.printTable(visible, total)
}

// RenderStatus prints a status line to the status stream.
func (v *terminalView) RenderStatus(message string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	fmt.Fprintln(v.status, message)
}

// PrintFinal prints the full table once, used after a blocking load.
func (v *terminalView) PrintFinal(flights []models.FlightRecord) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.printTable(flights, len(flights))
}

func (v *terminalView) printTable(flights []models.FlightRecord, total int) {
	w := tabwriter.NewWriter(v.out, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "FLIGHT\tAIRLINE\tDEST\tDEPART\tARRIVE\tDURATION\tTERMINAL\tSTATUS")
	for _, f := range flights {
		arrive := f.ArrivalTime
		if f.DayIndicator != "" {
			arrive += " " + f.DayIndicator
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			f.FlightNumber, f.Airline, destinationLabel(f), f.DepartureTime, arrive, f.Duration, f.Terminal, f.Status)
	}
	_ = w.Flush()
	if len(flights) < total {
		fmt.Fprintf(v.out, "(%d of %d flights)\n", len(flights), total)
	}
}

func destinationLabel(f models.FlightRecord) string {
	if f.DestinationName != "" {
		return fmt.Sprintf("%s (%s)", f.DestinationName, f.Destination)
	}
	return f.Destination
}
