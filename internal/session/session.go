// Package session implements the progressive board loader used by display
// clients: check the server-side board cache, resolve destinations, fan out
// timetable fetches under a concurrency ceiling, and merge results into a
// live, sortable, paginated flight list that is written back to the server
// cache once complete.
package session

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/jkhliffz09/airport-fid-service/internal/models"
	"github.com/jkhliffz09/airport-fid-service/internal/validation"
)

// FetchConcurrency caps simultaneous timetable requests. The window refills
// as each request settles rather than per whole batch.
const FetchConcurrency = 6

// PageSize is the pagination step for the visible flight slice.
const PageSize = 5

// CacheResult is the server board-cache lookup outcome.
type CacheResult struct {
	Cached      bool
	Stale       bool
	AirportName string
	Flights     []models.FlightRecord
}

// BoardAPI is the server surface a session consumes.
type BoardAPI interface {
	CachedBoard(ctx context.Context, airport, date, sort string) (*CacheResult, error)
	Routes(ctx context.Context, airport string) (*models.RoutesResult, error)
	Timetable(ctx context.Context, airport, destination, date string) ([]models.FlightRecord, error)
	SaveBoard(ctx context.Context, snap *models.BoardSnapshot) error
}

// View receives render callbacks. Implementations must tolerate being called
// from fetch goroutines; each call carries a consistent copy of the visible
// slice.
type View interface {
	RenderFlights(visible []models.FlightRecord, total int)
	RenderStatus(message string)
}

// BoardSession owns the state for one board view. All cross-request state
// lives here; there are no package-level singletons. A session is safe for
// concurrent use; superseded loads are discarded via the generation counter.
type BoardSession struct {
	api  BoardAPI
	view View

	mu          sync.Mutex
	generation  int
	airport     string
	airportName string
	date        string
	sortKey     SortKey
	order       Order
	flights     []models.FlightRecord
	visible     int
	expanded    string
	skipped     int
	fetching    bool
}

// New creates a session rendering through view.
func New(api BoardAPI, view View) *BoardSession {
	return &BoardSession{
		api:     api,
		view:    view,
		sortKey: SortDeparture,
		order:   OrderAsc,
	}
}

// LoadBoard runs one full progressive load and blocks until it completes or
// is superseded. Calling it again increments the session generation: work
// dispatched for an earlier call still settles on the wire, but its results
// are discarded on arrival. There is no preemptive abort.
func (s *BoardSession) LoadBoard(ctx context.Context, airport, date string) error {
	iata, err := validation.ValidateIATA(airport)
	if err != nil {
		s.view.RenderStatus("Enter a valid 3-letter IATA code.")
		return err
	}

	s.mu.Lock()
	s.generation++
	gen := s.generation
	s.airport = iata
	s.date = date
	s.flights = nil
	s.visible = 0
	s.expanded = ""
	s.skipped = 0
	s.fetching = true
	sortKey := s.sortKey
	s.mu.Unlock()

	s.view.RenderStatus(fmt.Sprintf("Loading flights for %s...", iata))

	// Cache check: a fresh hit renders and stops; a stale hit renders
	// optimistically and continues to refresh; a miss continues.
	if cached, fresh := s.checkCache(ctx, gen, iata, date, sortKey); cached && fresh {
		return nil
	}

	routes, err := s.api.Routes(ctx, iata)
	if s.superseded(gen) {
		return nil
	}
	if err != nil {
		s.view.RenderStatus("Unable to load flight data.")
		return err
	}
	if len(routes.Destinations) == 0 {
		s.view.RenderStatus(fmt.Sprintf("No destinations found for %s.", iata))
		return nil
	}

	s.mu.Lock()
	if gen != s.generation {
		s.mu.Unlock()
		return nil
	}
	s.airportName = routes.AirportName
	// A stale render may be on screen; the refresh accumulates from scratch.
	s.flights = nil
	s.visible = 0
	s.mu.Unlock()

	s.fetchAll(ctx, gen, iata, date, routes.Destinations)
	return nil
}

// checkCache returns (cached, fresh). Both cached outcomes render.
func (s *BoardSession) checkCache(ctx context.Context, gen int, airport, date string, sortKey SortKey) (bool, bool) {
	result, err := s.api.CachedBoard(ctx, airport, date, string(sortKey))
	if s.superseded(gen) {
		return false, false
	}
	if err != nil || result == nil || !result.Cached {
		return false, false
	}

	s.mu.Lock()
	if gen != s.generation {
		s.mu.Unlock()
		return false, false
	}
	s.airportName = result.AirportName
	s.flights = append([]models.FlightRecord(nil), result.Flights...)
	Sort(s.flights, s.sortKey, s.order)
	s.visible = min(PageSize, len(s.flights))
	if !result.Stale {
		s.fetching = false
	}
	label := s.displayLabel()
	s.mu.Unlock()

	s.renderPage()
	s.view.RenderStatus(fmt.Sprintf("Showing flights for %s.", label))
	return true, !result.Stale
}

// fetchAll fans out one timetable request per destination with at most
// FetchConcurrency in flight, merging and re-sorting as each settles.
func (s *BoardSession) fetchAll(ctx context.Context, gen int, airport, date string, destinations []string) {
	sem := semaphore.NewWeighted(FetchConcurrency)
	var wg sync.WaitGroup
	for _, destination := range destinations {
		if s.superseded(gen) {
			break
		}
		if err := sem.Acquire(ctx, 1); err != nil {
			break
		}
		wg.Add(1)
		go func(destination string) {
			defer wg.Done()
			defer sem.Release(1)
			flights, err := s.api.Timetable(ctx, airport, destination, date)
			s.applyBatch(gen, flights, err)
		}(destination)
	}
	wg.Wait()
	s.finish(ctx, gen, date)
}

// applyBatch merges one settled timetable response. A failed destination
// contributes zero flights; there is no retry.
func (s *BoardSession) applyBatch(gen int, flights []models.FlightRecord, err error) {
	s.mu.Lock()
	if gen != s.generation {
		s.mu.Unlock()
		return
	}
	if err != nil {
		s.skipped++
		s.mu.Unlock()
		return
	}
	s.flights = append(s.flights, flights...)
	Sort(s.flights, s.sortKey, s.order)
	if s.visible == 0 {
		s.visible = min(PageSize, len(s.flights))
	}
	s.mu.Unlock()

	s.renderPage()
}

// finish marks the load complete and writes the merged list back to the
// server cache. The write is best-effort; failures are ignored.
func (s *BoardSession) finish(ctx context.Context, gen int, date string) {
	s.mu.Lock()
	if gen != s.generation {
		s.mu.Unlock()
		return
	}
	s.fetching = false
	label := s.displayLabel()
	snap := &models.BoardSnapshot{
		Airport:     s.airport,
		Date:        date,
		Sort:        string(s.sortKey),
		AirportName: s.airportName,
		Flights:     append([]models.FlightRecord(nil), s.flights...),
	}
	count := len(s.flights)
	s.mu.Unlock()

	s.renderPage()
	if count == 0 {
		s.view.RenderStatus(fmt.Sprintf("No flights found for %s.", label))
	} else {
		s.view.RenderStatus(fmt.Sprintf("Showing flights for %s.", label))
	}

	_ = s.api.SaveBoard(ctx, snap)
}

// SetSort re-sorts the already-fetched list and re-renders. No refetch:
// ordering is a pure view over the fetched set.
func (s *BoardSession) SetSort(key SortKey, order Order) {
	s.mu.Lock()
	s.sortKey = key
	s.order = order
	Sort(s.flights, key, order)
	s.mu.Unlock()
	s.renderPage()
}

// LoadMore grows the visible slice by one page, capped at the total.
func (s *BoardSession) LoadMore() {
	s.mu.Lock()
	s.visible = min(len(s.flights), s.visible+PageSize)
	s.mu.Unlock()
	s.renderPage()
}

// ToggleRow expands the row with the given change-detection key, collapsing
// any other open row. Toggling the open row collapses it.
func (s *BoardSession) ToggleRow(key string) {
	s.mu.Lock()
	if s.expanded == key {
		s.expanded = ""
	} else {
		s.expanded = key
	}
	s.mu.Unlock()
}

// ExpandedRow returns the key of the currently expanded row, or "".
func (s *BoardSession) ExpandedRow() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.expanded
}

// Flights returns a copy of the full merged list.
func (s *BoardSession) Flights() []models.FlightRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.FlightRecord(nil), s.flights...)
}

// Fetching reports whether a load is still in progress.
func (s *BoardSession) Fetching() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fetching
}

// renderPage renders the currently visible slice.
func (s *BoardSession) renderPage() {
	s.mu.Lock()
	visible := append([]models.FlightRecord(nil), s.flights[:s.visible]...)
	total := len(s.flights)
	s.mu.Unlock()
	s.view.RenderFlights(visible, total)
}

func (s *BoardSession) superseded(gen int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return gen != s.generation
}

// displayLabel returns the airport name when known, else the code.
// Callers must hold mu.
func (s *BoardSession) displayLabel() string {
	if s.airportName != "" {
		return s.airportName
	}
	return s.airport
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
