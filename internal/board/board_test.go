package board

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jkhliffz09/airport-fid-service/internal/cache"
	"github.com/jkhliffz09/airport-fid-service/internal/flightxml"
	"github.com/jkhliffz09/airport-fid-service/internal/models"
)

// mockProvider serves canned XML trees per destination and records calls.
type mockProvider struct {
	routesDoc      string
	routesErr      error
	timetableDocs  map[string]string
	timetableErrs  map[string]error
	timetableCalls []string
}

func (m *mockProvider) Nearest(ctx context.Context, lat, lon float64) ([]models.NearestAirport, error) {
	return nil, errors.New("not implemented")
}

func (m *mockProvider) Routes(ctx context.Context, airport string) (*flightxml.Node, error) {
	if m.routesErr != nil {
		return nil, m.routesErr
	}
	return flightxml.Parse([]byte(m.routesDoc))
}

func (m *mockProvider) Timetable(ctx context.Context, origin, destination, date string) (*flightxml.Node, error) {
	m.timetableCalls = append(m.timetableCalls, destination)
	if err := m.timetableErrs[destination]; err != nil {
		return nil, err
	}
	return flightxml.Parse([]byte(m.timetableDocs[destination]))
}

const testRoutesDoc = `<OTA_AirRouteRS FLSOriginName="Manila">
  <NonStop From="MNL" To="CEB" />
  <NonStop From="MNL" To="DVO" />
  <NonStop From="MNL" To="CEB" />
  <NonStop From="CEB" To="MNL" />
  <NonStop From="MNL" To="ILO" />
</OTA_AirRouteRS>`

// timetableFor builds a timetable document with n flights to the destination.
func timetableFor(destination string, n int) string {
	var b strings.Builder
	b.WriteString("<OTA_AirScheduleRS>")
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, `<FlightDetails FLSDepartureDateTime="2024-06-01T%02d:00:00" FLSArrivalDateTime="2024-06-01T%02d:30:00" FLSArrivalCode="%s">
  <FlightLegDetails FlightNumber="%d"><MarketingAirline Code="XX" CompanyShortName="Test Air" /></FlightLegDetails>
</FlightDetails>`, 6+i, 7+i, destination, 100+i)
	}
	b.WriteString("</OTA_AirScheduleRS>")
	return b.String()
}

func newTestService(p *mockProvider, maxDestinations, maxFlights int) *Service {
	svc := New(p, cache.NewInMemoryCache(), time.Minute, nil, maxDestinations, maxFlights, nil)
	svc.now = func() time.Time { return time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC) }
	return svc
}

// TestGetBoard_AggregatesAcrossDestinations verifies flights accumulate in
// provider destination order with duplicates and reverse routes excluded.
func TestGetBoard_AggregatesAcrossDestinations(t *testing.T) {
	p := &mockProvider{
		routesDoc: testRoutesDoc,
		timetableDocs: map[string]string{
			"CEB": timetableFor("CEB", 2),
			"DVO": timetableFor("DVO", 2),
			"ILO": timetableFor("ILO", 1),
		},
	}
	svc := newTestService(p, 8, 24)

	bd, err := svc.GetBoard(context.Background(), "MNL", "20240601", 0, false)
	if err != nil {
		t.Fatalf("GetBoard() error = %v", err)
	}
	if bd.Airport != "MNL" || bd.AirportName != "Manila" {
		t.Errorf("board header = %q/%q, want MNL/Manila", bd.Airport, bd.AirportName)
	}
	if bd.Date != "20240601" {
		t.Errorf("Date = %q, want 20240601", bd.Date)
	}
	if len(bd.Flights) != 5 {
		t.Fatalf("Flights = %d, want 5", len(bd.Flights))
	}
	// Destination order follows the routes document: CEB deduped, reverse
	// CEB->MNL route ignored.
	wantCalls := []string{"CEB", "DVO", "ILO"}
	if len(p.timetableCalls) != len(wantCalls) {
		t.Fatalf("timetable calls = %v, want %v", p.timetableCalls, wantCalls)
	}
	for i := range wantCalls {
		if p.timetableCalls[i] != wantCalls[i] {
			t.Fatalf("timetable calls = %v, want %v", p.timetableCalls, wantCalls)
		}
	}
}

// TestGetBoard_LimitShortCircuits verifies fetching stops once the limit is
// reached, leaving later destinations untouched.
func TestGetBoard_LimitShortCircuits(t *testing.T) {
	p := &mockProvider{
		routesDoc: testRoutesDoc,
		timetableDocs: map[string]string{
			"CEB": timetableFor("CEB", 6),
			"DVO": timetableFor("DVO", 4),
			"ILO": timetableFor("ILO", 4),
		},
	}
	svc := newTestService(p, 8, 24)

	bd, err := svc.GetBoard(context.Background(), "MNL", "20240601", 10, false)
	if err != nil {
		t.Fatalf("GetBoard() error = %v", err)
	}
	if len(bd.Flights) != 10 {
		t.Errorf("Flights = %d, want 10", len(bd.Flights))
	}
	// 6 from CEB then 4 from DVO fills the limit; ILO is never fetched.
	if len(p.timetableCalls) != 2 {
		t.Errorf("timetable calls = %v, want CEB and DVO only", p.timetableCalls)
	}
}

// TestGetBoard_FailedDestinationSkipped verifies a failing destination
// contributes nothing without failing the board, and that debug mode records
// the failure.
func TestGetBoard_FailedDestinationSkipped(t *testing.T) {
	p := &mockProvider{
		routesDoc: testRoutesDoc,
		timetableDocs: map[string]string{
			"CEB": timetableFor("CEB", 2),
			"ILO": timetableFor("ILO", 1),
		},
		timetableErrs: map[string]error{"DVO": errors.New("boom")},
	}
	svc := newTestService(p, 8, 24)

	bd, err := svc.GetBoard(context.Background(), "MNL", "20240601", 0, true)
	if err != nil {
		t.Fatalf("GetBoard() error = %v", err)
	}
	if len(bd.Flights) != 3 {
		t.Errorf("Flights = %d, want 3", len(bd.Flights))
	}
	found := false
	for _, e := range bd.Errors {
		if strings.Contains(e, "MNL->DVO") {
			found = true
		}
	}
	if !found {
		t.Errorf("debug errors = %v, want MNL->DVO entry", bd.Errors)
	}
}

func TestGetBoard_AllDestinationsFailed(t *testing.T) {
	p := &mockProvider{
		routesDoc: testRoutesDoc,
		timetableErrs: map[string]error{
			"CEB": errors.New("boom"),
			"DVO": errors.New("boom"),
			"ILO": errors.New("boom"),
		},
	}
	svc := newTestService(p, 8, 24)

	_, err := svc.GetBoard(context.Background(), "MNL", "20240601", 0, false)
	if !errors.Is(err, ErrAllDestinationsFailed) {
		t.Errorf("GetBoard() error = %v, want ErrAllDestinationsFailed", err)
	}
}

func TestGetBoard_NoDestinations(t *testing.T) {
	p := &mockProvider{routesDoc: `<OTA_AirRouteRS><NonStop From="CEB" To="MNL" /></OTA_AirRouteRS>`}
	svc := newTestService(p, 8, 24)

	_, err := svc.GetBoard(context.Background(), "MNL", "20240601", 0, false)
	if !errors.Is(err, ErrNoDestinations) {
		t.Errorf("GetBoard() error = %v, want ErrNoDestinations", err)
	}
}

// TestGetBoard_MaxDestinationsBound verifies the destination list is cut at
// the configured maximum before any fetching.
func TestGetBoard_MaxDestinationsBound(t *testing.T) {
	p := &mockProvider{
		routesDoc: testRoutesDoc,
		timetableDocs: map[string]string{
			"CEB": timetableFor("CEB", 1),
			"DVO": timetableFor("DVO", 1),
		},
	}
	svc := newTestService(p, 2, 24)

	if _, err := svc.GetBoard(context.Background(), "MNL", "20240601", 0, false); err != nil {
		t.Fatalf("GetBoard() error = %v", err)
	}
	if len(p.timetableCalls) != 2 {
		t.Errorf("timetable calls = %v, want 2 destinations", p.timetableCalls)
	}
}

func TestDestinations(t *testing.T) {
	p := &mockProvider{routesDoc: testRoutesDoc}
	svc := newTestService(p, 8, 24)

	result, err := svc.Destinations(context.Background(), "mnl")
	if err != nil {
		t.Fatalf("Destinations() error = %v", err)
	}
	want := []string{"CEB", "DVO", "ILO"}
	if len(result.Destinations) != len(want) {
		t.Fatalf("Destinations = %v, want %v", result.Destinations, want)
	}
	for i := range want {
		if result.Destinations[i] != want[i] {
			t.Fatalf("Destinations = %v, want %v", result.Destinations, want)
		}
	}
	if result.AirportName != "Manila" {
		t.Errorf("AirportName = %q, want Manila", result.AirportName)
	}
}

// TestCachedBoard_Lifecycle verifies the snapshot cache transitions: miss,
// fresh hit, stale hit within the window, miss past it.
func TestCachedBoard_Lifecycle(t *testing.T) {
	store := cache.NewInMemoryCache()
	svc := New(&mockProvider{}, store, 50*time.Millisecond, nil, 8, 24, nil)
	ctx := context.Background()

	_, cached, _, err := svc.CachedBoard(ctx, "MNL", "20240601", "departure_time")
	if err != nil {
		t.Fatalf("CachedBoard() error = %v", err)
	}
	if cached {
		t.Fatal("CachedBoard() cached = true before any save")
	}

	snap := &models.BoardSnapshot{
		Airport:     "MNL",
		Date:        "20240601",
		Sort:        "departure_time",
		AirportName: "Manila",
		Flights:     []models.FlightRecord{{FlightNumber: "XX100"}},
	}
	if err := svc.SaveBoard(ctx, snap); err != nil {
		t.Fatalf("SaveBoard() error = %v", err)
	}

	got, cached, stale, err := svc.CachedBoard(ctx, "mnl", "20240601", "departure_time")
	if err != nil {
		t.Fatalf("CachedBoard() error = %v", err)
	}
	if !cached || stale {
		t.Fatalf("CachedBoard() = cached %v stale %v, want fresh hit", cached, stale)
	}
	if got.AirportName != "Manila" || len(got.Flights) != 1 {
		t.Errorf("snapshot = %+v, want saved contents", got)
	}

	// Past the TTL but inside the stale window.
	time.Sleep(60 * time.Millisecond)
	_, cached, stale, err = svc.CachedBoard(ctx, "MNL", "20240601", "departure_time")
	if err != nil {
		t.Fatalf("CachedBoard() error = %v", err)
	}
	if !cached || !stale {
		t.Errorf("CachedBoard() = cached %v stale %v, want stale hit", cached, stale)
	}

	// A different sort key is a separate snapshot.
	_, cached, _, _ = svc.CachedBoard(ctx, "MNL", "20240601", "airline")
	if cached {
		t.Error("CachedBoard() with different sort = hit, want miss")
	}
}

// TestCachedBoard_CorruptEntry verifies an undecodable snapshot reads as a
// miss rather than an error.
func TestCachedBoard_CorruptEntry(t *testing.T) {
	store := cache.NewInMemoryCache()
	svc := New(&mockProvider{}, store, time.Minute, nil, 8, 24, nil)
	ctx := context.Background()

	key := cache.BoardKey("MNL", "20240601", "departure_time")
	_ = store.Set(ctx, key, []byte("{not json"), time.Minute)

	_, cached, _, err := svc.CachedBoard(ctx, "MNL", "20240601", "departure_time")
	if err != nil {
		t.Fatalf("CachedBoard() error = %v", err)
	}
	if cached {
		t.Error("CachedBoard() corrupt entry = hit, want miss")
	}
}

func TestNormalizeDate(t *testing.T) {
	now := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	tests := []struct {
		in   string
		want string
	}{
		{"20240615", "20240615"},
		{"", "20240601"},
		{"2024-06-15", "20240601"},
		{"junk", "20240601"},
		{" 20240615 ", "20240615"},
	}
	for _, tt := range tests {
		if got := NormalizeDate(tt.in, now); got != tt.want {
			t.Errorf("NormalizeDate(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
