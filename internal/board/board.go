// Package board assembles flight boards: it resolves an airport's nonstop
// destinations, fetches and normalizes each destination's timetable, and
// maintains the write-through snapshot cache for assembled boards.
package board

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jkhliffz09/airport-fid-service/internal/cache"
	"github.com/jkhliffz09/airport-fid-service/internal/client"
	"github.com/jkhliffz09/airport-fid-service/internal/flightxml"
	"github.com/jkhliffz09/airport-fid-service/internal/models"
	"github.com/jkhliffz09/airport-fid-service/internal/normalize"
	"github.com/jkhliffz09/airport-fid-service/internal/observability"
)

// ErrNoDestinations is returned when an airport has no nonstop routes.
var ErrNoDestinations = errors.New("no destinations found")

// ErrAllDestinationsFailed is returned when the routes fetch succeeded but
// every destination's timetable fetch failed.
var ErrAllDestinationsFailed = errors.New("all destination fetches failed")

// staleFactor is how many TTL periods an expired board snapshot remains
// servable as a stale hit.
const staleFactor = 4

var dateRe = regexp.MustCompile(`^\d{8}$`)

// Service orchestrates the provider client, normalizer, and caches.
type Service struct {
	provider        client.Provider
	store           cache.Cache
	ttl             time.Duration
	equipment       normalize.EquipmentResolver
	maxDestinations int
	maxFlights      int
	logger          *zap.Logger
	now             func() time.Time
}

// New creates a board Service. store holds assembled board snapshots with the
// given TTL; provider-level response caching is the client's concern.
func New(provider client.Provider, store cache.Cache, ttl time.Duration, equipment normalize.EquipmentResolver, maxDestinations, maxFlights int, logger *zap.Logger) *Service {
	return &Service{
		provider:        provider,
		store:           store,
		ttl:             ttl,
		equipment:       equipment,
		maxDestinations: maxDestinations,
		maxFlights:      maxFlights,
		logger:          logger,
		now:             time.Now,
	}
}

// GetBoard assembles up to limit flights for an airport and date across its
// nonstop destinations, in provider order, short-circuiting once the limit is
// reached. A destination that fails to fetch contributes zero flights and
// never fails the board unless every destination fails.
func (s *Service) GetBoard(ctx context.Context, airport, date string, limit int, debug bool) (*models.Board, error) {
	airport = strings.ToUpper(strings.TrimSpace(airport))
	date = NormalizeDate(date, s.now())
	maxFlights := s.effectiveLimit(limit)

	routes, err := s.provider.Routes(ctx, airport)
	if err != nil {
		return nil, fmt.Errorf("routes for %s: %w", airport, err)
	}

	airportName := originName(routes)
	destinations := extractDestinations(routes, airport, s.maxDestinations)
	if len(destinations) == 0 {
		return nil, fmt.Errorf("%w for %s", ErrNoDestinations, airport)
	}

	bd := &models.Board{
		Airport:     airport,
		AirportName: airportName,
		Date:        date,
	}
	if debug {
		bd.Destinations = destinations
	}

	failed := 0
	for _, destination := range destinations {
		if len(bd.Flights) >= maxFlights {
			break
		}
		tree, err := s.provider.Timetable(ctx, airport, destination, date)
		if err != nil {
			failed++
			observability.DestinationsSkippedTotal.Inc()
			if s.logger != nil {
				s.logger.Warn("destination skipped",
					zap.String("airport", airport),
					zap.String("destination", destination),
					zap.Error(err))
			}
			if debug {
				bd.Errors = append(bd.Errors, fmt.Sprintf("Timetable error for %s->%s: %v", airport, destination, err))
			}
			continue
		}
		parsed := normalize.Flights(tree, maxFlights-len(bd.Flights), s.now(), s.equipment)
		if debug && len(parsed) == 0 {
			bd.Errors = append(bd.Errors, fmt.Sprintf("No flights parsed for %s->%s on %s.", airport, destination, date))
		}
		bd.Flights = append(bd.Flights, parsed...)
	}

	if failed == len(destinations) {
		return nil, fmt.Errorf("%w: %s", ErrAllDestinationsFailed, airport)
	}

	observability.BoardFlightsReturned.Observe(float64(len(bd.Flights)))
	return bd, nil
}

// Destinations resolves the nonstop destination list for an airport.
func (s *Service) Destinations(ctx context.Context, airport string) (*models.RoutesResult, error) {
	airport = strings.ToUpper(strings.TrimSpace(airport))
	routes, err := s.provider.Routes(ctx, airport)
	if err != nil {
		return nil, fmt.Errorf("routes for %s: %w", airport, err)
	}
	return &models.RoutesResult{
		Airport:      airport,
		AirportName:  originName(routes),
		Destinations: extractDestinations(routes, airport, s.maxDestinations),
	}, nil
}

// Timetable fetches and normalizes one destination's timetable.
func (s *Service) Timetable(ctx context.Context, airport, destination, date string) ([]models.FlightRecord, error) {
	airport = strings.ToUpper(strings.TrimSpace(airport))
	destination = strings.ToUpper(strings.TrimSpace(destination))
	date = NormalizeDate(date, s.now())

	tree, err := s.provider.Timetable(ctx, airport, destination, date)
	if err != nil {
		return nil, fmt.Errorf("timetable %s->%s: %w", airport, destination, err)
	}
	return normalize.Flights(tree, s.maxFlights, s.now(), s.equipment), nil
}

// CachedBoard returns the assembled-board snapshot for (airport, date, sort).
// cached=true, stale=false is a fresh TTL hit; stale=true means the entry has
// expired but is still within the stale window and the caller should refresh.
func (s *Service) CachedBoard(ctx context.Context, airport, date, sort string) (*models.BoardSnapshot, bool, bool, error) {
	key := cache.BoardKey(airport, NormalizeDate(date, s.now()), sort)

	raw, ok, err := s.store.Get(ctx, key)
	if err != nil {
		observability.CacheErrorsTotal.WithLabelValues("get").Inc()
		return nil, false, false, err
	}
	stale := false
	if !ok {
		raw, ok, err = s.store.GetStale(ctx, key, staleFactor*s.ttl)
		if err != nil {
			observability.CacheErrorsTotal.WithLabelValues("get").Inc()
			return nil, false, false, err
		}
		if !ok {
			return nil, false, false, nil
		}
		stale = true
	}

	var snap models.BoardSnapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		// A corrupt snapshot behaves like a miss; the client refetches.
		return nil, false, false, nil
	}
	observability.CacheHitsTotal.WithLabelValues("board").Inc()
	return &snap, true, stale, nil
}

// SaveBoard writes an assembled board snapshot through to the cache, keyed by
// (airport, date, sort). Order and limit never enter the key: both are views
// applied client-side over the cached set.
func (s *Service) SaveBoard(ctx context.Context, snap *models.BoardSnapshot) error {
	snap.Airport = strings.ToUpper(strings.TrimSpace(snap.Airport))
	snap.Date = NormalizeDate(snap.Date, s.now())

	raw, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode board snapshot: %w", err)
	}
	key := cache.BoardKey(snap.Airport, snap.Date, snap.Sort)
	if err := s.store.Set(ctx, key, raw, s.ttl); err != nil {
		observability.CacheErrorsTotal.WithLabelValues("set").Inc()
		return err
	}
	return nil
}

// effectiveLimit maps a request limit to the flight cap for one board.
// Zero means unlimited subject to the configured max; positive limits are
// clamped to it.
func (s *Service) effectiveLimit(limit int) int {
	if limit > 0 && limit < s.maxFlights {
		return limit
	}
	return s.maxFlights
}

// NormalizeDate returns the date when it is exactly 8 digits, otherwise
// today in YYYYMMDD.
func NormalizeDate(date string, now time.Time) string {
	date = strings.TrimSpace(date)
	if dateRe.MatchString(date) {
		return date
	}
	return now.Format("20060102")
}

// originName pulls the origin's display name from a routes document.
func originName(routes *flightxml.Node) string {
	if v := routes.Attr("FLSOriginName"); v != "" {
		return v
	}
	return routes.Attr("OriginName")
}

// extractDestinations collects distinct To codes of nonstop routes departing
// origin, in provider order, bounded to limit.
func extractDestinations(routes *flightxml.Node, origin string, limit int) []string {
	var destinations []string
	seen := make(map[string]bool)
	for _, route := range routes.FindAll("NonStop") {
		from := strings.ToUpper(route.Attr("From"))
		to := strings.ToUpper(route.Attr("To"))
		if from != origin || to == "" || seen[to] {
			continue
		}
		seen[to] = true
		destinations = append(destinations, to)
		if len(destinations) >= limit {
			break
		}
	}
	return destinations
}
