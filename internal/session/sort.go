package session

import (
	"sort"
	"strings"

	"github.com/jkhliffz09/airport-fid-service/internal/models"
)

// SortKey selects the flight-list ordering.
type SortKey string

const (
	SortDeparture SortKey = "departure_time"
	SortArrival   SortKey = "arrival_time"
	SortDuration  SortKey = "duration"
	SortAirline   SortKey = "airline"
	SortAirport   SortKey = "airport"
)

// Order is the sort direction, applied as a sign multiplier after the key
// comparison.
type Order string

const (
	OrderAsc  Order = "asc"
	OrderDesc Order = "desc"
)

// ParseSortKey returns the key, defaulting to departure time.
func ParseSortKey(s string) SortKey {
	switch SortKey(strings.ToLower(strings.TrimSpace(s))) {
	case SortArrival:
		return SortArrival
	case SortDuration:
		return SortDuration
	case SortAirline:
		return SortAirline
	case SortAirport:
		return SortAirport
	default:
		return SortDeparture
	}
}

// ParseOrder returns the order, defaulting to ascending.
func ParseOrder(s string) Order {
	if Order(strings.ToLower(strings.TrimSpace(s))) == OrderDesc {
		return OrderDesc
	}
	return OrderAsc
}

// timeKey reports whether the key compares clock or duration minutes.
func timeKey(key SortKey) bool {
	return key == SortDeparture || key == SortArrival || key == SortDuration
}

// Sort stably orders flights in place by (key, order). Ties fall back to
// destination-airport name, then airline; non-time keys fall back further to
// departure time so identical inputs order deterministically.
func Sort(flights []models.FlightRecord, key SortKey, order Order) {
	sign := 1
	if order == OrderDesc {
		sign = -1
	}
	sort.SliceStable(flights, func(i, j int) bool {
		return sign*compare(flights[i], flights[j], key) < 0
	})
}

func compare(a, b models.FlightRecord, key SortKey) int {
	if c := compareKey(a, b, key); c != 0 {
		return c
	}
	if c := compareString(airportLabel(a), airportLabel(b)); c != 0 {
		return c
	}
	if c := compareString(a.Airline, b.Airline); c != 0 {
		return c
	}
	if !timeKey(key) {
		return compareInt(a.DepartureMinutes, b.DepartureMinutes)
	}
	return 0
}

func compareKey(a, b models.FlightRecord, key SortKey) int {
	switch key {
	case SortArrival:
		return compareInt(a.ArrivalMinutes, b.ArrivalMinutes)
	case SortDuration:
		return compareInt(a.DurationMinutes, b.DurationMinutes)
	case SortAirline:
		return compareString(a.Airline, b.Airline)
	case SortAirport:
		return compareString(airportLabel(a), airportLabel(b))
	default:
		return compareInt(a.DepartureMinutes, b.DepartureMinutes)
	}
}

// airportLabel is the destination name used for airport ordering and
// tie-breaks, falling back to the bare code.
func airportLabel(f models.FlightRecord) string {
	if f.DestinationName != "" {
		return f.DestinationName
	}
	return f.Destination
}

func compareInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func compareString(a, b string) int {
	return strings.Compare(strings.ToUpper(a), strings.ToUpper(b))
}
