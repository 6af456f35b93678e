// Package status derives a flight's lifecycle state from its scheduled
// departure and arrival instants.
package status

import (
	"strings"
	"time"

	"github.com/jkhliffz09/airport-fid-service/internal/models"
)

// Window thresholds relative to the scheduled instants.
const (
	boardingLead = 60 * time.Minute // boarding opens before departure
	gateCloseLag = 15 * time.Minute // gate closes after scheduled departure
	arrivingLead = 30 * time.Minute // approach window before arrival
	arrivedLag   = 60 * time.Minute // flight considered complete after arrival
)

// Compute maps scheduled departure/arrival datetimes (with their UTC offset
// strings) and the current instant to one of the five lifecycle states.
//
// Conditions are checked strictly in order. For flights scheduled shorter
// than 90 minutes the windows can overlap or invert; first match wins, which
// keeps the result deterministic without re-deriving ranges.
//
// A datetime that fails to parse yields Scheduled, never an error.
func Compute(departure, departureOffset, arrival, arrivalOffset string, now time.Time) models.FlightStatus {
	dep, okDep := BuildInstant(departure, departureOffset)
	arr, okArr := BuildInstant(arrival, arrivalOffset)
	if !okDep || !okArr {
		return models.StatusScheduled
	}

	nowUTC := now.UTC()
	depUTC := dep.UTC()
	arrUTC := arr.UTC()

	switch {
	case nowUTC.Before(depUTC.Add(-boardingLead)):
		return models.StatusScheduled
	case nowUTC.Before(depUTC.Add(gateCloseLag)):
		return models.StatusBoarding
	case nowUTC.Before(arrUTC.Add(-arrivingLead)):
		return models.StatusInAir
	case nowUTC.Before(arrUTC.Add(arrivedLag)):
		return models.StatusArriving
	default:
		return models.StatusArrived
	}
}

// BuildInstant combines a raw local datetime ("2006-01-02T15:04:05") with a
// UTC offset string into an absolute instant. Offsets may arrive as ±HHMM
// with no colon; the colon is inserted before parsing. An empty offset is
// treated as UTC. Returns false when the datetime does not parse.
func BuildInstant(raw, offset string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}

	offset = NormalizeOffset(offset)
	if offset == "" {
		t, err := time.Parse("2006-01-02T15:04:05", raw)
		if err != nil {
			return time.Time{}, false
		}
		return t, true
	}

	t, err := time.Parse("2006-01-02T15:04:05-07:00", raw+offset)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// NormalizeOffset rewrites a colonless ±HHMM offset as ±HH:MM. Offsets in any
// other shape are returned trimmed and otherwise untouched.
func NormalizeOffset(offset string) string {
	offset = strings.TrimSpace(offset)
	if offset != "" && !strings.Contains(offset, ":") && len(offset) == 5 {
		return offset[:3] + ":" + offset[3:]
	}
	return offset
}
