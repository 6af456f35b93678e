package models

// FlightStatus is a flight's lifecycle state derived from its scheduled
// departure and arrival instants relative to the current time.
type FlightStatus string

const (
	StatusScheduled FlightStatus = "Scheduled"
	StatusBoarding  FlightStatus = "Boarding"
	StatusInAir     FlightStatus = "In Air"
	StatusArriving  FlightStatus = "Arriving"
	StatusArrived   FlightStatus = "Arrived"
)

// AirportRef is one entry of the static airport index.
type AirportRef struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// NearestAirport is one match from the nearest-airport-by-coordinates lookup.
type NearestAirport struct {
	Code     string `json:"code"`
	Name     string `json:"name"`
	Distance string `json:"distance"`
}

// FlightRecord is one normalized flight from a timetable fetch. Values are
// immutable once constructed; sorting and slicing produce new views.
//
// The triple (FlightNumber, DepartureTime, Destination) is the render
// change-detection key. It is not a uniqueness guarantee: the same flight may
// appear under more than one destination and is deliberately not deduplicated.
type FlightRecord struct {
	Airline         string       `json:"airline"`
	AirlineCode     string       `json:"airline_code"`
	FlightNumber    string       `json:"flight_number"`
	DepartureTime   string       `json:"departure_time"`
	ArrivalTime     string       `json:"arrival_time"`
	Status          FlightStatus `json:"status"`
	Terminal        string       `json:"terminal"`
	Destination     string       `json:"destination"`
	DestinationName string       `json:"destination_name"`
	OriginCode      string       `json:"origin_code"`
	OriginName      string       `json:"origin_name"`
	Equipment       string       `json:"equipment"`
	EquipmentName   string       `json:"equipment_name"`
	Duration        string       `json:"duration,omitempty"`
	DayIndicator    string       `json:"day_indicator,omitempty"`

	// Numeric sort keys, minutes since midnight / total minutes. They are
	// serialized so ordering survives the timetable and cache round-trips;
	// only the normalizer computes them. Negative when the source datetime
	// did not parse.
	DepartureMinutes int `json:"departure_minutes"`
	ArrivalMinutes   int `json:"arrival_minutes"`
	DurationMinutes  int `json:"duration_minutes"`
}

// Key returns the change-detection key for re-render diffing.
func (f FlightRecord) Key() string {
	return f.FlightNumber + "|" + f.DepartureTime + "|" + f.Destination
}

// Board is the assembled response for one airport and date.
type Board struct {
	Airport      string         `json:"airport"`
	AirportName  string         `json:"airport_name"`
	Date         string         `json:"date"`
	Flights      []FlightRecord `json:"flights"`
	Errors       []string       `json:"errors,omitempty"`
	Destinations []string       `json:"destinations,omitempty"`
}

// BoardSnapshot is the payload written back to the board cache by the
// progressive client once all destination fetches have settled.
type BoardSnapshot struct {
	Airport     string         `json:"airport"`
	Date        string         `json:"date"`
	Sort        string         `json:"sort"`
	AirportName string         `json:"airport_name"`
	Flights     []FlightRecord `json:"flights"`
}

// RoutesResult is the destination list resolved for an origin airport.
type RoutesResult struct {
	Airport      string   `json:"airport"`
	AirportName  string   `json:"airport_name"`
	Destinations []string `json:"destinations"`
}
