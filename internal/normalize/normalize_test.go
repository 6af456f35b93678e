package normalize

import (
	"testing"
	"time"

	"github.com/jkhliffz09/airport-fid-service/internal/flightxml"
	"github.com/jkhliffz09/airport-fid-service/internal/models"
)

// fakeEquipment resolves a fixed set of aircraft type codes.
type fakeEquipment map[string]string

func (f fakeEquipment) EquipmentName(code string) string { return f[code] }

const timetableDoc = `<?xml version="1.0" encoding="iso-8859-1"?>
<OTA_AirScheduleRS xmlns="http://www.opentravel.org/OTA/2003/05">
  <FlightDetails FLSDepartureDateTime="2024-06-01T08:00:00" FLSDepartureTimeOffset="+0800"
                 FLSArrivalDateTime="2024-06-01T09:30:00" FLSArrivalTimeOffset="+0800"
                 FLSDepartureCode="MNL" FLSDepartureName="Manila"
                 FLSArrivalCode="CEB" FLSArrivalName="Cebu">
    <FlightLegDetails FlightNumber="2041">
      <DepartureAirport LocationCode="MNL" Terminal="3" />
      <ArrivalAirport LocationCode="CEB" Terminal="1" />
      <MarketingAirline Code="5J" CompanyShortName="Cebu Pacific" />
      <OperatingAirline Code="5J" CompanyShortName="Cebu Pacific" FlightNumber="2041" />
      <Equipment AirEquipType="320" />
    </FlightLegDetails>
  </FlightDetails>
  <FlightDetails FLSDepartureDateTime="2024-06-01T23:30:00" FLSDepartureTimeOffset="+0800"
                 FLSArrivalDateTime="2024-06-02T01:45:00" FLSArrivalTimeOffset="+0800"
                 FLSDepartureCode="MNL" FLSArrivalCode="DVO">
    <FlightLegDetails>
      <DepartureAirport LocationCode="MNL" />
      <ArrivalAirport LocationCode="DVO" />
      <OperatingAirline Code="PR" CompanyShortName="Philippine Airlines" FlightNumber="813" />
    </FlightLegDetails>
  </FlightDetails>
</OTA_AirScheduleRS>`

func parseDoc(t *testing.T, doc string) *flightxml.Node {
	t.Helper()
	tree, err := flightxml.Parse([]byte(doc))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	return tree
}

// TestFlights_FullRecord verifies field mapping for a fully populated flight.
func TestFlights_FullRecord(t *testing.T) {
	tree := parseDoc(t, timetableDoc)
	now := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	flights := Flights(tree, 0, now, fakeEquipment{"320": "Airbus A320"})
	if len(flights) != 2 {
		t.Fatalf("Flights() = %d records, want 2", len(flights))
	}

	f := flights[0]
	if f.Airline != "Cebu Pacific" {
		t.Errorf("Airline = %q, want Cebu Pacific", f.Airline)
	}
	if f.AirlineCode != "5J" {
		t.Errorf("AirlineCode = %q, want 5J", f.AirlineCode)
	}
	if f.FlightNumber != "5J2041" {
		t.Errorf("FlightNumber = %q, want 5J2041", f.FlightNumber)
	}
	if f.DepartureTime != "08:00" || f.ArrivalTime != "09:30" {
		t.Errorf("times = %q/%q, want 08:00/09:30", f.DepartureTime, f.ArrivalTime)
	}
	if f.Terminal != "T3 -> T1" {
		t.Errorf("Terminal = %q, want %q", f.Terminal, "T3 -> T1")
	}
	if f.Destination != "CEB" || f.DestinationName != "Cebu" {
		t.Errorf("destination = %q/%q, want CEB/Cebu", f.Destination, f.DestinationName)
	}
	if f.OriginCode != "MNL" || f.OriginName != "Manila" {
		t.Errorf("origin = %q/%q, want MNL/Manila", f.OriginCode, f.OriginName)
	}
	if f.Equipment != "320" || f.EquipmentName != "Airbus A320" {
		t.Errorf("equipment = %q/%q, want 320/Airbus A320", f.Equipment, f.EquipmentName)
	}
	if f.Status != models.StatusScheduled {
		t.Errorf("Status = %q, want Scheduled well before departure", f.Status)
	}
	if f.Duration != "1h 30m" {
		t.Errorf("Duration = %q, want 1h 30m", f.Duration)
	}
	if f.DayIndicator != "" {
		t.Errorf("DayIndicator = %q, want empty for same-day arrival", f.DayIndicator)
	}
	if f.DepartureMinutes != 8*60 || f.ArrivalMinutes != 9*60+30 || f.DurationMinutes != 90 {
		t.Errorf("sort minutes = %d/%d/%d, want 480/570/90",
			f.DepartureMinutes, f.ArrivalMinutes, f.DurationMinutes)
	}
}

// TestFlights_OperatingFallback verifies that a flight without a marketing
// airline falls back to the operating carrier for name, code, and number.
func TestFlights_OperatingFallback(t *testing.T) {
	tree := parseDoc(t, timetableDoc)
	now := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	flights := Flights(tree, 0, now, nil)
	f := flights[1]
	if f.Airline != "Philippine Airlines" {
		t.Errorf("Airline = %q, want Philippine Airlines", f.Airline)
	}
	if f.AirlineCode != "PR" {
		t.Errorf("AirlineCode = %q, want PR", f.AirlineCode)
	}
	if f.FlightNumber != "PR813" {
		t.Errorf("FlightNumber = %q, want PR813", f.FlightNumber)
	}
	if f.Terminal != "--" {
		t.Errorf("Terminal = %q, want sentinel when both sides missing", f.Terminal)
	}
	if f.DayIndicator != "+1" {
		t.Errorf("DayIndicator = %q, want +1 for overnight arrival", f.DayIndicator)
	}
	if f.Duration != "2h 15m" {
		t.Errorf("Duration = %q, want 2h 15m", f.Duration)
	}
}

// TestFlights_Limit verifies the document-order cap.
func TestFlights_Limit(t *testing.T) {
	tree := parseDoc(t, timetableDoc)
	now := time.Now()

	flights := Flights(tree, 1, now, nil)
	if len(flights) != 1 {
		t.Fatalf("Flights(limit=1) = %d records, want 1", len(flights))
	}
	if flights[0].Destination != "CEB" {
		t.Errorf("first record destination = %q, want CEB", flights[0].Destination)
	}
}

// TestFlights_SkipsLeglessDetails verifies a FlightDetails node without legs
// contributes nothing.
func TestFlights_SkipsLeglessDetails(t *testing.T) {
	doc := `<Root><FlightDetails FLSArrivalCode="CEB" /></Root>`
	flights := Flights(parseDoc(t, doc), 0, time.Now(), nil)
	if len(flights) != 0 {
		t.Errorf("Flights() = %d records, want 0 for legless details", len(flights))
	}
}

func TestFormatTime(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"2024-06-01T08:05:00", "08:05"},
		{"2024-06-01T23:59:00+08:00", "23:59"},
		{"2024-06-01", "--"},
		{"", "--"},
		{"short", "--"},
	}
	for _, tt := range tests {
		if got := FormatTime(tt.in); got != tt.want {
			t.Errorf("FormatTime(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatTerminal(t *testing.T) {
	tests := []struct {
		dep  string
		arr  string
		want string
	}{
		{"3", "1", "T3 -> T1"},
		{"3", "", "3"},
		{"", "1", "1"},
		{"", "", "--"},
		{" ", " ", "--"},
	}
	for _, tt := range tests {
		if got := FormatTerminal(tt.dep, tt.arr); got != tt.want {
			t.Errorf("FormatTerminal(%q, %q) = %q, want %q", tt.dep, tt.arr, got, tt.want)
		}
	}
}

// TestFlights_UnparseableTimes verifies derived fields stay empty and the
// sort minutes go negative when the source datetimes do not parse.
func TestFlights_UnparseableTimes(t *testing.T) {
	doc := `<Root>
  <FlightDetails FLSDepartureDateTime="bad" FLSArrivalDateTime="also-bad" FLSArrivalCode="CEB">
    <FlightLegDetails FlightNumber="1"><MarketingAirline Code="XX" /></FlightLegDetails>
  </FlightDetails>
</Root>`
	flights := Flights(parseDoc(t, doc), 0, time.Now(), nil)
	if len(flights) != 1 {
		t.Fatalf("Flights() = %d records, want 1", len(flights))
	}
	f := flights[0]
	if f.DepartureTime != "--" || f.ArrivalTime != "--" {
		t.Errorf("times = %q/%q, want sentinels", f.DepartureTime, f.ArrivalTime)
	}
	if f.Duration != "" || f.DayIndicator != "" {
		t.Errorf("derived = %q/%q, want empty", f.Duration, f.DayIndicator)
	}
	if f.DepartureMinutes != -1 || f.ArrivalMinutes != -1 || f.DurationMinutes != -1 {
		t.Errorf("sort minutes = %d/%d/%d, want -1 each",
			f.DepartureMinutes, f.ArrivalMinutes, f.DurationMinutes)
	}
	if f.Status != models.StatusScheduled {
		t.Errorf("Status = %q, want fail-open Scheduled", f.Status)
	}
}
