// Package normalize flattens a parsed timetable tree into flight records.
// Provider documents place the same field in several possible locations
// depending on feed vintage; every field is resolved through an ordered
// fallback list, first non-empty value wins.
package normalize

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jkhliffz09/airport-fid-service/internal/flightxml"
	"github.com/jkhliffz09/airport-fid-service/internal/models"
	"github.com/jkhliffz09/airport-fid-service/internal/status"
)

// timeSentinel is rendered for unparseable or missing datetimes and
// terminals.
const timeSentinel = "--"

// EquipmentResolver resolves an aircraft type code to a display name.
// A nil resolver or an unknown code leaves the name empty.
type EquipmentResolver interface {
	EquipmentName(code string) string
}

// attrSource is one (node, attribute) location a field may live at.
type attrSource struct {
	node *flightxml.Node
	attr string
}

// firstAttr tries each source in order and returns the first non-empty value.
func firstAttr(sources ...attrSource) string {
	for _, s := range sources {
		if v := s.node.Attr(s.attr); v != "" {
			return v
		}
	}
	return ""
}

// Flights walks a timetable tree for one origin/destination/date and returns
// up to limit flight records in document order. No sorting happens here.
// limit <= 0 means no limit.
func Flights(tree *flightxml.Node, limit int, now time.Time, equipment EquipmentResolver) []models.FlightRecord {
	var flights []models.FlightRecord
	for _, node := range tree.FindAll("FlightDetails") {
		if limit > 0 && len(flights) >= limit {
			break
		}
		record, ok := flight(node, now, equipment)
		if ok {
			flights = append(flights, record)
		}
	}
	return flights
}

// flight builds one record from a FlightDetails node. A flight has 1..n legs;
// the first leg supplies the departure-side fields and the last leg the
// arrival-side fields. Connecting legs in between contribute nothing.
func flight(node *flightxml.Node, now time.Time, equipment EquipmentResolver) (models.FlightRecord, bool) {
	legs := node.FindAll("FlightLegDetails")
	if len(legs) == 0 {
		return models.FlightRecord{}, false
	}
	firstLeg := legs[0]
	lastLeg := legs[len(legs)-1]

	marketing := firstLeg.First("MarketingAirline")
	operating := firstLeg.First("OperatingAirline")
	departureAirport := firstLeg.First("DepartureAirport")
	arrivalAirport := lastLeg.First("ArrivalAirport")
	equipmentNode := firstLeg.First("Equipment")

	// Marketing carrier wins; the operating carrier fills whichever of
	// name/code the marketing entry lacks.
	airlineCode := marketing.Attr("Code")
	airlineName := firstAttr(
		attrSource{marketing, "CompanyShortName"},
		attrSource{operating, "CompanyShortName"},
	)
	if airlineName == "" {
		airlineName = airlineCode
	}
	if airlineCode == "" {
		airlineCode = operating.Attr("Code")
	}

	flightNumber := firstAttr(
		attrSource{firstLeg, "FlightNumber"},
		attrSource{operating, "FlightNumber"},
	)
	if airlineCode != "" {
		flightNumber = airlineCode + flightNumber
	}

	departure := node.Attr("FLSDepartureDateTime")
	departureOffset := node.Attr("FLSDepartureTimeOffset")
	arrival := node.Attr("FLSArrivalDateTime")
	arrivalOffset := node.Attr("FLSArrivalTimeOffset")

	originCode := firstAttr(
		attrSource{node, "FLSDepartureCode"},
		attrSource{departureAirport, "LocationCode"},
	)
	originName := firstAttr(
		attrSource{node, "FLSDepartureName"},
		attrSource{departureAirport, "FLSLocationName"},
	)
	destination := firstAttr(
		attrSource{node, "FLSArrivalCode"},
		attrSource{arrivalAirport, "LocationCode"},
	)
	destinationName := firstAttr(
		attrSource{node, "FLSArrivalName"},
		attrSource{arrivalAirport, "FLSLocationName"},
	)

	equipmentCode := equipmentNode.Attr("AirEquipType")
	equipmentName := ""
	if equipmentCode != "" && equipment != nil {
		equipmentName = equipment.EquipmentName(equipmentCode)
	}

	record := models.FlightRecord{
		Airline:         airlineName,
		AirlineCode:     airlineCode,
		FlightNumber:    flightNumber,
		DepartureTime:   FormatTime(departure),
		ArrivalTime:     FormatTime(arrival),
		Status:          status.Compute(departure, departureOffset, arrival, arrivalOffset, now),
		Terminal:        FormatTerminal(departureAirport.Attr("Terminal"), arrivalAirport.Attr("Terminal")),
		Destination:     destination,
		DestinationName: destinationName,
		OriginCode:      originCode,
		OriginName:      originName,
		Equipment:       equipmentCode,
		EquipmentName:   equipmentName,
	}
	fillDerived(&record, departure, departureOffset, arrival, arrivalOffset)
	return record, true
}

// fillDerived computes the duration label, next-day marker, and the numeric
// sort fields. All are best-effort: an unparseable datetime leaves the label
// empty and the sort minutes negative.
func fillDerived(record *models.FlightRecord, departure, departureOffset, arrival, arrivalOffset string) {
	record.DepartureMinutes = clockMinutes(record.DepartureTime)
	record.ArrivalMinutes = clockMinutes(record.ArrivalTime)
	record.DurationMinutes = -1

	dep, okDep := status.BuildInstant(departure, departureOffset)
	arr, okArr := status.BuildInstant(arrival, arrivalOffset)
	if !okDep || !okArr {
		return
	}

	minutes := int(arr.Sub(dep).Minutes())
	if minutes >= 0 {
		record.DurationMinutes = minutes
		record.Duration = fmt.Sprintf("%dh %02dm", minutes/60, minutes%60)
	}
	if arr.Format("2006-01-02") > dep.Format("2006-01-02") {
		record.DayIndicator = "+1"
	}
}

// clockMinutes converts an "HH:MM" display time to minutes since midnight,
// or -1 for the sentinel.
func clockMinutes(hhmm string) int {
	if len(hhmm) != 5 || hhmm[2] != ':' {
		return -1
	}
	h, err1 := strconv.Atoi(hhmm[:2])
	m, err2 := strconv.Atoi(hhmm[3:])
	if err1 != nil || err2 != nil {
		return -1
	}
	return h*60 + m
}

// FormatTime truncates an ISO-like datetime to its HH:MM substring.
// Inputs shorter than 16 characters yield the sentinel.
func FormatTime(dateTime string) string {
	if len(dateTime) < 16 {
		return timeSentinel
	}
	return dateTime[11:16]
}

// FormatTerminal renders a departure/arrival terminal pair. Both sides
// present renders "T<dep> -> T<arr>"; one side renders that side alone;
// neither renders the sentinel.
func FormatTerminal(departureTerminal, arrivalTerminal string) string {
	departureTerminal = strings.TrimSpace(departureTerminal)
	arrivalTerminal = strings.TrimSpace(arrivalTerminal)

	switch {
	case departureTerminal == "" && arrivalTerminal == "":
		return timeSentinel
	case departureTerminal == "":
		return arrivalTerminal
	case arrivalTerminal == "":
		return departureTerminal
	default:
		return "T" + departureTerminal + " -> T" + arrivalTerminal
	}
}
