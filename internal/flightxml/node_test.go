package flightxml

import (
	"errors"
	"testing"
)

const sampleDoc = `<?xml version="1.0" encoding="iso-8859-1"?>
<OTA_AirScheduleRS xmlns="http://www.opentravel.org/OTA/2003/05" FLSOriginName="Manila">
  <FlightDetails FLSDepartureCode="MNL" FLSArrivalCode="CEB">
    <FlightLegDetails FlightNumber="141">
      <DepartureAirport LocationCode="MNL" Terminal="3" />
      <ArrivalAirport LocationCode="CEB" />
      <MarketingAirline Code="PR" CompanyShortName="Philippine Airlines" />
    </FlightLegDetails>
  </FlightDetails>
  <FlightDetails FLSDepartureCode="MNL" FLSArrivalCode="DVO">
    <FlightLegDetails FlightNumber="809" />
  </FlightDetails>
</OTA_AirScheduleRS>`

func TestParse_Tree(t *testing.T) {
	root, err := Parse([]byte(sampleDoc))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if root.Name != "OTA_AirScheduleRS" {
		t.Errorf("root.Name = %q, want OTA_AirScheduleRS", root.Name)
	}
	if got := root.Attr("FLSOriginName"); got != "Manila" {
		t.Errorf("root FLSOriginName = %q, want Manila", got)
	}

	details := root.FindAll("FlightDetails")
	if len(details) != 2 {
		t.Fatalf("FindAll(FlightDetails) = %d nodes, want 2", len(details))
	}
	// Document order is preserved.
	if details[0].Attr("FLSArrivalCode") != "CEB" || details[1].Attr("FLSArrivalCode") != "DVO" {
		t.Errorf("FindAll order = %q, %q; want CEB, DVO",
			details[0].Attr("FLSArrivalCode"), details[1].Attr("FLSArrivalCode"))
	}

	leg := details[0].First("FlightLegDetails")
	if leg == nil {
		t.Fatal("First(FlightLegDetails) = nil")
	}
	if got := leg.First("DepartureAirport").Attr("Terminal"); got != "3" {
		t.Errorf("DepartureAirport Terminal = %q, want 3", got)
	}
}

// TestParse_NamespaceStripped verifies lookups match local names regardless of
// the document namespace.
func TestParse_NamespaceStripped(t *testing.T) {
	doc := `<ns:Root xmlns:ns="http://example.com"><ns:Child Attr="x"/></ns:Root>`
	root, err := Parse([]byte(doc))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	child := root.First("Child")
	if child == nil {
		t.Fatal("First(Child) = nil, want node")
	}
	if child.Attr("Attr") != "x" {
		t.Errorf("Child Attr = %q, want x", child.Attr("Attr"))
	}
}

func TestParse_NoDocument(t *testing.T) {
	if _, err := Parse([]byte("   ")); !errors.Is(err, ErrNoDocument) {
		t.Errorf("Parse(empty) error = %v, want ErrNoDocument", err)
	}
}

func TestParse_Invalid(t *testing.T) {
	if _, err := Parse([]byte("<a><b></a>")); err == nil {
		t.Error("Parse(mismatched tags) error = nil, want error")
	}
}

// TestNode_NilSafe verifies nil receivers behave as absent nodes, which lets
// callers chain lookups without nil checks.
func TestNode_NilSafe(t *testing.T) {
	var n *Node
	if n.Attr("x") != "" {
		t.Error("nil.Attr() != \"\"")
	}
	if n.FindAll("x") != nil {
		t.Error("nil.FindAll() != nil")
	}
	if n.First("x") != nil {
		t.Error("nil.First() != nil")
	}
}
