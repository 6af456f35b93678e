package refdata

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

const airportsDoc = `FlightLookup airport reference export.
<Airports>
  <Airport IATACode="MNL" Name="Ninoy Aquino International Airport" />
  <Airport IATACode="CEB" Name="Mactan-Cebu International Airport" />
  <Airport IATACode="CRK" Name="Clark International Airport" />
  <Airport IATACode="" Name="No Code Entry" />
</Airports>`

const equipmentDoc = `FlightLookup equipment reference export.
<Equipments>
  <Equipment IATACode="320" Name="Airbus A320" />
  <Equipment IATACode="77w" Name="Boeing 777-300ER" />
</Equipments>`

func writeIndex(t *testing.T, name, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

// TestLookupAirports verifies code-prefix and name-substring matching with the
// text preamble skipped.
func TestLookupAirports(t *testing.T) {
	idx := NewIndex(writeIndex(t, "airports.xml", airportsDoc), "")

	tests := []struct {
		query string
		want  []string
	}{
		{"MNL", []string{"MNL"}},
		{"mnl", []string{"MNL"}},
		{"international", []string{"MNL", "CEB", "CRK"}},
		{"cebu", []string{"CEB"}},
		{"zzz", nil},
	}

	for _, tt := range tests {
		matches, err := idx.LookupAirports(tt.query)
		if err != nil {
			t.Fatalf("LookupAirports(%q) error = %v", tt.query, err)
		}
		var codes []string
		for _, m := range matches {
			codes = append(codes, m.Code)
		}
		if len(codes) != len(tt.want) {
			t.Errorf("LookupAirports(%q) = %v, want %v", tt.query, codes, tt.want)
			continue
		}
		for i := range codes {
			if codes[i] != tt.want[i] {
				t.Errorf("LookupAirports(%q) = %v, want %v", tt.query, codes, tt.want)
				break
			}
		}
	}
}

// TestLookupAirports_Cap verifies results are capped at ten matches.
func TestLookupAirports_Cap(t *testing.T) {
	doc := "<Airports>"
	for i := 0; i < 15; i++ {
		doc += fmt.Sprintf(`<Airport IATACode="A%02d" Name="Test Airport %02d" />`, i, i)
	}
	doc += "</Airports>"

	idx := NewIndex(writeIndex(t, "airports.xml", doc), "")
	matches, err := idx.LookupAirports("test")
	if err != nil {
		t.Fatalf("LookupAirports() error = %v", err)
	}
	if len(matches) != 10 {
		t.Errorf("LookupAirports() = %d matches, want 10", len(matches))
	}
}

func TestAirportName(t *testing.T) {
	idx := NewIndex(writeIndex(t, "airports.xml", airportsDoc), "")

	if got := idx.AirportName("ceb"); got != "Mactan-Cebu International Airport" {
		t.Errorf("AirportName(ceb) = %q", got)
	}
	if got := idx.AirportName("XXX"); got != "" {
		t.Errorf("AirportName(XXX) = %q, want empty", got)
	}
}

func TestLookupAirports_MissingFile(t *testing.T) {
	idx := NewIndex(filepath.Join(t.TempDir(), "absent.xml"), "")
	if _, err := idx.LookupAirports("MNL"); !errors.Is(err, ErrIndexMissing) {
		t.Errorf("LookupAirports() error = %v, want ErrIndexMissing", err)
	}
}

func TestLookupAirports_InvalidFile(t *testing.T) {
	idx := NewIndex(writeIndex(t, "airports.xml", "<Airports><broken"), "")
	if _, err := idx.LookupAirports("MNL"); !errors.Is(err, ErrIndexInvalid) {
		t.Errorf("LookupAirports() error = %v, want ErrIndexInvalid", err)
	}
}

// TestEquipmentName verifies lookup is case-insensitive on the code and that
// failures yield "" rather than an error.
func TestEquipmentName(t *testing.T) {
	idx := NewIndex("", writeIndex(t, "equipment.xml", equipmentDoc))

	if got := idx.EquipmentName("320"); got != "Airbus A320" {
		t.Errorf("EquipmentName(320) = %q", got)
	}
	if got := idx.EquipmentName("77W"); got != "Boeing 777-300ER" {
		t.Errorf("EquipmentName(77W) = %q", got)
	}
	if got := idx.EquipmentName("999"); got != "" {
		t.Errorf("EquipmentName(999) = %q, want empty", got)
	}

	missing := NewIndex("", filepath.Join(t.TempDir(), "absent.xml"))
	if got := missing.EquipmentName("320"); got != "" {
		t.Errorf("EquipmentName with missing file = %q, want empty", got)
	}
}
