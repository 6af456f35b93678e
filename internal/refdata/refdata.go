// Package refdata loads the static airport and equipment indexes shipped
// alongside the service. Both are provider-shaped XML documents, parsed once
// and cached in-process for seven days.
package refdata

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/jkhliffz09/airport-fid-service/internal/flightxml"
	"github.com/jkhliffz09/airport-fid-service/internal/models"
)

const indexTTL = 7 * 24 * time.Hour

// maxMatches caps LookupAirports results.
const maxMatches = 10

// ErrIndexMissing is returned when a reference data file cannot be read.
var ErrIndexMissing = errors.New("reference data not found")

// ErrIndexInvalid is returned when a reference data file is not valid XML.
var ErrIndexInvalid = errors.New("invalid reference data")

// Index serves airport and equipment lookups.
type Index struct {
	airportsPath  string
	equipmentPath string

	mu              sync.Mutex
	airports        []models.AirportRef
	airportsLoaded  time.Time
	equipment       map[string]string
	equipmentLoaded time.Time
}

// NewIndex creates an Index reading from the given file paths. Files are
// loaded lazily on first use.
func NewIndex(airportsPath, equipmentPath string) *Index {
	return &Index{airportsPath: airportsPath, equipmentPath: equipmentPath}
}

// LookupAirports returns up to 10 airports whose IATA code starts with the
// query or whose name contains it, case-insensitively, in index order.
func (i *Index) LookupAirports(query string) ([]models.AirportRef, error) {
	airports, err := i.loadAirports()
	if err != nil {
		return nil, err
	}

	query = strings.ToUpper(strings.TrimSpace(query))
	matches := make([]models.AirportRef, 0, maxMatches)
	for _, a := range airports {
		if strings.HasPrefix(a.Code, query) || strings.Contains(strings.ToUpper(a.Name), query) {
			matches = append(matches, a)
		}
		if len(matches) >= maxMatches {
			break
		}
	}
	return matches, nil
}

// AirportName returns the indexed name for a code, or "" when unknown.
func (i *Index) AirportName(code string) string {
	airports, err := i.loadAirports()
	if err != nil {
		return ""
	}
	code = strings.ToUpper(code)
	for _, a := range airports {
		if a.Code == code {
			return a.Name
		}
	}
	return ""
}

// EquipmentName resolves an aircraft type code to its human-readable name.
// Missing files and unknown codes yield "", never an error.
func (i *Index) EquipmentName(code string) string {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.equipment == nil || time.Since(i.equipmentLoaded) > indexTTL {
		eq, err := loadEquipmentFile(i.equipmentPath)
		if err != nil {
			return ""
		}
		i.equipment = eq
		i.equipmentLoaded = time.Now()
	}
	return i.equipment[strings.ToUpper(code)]
}

func (i *Index) loadAirports() ([]models.AirportRef, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.airports != nil && time.Since(i.airportsLoaded) <= indexTTL {
		return i.airports, nil
	}
	airports, err := loadAirportsFile(i.airportsPath)
	if err != nil {
		return nil, err
	}
	i.airports = airports
	i.airportsLoaded = time.Now()
	return airports, nil
}

func loadAirportsFile(path string) ([]models.AirportRef, error) {
	tree, err := loadTree(path, "<Airports")
	if err != nil {
		return nil, err
	}
	var airports []models.AirportRef
	for _, node := range tree.FindAll("Airport") {
		code := strings.ToUpper(node.Attr("IATACode"))
		if code == "" {
			continue
		}
		airports = append(airports, models.AirportRef{Code: code, Name: node.Attr("Name")})
	}
	return airports, nil
}

func loadEquipmentFile(path string) (map[string]string, error) {
	tree, err := loadTree(path, "<Equipments")
	if err != nil {
		return nil, err
	}
	equipment := make(map[string]string)
	for _, node := range tree.FindAll("Equipment") {
		code := strings.ToUpper(node.Attr("IATACode"))
		if code == "" {
			continue
		}
		equipment[code] = node.Attr("Name")
	}
	return equipment, nil
}

// loadTree reads a reference file and parses it from the given root marker
// onward. The provider-exported files carry a text preamble before the root
// element.
func loadTree(path, marker string) (*flightxml.Node, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrIndexMissing, path)
	}
	if idx := bytes.Index(contents, []byte(marker)); idx > 0 {
		contents = contents[idx:]
	}
	tree, err := flightxml.Parse(contents)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrIndexInvalid, path, err)
	}
	return tree, nil
}
