package session

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jkhliffz09/airport-fid-service/internal/models"
)

// HTTPBoardAPI implements BoardAPI against a running service instance.
// It is the transport used by display clients that are not in-process.
type HTTPBoardAPI struct {
	baseURL string
	client  *http.Client
}

// NewHTTPBoardAPI creates a client for the service at baseURL.
func NewHTTPBoardAPI(baseURL string, timeout time.Duration) *HTTPBoardAPI {
	return &HTTPBoardAPI{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

type cacheResponse struct {
	Cached      bool                  `json:"cached"`
	Stale       bool                  `json:"stale"`
	AirportName string                `json:"airport_name"`
	Flights     []models.FlightRecord `json:"flights"`
}

// CachedBoard checks the server-side board snapshot cache.
func (a *HTTPBoardAPI) CachedBoard(ctx context.Context, airport, date, sort string) (*CacheResult, error) {
	q := url.Values{}
	q.Set("airport", airport)
	q.Set("date", date)
	q.Set("sort", sort)

	var resp cacheResponse
	if err := a.getJSON(ctx, "/v1/cache?"+q.Encode(), &resp); err != nil {
		return nil, err
	}
	return &CacheResult{
		Cached:      resp.Cached,
		Stale:       resp.Stale,
		AirportName: resp.AirportName,
		Flights:     resp.Flights,
	}, nil
}

// Routes resolves the nonstop destination list for an airport. A 404 from the
// server means the airport has no destinations, not a transport failure.
func (a *HTTPBoardAPI) Routes(ctx context.Context, airport string) (*models.RoutesResult, error) {
	q := url.Values{}
	q.Set("airport", airport)

	var result models.RoutesResult
	err := a.getJSON(ctx, "/v1/routes?"+q.Encode(), &result)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
			return &models.RoutesResult{Airport: airport}, nil
		}
		return nil, err
	}
	return &result, nil
}

// Timetable fetches one destination's normalized flights.
func (a *HTTPBoardAPI) Timetable(ctx context.Context, airport, destination, date string) ([]models.FlightRecord, error) {
	q := url.Values{}
	q.Set("airport", airport)
	q.Set("destination", destination)
	q.Set("date", date)

	var resp struct {
		Flights []models.FlightRecord `json:"flights"`
	}
	if err := a.getJSON(ctx, "/v1/timetable?"+q.Encode(), &resp); err != nil {
		return nil, err
	}
	return resp.Flights, nil
}

// SaveBoard writes the merged flight list through to the server cache.
func (a *HTTPBoardAPI) SaveBoard(ctx context.Context, snap *models.BoardSnapshot) error {
	body, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/v1/cache", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("save board: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusBadRequest {
		return newAPIError(resp)
	}
	return nil
}

// Airports queries typeahead suggestions for a partial airport name or code.
func (a *HTTPBoardAPI) Airports(ctx context.Context, query string) ([]models.AirportRef, error) {
	q := url.Values{}
	q.Set("query", query)

	var matches []models.AirportRef
	if err := a.getJSON(ctx, "/v1/airports?"+q.Encode(), &matches); err != nil {
		return nil, err
	}
	return matches, nil
}

// Nearest resolves the closest airport to the given coordinates.
func (a *HTTPBoardAPI) Nearest(ctx context.Context, lat, lon float64) (*models.NearestAirport, error) {
	q := url.Values{}
	q.Set("lat", fmt.Sprintf("%f", lat))
	q.Set("lon", fmt.Sprintf("%f", lon))

	var nearest models.NearestAirport
	if err := a.getJSON(ctx, "/v1/nearest?"+q.Encode(), &nearest); err != nil {
		return nil, err
	}
	return &nearest, nil
}

// APIError is a non-2xx response from the service, carrying the server's
// plain-language error message when one was returned.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("service error: %d", e.StatusCode)
}

func newAPIError(resp *http.Response) *APIError {
	apiErr := &APIError{StatusCode: resp.StatusCode}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil {
		return apiErr
	}
	var payload struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &payload) == nil {
		apiErr.Message = payload.Error
	}
	return apiErr
}

func (a *HTTPBoardAPI) getJSON(ctx context.Context, path string, v interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("request %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return newAPIError(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
