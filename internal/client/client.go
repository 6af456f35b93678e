// Package client issues queries against the FlightLookup XML flight-data
// service. Every call goes through the response cache first; a miss performs
// a bounded fetch and populates the cache with the raw body.
package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jkhliffz09/airport-fid-service/internal/cache"
	"github.com/jkhliffz09/airport-fid-service/internal/flightxml"
	"github.com/jkhliffz09/airport-fid-service/internal/models"
	"github.com/jkhliffz09/airport-fid-service/internal/observability"
)

// Provider is the interface the board aggregator and HTTP handlers consume.
type Provider interface {
	Nearest(ctx context.Context, lat, lon float64) ([]models.NearestAirport, error)
	Routes(ctx context.Context, airport string) (*flightxml.Node, error)
	Timetable(ctx context.Context, origin, destination, date string) (*flightxml.Node, error)
}

// Client is the FlightLookup API client.
type Client struct {
	apiKey  string
	baseURL string
	store   cache.Cache
	ttl     time.Duration
	client  *http.Client
}

// New creates a Client. baseURL is the provider root (no trailing slash
// required). store fronts every call with the given TTL.
func New(apiKey, baseURL string, timeout time.Duration, store cache.Cache, ttl time.Duration) (*Client, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	return &Client{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		store:   store,
		ttl:     ttl,
		client:  &http.Client{Timeout: timeout},
	}, nil
}

// Nearest returns the airports closest to the given coordinates,
// nearest first.
func (c *Client) Nearest(ctx context.Context, lat, lon float64) ([]models.NearestAirport, error) {
	u := fmt.Sprintf("%s/airports/nearest/%s/%s/?subscription-key=%s",
		c.baseURL,
		url.PathEscape(fmt.Sprintf("%v", lat)),
		url.PathEscape(fmt.Sprintf("%v", lon)),
		url.QueryEscape(c.apiKey),
	)
	tree, err := c.fetchXML(ctx, "nearest", u, cache.NearestKey(lat, lon))
	if err != nil {
		return nil, err
	}

	var out []models.NearestAirport
	for _, a := range tree.FindAll("Airport") {
		out = append(out, models.NearestAirport{
			Code:     strings.ToUpper(a.Attr("IATACode")),
			Name:     a.Attr("AirportName"),
			Distance: a.Attr("Distance"),
		})
	}
	return out, nil
}

// Routes returns the parsed routes document for an origin airport.
func (c *Client) Routes(ctx context.Context, airport string) (*flightxml.Node, error) {
	airport = strings.ToUpper(airport)
	u := fmt.Sprintf("%s/airports/%s/routes?subscription-key=%s",
		c.baseURL,
		url.PathEscape(airport),
		url.QueryEscape(c.apiKey),
	)
	return c.fetchXML(ctx, "routes", u, cache.RoutesKey(airport))
}

// Timetable returns the parsed timetable document for one
// origin/destination/date.
func (c *Client) Timetable(ctx context.Context, origin, destination, date string) (*flightxml.Node, error) {
	origin = strings.ToUpper(origin)
	destination = strings.ToUpper(destination)
	u := fmt.Sprintf("%s/TimeTable/%s/%s/%s/?Airline=---&Language=en&Nofilter=Y&Compression=MOST&subscription-key=%s",
		c.baseURL,
		url.PathEscape(origin),
		url.PathEscape(destination),
		url.PathEscape(date),
		url.QueryEscape(c.apiKey),
	)
	return c.fetchXML(ctx, "timetable", u, cache.TimetableKey(origin, destination, date))
}

// fetchXML serves the raw body from cache when fresh, otherwise performs one
// fetch (no retries) and writes the body through on success. Two concurrent
// misses both fetching is a benign race; last writer wins.
func (c *Client) fetchXML(ctx context.Context, endpoint, rawURL, cacheKey string) (*flightxml.Node, error) {
	if c.store != nil {
		body, ok, err := c.store.Get(ctx, cacheKey)
		if err != nil {
			observability.CacheErrorsTotal.WithLabelValues("get").Inc()
		} else if ok {
			observability.CacheHitsTotal.WithLabelValues(endpoint).Inc()
			return parseBody(body)
		}
	}

	body, err := c.fetch(ctx, endpoint, rawURL)
	if err != nil {
		return nil, err
	}
	tree, err := parseBody(body)
	if err != nil {
		return nil, err
	}

	if c.store != nil {
		if err := c.store.Set(ctx, cacheKey, body, c.ttl); err != nil {
			observability.CacheErrorsTotal.WithLabelValues("set").Inc()
		}
	}
	return tree, nil
}

func (c *Client) fetch(ctx context.Context, endpoint, rawURL string) ([]byte, error) {
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		observability.ProviderCallsTotal.WithLabelValues(endpoint, "error").Inc()
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/xml")
	if corrID := extractCorrelationID(ctx); corrID != "" {
		req.Header.Set("X-Correlation-ID", corrID)
	}

	resp, err := c.client.Do(req)
	observability.ProviderCallDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	if err != nil {
		observability.ProviderCallsTotal.WithLabelValues(endpoint, "error").Inc()
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return nil, fmt.Errorf("%w: timeout: %v", ErrFetch, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	defer resp.Body.Close()

	observability.ProviderCallsTotal.WithLabelValues(endpoint, statusLabel(resp.StatusCode)).Inc()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &HTTPError{Code: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrFetch, err)
	}
	if len(body) == 0 {
		return nil, ErrEmptyResponse
	}
	return body, nil
}

func parseBody(body []byte) (*flightxml.Node, error) {
	tree, err := flightxml.Parse(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidXML, err)
	}
	return tree, nil
}

func extractCorrelationID(ctx context.Context) string {
	if v := ctx.Value("correlation_id"); v != nil {
		if corrID, ok := v.(string); ok {
			return corrID
		}
	}
	return ""
}

func statusLabel(statusCode int) string {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return "success"
	case statusCode >= 400 && statusCode < 500:
		return "client_error"
	case statusCode >= 500:
		return "server_error"
	default:
		return "error"
	}
}
