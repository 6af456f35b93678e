package client

import (
	"errors"
	"fmt"
)

// Error kinds surfaced by provider fetches. Callers decide whether a failure
// aborts the whole board (routes, nearest) or skips one destination
// (a single timetable). None of these are retried internally.
var (
	// ErrFetch wraps transport failures (network errors, timeouts).
	ErrFetch = errors.New("provider fetch failed")

	// ErrEmptyResponse is returned when the provider answers 2xx with no body.
	ErrEmptyResponse = errors.New("empty response from FlightLookup API")

	// ErrInvalidXML is returned when the body is not well-formed XML.
	ErrInvalidXML = errors.New("invalid XML from FlightLookup API")

	// ErrMissingAPIKey is returned at construction when no subscription key
	// is configured.
	ErrMissingAPIKey = errors.New("FlightLookup API key is required")
)

// HTTPError reports a non-2xx provider response.
type HTTPError struct {
	Code int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("FlightLookup API error: %d", e.Code)
}
