package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/jkhliffz09/airport-fid-service/internal/board"
	"github.com/jkhliffz09/airport-fid-service/internal/client"
	"github.com/jkhliffz09/airport-fid-service/internal/lifecycle"
	"github.com/jkhliffz09/airport-fid-service/internal/models"
	"github.com/jkhliffz09/airport-fid-service/internal/refdata"
	"github.com/jkhliffz09/airport-fid-service/internal/validation"
)

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	board    *board.Service
	provider client.Provider
	index    *refdata.Index
	logger   *zap.Logger
	// CachePing, when set, is called by the health check. Used when the
	// backend is memcached.
	cachePing func() error

	healthStatusMu   sync.Mutex
	healthStatusPrev string
}

// NewHandler returns a new Handler.
func NewHandler(boardSvc *board.Service, provider client.Provider, index *refdata.Index, logger *zap.Logger, cachePing func() error) *Handler {
	return &Handler{
		board:     boardSvc,
		provider:  provider,
		index:     index,
		logger:    logger,
		cachePing: cachePing,
	}
}

// GetBoard handles GET /v1/board?airport&limit&date&debug.
func (h *Handler) GetBoard(w http.ResponseWriter, r *http.Request) {
	airport, err := validation.ValidateIATA(r.URL.Query().Get("airport"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Enter a valid 3-letter IATA code.")
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	date := r.URL.Query().Get("date")
	debug := r.URL.Query().Get("debug") == "1"

	result, err := h.board.GetBoard(r.Context(), airport, date, limit, debug)
	if err != nil {
		h.writeBoardError(w, r, airport, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// GetRoutes handles GET /v1/routes?airport.
func (h *Handler) GetRoutes(w http.ResponseWriter, r *http.Request) {
	airport, err := validation.ValidateIATA(r.URL.Query().Get("airport"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Enter a valid 3-letter IATA code.")
		return
	}

	result, err := h.board.Destinations(r.Context(), airport)
	if err != nil {
		h.writeBoardError(w, r, airport, err)
		return
	}
	if len(result.Destinations) == 0 {
		writeError(w, http.StatusNotFound, fmt.Sprintf("No destinations found for %s.", airport))
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// GetTimetable handles GET /v1/timetable?airport&destination&date.
func (h *Handler) GetTimetable(w http.ResponseWriter, r *http.Request) {
	airport, err := validation.ValidateIATA(r.URL.Query().Get("airport"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Enter a valid 3-letter IATA code.")
		return
	}
	destination, err := validation.ValidateIATA(r.URL.Query().Get("destination"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Enter a valid 3-letter destination code.")
		return
	}

	flights, err := h.board.Timetable(r.Context(), airport, destination, r.URL.Query().Get("date"))
	if err != nil {
		h.writeBoardError(w, r, airport, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"flights": emptyIfNil(flights)})
}

// GetCache handles GET /v1/cache?airport&date&sort: the board snapshot
// lookup the progressive client checks before fanning out.
func (h *Handler) GetCache(w http.ResponseWriter, r *http.Request) {
	airport, err := validation.ValidateIATA(r.URL.Query().Get("airport"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Enter a valid 3-letter IATA code.")
		return
	}
	date := r.URL.Query().Get("date")
	sort := r.URL.Query().Get("sort")

	snap, cached, stale, err := h.board.CachedBoard(r.Context(), airport, date, sort)
	if err != nil || !cached {
		// Cache trouble reads as a miss; the client refetches.
		writeJSON(w, http.StatusOK, map[string]interface{}{"cached": false, "stale": false})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"cached":       true,
		"stale":        stale,
		"airport_name": snap.AirportName,
		"flights":      emptyIfNil(snap.Flights),
	})
}

// PostCache handles POST /v1/cache: the progressive client writing its merged
// flight list through once all destination fetches settle. Fire-and-forget
// from the client's perspective.
func (h *Handler) PostCache(w http.ResponseWriter, r *http.Request) {
	var snap models.BoardSnapshot
	if err := json.NewDecoder(r.Body).Decode(&snap); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid cache payload.")
		return
	}
	airport, err := validation.ValidateIATA(snap.Airport)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Enter a valid 3-letter IATA code.")
		return
	}
	snap.Airport = airport

	if err := h.board.SaveBoard(r.Context(), &snap); err != nil {
		if logger := loggerFrom(r); logger != nil {
			logger.Warn("board cache write failed", zap.String("airport", airport), zap.Error(err))
		}
		writeError(w, http.StatusInternalServerError, "Unable to save board.")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetAirports handles GET /v1/airports?query: typeahead suggestions.
// Queries under 3 characters return an empty list, not an error.
func (h *Handler) GetAirports(w http.ResponseWriter, r *http.Request) {
	query, err := validation.ValidateQuery(r.URL.Query().Get("query"))
	if err != nil {
		writeJSON(w, http.StatusOK, []models.AirportRef{})
		return
	}

	matches, err := h.index.LookupAirports(query)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Airports data not found.")
		return
	}
	writeJSON(w, http.StatusOK, emptyIfNil(matches))
}

// GetNearest handles GET /v1/nearest?lat&lon.
func (h *Handler) GetNearest(w http.ResponseWriter, r *http.Request) {
	lat, errLat := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
	lon, errLon := strconv.ParseFloat(r.URL.Query().Get("lon"), 64)
	if errLat != nil || errLon != nil {
		writeError(w, http.StatusBadRequest, "Missing coordinates.")
		return
	}

	airports, err := h.provider.Nearest(r.Context(), lat, lon)
	if err != nil {
		h.writeBoardError(w, r, "", err)
		return
	}
	if len(airports) == 0 {
		writeError(w, http.StatusNotFound, "No airport found.")
		return
	}
	writeJSON(w, http.StatusOK, airports[0])
}

// healthResult holds the computed health status and metadata for logging.
type healthResult struct {
	status     string
	statusCode int
	reason     string
}

// GetHealth handles GET /health.
func (h *Handler) GetHealth(w http.ResponseWriter, r *http.Request) {
	result := h.computeHealthStatus()

	h.healthStatusMu.Lock()
	prev := h.healthStatusPrev
	if prev != "" && prev != result.status {
		h.logger.Info("health status transition",
			zap.String("previous_status", prev),
			zap.String("current_status", result.status),
			zap.String("reason", result.reason))
	}
	h.healthStatusPrev = result.status
	h.healthStatusMu.Unlock()

	checks := make(map[string]string)
	if h.cachePing != nil {
		if h.cachePing() == nil {
			checks["cache"] = "healthy"
		} else {
			checks["cache"] = "unhealthy"
		}
	}
	resp := map[string]interface{}{
		"status":    result.status,
		"service":   "airport-fid-service",
		"version":   "dev",
		"checks":    checks,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(result.statusCode)
	_ = json.NewEncoder(w).Encode(resp)
}

func (h *Handler) computeHealthStatus() healthResult {
	if lifecycle.IsShuttingDown() {
		return healthResult{"shutting-down", http.StatusServiceUnavailable, "signal"}
	}
	if h.cachePing != nil && h.cachePing() != nil {
		return healthResult{"degraded", http.StatusServiceUnavailable, "cache_unreachable"}
	}
	return healthResult{"healthy", http.StatusOK, ""}
}

// writeBoardError maps pipeline errors to plain-language responses.
// No raw provider payloads reach the client.
func (h *Handler) writeBoardError(w http.ResponseWriter, r *http.Request, airport string, err error) {
	if logger := loggerFrom(r); logger != nil {
		logger.Error("board request failed", zap.String("airport", airport), zap.Error(err))
	}

	var httpErr *client.HTTPError
	switch {
	case errors.Is(err, board.ErrNoDestinations):
		writeError(w, http.StatusNotFound, fmt.Sprintf("No destinations found for %s.", airport))
	case errors.As(err, &httpErr):
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("FlightLookup API error: %d", httpErr.Code))
	default:
		writeError(w, http.StatusInternalServerError, "Unable to load flight data.")
	}
}

func loggerFrom(r *http.Request) *zap.Logger {
	if logger, ok := r.Context().Value("logger").(*zap.Logger); ok {
		return logger
	}
	return nil
}

// writeJSON writes a JSON response with the specified HTTP status code.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes a plain-language error body: {"error": message}.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// emptyIfNil keeps empty lists rendering as [] rather than null.
func emptyIfNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
