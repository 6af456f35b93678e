package session

import (
	"context"
	"sync"
	"time"

	"github.com/jkhliffz09/airport-fid-service/internal/models"
	"github.com/jkhliffz09/airport-fid-service/internal/validation"
)

// DebounceDelay is how long input must be quiet before a suggestion query
// is issued.
const DebounceDelay = 200 * time.Millisecond

// Suggester debounces airport typeahead input. Queries run only for inputs
// of at least three characters and are skipped when identical to the
// immediately previous query.
type Suggester struct {
	lookup func(ctx context.Context, query string) ([]models.AirportRef, error)
	render func([]models.AirportRef)
	delay  time.Duration

	mu        sync.Mutex
	timer     *time.Timer
	lastQuery string
}

// NewSuggester creates a Suggester. lookup is typically the airports
// endpoint; render receives matches (nil clears the suggestion box).
func NewSuggester(lookup func(ctx context.Context, query string) ([]models.AirportRef, error), render func([]models.AirportRef)) *Suggester {
	return &Suggester{lookup: lookup, render: render, delay: DebounceDelay}
}

// Input registers a keystroke's current value, restarting the debounce
// timer. Short inputs clear the suggestion box immediately.
func (s *Suggester) Input(query string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.timer != nil {
		s.timer.Stop()
	}
	trimmed, err := validation.ValidateQuery(query)
	if err != nil {
		s.lastQuery = ""
		s.render(nil)
		return
	}
	s.timer = time.AfterFunc(s.delay, func() { s.fire(trimmed) })
}

func (s *Suggester) fire(query string) {
	s.mu.Lock()
	if query == s.lastQuery {
		s.mu.Unlock()
		return
	}
	s.lastQuery = query
	s.mu.Unlock()

	matches, err := s.lookup(context.Background(), query)
	if err != nil {
		s.render(nil)
		return
	}
	s.render(matches)
}
