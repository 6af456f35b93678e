package board

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/jkhliffz09/airport-fid-service/internal/observability"
)

// Warmer primes the provider response cache for an airport so the first
// visitor after startup gets cache hits instead of a cold fan-out.
type Warmer struct {
	service *Service
	logger  *zap.Logger
}

// NewWarmer creates a Warmer over the given board service.
func NewWarmer(service *Service, logger *zap.Logger) *Warmer {
	return &Warmer{service: service, logger: logger}
}

// Warm assembles today's board for the airport, populating the routes and
// timetable caches as a side effect. Returns the assembly error, if any.
func (w *Warmer) Warm(ctx context.Context, airport string) error {
	start := time.Now()
	observability.CacheWarmingTotal.Inc()
	if w.logger != nil {
		w.logger.Info("warming board cache", zap.String("airport", airport))
	}

	_, err := w.service.GetBoard(ctx, airport, "", 0, false)

	duration := time.Since(start).Seconds()
	observability.CacheWarmingDurationSeconds.Observe(duration)
	if err != nil {
		observability.CacheWarmingErrorsTotal.Inc()
		return fmt.Errorf("warm %s: %w", airport, err)
	}
	if w.logger != nil {
		w.logger.Info("board cache warm complete", zap.String("airport", airport), zap.Float64("duration_seconds", duration))
	}
	return nil
}

// WarmPeriodic runs an initial Warm, then refreshes at the given interval
// until ctx is done.
func (w *Warmer) WarmPeriodic(ctx context.Context, airport string, interval time.Duration) error {
	if err := w.Warm(ctx, airport); err != nil && w.logger != nil {
		w.logger.Warn("initial board warm failed", zap.Error(err))
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := w.Warm(ctx, airport); err != nil && w.logger != nil {
				w.logger.Warn("periodic board warm failed", zap.Error(err))
			}
		}
	}
}
