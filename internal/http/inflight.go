package http

import (
	"context"
	"sync/atomic"
	"time"
)

// inFlight counts requests currently being served. MetricsMiddleware adjusts
// it; shutdown polls it so active board lookups drain before the provider
// client and cache are closed.
var inFlight atomic.Int64

// InFlightCount returns the number of requests currently being served.
func InFlightCount() int64 {
	return inFlight.Load()
}

// WaitForInFlight blocks until the in-flight count reaches zero or ctx is
// done, re-checking every checkInterval.
func WaitForInFlight(ctx context.Context, checkInterval time.Duration) error {
	ticker := time.NewTicker(checkInterval)
	defer ticker.Stop()
	for {
		if inFlight.Load() == 0 {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
