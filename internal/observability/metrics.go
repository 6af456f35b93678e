package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	registry *prometheus.Registry

	// HTTP request rate. Watch for: sudden drops (service down) or spikes (traffic surge).
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTP request latency per request. Watch for: p95/p99 latency increases.
	HTTPRequestDuration *prometheus.HistogramVec

	// Concurrent requests in flight. Watch for: saturation, capacity limits.
	HTTPRequestsInFlight prometheus.Gauge

	// FlightLookup API call rate, labelled by endpoint (nearest/routes/timetable)
	// and outcome. Watch for: error vs success ratio per endpoint.
	ProviderCallsTotal *prometheus.CounterVec

	// Provider latency per call. Watch for: p95 approaching the 20s fetch timeout.
	ProviderCallDuration *prometheus.HistogramVec

	// Cache hits per kind (nearest/routes/timetable/board).
	CacheHitsTotal *prometheus.CounterVec

	// Cache operation errors per op (get/set). Misses are not errors.
	CacheErrorsTotal *prometheus.CounterVec

	// Flights returned per board request. Watch for: empty boards.
	BoardFlightsReturned prometheus.Histogram

	// Destinations skipped due to timetable failures. Watch for: provider
	// degradation that the board silently absorbs.
	DestinationsSkippedTotal prometheus.Counter

	// Rate limit denials on provider-backed routes.
	RateLimitDeniedTotal prometheus.Counter

	// Board cache warming runs, failures, and duration.
	CacheWarmingTotal           prometheus.Counter
	CacheWarmingErrorsTotal     prometheus.Counter
	CacheWarmingDurationSeconds prometheus.Histogram
)

func init() {
	registry = prometheus.NewRegistry()

	registry.MustRegister(
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)

	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "httpRequestsTotal",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "statusCode"},
	)
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "httpRequestDurationSeconds",
			Help:    "HTTP request latency in seconds (per request)",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
	HTTPRequestsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "httpRequestsInFlight",
			Help: "Number of HTTP requests currently being served",
		},
	)
	ProviderCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "providerCallsTotal",
			Help: "FlightLookup API calls by endpoint and outcome",
		},
		[]string{"endpoint", "status"},
	)
	ProviderCallDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "providerCallDurationSeconds",
			Help:    "FlightLookup API call latency in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20},
		},
		[]string{"endpoint"},
	)
	CacheHitsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cacheHitsTotal",
			Help: "Cache hits by payload kind",
		},
		[]string{"kind"},
	)
	CacheErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cacheErrorsTotal",
			Help: "Cache operation errors by operation",
		},
		[]string{"op"},
	)
	BoardFlightsReturned = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "boardFlightsReturned",
			Help:    "Flights returned per board request",
			Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 200},
		},
	)
	DestinationsSkippedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "destinationsSkippedTotal",
			Help: "Destinations skipped due to timetable fetch failures",
		},
	)
	RateLimitDeniedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "rateLimitDeniedTotal",
			Help: "Requests denied by the rate limiter",
		},
	)
	CacheWarmingTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "cacheWarmingTotal",
			Help: "Board cache warming runs",
		},
	)
	CacheWarmingErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "cacheWarmingErrorsTotal",
			Help: "Board cache warming runs that failed",
		},
	)
	CacheWarmingDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "cacheWarmingDurationSeconds",
			Help:    "Board cache warming duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	registry.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDuration,
		HTTPRequestsInFlight,
		ProviderCallsTotal,
		ProviderCallDuration,
		CacheHitsTotal,
		CacheErrorsTotal,
		BoardFlightsReturned,
		DestinationsSkippedTotal,
		RateLimitDeniedTotal,
		CacheWarmingTotal,
		CacheWarmingErrorsTotal,
		CacheWarmingDurationSeconds,
	)
}

// MetricsHandler returns the HTTP handler serving the /metrics endpoint.
func MetricsHandler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
