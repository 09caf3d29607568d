package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics exposes application metrics that are safe to scrape via Prometheus.
type Metrics struct {
	registry            *prometheus.Registry
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	graphCacheLookups   *prometheus.CounterVec
	telemetryEvents     *prometheus.CounterVec
	positionsSaved      prometheus.Counter
	positionBatchSize   prometheus.Histogram
}

// New creates a fresh Metrics registry with HTTP, graph cache, telemetry and
// position metrics registered.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	httpRequests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "socialmap",
		Name:      "http_requests_total",
		Help:      "Count of HTTP requests processed by the API",
	}, []string{"method", "path", "status"})

	httpRequestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "socialmap",
		Name:      "http_request_duration_seconds",
		Help:      "Duration of HTTP requests served by the API",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	graphCacheLookups := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "socialmap",
		Name:      "graph_cache_lookups_total",
		Help:      "Graph snapshot cache lookups by result",
	}, []string{"result"})

	telemetryEvents := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "socialmap",
		Name:      "telemetry_events_total",
		Help:      "Client telemetry events accepted, by type",
	}, []string{"type"})

	positionsSaved := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "socialmap",
		Name:      "positions_saved_total",
		Help:      "Node positions persisted through PUT /graph/positions",
	})

	positionBatchSize := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "socialmap",
		Name:      "position_batch_size",
		Help:      "Number of positions sent per flush",
		Buckets:   []float64{1, 2, 5, 10, 25, 50, 100, 250, 500},
	})

	registry.MustRegister(
		httpRequests,
		httpRequestDuration,
		graphCacheLookups,
		telemetryEvents,
		positionsSaved,
		positionBatchSize,
	)

	return &Metrics{
		registry:            registry,
		httpRequests:        httpRequests,
		httpRequestDuration: httpRequestDuration,
		graphCacheLookups:   graphCacheLookups,
		telemetryEvents:     telemetryEvents,
		positionsSaved:      positionsSaved,
		positionBatchSize:   positionBatchSize,
	}
}

// ObserveHTTPRequest records a single HTTP request/response cycle.
func (m *Metrics) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labels := prometheus.Labels{
		"method": method,
		"path":   path,
		"status": strconv.Itoa(status),
	}
	m.httpRequests.With(labels).Inc()
	m.httpRequestDuration.With(labels).Observe(duration.Seconds())
}

func (m *Metrics) ObserveGraphCache(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.graphCacheLookups.WithLabelValues(result).Inc()
}

func (m *Metrics) IncTelemetryEvent(eventType string) {
	if m == nil {
		return
	}
	m.telemetryEvents.WithLabelValues(eventType).Inc()
}

// ObservePositions records one position flush: sent entries and rows updated.
func (m *Metrics) ObservePositions(sent, updated int) {
	if m == nil {
		return
	}
	m.positionBatchSize.Observe(float64(sent))
	m.positionsSaved.Add(float64(updated))
}

// Handler exposes the Prometheus registry over HTTP.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("metrics unavailable"))
		})
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
