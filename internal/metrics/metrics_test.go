package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestHandler_nilMetrics(t *testing.T) {
	var m *Metrics
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)

	m.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rr.Code)
	}
	if got := rr.Body.String(); !strings.Contains(got, "metrics unavailable") {
		t.Fatalf("expected body to mention metrics unavailable, got %q", got)
	}

	// Recording on a nil registry is a no-op.
	m.ObserveGraphCache(true)
	m.IncTelemetryEvent("graph_loaded")
	m.ObservePositions(3, 2)
}

func TestHandler_exposesRegisteredMetrics(t *testing.T) {
	m := New()
	m.ObserveHTTPRequest(http.MethodGet, "/graph", http.StatusOK, 12*time.Millisecond)
	m.ObserveGraphCache(true)
	m.ObserveGraphCache(false)
	m.ObserveGraphCache(false)
	m.IncTelemetryEvent("node_drag")
	m.ObservePositions(3, 2)

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)

	m.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	body := rr.Body.String()
	for _, want := range []string{
		`socialmap_http_requests_total{method="GET",path="/graph",status="200"} 1`,
		`socialmap_graph_cache_lookups_total{result="hit"} 1`,
		`socialmap_graph_cache_lookups_total{result="miss"} 2`,
		`socialmap_telemetry_events_total{type="node_drag"} 1`,
		`socialmap_positions_saved_total 2`,
		`socialmap_position_batch_size_count 1`,
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected %q in metrics output; body=%s", want, body)
		}
	}
}
