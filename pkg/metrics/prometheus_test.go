package metrics

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func scrape(t *testing.T, h http.Handler) string {
	t.Helper()
	req := httptest.NewRequest("GET", "/metrics", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	return string(body)
}

// TestPrometheusHandler_ServeHTTP tests the HTTP handler
func TestPrometheusHandler_ServeHTTP(t *testing.T) {
	collector := NewCollector()
	handler := NewPrometheusHandler(collector)

	info := testInfo()
	collector.DecoderCreated(info)
	collector.Decoded(info, EntryGroup, 8, time.Millisecond, nil)
	collector.VectorVerified(true)

	body := scrape(t, handler)

	expectedMetrics := []string{
		`bcjr_decoders_created_total{operator="max-star",variant="std"} 1`,
		`bcjr_frames_decoded_total{entry="group",operator="max-star",variant="std"} 8`,
		`bcjr_decode_duration_seconds_count{entry="group",operator="max-star",variant="std"} 1`,
		`bcjr_vectors_verified_total{result="pass"} 1`,
	}
	for _, metric := range expectedMetrics {
		if !strings.Contains(body, metric) {
			t.Errorf("Expected %s in output:\n%s", metric, body)
		}
	}
}

// TestPrometheusHandler_Format tests metric format
func TestPrometheusHandler_Format(t *testing.T) {
	collector := NewCollector()
	collector.VectorVerified(false)

	body := scrape(t, NewPrometheusHandler(collector))

	// Check for basic Prometheus format (# HELP, # TYPE, metric lines)
	if !strings.Contains(body, "# HELP bcjr_vectors_verified_total") {
		t.Error("Expected # HELP comments in output")
	}
	if !strings.Contains(body, "# TYPE bcjr_vectors_verified_total counter") {
		t.Error("Expected # TYPE comments in output")
	}
}

// TestPrometheusServer tests serving and stopping the Prometheus server
func TestPrometheusServer(t *testing.T) {
	collector := NewCollector()
	collector.VectorVerified(true)
	config := PrometheusConfig{
		Enabled: true,
		Port:    0, // Use random port
		Path:    "/metrics",
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	server := NewPrometheusServer(config, collector, nil)

	errChan := make(chan error, 1)
	go func() {
		errChan <- server.Start(ctx)
	}()

	var addr string
	select {
	case addr = <-server.Ready():
	case err := <-errChan:
		t.Fatalf("server failed to start: %v", err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not start in time")
	}

	resp, err := http.Get("http://" + addr + "/metrics")
	if err != nil {
		t.Fatalf("scrape failed: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if !strings.Contains(string(body), `bcjr_vectors_verified_total{result="pass"} 1`) {
		t.Errorf("unexpected scrape body:\n%s", body)
	}

	cancel()

	select {
	case err := <-errChan:
		if err != nil && err != context.Canceled && err != http.ErrServerClosed {
			t.Errorf("Unexpected error from server: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Error("Server did not stop in time")
	}
}

// TestPrometheusServer_Disabled tests that disabled server doesn't start
func TestPrometheusServer_Disabled(t *testing.T) {
	collector := NewCollector()
	config := PrometheusConfig{
		Enabled: false,
	}

	server := NewPrometheusServer(config, collector, nil)

	if err := server.Start(context.Background()); err != nil {
		t.Errorf("Expected no error when disabled, got %v", err)
	}
}
