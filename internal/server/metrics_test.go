package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/agbru/procwatch/internal/logging"
	"github.com/agbru/procwatch/internal/metrics"
)

func TestNewMetrics(t *testing.T) {
	m := NewMetrics()
	if m.handler == nil || m.Registry() == nil {
		t.Fatal("NewMetrics should initialize handler and registry")
	}
	// Independent registries: a second instance must not panic on
	// duplicate registration.
	_ = NewMetrics()
}

func TestMetrics_ActiveRequests(t *testing.T) {
	m := NewMetrics()
	m.IncrementActiveRequests()
	m.IncrementActiveRequests()
	m.DecrementActiveRequests()
	if got := testutil.ToFloat64(m.activeRequests); got != 1 {
		t.Errorf("active requests = %v, want 1", got)
	}
}

func TestMetrics_WritePrometheus(t *testing.T) {
	m := NewMetrics()
	if _, err := metrics.NewSampler(m.Registry()); err != nil {
		t.Fatalf("register sampler: %v", err)
	}
	m.observeRequest("/api/processes", http.StatusOK)

	rec := httptest.NewRecorder()
	m.WritePrometheus(rec, httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody))
	body := rec.Body.String()

	for _, want := range []string{
		"procwatch_http_requests_total",
		"procwatch_probes_in_flight",
		"procwatch_cycles_total",
		"go_goroutines",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("exposition missing %s", want)
		}
	}
}

func TestServer_metricsMiddleware(t *testing.T) {
	s := &Server{metrics: NewMetrics(), logger: logging.Nop{}}
	nextCalled := false
	handler := s.metricsMiddleware(func(w http.ResponseWriter, r *http.Request) {
		nextCalled = true
		w.WriteHeader(http.StatusTeapot)
	})

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/healthz", http.NoBody))

	if !nextCalled {
		t.Error("next handler was not called")
	}
	if got := testutil.ToFloat64(s.metrics.requestsTotal.WithLabelValues("/healthz", "418")); got != 1 {
		t.Errorf("requests_total{/healthz,418} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(s.metrics.activeRequests); got != 0 {
		t.Errorf("active requests after completion = %v, want 0", got)
	}
}

func TestServer_handleMetrics(t *testing.T) {
	s := &Server{metrics: NewMetrics(), logger: logging.Nop{}}

	t.Run("GET returns metrics", func(t *testing.T) {
		rec := httptest.NewRecorder()
		s.handleMetrics(rec, httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody))
		if rec.Code != http.StatusOK {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
		}
		if !strings.Contains(rec.Body.String(), "procwatch_") {
			t.Error("response should contain procwatch metrics")
		}
	})

	for _, method := range []string{http.MethodPost, http.MethodPut, http.MethodDelete} {
		t.Run(method+" returns method not allowed", func(t *testing.T) {
			rec := httptest.NewRecorder()
			s.handleMetrics(rec, httptest.NewRequest(method, "/metrics", http.NoBody))
			if rec.Code != http.StatusMethodNotAllowed {
				t.Errorf("status = %d, want %d", rec.Code, http.StatusMethodNotAllowed)
			}
			if rec.Header().Get("Allow") == "" {
				t.Error("405 responses should carry an Allow header")
			}
		})
	}
}
