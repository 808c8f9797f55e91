package core

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"soilwater/internal/types"
)

func TestRecoverer(t *testing.T) {
	srv := newTestServer(t)
	h := srv.Recoverer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("divide by zero")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := decodeError(t, rec).Code; got != string(types.ErrCodeInternalUnexpected) {
		t.Errorf("code = %q", got)
	}
}

func TestRequestLogger_RedactsAndLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	h := RequestLogger(logger, []string{"Authorization"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	req := httptest.NewRequest(http.MethodGet, "/v1/soil/analyses/x", nil)
	req.Header.Set("Authorization", "Bearer sk_live_secret")
	req.Header.Set("User-Agent", "soilctl/1.0")
	h.ServeHTTP(httptest.NewRecorder(), req)

	out := buf.String()
	if strings.Contains(out, "sk_live_secret") {
		t.Error("authorization header leaked into logs")
	}
	for _, want := range []string{"[REDACTED]", "soilctl/1.0", "status=404", "level=WARN"} {
		if !strings.Contains(out, want) {
			t.Errorf("log %q missing %q", out, want)
		}
	}
}

func TestMetricsMiddleware_UsesRoutePattern(t *testing.T) {
	srv := newTestServer(t)
	metrics := &recordingMetrics{}
	srv.Metrics = metrics

	r := chi.NewRouter()
	r.Use(srv.MetricsMiddleware)
	r.Get("/v1/soil/analyses/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/v1/soil/analyses/abc", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nowhere", nil))

	if len(metrics.records) != 2 {
		t.Fatalf("records = %d", len(metrics.records))
	}
	if got := metrics.records[0]; got != (requestRecord{"GET", "/v1/soil/analyses/{id}", "404"}) {
		t.Errorf("record = %+v", got)
	}
	if got := metrics.records[1].endpoint; got != "unmatched" {
		t.Errorf("unmatched endpoint = %q", got)
	}
}

func TestSecurityHeaders(t *testing.T) {
	rec := httptest.NewRecorder()
	SecurityHeadersMiddleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})).
		ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Header().Get("X-Content-Type-Options") != "nosniff" || rec.Header().Get("X-Frame-Options") != "DENY" {
		t.Errorf("headers = %v", rec.Header())
	}
}

func TestCORS(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })

	t.Run("listed origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Origin", "https://app.example.com")
		rec := httptest.NewRecorder()
		NewCORSMiddleware([]string{"https://app.example.com"})(next).ServeHTTP(rec, req)

		if rec.Header().Get("Access-Control-Allow-Origin") != "https://app.example.com" || rec.Header().Get("Vary") != "Origin" {
			t.Errorf("headers = %v", rec.Header())
		}
	})

	t.Run("unlisted origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Origin", "https://evil.example.com")
		rec := httptest.NewRecorder()
		NewCORSMiddleware([]string{"https://app.example.com"})(next).ServeHTTP(rec, req)

		if rec.Header().Get("Access-Control-Allow-Origin") != "" {
			t.Error("unlisted origin must not be allowed")
		}
	})

	t.Run("preflight", func(t *testing.T) {
		rec := httptest.NewRecorder()
		NewCORSMiddleware([]string{"*"})(next).ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/", nil))

		if rec.Code != http.StatusNoContent || rec.Header().Get("Access-Control-Allow-Origin") != "*" {
			t.Errorf("preflight = %d %v", rec.Code, rec.Header())
		}
	})
}

func TestRequestIDMiddleware(t *testing.T) {
	var seen string
	h := RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = types.GetRequestID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-Id", "upstream-1")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if seen != "upstream-1" || rec.Header().Get("X-Request-Id") != "upstream-1" {
		t.Errorf("propagated id = %q", seen)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if len(seen) != 32 || rec.Header().Get("X-Request-Id") != seen {
		t.Errorf("generated id = %q", seen)
	}
}
