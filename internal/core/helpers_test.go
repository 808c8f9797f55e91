package core

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"soilwater/internal/config"
	"soilwater/internal/types"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig() *config.Config {
	return &config.Config{
		Environment: "local",
		Security: config.SecurityConfig{
			CorsAllowedOrigins: []string{"*"},
			RateLimitPerMinute: 3,
		},
	}
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	srv, err := NewServer(testConfig(), discardLogger())
	if err != nil {
		t.Fatalf("NewServer failed: %v", err)
	}
	return srv
}

// stubAuthenticator returns a fixed actor or error and records tokens.
type stubAuthenticator struct {
	actor *types.Actor
	err   error

	mu    sync.Mutex
	calls []string
}

func (a *stubAuthenticator) ResolveToken(_ context.Context, token string) (*types.Actor, error) {
	a.mu.Lock()
	a.calls = append(a.calls, token)
	a.mu.Unlock()
	return a.actor, a.err
}

type requestRecord struct {
	method, endpoint, status string
}

type recordingMetrics struct {
	mu      sync.Mutex
	records []requestRecord
}

func (m *recordingMetrics) RecordRequest(method, endpoint, status string, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, requestRecord{method, endpoint, status})
}

type fixedClock struct{ t time.Time }

func (c *fixedClock) Now() time.Time { return c.t }

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorDetail {
	t.Helper()
	var resp APIErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode error body %q: %v", rec.Body.String(), err)
	}
	return resp.Error
}

var testActor = &types.Actor{
	ID:             "key_1",
	Type:           types.ActorTypeAPIKey,
	OrganizationID: "org_1",
	Plan:           types.PlanPro,
}
