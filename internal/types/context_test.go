package types

import (
	"context"
	"testing"
)

type stubLogger struct{ name string }

func (stubLogger) Info(string, ...any)  {}
func (stubLogger) Error(string, ...any) {}
func (stubLogger) Warn(string, ...any)  {}
func (l stubLogger) With(...any) Logger { return l }

func TestActorRoundTrip(t *testing.T) {
	ctx := context.Background()
	if _, ok := GetActor(ctx); ok {
		t.Fatal("empty context should have no actor")
	}

	actor := Actor{ID: "key_1", Type: ActorTypeAPIKey, OrganizationID: "org_1", Plan: PlanPro}
	got, ok := GetActor(WithActor(ctx, actor))
	if !ok {
		t.Fatal("actor not found")
	}
	if got != actor {
		t.Errorf("GetActor() = %+v, want %+v", got, actor)
	}
}

func TestRequestIDAndLogger(t *testing.T) {
	ctx := context.Background()
	if GetRequestID(ctx) != "" {
		t.Error("empty context should have no request id")
	}
	if LoggerFromContext(ctx) != nil {
		t.Error("empty context should have no logger")
	}

	ctx = WithRequestID(ctx, "req-123")
	ctx = WithLogger(ctx, stubLogger{name: "test"})

	if got := GetRequestID(ctx); got != "req-123" {
		t.Errorf("GetRequestID() = %q", got)
	}
	if l, ok := LoggerFromContext(ctx).(stubLogger); !ok || l.name != "test" {
		t.Errorf("LoggerFromContext() = %#v", LoggerFromContext(ctx))
	}
}

func TestIsTestKey(t *testing.T) {
	tests := map[string]bool{
		"sk_test_abcdef0123456789": true,
		"sk_live_abcdef0123456789": false,
		"":                         false,
		"sk_tes":                   false,
	}
	for key, want := range tests {
		if got := IsTestKey(key); got != want {
			t.Errorf("IsTestKey(%q) = %v, want %v", key, got, want)
		}
	}
}

func TestPlanTierIsValid(t *testing.T) {
	for _, p := range []PlanTier{PlanFree, PlanStarter, PlanPro, PlanBusiness, PlanEnterprise} {
		if !p.IsValid() {
			t.Errorf("%q should be valid", p)
		}
	}
	if PlanTier("platinum").IsValid() {
		t.Error("unknown tier should be invalid")
	}
}

func TestNormalizedLimit(t *testing.T) {
	tests := []struct{ in, want int }{
		{0, DefaultPageSize},
		{-3, DefaultPageSize},
		{5, 5},
		{MaxPageSize, MaxPageSize},
		{MaxPageSize + 1, MaxPageSize},
	}
	for _, tt := range tests {
		if got := (AnalysisListParams{Limit: tt.in}).NormalizedLimit(); got != tt.want {
			t.Errorf("NormalizedLimit(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestSlogLogger_With(t *testing.T) {
	var l Logger = NewSlogLogger(nil)
	if _, ok := l.With("request_id", "r1").(SlogLogger); !ok {
		t.Error("With() should return a SlogLogger")
	}
}
