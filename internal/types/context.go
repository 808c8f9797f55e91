package types

import (
	"context"
	"strings"
)

// ActorType identifies the kind of authenticated entity making a request.
type ActorType string

const (
	ActorTypeAPIKey ActorType = "api_key"
	ActorTypeSystem ActorType = "system"
)

// API key prefixes. Test keys run the engine normally but their analyses are
// not published to the event bus.
const (
	APIKeyPrefixLive = "sk_live_"
	APIKeyPrefixTest = "sk_test_"
)

// Actor represents the authenticated entity performing an operation.
type Actor struct {
	ID             string
	Type           ActorType
	OrganizationID string
	Plan           PlanTier
	IsTestMode     bool
	Source         string // Origin of the request, e.g. "soilctl" or "dashboard".
}

type contextKey string

const (
	actorKey     contextKey = "actor"
	requestIDKey contextKey = "request_id"
	loggerKey    contextKey = "logger"
)

// WithActor stores the Actor in the context.
func WithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, actorKey, actor)
}

// GetActor retrieves the Actor from the context.
func GetActor(ctx context.Context) (Actor, bool) {
	actor, ok := ctx.Value(actorKey).(Actor)
	return actor, ok
}

// WithRequestID stores the request ID in the context.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// GetRequestID retrieves the request ID from the context.
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// WithLogger stores a Logger in the context.
func WithLogger(ctx context.Context, logger Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// LoggerFromContext retrieves the request-scoped Logger, or nil if none was
// set by middleware.
func LoggerFromContext(ctx context.Context) Logger {
	if l, ok := ctx.Value(loggerKey).(Logger); ok {
		return l
	}
	return nil
}

// IsTestKey reports whether key is a test-mode API key.
func IsTestKey(key string) bool {
	return strings.HasPrefix(key, APIKeyPrefixTest)
}
