package core

import (
	"context"
	"time"

	"soilwater/internal/types"
)

// Authenticator resolves a bearer token to an Actor. Unknown, revoked or
// expired tokens return an AppError with ErrCodeAuthTokenInvalid.
type Authenticator interface {
	ResolveToken(ctx context.Context, token string) (*types.Actor, error)
}

// AuthGuard tracks failed authentications per client address.
type AuthGuard interface {
	IsBlocked(ctx context.Context, ip string) bool
	RecordFailure(ctx context.Context, ip string)
}

// RateLimitStore counts requests per key within a window.
type RateLimitStore interface {
	IncrementAndCheck(ctx context.Context, key string, limit int, window time.Duration) (RateLimitResult, error)
}

type RateLimitResult struct {
	Allowed   bool
	Remaining int
	ResetAt   time.Time
}

// HealthProbe checks one dependency for GET /health.
type HealthProbe interface {
	Name() string
	Check(ctx context.Context) error
}

// ProbeFunc adapts a function to HealthProbe.
type ProbeFunc struct {
	ProbeName string
	Fn        func(ctx context.Context) error
}

func (p ProbeFunc) Name() string                    { return p.ProbeName }
func (p ProbeFunc) Check(ctx context.Context) error { return p.Fn(ctx) }
