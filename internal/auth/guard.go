package auth

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"soilwater/internal/types"
)

// GuardConfig holds the brute force thresholds of FailureGuard.
type GuardConfig struct {
	// IPBlockThreshold is the number of invalid keys an address may present
	// within Window before it is blocked.
	IPBlockThreshold int
	Window           time.Duration
}

func DefaultGuardConfig() GuardConfig {
	return GuardConfig{
		IPBlockThreshold: 20,
		Window:           15 * time.Minute,
	}
}

// FailureGuard blocks client addresses that keep presenting invalid API
// keys. Failures are kept in memory per process; a block lifts once the
// oldest failure in the window ages out.
type FailureGuard struct {
	cfg    GuardConfig
	clock  types.Clock
	logger *slog.Logger

	mu       sync.Mutex
	failures map[string][]time.Time
}

func NewFailureGuard(cfg GuardConfig, clock types.Clock, logger *slog.Logger) *FailureGuard {
	if cfg.IPBlockThreshold <= 0 || cfg.Window <= 0 {
		cfg = DefaultGuardConfig()
	}
	if clock == nil {
		clock = types.RealClock{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &FailureGuard{
		cfg:      cfg,
		clock:    clock,
		logger:   logger,
		failures: make(map[string][]time.Time),
	}
}

// RecordFailure notes one invalid key presented from ip.
func (g *FailureGuard) RecordFailure(_ context.Context, ip string) {
	now := g.clock.Now()

	g.mu.Lock()
	recent := g.prune(ip, now)
	recent = append(recent, now)
	g.failures[ip] = recent
	n := len(recent)
	g.mu.Unlock()

	if n == g.cfg.IPBlockThreshold {
		g.logger.Warn("client address blocked after repeated invalid API keys",
			"ip", ip,
			"failures", n,
			"window", g.cfg.Window.String(),
		)
	}
}

// IsBlocked reports whether ip reached the threshold within the window.
func (g *FailureGuard) IsBlocked(_ context.Context, ip string) bool {
	now := g.clock.Now()

	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.prune(ip, now)) >= g.cfg.IPBlockThreshold
}

// prune drops failures older than the window. Caller holds mu.
func (g *FailureGuard) prune(ip string, now time.Time) []time.Time {
	times := g.failures[ip]
	cutoff := now.Add(-g.cfg.Window)
	i := 0
	for i < len(times) && !times[i].After(cutoff) {
		i++
	}
	times = times[i:]
	if len(times) == 0 {
		delete(g.failures, ip)
		return nil
	}
	g.failures[ip] = times
	return times
}
