package core

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"soilwater/internal/types"
)

const rateLimitWindow = time.Minute

// RateLimit enforces the per-organization request rate. It sits after
// AuthMiddleware and is skipped when no store or limit is configured. Store
// errors fail open.
func (s *Server) RateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		limit := s.rateLimit()
		actor, ok := types.GetActor(r.Context())
		if s.RateLimitStore == nil || limit <= 0 || !ok || actor.OrganizationID == "" || publicPaths[r.URL.Path] {
			next.ServeHTTP(w, r)
			return
		}

		result, err := s.RateLimitStore.IncrementAndCheck(r.Context(), actor.OrganizationID, limit, rateLimitWindow)
		if err != nil {
			s.Logger.Error("rate limit store error", "org_id", actor.OrganizationID, "error", err.Error())
			next.ServeHTTP(w, r)
			return
		}

		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))

		if !result.Allowed {
			s.Logger.Warn("rate limit exceeded",
				"org_id", actor.OrganizationID,
				"key_id", actor.ID,
				"path", r.URL.Path,
			)
			retryAfter := max(int(time.Until(result.ResetAt).Seconds()), 1)
			w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
			Error(w, r, types.NewAppError(types.ErrCodeRateLimit, "rate limit exceeded, retry after the reset time", nil))
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) rateLimit() int {
	if s.Config == nil {
		return 0
	}
	return s.Config.Security.RateLimitPerMinute
}

// MemoryRateLimitStore is a fixed-window counter held in process memory.
// Limits are per instance.
type MemoryRateLimitStore struct {
	clock types.Clock

	mu      sync.Mutex
	windows map[string]*window
}

type window struct {
	count   int
	resetAt time.Time
}

func NewMemoryRateLimitStore(clock types.Clock) *MemoryRateLimitStore {
	if clock == nil {
		clock = types.RealClock{}
	}
	return &MemoryRateLimitStore{clock: clock, windows: make(map[string]*window)}
}

func (m *MemoryRateLimitStore) IncrementAndCheck(_ context.Context, key string, limit int, d time.Duration) (RateLimitResult, error) {
	now := m.clock.Now()

	m.mu.Lock()
	defer m.mu.Unlock()

	w, ok := m.windows[key]
	if !ok || !now.Before(w.resetAt) {
		m.evictExpired(now)
		w = &window{resetAt: now.Add(d)}
		m.windows[key] = w
	}
	w.count++

	return RateLimitResult{
		Allowed:   w.count <= limit,
		Remaining: max(limit-w.count, 0),
		ResetAt:   w.resetAt,
	}, nil
}

func (m *MemoryRateLimitStore) evictExpired(now time.Time) {
	for k, w := range m.windows {
		if !now.Before(w.resetAt) {
			delete(m.windows, k)
		}
	}
}
