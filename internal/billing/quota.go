package billing

import (
	"context"
	"time"

	"soilwater/internal/types"
)

// AnalysisCounter counts an organization's recorded analyses since a point in
// time. Implemented by db.AnalysisRepository.
type AnalysisCounter interface {
	CountSince(ctx context.Context, orgID string, since time.Time) (int, error)
}

// QuotaEnforcer checks the daily analysis quota of the caller's plan. The
// quota window is the current UTC day.
type QuotaEnforcer struct {
	counter  AnalysisCounter
	registry PlanRegistry
	clock    types.Clock
}

func NewQuotaEnforcer(counter AnalysisCounter, registry PlanRegistry, clock types.Clock) *QuotaEnforcer {
	if clock == nil {
		clock = types.RealClock{}
	}
	return &QuotaEnforcer{counter: counter, registry: registry, clock: clock}
}

// CheckQuota returns a limit_analyses_exceeded AppError when count more
// analyses would exceed today's quota. A zero limit means unlimited and skips
// the count query.
//
// The check does not reserve anything. Usage grows only when the history row
// is written, so concurrent requests of one organization can overshoot the
// limit by their combined size.
func (q *QuotaEnforcer) CheckQuota(ctx context.Context, orgID string, tier types.PlanTier, count int) error {
	limits := q.registry.GetLimits(tier)
	if limits.MaxAnalysesDaily == 0 {
		return nil
	}

	used, err := q.counter.CountSince(ctx, orgID, StartOfDay(q.clock.Now()))
	if err != nil {
		return err
	}

	if used+count > limits.MaxAnalysesDaily {
		return types.NewAppErrorWithDetails(
			types.ErrCodeLimitAnalyses,
			"daily analysis limit exceeded for current plan",
			nil,
			map[string]any{
				"current":   used,
				"requested": count,
				"limit":     limits.MaxAnalysesDaily,
				"plan":      string(tier),
			},
		)
	}
	return nil
}

// StartOfDay truncates t to midnight UTC.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
