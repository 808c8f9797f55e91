package analysis

import (
	"context"
	"log/slog"
	"time"

	"github.com/sony/gobreaker/v2"

	"soilwater/internal/types"
)

// historyRecorder writes analysis records through a circuit breaker so that a
// failing history store stops being called instead of slowing every request.
type historyRecorder struct {
	store   HistoryStore
	breaker *gobreaker.CircuitBreaker[struct{}]
	metrics Recorder
	logger  *slog.Logger
}

func newHistoryRecorder(store HistoryStore, failures uint32, cooldown time.Duration, metrics Recorder, logger *slog.Logger) *historyRecorder {
	cb := gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:        "analysis-history",
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change", "breaker", name, "from", from.String(), "to", to.String())
		},
	})
	return &historyRecorder{store: store, breaker: cb, metrics: metrics, logger: logger}
}

// record stores rec. Failures are logged and counted but never returned: the
// caller's analysis has already succeeded or been rejected on its own terms.
func (h *historyRecorder) record(ctx context.Context, rec *types.AnalysisRecord) {
	_, err := h.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, h.store.Create(ctx, rec)
	})
	if err != nil {
		h.logger.WarnContext(ctx, "failed to record analysis history",
			"analysis_id", rec.ID,
			"organization_id", rec.OrganizationID,
			"breaker_state", h.breaker.State().String(),
			"error", err,
		)
		h.metrics.RecordFailure(ctx, types.MetricHistoryWriteFail)
	}
}
