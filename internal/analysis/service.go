// Package analysis runs soil analyses on behalf of authenticated callers:
// plan feature and quota checks, the engine call, plan-based field filtering,
// history persistence and event publication.
package analysis

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"soilwater/internal/billing"
	"soilwater/internal/soil"
	"soilwater/internal/types"
)

// HistoryStore persists analysis records. Implemented by db.AnalysisRepository.
type HistoryStore interface {
	Create(ctx context.Context, rec *types.AnalysisRecord) error
	GetByID(ctx context.Context, orgID, id string) (*types.AnalysisRecord, error)
	// List returns up to params.NormalizedLimit()+1 records, newest first.
	// The extra record signals another page.
	List(ctx context.Context, params types.AnalysisListParams) ([]*types.AnalysisRecord, error)
}

// QuotaChecker enforces the daily analysis quota.
type QuotaChecker interface {
	CheckQuota(ctx context.Context, orgID string, tier types.PlanTier, count int) error
}

// Publisher delivers analysis events to downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, event types.AnalysisEvent) error
}

// Recorder receives analysis outcome metrics.
type Recorder interface {
	RecordAnalysis(ctx context.Context, outcome types.AnalysisStatus, plan types.PlanTier)
	RecordFailure(ctx context.Context, metric string)
}

// Request is one sample to analyze plus the caller's bookkeeping fields.
type Request struct {
	Sample  soil.Sample
	FieldID string
	Label   string
}

// BatchItem is the outcome of one batch entry. Exactly one of Analysis and
// Error is set.
type BatchItem struct {
	Index    int                   `json:"index"`
	Analysis *types.AnalysisRecord `json:"analysis,omitempty"`
	Error    *types.AppError       `json:"error,omitempty"`
}

// Config tunes the service.
type Config struct {
	BatchConcurrency       int
	HistoryBreakerFailures uint32
	HistoryBreakerCooldown time.Duration
}

// Deps are the collaborators of Service. Publisher, Metrics, Quota, Logger
// and Clock may be nil.
type Deps struct {
	History   HistoryStore
	Quota     QuotaChecker
	Plans     billing.PlanRegistry
	Publisher Publisher
	Metrics   Recorder
	Logger    *slog.Logger
	Clock     types.Clock
}

type Service struct {
	history     HistoryStore
	recorder    *historyRecorder
	quota       QuotaChecker
	plans       billing.PlanRegistry
	publisher   Publisher
	metrics     Recorder
	logger      *slog.Logger
	clock       types.Clock
	concurrency int
	newID       func() string
}

func NewService(deps Deps, cfg Config) *Service {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Clock == nil {
		deps.Clock = types.RealClock{}
	}
	if deps.Plans == nil {
		deps.Plans = billing.NewStaticPlanRegistry()
	}
	if deps.Metrics == nil {
		deps.Metrics = nopRecorder{}
	}
	if cfg.BatchConcurrency <= 0 {
		cfg.BatchConcurrency = 8
	}
	if cfg.HistoryBreakerFailures == 0 {
		cfg.HistoryBreakerFailures = 5
	}
	if cfg.HistoryBreakerCooldown <= 0 {
		cfg.HistoryBreakerCooldown = 30 * time.Second
	}

	return &Service{
		history:     deps.History,
		recorder:    newHistoryRecorder(deps.History, cfg.HistoryBreakerFailures, cfg.HistoryBreakerCooldown, deps.Metrics, deps.Logger),
		quota:       deps.Quota,
		plans:       deps.Plans,
		publisher:   deps.Publisher,
		metrics:     deps.Metrics,
		logger:      deps.Logger,
		clock:       deps.Clock,
		concurrency: cfg.BatchConcurrency,
		newID:       uuid.NewString,
	}
}

// Analyze runs one analysis for the actor in ctx.
func (s *Service) Analyze(ctx context.Context, req Request) (*types.AnalysisRecord, error) {
	actor, err := actorFrom(ctx)
	if err != nil {
		return nil, err
	}
	limits := s.plans.GetLimits(actor.Plan)

	if err := checkFeatures(req.Sample, actor.Plan, limits); err != nil {
		return nil, err
	}
	if err := s.checkQuota(ctx, actor, 1); err != nil {
		return nil, err
	}
	return s.analyzeOne(ctx, actor, limits, req)
}

// AnalyzeBatch analyzes reqs concurrently. The whole batch is rejected when it
// exceeds the plan's batch size or remaining daily quota; after that each
// entry succeeds or fails on its own and results keep the input order.
func (s *Service) AnalyzeBatch(ctx context.Context, reqs []Request) ([]BatchItem, error) {
	actor, err := actorFrom(ctx)
	if err != nil {
		return nil, err
	}
	limits := s.plans.GetLimits(actor.Plan)

	if len(reqs) == 0 {
		return nil, types.NewAppError(types.ErrCodeValidationMissingField, "samples must contain at least one entry", nil)
	}
	if len(reqs) > limits.MaxBatchSize {
		return nil, types.NewAppErrorWithDetails(
			types.ErrCodeValidationBatchSize,
			"batch exceeds the maximum size for the current plan",
			nil,
			map[string]any{"size": len(reqs), "max": limits.MaxBatchSize, "plan": string(actor.Plan)},
		)
	}
	if err := s.checkQuota(ctx, actor, len(reqs)); err != nil {
		return nil, err
	}

	items := make([]BatchItem, len(reqs))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for i, req := range reqs {
		g.Go(func() error {
			item := BatchItem{Index: i}
			if err := checkFeatures(req.Sample, actor.Plan, limits); err != nil {
				item.Error = asAppError(err)
			} else if rec, err := s.analyzeOne(gCtx, actor, limits, req); err != nil {
				item.Error = asAppError(err)
			} else {
				item.Analysis = rec
			}

			items[i] = item
			// Entry errors stay in the entry.
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalUnexpected, "batch analysis failed", err)
	}
	return items, nil
}

// Get returns one history entry of the caller's organization.
func (s *Service) Get(ctx context.Context, id string) (*types.AnalysisRecord, error) {
	actor, err := actorFrom(ctx)
	if err != nil {
		return nil, err
	}
	return s.history.GetByID(ctx, actor.OrganizationID, id)
}

// List pages through the caller's history, newest first. The organization in
// params is always replaced by the caller's.
func (s *Service) List(ctx context.Context, params types.AnalysisListParams) (*types.ListResponse[*types.AnalysisRecord], error) {
	actor, err := actorFrom(ctx)
	if err != nil {
		return nil, err
	}
	params.OrganizationID = actor.OrganizationID

	recs, err := s.history.List(ctx, params)
	if err != nil {
		return nil, err
	}

	limit := params.NormalizedLimit()
	resp := &types.ListResponse[*types.AnalysisRecord]{Data: recs}
	if len(recs) > limit {
		resp.Data = recs[:limit]
		last := resp.Data[limit-1]
		resp.PageInfo = types.PageInfo{
			HasMore:    true,
			NextCursor: types.AnalysisCursor{CreatedAt: last.CreatedAt, ID: last.ID}.Encode(),
		}
	}
	if resp.Data == nil {
		resp.Data = []*types.AnalysisRecord{}
	}
	return resp, nil
}

func (s *Service) analyzeOne(ctx context.Context, actor types.Actor, limits types.PlanLimits, req Request) (*types.AnalysisRecord, error) {
	rec := &types.AnalysisRecord{
		ID:             s.newID(),
		OrganizationID: actor.OrganizationID,
		FieldID:        req.FieldID,
		Label:          req.Label,
		Input:          req.Sample,
		TestMode:       actor.IsTestMode,
		CreatedAt:      s.clock.Now(),
	}

	result, err := soil.Analyze(req.Sample)
	if err != nil {
		appErr := asAppError(MapEngineError(err))
		rec.Status = types.AnalysisRejected
		rec.ErrorCode = appErr.Code
		s.recorder.record(ctx, rec)
		s.metrics.RecordAnalysis(ctx, types.AnalysisRejected, actor.Plan)
		return nil, appErr
	}

	rec.Status = types.AnalysisSucceeded
	rec.Result = FilterForPlan(result, limits)
	s.recorder.record(ctx, rec)
	s.metrics.RecordAnalysis(ctx, types.AnalysisSucceeded, actor.Plan)

	if !actor.IsTestMode {
		s.publish(ctx, rec)
	}
	return rec, nil
}

func (s *Service) publish(ctx context.Context, rec *types.AnalysisRecord) {
	if s.publisher == nil {
		return
	}
	event := types.AnalysisEvent{
		EventID:             s.newID(),
		AnalysisID:          rec.ID,
		OrganizationID:      rec.OrganizationID,
		FieldID:             rec.FieldID,
		Profile:             ProfileFor(rec.Result),
		PlantAvailableWater: rec.Result.PlantAvailableWater,
		SoilQualityIndex:    rec.Result.SoilQualityIndex,
		OccurredAt:          rec.CreatedAt,
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "failed to publish analysis event",
			"analysis_id", rec.ID,
			"error", err,
		)
		s.metrics.RecordFailure(ctx, types.MetricEventPublishFail)
	}
}

func (s *Service) checkQuota(ctx context.Context, actor types.Actor, count int) error {
	if s.quota == nil {
		return nil
	}
	return s.quota.CheckQuota(ctx, actor.OrganizationID, actor.Plan, count)
}

func actorFrom(ctx context.Context) (types.Actor, error) {
	actor, ok := types.GetActor(ctx)
	if !ok {
		return types.Actor{}, types.NewAppError(types.ErrCodeAuthTokenMissing, "authentication required", nil)
	}
	return actor, nil
}

type nopRecorder struct{}

func (nopRecorder) RecordAnalysis(context.Context, types.AnalysisStatus, types.PlanTier) {}
func (nopRecorder) RecordFailure(context.Context, string)                                {}
