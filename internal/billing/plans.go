// Package billing holds plan limits and daily quota enforcement.
package billing

import "soilwater/internal/types"

// PlanRegistry is the single source of truth for what each tier allows.
type PlanRegistry interface {
	// GetLimits returns the limits for tier. Unknown tiers get the Free
	// limits.
	GetLimits(tier types.PlanTier) types.PlanLimits
}

type staticPlanRegistry struct {
	limits map[types.PlanTier]types.PlanLimits
}

// | Plan       | Analyses/day  | Batch | Advanced | Gravel | Confidence | Salinity | Regression |
// |------------|---------------|-------|----------|--------|------------|----------|------------|
// | Free       | 25            | 1     | no       | no     | no         | no       | no         |
// | Starter    | 500           | 10    | yes      | no     | no         | no       | no         |
// | Pro        | 5,000         | 50    | yes      | yes    | yes        | no       | no         |
// | Business   | 25,000        | 100   | yes      | yes    | yes        | no       | no         |
// | Enterprise | 0 (unlimited) | 500   | yes      | yes    | yes        | yes      | yes        |
var planDefaults = map[types.PlanTier]types.PlanLimits{
	types.PlanFree: {
		MaxAnalysesDaily: 25,
		MaxBatchSize:     1,
	},
	types.PlanStarter: {
		MaxAnalysesDaily: 500,
		MaxBatchSize:     10,
		AdvancedMetrics:  true,
	},
	types.PlanPro: {
		MaxAnalysesDaily: 5000,
		MaxBatchSize:     50,
		AdvancedMetrics:  true,
		GravelCorrection: true,
		ConfidenceBounds: true,
	},
	types.PlanBusiness: {
		MaxAnalysesDaily: 25000,
		MaxBatchSize:     100,
		AdvancedMetrics:  true,
		GravelCorrection: true,
		ConfidenceBounds: true,
	},
	types.PlanEnterprise: {
		MaxAnalysesDaily: 0,
		MaxBatchSize:     500,
		AdvancedMetrics:  true,
		GravelCorrection: true,
		ConfidenceBounds: true,
		SalinityEffects:  true,
		RegressionDetail: true,
	},
}

var freeLimits = planDefaults[types.PlanFree]

// NewStaticPlanRegistry returns a PlanRegistry backed by the built-in table.
func NewStaticPlanRegistry() PlanRegistry {
	m := make(map[types.PlanTier]types.PlanLimits, len(planDefaults))
	for k, v := range planDefaults {
		m[k] = v
	}
	return &staticPlanRegistry{limits: m}
}

func (r *staticPlanRegistry) GetLimits(tier types.PlanTier) types.PlanLimits {
	if limits, ok := r.limits[tier]; ok {
		return limits
	}
	return freeLimits
}
