package analysis

import (
	"soilwater/internal/soil"
	"soilwater/internal/types"
)

// FilterForPlan returns a copy of r without the fields limits does not
// include. Primary water contents, conductivity, texture and drainage class
// are always kept.
func FilterForPlan(r *soil.Result, limits types.PlanLimits) *soil.Result {
	if r == nil {
		return nil
	}
	out := *r

	if !limits.AdvancedMetrics {
		out.AirEntryTension = nil
		out.Lambda = nil
		out.BulkDensity = nil
		out.CompactionRisk = nil
		out.ErosionRisk = nil
		out.SoilQualityIndex = nil
	}
	if !limits.ConfidenceBounds {
		out.Confidence = nil
	}
	if !limits.GravelCorrection {
		out.Gravel = nil
	}
	if !limits.SalinityEffects {
		out.Salinity = nil
	}
	if !limits.RegressionDetail {
		out.Regression = nil
	}
	return &out
}

// checkFeatures rejects optional inputs the plan cannot use.
func checkFeatures(s soil.Sample, tier types.PlanTier, limits types.PlanLimits) error {
	switch {
	case s.GravelContent > 0 && !limits.GravelCorrection:
		return featureError("gravel_correction", soil.ParamGravelContent, tier)
	case s.ElectricalConductivity > 0 && !limits.SalinityEffects:
		return featureError("salinity_effects", soil.ParamElectricalConductivity, tier)
	}
	return nil
}

func featureError(feature, parameter string, tier types.PlanTier) error {
	return types.NewAppErrorWithDetails(
		types.ErrCodePermissionPlanFeature,
		"the current plan does not include "+feature,
		nil,
		map[string]any{
			"feature":   feature,
			"parameter": parameter,
			"plan":      string(tier),
		},
	)
}
