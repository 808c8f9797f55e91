package analysis

import (
	"errors"
	"math"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"soilwater/internal/soil"
	"soilwater/internal/types"
)

func TestMapEngineError_Range(t *testing.T) {
	_, err := soil.AnalyzeSoil(60, 45, 2)
	mapped := MapEngineError(err)

	var appErr *types.AppError
	require.ErrorAs(t, mapped, &appErr)
	assert.Equal(t, types.ErrCodeValidationSoilRange, appErr.Code)
	assert.Equal(t, http.StatusBadRequest, appErr.HTTPStatus())
	assert.Equal(t, "sand+clay", appErr.Details["parameter"])
	assert.Equal(t, 105.0, appErr.Details["value"])
	assert.Equal(t, "[0, 100]", appErr.Details["range"])

	var rangeErr *soil.RangeError
	assert.ErrorAs(t, mapped, &rangeErr, "the engine error stays in the chain")
}

func TestMapEngineError_NaNIsJSONSafe(t *testing.T) {
	_, err := soil.AnalyzeSoil(math.NaN(), 10, 1)
	var appErr *types.AppError
	require.ErrorAs(t, MapEngineError(err), &appErr)
	assert.Equal(t, "NaN", appErr.Details["value"])
}

func TestMapEngineError_Computation(t *testing.T) {
	compErr := &soil.ComputationError{
		Step:   "saturated_conductivity",
		Values: map[string]float64{"theta_sat": 0.3, "theta_33": math.Inf(1)},
	}

	var appErr *types.AppError
	require.ErrorAs(t, MapEngineError(compErr), &appErr)
	assert.Equal(t, types.ErrCodeComputationDegenerate, appErr.Code)
	assert.Equal(t, http.StatusUnprocessableEntity, appErr.HTTPStatus())
	assert.Equal(t, "saturated_conductivity", appErr.Details["step"])

	values := appErr.Details["values"].(map[string]any)
	assert.Equal(t, 0.3, values["theta_sat"])
	assert.Equal(t, "+Inf", values["theta_33"])
}

func TestMapEngineError_Other(t *testing.T) {
	assert.Nil(t, MapEngineError(nil))

	var appErr *types.AppError
	require.ErrorAs(t, MapEngineError(errors.New("boom")), &appErr)
	assert.Equal(t, types.ErrCodeInternalUnexpected, appErr.Code)
}

func TestFilterForPlan(t *testing.T) {
	full, err := soil.AnalyzeSoil(40, 20, 2.5, soil.WithGravel(20), soil.WithSalinity(4))
	require.NoError(t, err)

	free := FilterForPlan(full, types.PlanLimits{})
	assert.NotNil(t, free.DrainageClass)
	assert.Nil(t, free.SoilQualityIndex)
	assert.Nil(t, free.CompactionRisk)
	assert.Nil(t, free.Gravel)
	assert.Nil(t, free.Salinity)
	assert.Equal(t, full.FieldCapacity, free.FieldCapacity)

	pro := FilterForPlan(full, types.PlanLimits{AdvancedMetrics: true, GravelCorrection: true, ConfidenceBounds: true})
	assert.NotNil(t, pro.SoilQualityIndex)
	assert.NotNil(t, pro.Gravel)
	assert.NotNil(t, pro.Confidence)
	assert.Nil(t, pro.Salinity)
	assert.Nil(t, pro.Regression)

	assert.NotNil(t, full.Salinity, "filtering must not modify the input")
	assert.Nil(t, FilterForPlan(nil, types.PlanLimits{}))
}

func TestProfileFor(t *testing.T) {
	r, err := soil.AnalyzeSoil(85, 5, 1)
	require.NoError(t, err)

	p := ProfileFor(r)
	assert.Equal(t, soil.TextureSand, p.Texture)
	assert.InDelta(t, 0.1075, p.ThetaFC, 1e-12)
	assert.InDelta(t, 0.04375, p.ThetaWP, 1e-12)
	assert.InDelta(t, 0.4075, p.ThetaSat, 1e-12)
	assert.InDelta(t, r.SaturatedConductivity, p.KsatMMPerHr, 1e-12)
}
