package soil

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEstimateBase_ClayLoam(t *testing.T) {
	est, err := EstimateBase(33, 33, 0)
	require.NoError(t, err)

	assert.InDelta(t, 0.330920, est.Theta33, 1e-6)
	assert.InDelta(t, 0.197963, est.Theta1500, 1e-6)
	assert.InDelta(t, 0.426915, est.ThetaSat, 1e-6)
	assert.InDelta(t, 0.085005, est.ThetaS33, 1e-6)
	assert.InDelta(t, 3.154701, est.Ksat, 1e-6)
	assert.InDelta(t, 7.174698, est.AirEntryTension, 1e-6)
}

func TestEstimateBase_SaturationBuildsOnFieldCapacity(t *testing.T) {
	est, err := EstimateBase(33, 33, 0)
	require.NoError(t, err)

	// θ(S-33) on its own sits below θ33, which would leave Ksat undefined.
	assert.Less(t, est.ThetaS33, est.Theta33)
	assert.InDelta(t, est.Theta33+est.ThetaS33-0.097*0.33+0.043, est.ThetaSat, 1e-12)
}

func TestEstimateBase_SlopeIsConstant(t *testing.T) {
	a, err := EstimateBase(85, 5, 1)
	require.NoError(t, err)
	b, err := EstimateBase(20, 50, 3)
	require.NoError(t, err)

	assert.Equal(t, a.B, b.B)
	assert.InDelta(t, math.Log(1500)-math.Log(33), a.B, 1e-12)
	assert.InDelta(t, 0.262006, a.Lambda, 1e-6)
	assert.InDelta(t, 1.0, a.B*a.Lambda, 1e-12)
}

func TestEstimateBase_SaturationAboveFieldCapacityOnGrid(t *testing.T) {
	for sand := 0.0; sand <= 100; sand += 5 {
		for clay := 0.0; clay < MaxClay && sand+clay <= 100; clay += 5 {
			for om := 0.0; om <= MaxOrganicMatter; om += 2 {
				est, err := EstimateBase(sand, clay, om)
				require.NoError(t, err, "sand=%v clay=%v om=%v", sand, clay, om)
				assert.Greater(t, est.ThetaSat, est.Theta33)
				assert.Positive(t, est.Ksat)
			}
		}
	}
}

func TestEstimateBase_DegenerateSaturation(t *testing.T) {
	// Far outside the calibrated domain the saturation estimate drops below
	// field capacity and Ksat has no real value.
	_, err := EstimateBase(50, 100, 0)
	require.Error(t, err)

	var compErr *ComputationError
	require.ErrorAs(t, err, &compErr)
	assert.Equal(t, "saturated_conductivity", compErr.Step)
	assert.Contains(t, compErr.Values, "theta_sat")
	assert.Contains(t, compErr.Values, "theta_33")
	assert.Contains(t, compErr.Error(), "computation failed at saturated_conductivity (theta_33=")
}
