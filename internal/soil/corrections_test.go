package soil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCorrectForGravel(t *testing.T) {
	g, err := CorrectForGravel(20, 1.5, 20, 10)
	require.NoError(t, err)

	assert.InDelta(t, 0.2, g.VolumeFraction, 1e-12)
	assert.InDelta(t, 0.306358, g.WeightFraction, 1e-6)
	assert.InDelta(t, 1.73, g.BulkDensity, 1e-9)
	assert.InDelta(t, 16.0, g.PlantAvailableWater, 1e-9)
	assert.InDelta(t, 7.272727, g.SaturatedConductivity, 1e-6)
}

func TestCorrectForGravel_NoRockFragments(t *testing.T) {
	g, err := CorrectForGravel(0, 1.4, 12, 3)
	require.NoError(t, err)

	assert.Zero(t, g.WeightFraction)
	assert.InDelta(t, 1.4, g.BulkDensity, 1e-12)
	assert.InDelta(t, 12.0, g.PlantAvailableWater, 1e-12)
	assert.InDelta(t, 3.0, g.SaturatedConductivity, 1e-12)
}

func TestCorrectForSalinity(t *testing.T) {
	sc, err := CorrectForSalinity(2, 30, 15)
	require.NoError(t, err)

	assert.InDelta(t, 72.0, sc.OsmoticPotential, 1e-12)
	assert.InDelta(t, 24.312587, sc.EffectiveFieldCapacity, 1e-6)
	assert.InDelta(t, 9.312587, sc.EffectivePlantAvailableWater, 1e-6)
}

func TestCorrectForSalinity_TensionCapsAtWiltingPoint(t *testing.T) {
	sc, err := CorrectForSalinity(50, 30, 15)
	require.NoError(t, err)

	assert.InDelta(t, 15.0, sc.EffectiveFieldCapacity, 1e-9)
	assert.InDelta(t, 0.0, sc.EffectivePlantAvailableWater, 1e-9)
}

func TestCorrectForSalinity_ZeroConductivityIsNeutral(t *testing.T) {
	sc, err := CorrectForSalinity(0, 30, 15)
	require.NoError(t, err)
	assert.InDelta(t, 30.0, sc.EffectiveFieldCapacity, 1e-12)
}

func TestCorrectForSalinity_RejectsInvertedCurve(t *testing.T) {
	_, err := CorrectForSalinity(2, 10, 20)

	var compErr *ComputationError
	require.ErrorAs(t, err, &compErr)
	assert.Equal(t, "osmotic_adjustment", compErr.Step)
}
