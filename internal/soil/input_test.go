package soil

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_RejectsOutOfRange(t *testing.T) {
	tests := []struct {
		name      string
		sample    Sample
		wantParam string
	}{
		{"negative sand", Sample{Sand: -1, Clay: 10}, ParamSand},
		{"sand over 100", Sample{Sand: 100.5, Clay: 0}, ParamSand},
		{"clay 70", Sample{Sand: 20, Clay: 70, OrganicMatter: 2}, ParamClay},
		{"clay exactly 60", Sample{Sand: 20, Clay: 60}, ParamClay},
		{"sum over 100", Sample{Sand: 60, Clay: 45, OrganicMatter: 2}, ParamSandClaySum},
		{"organic matter over 8", Sample{Sand: 40, Clay: 20, OrganicMatter: 8.5}, ParamOrganicMatter},
		{"negative organic matter", Sample{Sand: 40, Clay: 20, OrganicMatter: -0.1}, ParamOrganicMatter},
		{"density below 0.9", Sample{Sand: 40, Clay: 20, BulkDensityFactor: ptr(0.5)}, ParamBulkDensityFactor},
		{"density above 1.8", Sample{Sand: 40, Clay: 20, BulkDensityFactor: ptr(2.0)}, ParamBulkDensityFactor},
		{"density explicitly zero", Sample{Sand: 40, Clay: 20, BulkDensityFactor: ptr(0.0)}, ParamBulkDensityFactor},
		{"gravel above 80", Sample{Sand: 40, Clay: 20, GravelContent: 81}, ParamGravelContent},
		{"ec above 20", Sample{Sand: 40, Clay: 20, ElectricalConductivity: 25}, ParamElectricalConductivity},
		{"NaN sand", Sample{Sand: math.NaN(), Clay: 20}, ParamSand},
		{"infinite organic matter", Sample{Sand: 40, Clay: 20, OrganicMatter: math.Inf(1)}, ParamOrganicMatter},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Validate(tt.sample)
			require.Error(t, err)

			var rangeErr *RangeError
			require.True(t, errors.As(err, &rangeErr), "expected *RangeError, got %T", err)
			assert.Equal(t, tt.wantParam, rangeErr.Parameter)
		})
	}
}

func TestValidate_FirstViolationWins(t *testing.T) {
	_, err := Validate(Sample{Sand: 120, Clay: 90, OrganicMatter: 50})

	var rangeErr *RangeError
	require.ErrorAs(t, err, &rangeErr)
	assert.Equal(t, ParamSand, rangeErr.Parameter)
}

func TestValidate_ClayBoundIsExclusive(t *testing.T) {
	_, err := Validate(Sample{Sand: 10, Clay: 59.999})
	require.NoError(t, err)

	_, err = Validate(Sample{Sand: 10, Clay: 60})
	var rangeErr *RangeError
	require.ErrorAs(t, err, &rangeErr)
	assert.True(t, rangeErr.MaxExclusive)
	assert.Equal(t, "[0, 60)", rangeErr.Range())
	assert.Equal(t, "clay = 60 is outside the valid range [0, 60)", rangeErr.Error())
}

func TestValidate_Defaults(t *testing.T) {
	v, err := Validate(Sample{Sand: 33, Clay: 33})
	require.NoError(t, err)

	assert.Equal(t, DefaultBulkDensityFactor, v.BulkDensityFactor())
	assert.Zero(t, v.GravelContent())
	assert.Zero(t, v.ElectricalConductivity())
	assert.InDelta(t, 34.0, v.Silt(), 1e-12)
}

func TestAnalyzeSoil_ZeroDensityFactorIsRejected(t *testing.T) {
	r, err := AnalyzeSoil(33, 33, 0, WithBulkDensityFactor(0))
	assert.Nil(t, r)

	var rangeErr *RangeError
	require.ErrorAs(t, err, &rangeErr)
	assert.Equal(t, ParamBulkDensityFactor, rangeErr.Parameter)
	assert.Zero(t, rangeErr.Value)
}

func TestValidate_AcceptsBounds(t *testing.T) {
	samples := []Sample{
		{Sand: 0, Clay: 0},
		{Sand: 100, Clay: 0},
		{Sand: 40, Clay: 59.9},
		{Sand: 40, Clay: 20, OrganicMatter: 8, BulkDensityFactor: ptr(1.8), GravelContent: 80, ElectricalConductivity: 20},
		{Sand: 40, Clay: 20, BulkDensityFactor: ptr(0.9)},
	}
	for _, s := range samples {
		v, err := Validate(s)
		require.NoError(t, err, "%+v", s)
		assert.GreaterOrEqual(t, v.Silt(), 0.0)
	}
}
