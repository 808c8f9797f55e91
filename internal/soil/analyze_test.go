package soil

import (
	"errors"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyzeSoil_ReferenceSoils(t *testing.T) {
	tests := []struct {
		name       string
		sand, clay float64
		om         float64
		texture    Texture
		fc, wp     float64
		sat, paw   float64
		ksat       float64
		drainage   DrainageClass
		compaction RiskLevel
		erosion    RiskLevel
		quality    float64
	}{
		{
			name: "clay loam", sand: 33, clay: 33, om: 0,
			texture: TextureClayLoam, fc: 36, wp: 22, sat: 50, paw: 14, ksat: 2.208291,
			drainage: DrainageModerate, compaction: RiskLow, erosion: RiskLow, quality: 6,
		},
		{
			name: "sand", sand: 85, clay: 5, om: 1,
			texture: TextureSand, fc: 10.75, wp: 4.375, sat: 40.75, paw: 6.375, ksat: 105.4949,
			drainage: DrainageExcessively, compaction: RiskModerate, erosion: RiskHigh, quality: 5,
		},
		{
			name: "clay", sand: 20, clay: 50, om: 3,
			texture: TextureClay, fc: 39.6, wp: 24.4, sat: 52.6, paw: 15.2, ksat: 0.9329,
			drainage: DrainagePoor, quality: 6,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := AnalyzeSoil(tt.sand, tt.clay, tt.om)
			require.NoError(t, err)

			assert.Equal(t, tt.texture, r.TextureClass)
			assert.InDelta(t, 100-tt.sand-tt.clay, r.Silt, 1e-12)
			assert.InDelta(t, tt.fc, r.FieldCapacity, 1e-9)
			assert.InDelta(t, tt.wp, r.WiltingPoint, 1e-9)
			assert.InDelta(t, tt.sat, r.Saturation, 1e-9)
			assert.InDelta(t, tt.paw, r.PlantAvailableWater, 1e-9)
			assert.InDelta(t, tt.ksat, r.SaturatedConductivity, 1e-4)

			require.NotNil(t, r.DrainageClass)
			assert.Equal(t, tt.drainage, *r.DrainageClass)
			if tt.compaction != "" {
				assert.Equal(t, tt.compaction, *r.CompactionRisk)
			}
			if tt.erosion != "" {
				assert.Equal(t, tt.erosion, *r.ErosionRisk)
			}
			assert.Equal(t, tt.quality, *r.SoilQualityIndex)
			assert.Nil(t, r.Gravel)
			assert.Nil(t, r.Salinity)
		})
	}
}

func TestAnalyzeSoil_AdvancedMetrics(t *testing.T) {
	r, err := AnalyzeSoil(33, 33, 0)
	require.NoError(t, err)

	assert.InDelta(t, 1.518676, *r.BulkDensity, 1e-6)
	assert.InDelta(t, 7.174698, *r.AirEntryTension, 1e-6)
	assert.InDelta(t, 0.262006, *r.Lambda, 1e-6)

	require.NotNil(t, r.Confidence)
	assert.Equal(t, Interval{RSquared: 0.63, StdError: 5, Lower: 31, Upper: 41}, r.Confidence.FieldCapacity)
	assert.Equal(t, Interval{RSquared: 0.86, StdError: 2, Lower: 20, Upper: 24}, r.Confidence.WiltingPoint)
	assert.InDelta(t, 7.174698-2.9, r.Confidence.AirEntryTension.Lower, 1e-6)

	require.NotNil(t, r.Regression)
	assert.InDelta(t, 3.154701, r.Regression.Ksat, 1e-6)
}

func TestAnalyze_GravelAndSalinity(t *testing.T) {
	r, err := Analyze(Sample{
		Sand:                   40,
		Clay:                   20,
		OrganicMatter:          2.5,
		BulkDensityFactor:      ptr(1.3),
		GravelContent:          20,
		ElectricalConductivity: 4,
	})
	require.NoError(t, err)

	assert.Equal(t, TextureLoam, r.TextureClass)
	assert.InDelta(t, 34.24, r.FieldCapacity, 1e-9)
	assert.InDelta(t, 12.72, r.WiltingPoint, 1e-9)
	assert.InDelta(t, 43.12, r.Saturation, 1e-9)
	assert.InDelta(t, 21.52, r.PlantAvailableWater, 1e-9)
	assert.InDelta(t, 3.672539, r.SaturatedConductivity, 1e-6)
	assert.Equal(t, 7.0, *r.SoilQualityIndex)
	assert.Equal(t, RiskModerate, *r.CompactionRisk)

	require.NotNil(t, r.Gravel)
	assert.InDelta(t, 0.241075, r.Gravel.WeightFraction, 1e-6)
	assert.InDelta(t, 2.198483, r.Gravel.BulkDensity, 1e-6)
	assert.InDelta(t, 17.216, r.Gravel.PlantAvailableWater, 1e-9)
	assert.InDelta(t, 2.670937, r.Gravel.SaturatedConductivity, 1e-6)

	require.NotNil(t, r.Salinity)
	assert.InDelta(t, 144.0, r.Salinity.OsmoticPotential, 1e-12)
	assert.InDelta(t, 22.145257, r.Salinity.EffectiveFieldCapacity, 1e-6)
	assert.InDelta(t, 9.425257, r.Salinity.EffectivePlantAvailableWater, 1e-6)
}

func TestAnalyzeSoil_OptionsMatchSample(t *testing.T) {
	fromOpts, err := AnalyzeSoil(40, 20, 2.5, WithBulkDensityFactor(1.3), WithGravel(20), WithSalinity(4))
	require.NoError(t, err)
	fromSample, err := Analyze(Sample{Sand: 40, Clay: 20, OrganicMatter: 2.5, BulkDensityFactor: ptr(1.3), GravelContent: 20, ElectricalConductivity: 4})
	require.NoError(t, err)

	if diff := cmp.Diff(fromSample, fromOpts); diff != "" {
		t.Errorf("AnalyzeSoil vs Analyze mismatch (-sample +opts):\n%s", diff)
	}
}

func TestAnalyzeSoil_InvalidInput(t *testing.T) {
	tests := []struct {
		name       string
		sand, clay float64
		wantParam  string
	}{
		{"clay above range", 20, 70, ParamClay},
		{"sand and clay above 100", 60, 45, ParamSandClaySum},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := AnalyzeSoil(tt.sand, tt.clay, 2)
			assert.Nil(t, r)

			var rangeErr *RangeError
			require.True(t, errors.As(err, &rangeErr))
			assert.Equal(t, tt.wantParam, rangeErr.Parameter)
		})
	}
}

func TestAnalyzeSoil_Deterministic(t *testing.T) {
	first, err := AnalyzeSoil(27.5, 18.25, 3.1, WithBulkDensityFactor(1.15))
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]*Result, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = AnalyzeSoil(27.5, 18.25, 3.1, WithBulkDensityFactor(1.15))
		}(i)
	}
	wg.Wait()

	for i, r := range results {
		if diff := cmp.Diff(first, r); diff != "" {
			t.Fatalf("run %d differs (-first +run):\n%s", i, diff)
		}
	}
}

func TestAnalyzeSoil_PhysicalConsistencyOverGrid(t *testing.T) {
	for sand := 0.0; sand <= 100; sand += 5 {
		for clay := 0.0; clay < MaxClay && sand+clay <= 100; clay += 5 {
			for _, om := range []float64{0, 1, 2.5, 4, 6, 8} {
				for _, density := range []float64{0.9, 1.0, 1.2, 1.5, 1.8} {
					r, err := AnalyzeSoil(sand, clay, om, WithBulkDensityFactor(density))
					require.NoError(t, err, "sand=%v clay=%v om=%v density=%v", sand, clay, om, density)

					assert.GreaterOrEqual(t, r.PlantAvailableWater, 0.0)
					assert.GreaterOrEqual(t, r.Saturation, r.FieldCapacity)
					assert.GreaterOrEqual(t, r.SaturatedConductivity, 0.0)
					assert.InDelta(t, r.FieldCapacity-r.WiltingPoint, r.PlantAvailableWater, 1e-12)
				}
			}
		}
	}
}

func TestAnalyzeSoil_SalinityNeverAddsWater(t *testing.T) {
	for _, ec := range []float64{0.5, 2, 8, 20} {
		r, err := AnalyzeSoil(40, 20, 2.5, WithSalinity(ec))
		require.NoError(t, err)
		require.NotNil(t, r.Salinity)
		assert.LessOrEqual(t, r.Salinity.EffectivePlantAvailableWater, r.PlantAvailableWater)
		assert.GreaterOrEqual(t, r.Salinity.EffectivePlantAvailableWater, 0.0)
	}
}
