package analysis

import (
	"soilwater/internal/soil"
	"soilwater/internal/types"
)

// ProfileFor converts a result to the soil profile record used by irrigation
// controllers. Percentages become volumetric fractions.
func ProfileFor(r *soil.Result) types.SoilProfile {
	return types.SoilProfile{
		Texture:     r.TextureClass,
		ThetaFC:     r.FieldCapacity / 100,
		ThetaWP:     r.WiltingPoint / 100,
		ThetaSat:    r.Saturation / 100,
		KsatMMPerHr: r.SaturatedConductivity,
	}
}
