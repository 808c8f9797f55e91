package soil

import "math"

const (
	// particleDensity of mineral soil and rock fragments, g/cm³.
	particleDensity = 2.65
	// osmoticPerEC converts saturation-extract EC (dS/m) to osmotic potential (kPa).
	osmoticPerEC = 36.0

	fieldCapacityTension = 33.0
	wiltingTension       = 1500.0
)

// GravelCorrection carries whole-soil values for a sample with rock fragments.
type GravelCorrection struct {
	VolumeFraction        float64 `json:"volume_fraction"`
	WeightFraction        float64 `json:"weight_fraction"`
	BulkDensity           float64 `json:"bulk_density"`
	PlantAvailableWater   float64 `json:"plant_available_water"`
	SaturatedConductivity float64 `json:"saturated_conductivity"`
}

// CorrectForGravel converts fine-earth PAW and Ksat to a whole-soil basis.
// gravel is percent by volume and fineEarthDensity is the matric bulk density
// in g/cm³.
func CorrectForGravel(gravel, fineEarthDensity, paw, ksat float64) (GravelCorrection, error) {
	rv := gravel / 100
	alpha := fineEarthDensity / particleDensity
	rw := rv / (alpha + rv*(1-alpha))

	denom := 1 - rw*(1-1.5*alpha)
	if denom <= 0 || !allFinite(rw, alpha) {
		return GravelCorrection{}, &ComputationError{
			Step: "gravel_conductivity",
			Values: map[string]float64{
				"gravel_weight_fraction": rw,
				"density_ratio":          alpha,
			},
		}
	}

	return GravelCorrection{
		VolumeFraction:        rv,
		WeightFraction:        rw,
		BulkDensity:           fineEarthDensity*(1-rv) + particleDensity*rv,
		PlantAvailableWater:   paw * (1 - rv),
		SaturatedConductivity: ksat * (1 - rw) / denom,
	}, nil
}

// SalinityCorrection describes the water-holding loss caused by osmotic
// potential.
type SalinityCorrection struct {
	// OsmoticPotential in kPa, reported as a positive tension.
	OsmoticPotential             float64 `json:"osmotic_potential"`
	EffectiveFieldCapacity       float64 `json:"effective_field_capacity"`
	EffectivePlantAvailableWater float64 `json:"effective_plant_available_water"`
}

// CorrectForSalinity adds the osmotic potential to the 33 kPa matric tension
// and reads the water content at the combined tension off the log-log line
// through field capacity and wilting point (both percent).
func CorrectForSalinity(ec, fieldCapacity, wiltingPoint float64) (SalinityCorrection, error) {
	if fieldCapacity <= 0 || wiltingPoint <= 0 || wiltingPoint > fieldCapacity {
		return SalinityCorrection{}, &ComputationError{
			Step: "osmotic_adjustment",
			Values: map[string]float64{
				"field_capacity": fieldCapacity,
				"wilting_point":  wiltingPoint,
			},
		}
	}

	osmotic := osmoticPerEC * ec
	tension := math.Min(fieldCapacityTension+osmotic, wiltingTension)
	slope := math.Log(wiltingPoint/fieldCapacity) / math.Log(wiltingTension/fieldCapacityTension)
	effectiveFC := fieldCapacity * math.Pow(tension/fieldCapacityTension, slope)

	return SalinityCorrection{
		OsmoticPotential:             osmotic,
		EffectiveFieldCapacity:       effectiveFC,
		EffectivePlantAvailableWater: effectiveFC - wiltingPoint,
	}, nil
}
