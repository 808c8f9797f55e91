package soil

// DrainageClass buckets saturated conductivity.
type DrainageClass string

const (
	DrainageVeryPoor    DrainageClass = "Very Poorly Drained"
	DrainagePoor        DrainageClass = "Poorly Drained"
	DrainageModerate    DrainageClass = "Moderately Drained"
	DrainageWell        DrainageClass = "Well Drained"
	DrainageExcessively DrainageClass = "Excessively Drained"
)

// RiskLevel is the three-step scale shared by compaction and erosion risk.
type RiskLevel string

const (
	RiskLow      RiskLevel = "Low"
	RiskModerate RiskLevel = "Moderate"
	RiskHigh     RiskLevel = "High"
)

// DrainageFor classifies ksat in mm/hr.
func DrainageFor(ksat float64) DrainageClass {
	switch {
	case ksat < 0.1:
		return DrainageVeryPoor
	case ksat < 1:
		return DrainagePoor
	case ksat < 10:
		return DrainageModerate
	case ksat < 100:
		return DrainageWell
	default:
		return DrainageExcessively
	}
}

// CompactionIndex combines the relative bulk density with the air-filled
// share at field capacity. fieldCapacity is percent.
func CompactionIndex(densityFactor, fieldCapacity float64) float64 {
	return densityFactor + (1 - fieldCapacity/100)
}

func CompactionRiskFor(index float64) RiskLevel {
	return riskFor(index, 2.0, 1.7)
}

// ErosionIndex rises with sand and conductivity and falls with clay and
// organic matter. Inputs are percent and mm/hr.
func ErosionIndex(sand, clay, om, ksat float64) float64 {
	return sand/100 - 0.5*clay/100 - 2*om/100 + ksat/1000
}

func ErosionRiskFor(index float64) RiskLevel {
	return riskFor(index, 0.8, 0.4)
}

func riskFor(index, high, moderate float64) RiskLevel {
	switch {
	case index > high:
		return RiskHigh
	case index > moderate:
		return RiskModerate
	default:
		return RiskLow
	}
}

// QualityIndex scores a soil from 0 to 10 starting at 5, rewarding water
// holding capacity and moderate conductivity.
func QualityIndex(paw, ksat float64) float64 {
	score := 5.0

	switch {
	case paw > 15:
		score += 2
	case paw > 10:
		score++
	case paw < 5:
		score--
	}

	switch {
	case ksat > 10 && ksat < 100:
		score += 1.5
	case ksat < 1 || ksat > 500:
		score--
	}

	return min(max(score, 0), 10)
}
