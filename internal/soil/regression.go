package soil

import "math"

// BaseEstimate holds the unadjusted Saxton-Rawls regression outputs. Water
// contents are volumetric fractions.
type BaseEstimate struct {
	Theta33   float64 `json:"theta_33"`
	Theta1500 float64 `json:"theta_1500"`
	ThetaSat  float64 `json:"theta_sat"`
	// ThetaS33 is the saturation excess over field capacity, θ(S−33).
	ThetaS33 float64 `json:"theta_s33"`
	B        float64 `json:"b"`
	Lambda   float64 `json:"lambda"`
	// Ksat in mm/hr.
	Ksat float64 `json:"ksat"`
	// AirEntryTension in kPa.
	AirEntryTension float64 `json:"air_entry_tension"`
}

// ksatCoefficient is the leading constant of the Ksat equation, mm/hr.
const ksatCoefficient = 1930.0

// EstimateBase evaluates the regression set for sand and clay percentages and
// organic matter percent. Inputs are converted to fractions before use.
func EstimateBase(sand, clay, om float64) (BaseEstimate, error) {
	s := sand / 100
	c := clay / 100
	o := om / 100

	t33t := -0.251*s + 0.195*c + 0.011*o + 0.006*s*o - 0.027*c*o + 0.452*s*c + 0.299
	t33 := t33t + (1.283*t33t*t33t - 0.374*t33t - 0.015)

	t1500t := -0.024*s + 0.487*c + 0.006*o + 0.005*s*o - 0.013*c*o + 0.068*s*c + 0.031
	t1500 := t1500t + (0.14*t1500t - 0.02)

	ts33t := 0.278*s + 0.034*c + 0.022*o - 0.018*s*o - 0.027*c*o - 0.584*s*c + 0.078
	ts33 := ts33t + (0.636*ts33t - 0.107)

	tsat := t33 + ts33 - 0.097*s + 0.043

	b := math.Log(1500) - math.Log(33)
	lambda := 1 / b

	if tsat <= t33 {
		return BaseEstimate{}, &ComputationError{
			Step:   "saturated_conductivity",
			Values: map[string]float64{"theta_sat": tsat, "theta_33": t33},
		}
	}
	ksat := ksatCoefficient * math.Pow(tsat-t33, 3-lambda)

	pet := -21.67*s - 27.93*c - 81.97*ts33 + 71.12*s*ts33 + 8.29*c*ts33 + 14.05*s*c + 27.16
	pe := pet + (0.02*pet*pet - 0.113*pet - 0.70)

	est := BaseEstimate{
		Theta33:         t33,
		Theta1500:       t1500,
		ThetaSat:        tsat,
		ThetaS33:        ts33,
		B:               b,
		Lambda:          lambda,
		Ksat:            ksat,
		AirEntryTension: pe,
	}
	if !allFinite(t33, t1500, tsat, ksat, pe) {
		return BaseEstimate{}, &ComputationError{
			Step: "base_regression",
			Values: map[string]float64{
				"theta_33": t33, "theta_1500": t1500, "theta_sat": tsat,
				"ksat": ksat, "air_entry_tension": pe,
			},
		}
	}
	return est, nil
}

func allFinite(vals ...float64) bool {
	for _, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
