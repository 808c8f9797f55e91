package soil

// Interval is a regression estimate with its published fit statistics.
type Interval struct {
	RSquared float64 `json:"r_squared"`
	StdError float64 `json:"std_error"`
	Lower    float64 `json:"lower"`
	Upper    float64 `json:"upper"`
}

// Confidence groups the intervals reported alongside a result.
type Confidence struct {
	FieldCapacity   Interval `json:"field_capacity"`
	WiltingPoint    Interval `json:"wilting_point"`
	Saturation      Interval `json:"saturation"`
	AirEntryTension Interval `json:"air_entry_tension"`
}

// Saxton & Rawls (2006) validation statistics. Standard errors for water
// contents are in percent to match result units.
var (
	fitFieldCapacity   = fit{r2: 0.63, se: 5}
	fitWiltingPoint    = fit{r2: 0.86, se: 2}
	fitSaturation      = fit{r2: 0.36, se: 6}
	fitAirEntryTension = fit{r2: 0.78, se: 2.9}
)

type fit struct {
	r2 float64
	se float64
}

func (f fit) around(v float64) Interval {
	return Interval{
		RSquared: f.r2,
		StdError: f.se,
		Lower:    v - f.se,
		Upper:    v + f.se,
	}
}

func confidenceFor(fc, wp, sat, airEntry float64) Confidence {
	return Confidence{
		FieldCapacity:   fitFieldCapacity.around(fc),
		WiltingPoint:    fitWiltingPoint.around(wp),
		Saturation:      fitSaturation.around(sat),
		AirEntryTension: fitAirEntryTension.around(airEntry),
	}
}
