package soil

import "math"

// Calibration bounds of the Saxton-Rawls regression set.
const (
	MinSand = 0.0
	MaxSand = 100.0

	MinClay = 0.0
	// MaxClay is exclusive: clay at 60% is outside the calibrated data.
	MaxClay = 60.0

	MinOrganicMatter = 0.0
	MaxOrganicMatter = 8.0

	MinBulkDensityFactor     = 0.9
	MaxBulkDensityFactor     = 1.8
	DefaultBulkDensityFactor = 1.0

	MinGravelContent = 0.0
	MaxGravelContent = 80.0

	MinElectricalConductivity = 0.0
	MaxElectricalConductivity = 20.0
)

// Parameter names reported in RangeError.Parameter.
const (
	ParamSand                   = "sand"
	ParamClay                   = "clay"
	ParamSandClaySum            = "sand+clay"
	ParamOrganicMatter          = "organic_matter"
	ParamBulkDensityFactor      = "bulk_density_factor"
	ParamGravelContent          = "gravel_content"
	ParamElectricalConductivity = "electrical_conductivity"
)

// Sample is the caller-supplied description of a soil. Sand, clay, organic
// matter and gravel are percentages; electrical conductivity is in dS/m.
// A nil BulkDensityFactor resolves to 1.0; a supplied value is checked as given.
type Sample struct {
	Sand                   float64  `json:"sand" yaml:"sand"`
	Clay                   float64  `json:"clay" yaml:"clay"`
	OrganicMatter          float64  `json:"organic_matter" yaml:"organic_matter"`
	BulkDensityFactor      *float64 `json:"bulk_density_factor,omitempty" yaml:"bulk_density_factor,omitempty"`
	GravelContent          float64  `json:"gravel_content,omitempty" yaml:"gravel_content,omitempty"`
	ElectricalConductivity float64  `json:"electrical_conductivity,omitempty" yaml:"electrical_conductivity,omitempty"`
}

// ValidatedSample is a Sample that passed Validate. Its fields cannot be set
// from outside the package, so holding one proves the invariants hold.
type ValidatedSample struct {
	sand    float64
	clay    float64
	om      float64
	density float64
	gravel  float64
	ec      float64
}

func (v ValidatedSample) Sand() float64                   { return v.sand }
func (v ValidatedSample) Clay() float64                   { return v.clay }
func (v ValidatedSample) Silt() float64                   { return 100 - v.sand - v.clay }
func (v ValidatedSample) OrganicMatter() float64          { return v.om }
func (v ValidatedSample) BulkDensityFactor() float64      { return v.density }
func (v ValidatedSample) GravelContent() float64          { return v.gravel }
func (v ValidatedSample) ElectricalConductivity() float64 { return v.ec }

// Validate checks every input against its calibrated domain and stops at the
// first violation. The order is fixed: sand, clay, sand+clay, organic matter,
// density factor, gravel, electrical conductivity.
func Validate(s Sample) (ValidatedSample, error) {
	density := DefaultBulkDensityFactor
	if s.BulkDensityFactor != nil {
		density = *s.BulkDensityFactor
	}

	if err := checkRange(ParamSand, s.Sand, MinSand, MaxSand, false); err != nil {
		return ValidatedSample{}, err
	}
	if err := checkRange(ParamClay, s.Clay, MinClay, MaxClay, true); err != nil {
		return ValidatedSample{}, err
	}
	if err := checkRange(ParamSandClaySum, s.Sand+s.Clay, 0, 100, false); err != nil {
		return ValidatedSample{}, err
	}
	if err := checkRange(ParamOrganicMatter, s.OrganicMatter, MinOrganicMatter, MaxOrganicMatter, false); err != nil {
		return ValidatedSample{}, err
	}
	if err := checkRange(ParamBulkDensityFactor, density, MinBulkDensityFactor, MaxBulkDensityFactor, false); err != nil {
		return ValidatedSample{}, err
	}
	if err := checkRange(ParamGravelContent, s.GravelContent, MinGravelContent, MaxGravelContent, false); err != nil {
		return ValidatedSample{}, err
	}
	if err := checkRange(ParamElectricalConductivity, s.ElectricalConductivity, MinElectricalConductivity, MaxElectricalConductivity, false); err != nil {
		return ValidatedSample{}, err
	}

	return ValidatedSample{
		sand:    s.Sand,
		clay:    s.Clay,
		om:      s.OrganicMatter,
		density: density,
		gravel:  s.GravelContent,
		ec:      s.ElectricalConductivity,
	}, nil
}

// checkRange rejects NaN and infinities along with out-of-bounds values.
func checkRange(name string, v, lo, hi float64, hiExclusive bool) error {
	ok := !math.IsNaN(v) && !math.IsInf(v, 0) && v >= lo && v <= hi
	if ok && hiExclusive && v == hi {
		ok = false
	}
	if ok {
		return nil
	}
	return &RangeError{
		Parameter:    name,
		Value:        v,
		Min:          lo,
		Max:          hi,
		MaxExclusive: hiExclusive,
	}
}
