// Package soil estimates soil water characteristics from texture and organic
// matter with the Saxton & Rawls (2006) pedotransfer functions, calibrated by
// organic-matter and bulk-density tables and optionally corrected for gravel
// and salinity.
//
// Every function in the package is pure. There is no package state that is
// written after initialization, so all entry points are safe for concurrent use.
package soil

// Result is the soil water characteristic of one sample. Water contents are
// percent by volume and conductivity is mm/hr. Pointer fields are optional:
// Analyze fills all of them and callers may drop the ones they do not expose.
type Result struct {
	TextureClass          Texture `json:"texture_class"`
	Silt                  float64 `json:"silt"`
	FieldCapacity         float64 `json:"field_capacity"`
	WiltingPoint          float64 `json:"wilting_point"`
	Saturation            float64 `json:"saturation"`
	PlantAvailableWater   float64 `json:"plant_available_water"`
	SaturatedConductivity float64 `json:"saturated_conductivity"`

	DrainageClass    *DrainageClass      `json:"drainage_class,omitempty"`
	AirEntryTension  *float64            `json:"air_entry_tension,omitempty"`
	Lambda           *float64            `json:"lambda,omitempty"`
	BulkDensity      *float64            `json:"bulk_density,omitempty"`
	CompactionRisk   *RiskLevel          `json:"compaction_risk,omitempty"`
	ErosionRisk      *RiskLevel          `json:"erosion_risk,omitempty"`
	SoilQualityIndex *float64            `json:"soil_quality_index,omitempty"`
	Confidence       *Confidence         `json:"confidence,omitempty"`
	Gravel           *GravelCorrection   `json:"gravel,omitempty"`
	Salinity         *SalinityCorrection `json:"salinity,omitempty"`
	Regression       *BaseEstimate       `json:"regression,omitempty"`
}

// Option sets one of the optional inputs of AnalyzeSoil.
type Option func(*Sample)

// WithBulkDensityFactor sets the ratio of actual to reference bulk density.
func WithBulkDensityFactor(f float64) Option {
	return func(s *Sample) { s.BulkDensityFactor = &f }
}

// WithGravel sets the rock fragment content, percent by volume.
func WithGravel(pct float64) Option {
	return func(s *Sample) { s.GravelContent = pct }
}

// WithSalinity sets the saturation-extract electrical conductivity, dS/m.
func WithSalinity(ec float64) Option {
	return func(s *Sample) { s.ElectricalConductivity = ec }
}

// AnalyzeSoil is the positional form of Analyze. Density defaults to 1.0,
// gravel and salinity to zero.
func AnalyzeSoil(sand, clay, om float64, opts ...Option) (*Result, error) {
	s := Sample{
		Sand:          sand,
		Clay:          clay,
		OrganicMatter: om,
	}
	for _, opt := range opts {
		opt(&s)
	}
	return Analyze(s)
}

// Analyze validates s and computes its full result. It returns a *RangeError
// for invalid input and a *ComputationError when an intermediate value
// degenerates.
func Analyze(s Sample) (*Result, error) {
	v, err := Validate(s)
	if err != nil {
		return nil, err
	}
	return AnalyzeValidated(v)
}

// AnalyzeValidated runs the pipeline on an already validated sample:
// classify, regress, organic-matter then density calibration, derived
// metrics, then gravel and salinity corrections when their inputs are set.
func AnalyzeValidated(v ValidatedSample) (*Result, error) {
	tex := Classify(v.sand, v.clay)

	base, err := EstimateBase(v.sand, v.clay, v.om)
	if err != nil {
		return nil, err
	}

	fc := calibrate(base.Theta33*100, v, tex, PropertyFieldCapacity)
	wp := calibrate(base.Theta1500*100, v, tex, PropertyWiltingPoint)
	sat := calibrate(base.ThetaSat*100, v, tex, PropertySaturation)
	ksat := calibrate(base.Ksat, v, tex, PropertyConductivity)
	paw := fc - wp

	if paw < 0 || ksat < 0 || !allFinite(fc, wp, sat, ksat) {
		return nil, &ComputationError{
			Step: "calibration",
			Values: map[string]float64{
				"field_capacity": fc, "wilting_point": wp,
				"saturation": sat, "ksat": ksat,
			},
		}
	}

	normalDensity := (1 - base.ThetaSat) * particleDensity
	bulkDensity := normalDensity * v.density

	drainage := DrainageFor(ksat)
	compaction := CompactionRiskFor(CompactionIndex(v.density, fc))
	erosion := ErosionRiskFor(ErosionIndex(v.sand, v.clay, v.om, ksat))
	quality := QualityIndex(paw, ksat)
	conf := confidenceFor(fc, wp, sat, base.AirEntryTension)

	r := &Result{
		TextureClass:          tex,
		Silt:                  v.Silt(),
		FieldCapacity:         fc,
		WiltingPoint:          wp,
		Saturation:            sat,
		PlantAvailableWater:   paw,
		SaturatedConductivity: ksat,
		DrainageClass:         &drainage,
		AirEntryTension:       ptr(base.AirEntryTension),
		Lambda:                ptr(base.Lambda),
		BulkDensity:           ptr(bulkDensity),
		CompactionRisk:        &compaction,
		ErosionRisk:           &erosion,
		SoilQualityIndex:      ptr(quality),
		Confidence:            &conf,
		Regression:            ptr(base),
	}

	if v.gravel > 0 {
		g, err := CorrectForGravel(v.gravel, bulkDensity, paw, ksat)
		if err != nil {
			return nil, err
		}
		r.Gravel = &g
	}

	if v.ec > 0 {
		sc, err := CorrectForSalinity(v.ec, fc, wp)
		if err != nil {
			return nil, err
		}
		if !allFinite(sc.EffectiveFieldCapacity, sc.EffectivePlantAvailableWater) || sc.EffectivePlantAvailableWater < 0 {
			return nil, &ComputationError{
				Step: "osmotic_adjustment",
				Values: map[string]float64{
					"osmotic_potential":        sc.OsmoticPotential,
					"effective_field_capacity": sc.EffectiveFieldCapacity,
				},
			}
		}
		r.Salinity = &sc
	}

	return r, nil
}

// calibrate applies the organic matter table and then the density table.
func calibrate(value float64, v ValidatedSample, tex Texture, p Property) float64 {
	value = AdjustForOrganicMatter(value, v.om, tex, p)
	return AdjustForDensity(value, v.density, tex, p)
}

func ptr[T any](v T) *T {
	return &v
}
