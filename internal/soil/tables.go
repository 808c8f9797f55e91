package soil

// Property selects a column of the calibration tables.
type Property string

const (
	PropertyFieldCapacity Property = "field_capacity"
	PropertyWiltingPoint  Property = "wilting_point"
	PropertySaturation    Property = "saturation"
	PropertyConductivity  Property = "conductivity"
)

type curve [4]float64

var organicMatterPoints = curve{0.5, 2.5, 5.0, 7.5}

// Water-content columns are percent and replace the regression value.
// Conductivity is a multiplier on the regression Ksat.
var organicMatterTable = map[TextureGroup]map[Property]curve{
	GroupSandy: {
		PropertyFieldCapacity: {10, 13, 17, 21},
		PropertyWiltingPoint:  {4, 5.5, 7.5, 9.5},
		PropertySaturation:    {40, 43, 47, 51},
		PropertyConductivity:  {1.15, 1.10, 1.00, 0.90},
	},
	GroupSilty: {
		PropertyFieldCapacity: {28, 32, 36, 40},
		PropertyWiltingPoint:  {10, 12, 14, 16},
		PropertySaturation:    {46, 49, 53, 57},
		PropertyConductivity:  {0.90, 1.00, 1.10, 1.20},
	},
	GroupClayey: {
		PropertyFieldCapacity: {36, 39, 42, 45},
		PropertyWiltingPoint:  {22, 24, 26, 28},
		PropertySaturation:    {50, 52, 55, 58},
		PropertyConductivity:  {0.70, 0.75, 0.85, 0.95},
	},
}

var densityPoints = curve{0.9, 1.0, 1.1, 1.2}

// Multipliers; every column is 1.0 at the reference density.
var densityTable = map[TextureGroup]map[Property]curve{
	GroupSandy: {
		PropertyFieldCapacity: {0.97, 1, 1.03, 1.06},
		PropertyWiltingPoint:  {0.98, 1, 1.02, 1.04},
		PropertySaturation:    {1.05, 1, 0.95, 0.90},
		PropertyConductivity:  {1.30, 1, 0.75, 0.55},
	},
	GroupSilty: {
		PropertyFieldCapacity: {0.96, 1, 1.04, 1.07},
		PropertyWiltingPoint:  {0.98, 1, 1.03, 1.06},
		PropertySaturation:    {1.06, 1, 0.94, 0.88},
		PropertyConductivity:  {1.40, 1, 0.65, 0.40},
	},
	GroupClayey: {
		PropertyFieldCapacity: {0.97, 1, 1.02, 1.04},
		PropertyWiltingPoint:  {0.97, 1, 1.04, 1.08},
		PropertySaturation:    {1.07, 1, 0.93, 0.86},
		PropertyConductivity:  {1.50, 1, 0.60, 0.35},
	},
}

// AdjustForOrganicMatter calibrates value against the organic matter table.
// For water contents the interpolated table value replaces value; for
// conductivity it scales it. Unknown textures or properties return value as is.
func AdjustForOrganicMatter(value, om float64, tex Texture, p Property) float64 {
	g, ok := GroupOf(tex)
	if !ok {
		return value
	}
	c, ok := organicMatterTable[g][p]
	if !ok {
		return value
	}
	v := interpolate(organicMatterPoints, c, om)
	if p == PropertyConductivity {
		return value * v
	}
	return v
}

// AdjustForDensity scales an already OM-adjusted value by the density factor
// multiplier for its texture group.
func AdjustForDensity(value, factor float64, tex Texture, p Property) float64 {
	g, ok := GroupOf(tex)
	if !ok {
		return value
	}
	c, ok := densityTable[g][p]
	if !ok {
		return value
	}
	return value * interpolate(densityPoints, c, factor)
}

// interpolate clamps x into the table's domain and interpolates linearly
// between the bracketing points.
func interpolate(xs, ys curve, x float64) float64 {
	if x <= xs[0] {
		return ys[0]
	}
	last := len(xs) - 1
	if x >= xs[last] {
		return ys[last]
	}
	for i := 0; i < last; i++ {
		if x <= xs[i+1] {
			t := (x - xs[i]) / (xs[i+1] - xs[i])
			return ys[i] + t*(ys[i+1]-ys[i])
		}
	}
	return ys[last]
}
