package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"soilwater/internal/soil"
)

// Exit codes for soilctl.
const (
	ExitSuccess = 0
	ExitFailure = 1 // the engine rejected a sample
	ExitUsage   = 2 // bad flags, arguments or input files
)

// ExitError carries the process exit code of a failed command.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from err. Errors that are not
// ExitErrors come from cobra's flag and argument parsing and map to
// ExitUsage.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitUsage
}

// engineError wraps an engine rejection so it exits with ExitFailure.
func engineError(err error) *ExitError {
	var rangeErr *soil.RangeError
	if errors.As(err, &rangeErr) {
		return WrapExitError(ExitFailure, "invalid sample", err)
	}
	return WrapExitError(ExitFailure, "analysis failed", err)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

const reportLabelWidth = 26

func line(w io.Writer, label, format string, args ...any) {
	fmt.Fprintf(w, "%-*s%s\n", reportLabelWidth, label+":", fmt.Sprintf(format, args...))
}

// writeReport prints r as an aligned plain-text report.
func writeReport(w io.Writer, s soil.Sample, r *soil.Result) {
	line(w, "Texture", "%s", r.TextureClass)
	line(w, "Sand / silt / clay", "%.1f / %.1f / %.1f %%", s.Sand, r.Silt, s.Clay)
	line(w, "Organic matter", "%.1f %%", s.OrganicMatter)
	fmt.Fprintln(w)
	line(w, "Field capacity", "%.1f %%vol", r.FieldCapacity)
	line(w, "Wilting point", "%.1f %%vol", r.WiltingPoint)
	line(w, "Saturation", "%.1f %%vol", r.Saturation)
	line(w, "Plant available water", "%.1f %%vol", r.PlantAvailableWater)
	line(w, "Saturated conductivity", "%.2f mm/hr", r.SaturatedConductivity)

	if r.DrainageClass != nil {
		fmt.Fprintln(w)
		line(w, "Drainage", "%s", *r.DrainageClass)
	}
	if r.BulkDensity != nil {
		line(w, "Bulk density", "%.2f g/cm3", *r.BulkDensity)
	}
	if r.AirEntryTension != nil {
		line(w, "Air entry tension", "%.1f kPa", *r.AirEntryTension)
	}
	if r.CompactionRisk != nil {
		line(w, "Compaction risk", "%s", *r.CompactionRisk)
	}
	if r.ErosionRisk != nil {
		line(w, "Erosion risk", "%s", *r.ErosionRisk)
	}
	if r.SoilQualityIndex != nil {
		line(w, "Soil quality index", "%.1f / 10", *r.SoilQualityIndex)
	}

	if g := r.Gravel; g != nil {
		fmt.Fprintln(w)
		line(w, "Gravel weight fraction", "%.3f", g.WeightFraction)
		line(w, "Whole-soil bulk density", "%.2f g/cm3", g.BulkDensity)
		line(w, "Whole-soil PAW", "%.1f %%vol", g.PlantAvailableWater)
		line(w, "Whole-soil conductivity", "%.2f mm/hr", g.SaturatedConductivity)
	}
	if sc := r.Salinity; sc != nil {
		fmt.Fprintln(w)
		line(w, "Osmotic potential", "%.1f kPa", sc.OsmoticPotential)
		line(w, "Effective field capacity", "%.1f %%vol", sc.EffectiveFieldCapacity)
		line(w, "Effective PAW", "%.1f %%vol", sc.EffectivePlantAvailableWater)
	}
}
