package analysis

import (
	"errors"
	"math"
	"strconv"

	"soilwater/internal/soil"
	"soilwater/internal/types"
)

// MapEngineError translates an engine error into an AppError. Range
// violations become validation errors carrying the offending parameter and
// its bounds; degenerate computations become 422s carrying the step and the
// intermediate values. Anything else is internal.
func MapEngineError(err error) error {
	if err == nil {
		return nil
	}

	var rangeErr *soil.RangeError
	if errors.As(err, &rangeErr) {
		return types.NewAppErrorWithDetails(
			types.ErrCodeValidationSoilRange,
			rangeErr.Error(),
			err,
			map[string]any{
				"parameter": rangeErr.Parameter,
				"value":     jsonNumber(rangeErr.Value),
				"min":       rangeErr.Min,
				"max":       rangeErr.Max,
				"range":     rangeErr.Range(),
			},
		)
	}

	var compErr *soil.ComputationError
	if errors.As(err, &compErr) {
		values := make(map[string]any, len(compErr.Values))
		for k, v := range compErr.Values {
			values[k] = jsonNumber(v)
		}
		return types.NewAppErrorWithDetails(
			types.ErrCodeComputationDegenerate,
			"soil characteristics could not be computed for this sample",
			err,
			map[string]any{
				"step":   compErr.Step,
				"values": values,
			},
		)
	}

	return types.NewAppError(types.ErrCodeInternalUnexpected, "analysis failed", err)
}

// jsonNumber keeps NaN and infinities out of JSON encoding, which rejects
// them.
func jsonNumber(v float64) any {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return strconv.FormatFloat(v, 'g', -1, 64)
	}
	return v
}

func asAppError(err error) *types.AppError {
	var appErr *types.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return types.NewAppError(types.ErrCodeInternalUnexpected, "analysis failed", err)
}
