package core

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"soilwater/internal/types"
)

// Validator wraps go-playground/validator, reporting fields by their JSON
// names.
type Validator struct {
	validate *validator.Validate
}

func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	return &Validator{validate: v}
}

// ValidationError describes one failed rule.
type ValidationError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
	Param string `json:"param,omitempty"`
}

// ValidateStruct returns nil or a validation AppError listing every failed
// field. A missing required field uses ErrCodeValidationMissingField; any
// other failure uses ErrCodeValidationInvalidBody.
func (v *Validator) ValidateStruct(s any) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return types.NewAppError(types.ErrCodeValidationInvalidBody, "request could not be validated", err)
	}

	fields := make([]ValidationError, 0, len(verrs))
	code := types.ErrCodeValidationInvalidBody
	for i, fe := range verrs {
		fields = append(fields, ValidationError{
			Field: fieldPath(fe.Namespace()),
			Rule:  fe.Tag(),
			Param: fe.Param(),
		})
		if i == 0 && fe.Tag() == "required" {
			code = types.ErrCodeValidationMissingField
		}
	}

	return types.NewAppErrorWithDetails(code, "request validation failed: "+fields[0].Field+" failed "+fields[0].Rule, nil,
		map[string]any{"fields": fields})
}

// fieldPath drops the root struct name from a validator namespace.
func fieldPath(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}
