package types

import (
	"fmt"
	"net/http"
	"strings"
)

// ErrorCode is a typed string for categorizing application errors.
type ErrorCode string

// Error code constants. Handlers use these instead of string literals.
const (
	// Validation (400)
	ErrCodeValidationSoilRange     ErrorCode = "validation_soil_out_of_range"
	ErrCodeValidationMissingField  ErrorCode = "validation_missing_required_field"
	ErrCodeValidationInvalidBody   ErrorCode = "validation_invalid_body"
	ErrCodeValidationBatchSize     ErrorCode = "validation_batch_size_exceeded"
	ErrCodeValidationInvalidCursor ErrorCode = "validation_invalid_cursor"

	// Computation (422)
	ErrCodeComputationDegenerate ErrorCode = "computation_degenerate_result"

	// Auth (401)
	ErrCodeAuthTokenMissing ErrorCode = "auth_token_missing"
	ErrCodeAuthTokenInvalid ErrorCode = "auth_token_invalid"
	ErrCodeAuthTokenRevoked ErrorCode = "auth_token_revoked"

	// Permission (403)
	ErrCodePermissionPlanFeature ErrorCode = "permission_plan_feature"
	ErrCodePermissionOrgMismatch ErrorCode = "permission_organization_mismatch"

	// Limits (429)
	ErrCodeLimitAnalyses ErrorCode = "limit_analyses_exceeded"
	ErrCodeRateLimit     ErrorCode = "rate_limit_exceeded"

	// Not Found (404)
	ErrCodeNotFoundAnalysis ErrorCode = "not_found_analysis"
	ErrCodeNotFoundAPIKey   ErrorCode = "not_found_api_key"

	// Internal/Upstream (500/502)
	ErrCodeInternalDB          ErrorCode = "internal_database_error"
	ErrCodeInternalUnexpected  ErrorCode = "internal_unexpected_error"
	ErrCodeUpstreamEventBus    ErrorCode = "upstream_event_bus_unavailable"
	ErrCodeUpstreamTimeseries  ErrorCode = "upstream_timeseries_unavailable"
	ErrCodeUpstreamUnavailable ErrorCode = "upstream_unavailable"
)

// HTTPStatus maps an ErrorCode to its HTTP status code.
// Unrecognized codes map to 500.
func (c ErrorCode) HTTPStatus() int {
	s := string(c)
	switch {
	case strings.HasPrefix(s, "validation_"):
		return http.StatusBadRequest
	case strings.HasPrefix(s, "computation_"):
		return http.StatusUnprocessableEntity
	case strings.HasPrefix(s, "auth_"):
		return http.StatusUnauthorized
	case strings.HasPrefix(s, "permission_"):
		return http.StatusForbidden
	case strings.HasPrefix(s, "limit_"), s == string(ErrCodeRateLimit):
		return http.StatusTooManyRequests
	case strings.HasPrefix(s, "not_found_"):
		return http.StatusNotFound
	case strings.HasPrefix(s, "upstream_"):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// AppError is the application error type shared by services and handlers.
// It carries a stable code for clients, a human message, an optional cause
// and structured details.
type AppError struct {
	Code    ErrorCode      `json:"code"`
	Message string         `json:"message"`
	Err     error          `json:"-"`
	Details map[string]any `json:"details,omitempty"`
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Is/errors.As support.
func (e *AppError) Unwrap() error {
	return e.Err
}

// HTTPStatus returns the HTTP status code for this error's code.
func (e *AppError) HTTPStatus() int {
	return e.Code.HTTPStatus()
}

// WithDetails returns a copy of the error with details merged in. The
// receiver is not modified.
func (e *AppError) WithDetails(details map[string]any) *AppError {
	merged := make(map[string]any, len(e.Details)+len(details))
	for k, v := range e.Details {
		merged[k] = v
	}
	for k, v := range details {
		merged[k] = v
	}
	return &AppError{
		Code:    e.Code,
		Message: e.Message,
		Err:     e.Err,
		Details: merged,
	}
}

// NewAppError creates an AppError with an optional underlying error.
func NewAppError(code ErrorCode, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// NewAppErrorWithDetails creates an AppError carrying structured details.
func NewAppErrorWithDetails(code ErrorCode, message string, err error, details map[string]any) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
		Details: details,
	}
}
