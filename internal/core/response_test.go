package core

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"soilwater/internal/types"
)

func TestData_WrapsEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	Data(rec, req, http.StatusCreated, map[string]int{"n": 1})

	if rec.Code != http.StatusCreated {
		t.Errorf("status = %d", rec.Code)
	}
	if got := rec.Header().Get("Content-Type"); got != "application/json" {
		t.Errorf("content type = %q", got)
	}
	if got := strings.TrimSpace(rec.Body.String()); got != `{"data":{"n":1}}` {
		t.Errorf("body = %s", got)
	}
}

func TestJSON_MarshalFailure(t *testing.T) {
	rec := httptest.NewRecorder()
	JSON(rec, httptest.NewRequest(http.MethodGet, "/", nil), http.StatusOK, map[string]any{"bad": make(chan int)})

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := decodeError(t, rec).Code; got != string(types.ErrCodeInternalUnexpected) {
		t.Errorf("code = %q", got)
	}
}

func TestError_MapsAppErrorStatus(t *testing.T) {
	tests := []struct {
		code   types.ErrorCode
		status int
	}{
		{types.ErrCodeValidationSoilRange, http.StatusBadRequest},
		{types.ErrCodeComputationDegenerate, http.StatusUnprocessableEntity},
		{types.ErrCodePermissionPlanFeature, http.StatusForbidden},
		{types.ErrCodeLimitAnalyses, http.StatusTooManyRequests},
		{types.ErrCodeNotFoundAnalysis, http.StatusNotFound},
		{types.ErrCodeInternalDB, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req = req.WithContext(types.WithRequestID(req.Context(), "req_1"))
			rec := httptest.NewRecorder()

			appErr := types.NewAppErrorWithDetails(tt.code, "boom", errors.New("internal"), map[string]any{"k": "v"})
			Error(rec, req, appErr)

			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d", rec.Code, tt.status)
			}
			detail := decodeError(t, rec)
			if detail.Code != string(tt.code) || detail.RequestID != "req_1" || detail.Details["k"] != "v" {
				t.Errorf("unexpected detail: %+v", detail)
			}
		})
	}
}

func TestError_GenericErrorHidesMessage(t *testing.T) {
	rec := httptest.NewRecorder()
	Error(rec, httptest.NewRequest(http.MethodGet, "/", nil), errors.New("pq: password authentication failed"))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "password") {
		t.Error("internal error message leaked")
	}
}

func TestDecodeJSON(t *testing.T) {
	type payload struct {
		Sand float64 `json:"sand"`
	}

	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{name: "valid", body: `{"sand": 40}`},
		{name: "empty", body: ``, wantErr: "must not be empty"},
		{name: "syntax", body: `{"sand": }`, wantErr: "malformed JSON"},
		{name: "type mismatch", body: `{"sand": "lots"}`, wantErr: "invalid value"},
		{name: "unknown field", body: `{"sand": 40, "silt": 20}`, wantErr: "unknown field"},
		{name: "trailing value", body: `{"sand": 40} {"sand": 1}`, wantErr: "single JSON object"},
		{name: "too large", body: `{"sand": 1` + strings.Repeat(" ", maxRequestBodySize) + `}`, wantErr: "1MB"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			var dst payload
			err := DecodeJSON(httptest.NewRecorder(), req, &dst)

			if tt.wantErr == "" {
				if err != nil || dst.Sand != 40 {
					t.Fatalf("DecodeJSON() = %v, sand %v", err, dst.Sand)
				}
				return
			}
			var appErr *types.AppError
			if !errors.As(err, &appErr) {
				t.Fatalf("expected AppError, got %v", err)
			}
			if appErr.Code != types.ErrCodeValidationInvalidBody {
				t.Errorf("code = %s", appErr.Code)
			}
			if !strings.Contains(appErr.Message, tt.wantErr) {
				t.Errorf("message %q does not contain %q", appErr.Message, tt.wantErr)
			}
		})
	}
}
