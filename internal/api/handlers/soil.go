// Package handlers contains the HTTP handlers of the soil water API.
package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"soilwater/internal/analysis"
	"soilwater/internal/core"
	"soilwater/internal/soil"
	"soilwater/internal/types"
)

// AnalysisService is the handler's view of analysis.Service.
type AnalysisService interface {
	Analyze(ctx context.Context, req analysis.Request) (*types.AnalysisRecord, error)
	AnalyzeBatch(ctx context.Context, reqs []analysis.Request) ([]analysis.BatchItem, error)
	Get(ctx context.Context, id string) (*types.AnalysisRecord, error)
	List(ctx context.Context, params types.AnalysisListParams) (*types.ListResponse[*types.AnalysisRecord], error)
}

type SoilHandler struct {
	service   AnalysisService
	validator *core.Validator
	logger    *slog.Logger
}

func NewSoilHandler(svc AnalysisService, val *core.Validator, logger *slog.Logger) *SoilHandler {
	if logger == nil {
		logger = slog.Default()
	}
	if val == nil {
		val = core.NewValidator()
	}
	return &SoilHandler{service: svc, validator: val, logger: logger}
}

// RegisterRoutes mounts the soil endpoints; callers mount it at /v1/soil.
func (h *SoilHandler) RegisterRoutes(r chi.Router) {
	r.Post("/analyses", h.HandleAnalyze)
	r.Post("/analyses/batch", h.HandleAnalyzeBatch)
	r.Get("/analyses", h.HandleList)
	r.Get("/analyses/{id}", h.HandleGet)
	r.Get("/texture", h.HandleTexture)
}

// AnalysisRequest is the body of POST /analyses and each batch entry.
// Numeric ranges are checked by the engine so every range violation carries
// the same error code and details.
type AnalysisRequest struct {
	Sand                   *float64 `json:"sand" validate:"required"`
	Clay                   *float64 `json:"clay" validate:"required"`
	OrganicMatter          *float64 `json:"organic_matter" validate:"required"`
	BulkDensityFactor      *float64 `json:"bulk_density_factor,omitempty"`
	GravelContent          float64  `json:"gravel_content,omitempty"`
	ElectricalConductivity float64  `json:"electrical_conductivity,omitempty"`
	FieldID                string   `json:"field_id,omitempty" validate:"omitempty,max=64,printascii"`
	Label                  string   `json:"label,omitempty" validate:"max=200"`
}

func (a AnalysisRequest) toRequest() analysis.Request {
	return analysis.Request{
		Sample: soil.Sample{
			Sand:                   *a.Sand,
			Clay:                   *a.Clay,
			OrganicMatter:          *a.OrganicMatter,
			BulkDensityFactor:      a.BulkDensityFactor,
			GravelContent:          a.GravelContent,
			ElectricalConductivity: a.ElectricalConductivity,
		},
		FieldID: a.FieldID,
		Label:   a.Label,
	}
}

type BatchRequest struct {
	Samples []AnalysisRequest `json:"samples" validate:"required,dive"`
}

type BatchResponse struct {
	Items     []analysis.BatchItem `json:"items"`
	Succeeded int                  `json:"succeeded"`
	Failed    int                  `json:"failed"`
}

// TextureResponse is the body of GET /texture.
type TextureResponse struct {
	TextureClass soil.Texture      `json:"texture_class"`
	Group        soil.TextureGroup `json:"group"`
	Sand         float64           `json:"sand"`
	Clay         float64           `json:"clay"`
	Silt         float64           `json:"silt"`
}

// HandleAnalyze handles POST /v1/soil/analyses.
func (h *SoilHandler) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	var body AnalysisRequest
	if err := core.DecodeJSON(w, r, &body); err != nil {
		core.Error(w, r, err)
		return
	}
	if err := h.validator.ValidateStruct(body); err != nil {
		core.Error(w, r, err)
		return
	}

	rec, err := h.service.Analyze(r.Context(), body.toRequest())
	if err != nil {
		h.logFailure(r, "analysis failed", err)
		core.Error(w, r, err)
		return
	}
	core.Data(w, r, http.StatusCreated, rec)
}

// HandleAnalyzeBatch handles POST /v1/soil/analyses/batch. Entry failures are
// reported per item with status 200.
func (h *SoilHandler) HandleAnalyzeBatch(w http.ResponseWriter, r *http.Request) {
	var body BatchRequest
	if err := core.DecodeJSON(w, r, &body); err != nil {
		core.Error(w, r, err)
		return
	}
	if err := h.validator.ValidateStruct(body); err != nil {
		core.Error(w, r, err)
		return
	}

	reqs := make([]analysis.Request, len(body.Samples))
	for i, s := range body.Samples {
		reqs[i] = s.toRequest()
	}

	items, err := h.service.AnalyzeBatch(r.Context(), reqs)
	if err != nil {
		h.logFailure(r, "batch analysis failed", err)
		core.Error(w, r, err)
		return
	}

	resp := BatchResponse{Items: items}
	for _, it := range items {
		if it.Error != nil {
			resp.Failed++
		} else {
			resp.Succeeded++
		}
	}
	core.Data(w, r, http.StatusOK, resp)
}

// HandleGet handles GET /v1/soil/analyses/{id}.
func (h *SoilHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	rec, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		core.Error(w, r, err)
		return
	}
	core.Data(w, r, http.StatusOK, rec)
}

// HandleList handles GET /v1/soil/analyses?field_id=&since=&limit=&cursor=.
func (h *SoilHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	params := types.AnalysisListParams{
		FieldID: q.Get("field_id"),
		Cursor:  q.Get("cursor"),
	}

	if s := q.Get("limit"); s != "" {
		limit, err := strconv.Atoi(s)
		if err != nil || limit < 1 {
			core.Error(w, r, types.NewAppError(types.ErrCodeValidationInvalidBody, "limit must be a positive integer", nil))
			return
		}
		params.Limit = limit
	}
	if s := q.Get("since"); s != "" {
		since, err := time.Parse(time.RFC3339, s)
		if err != nil {
			core.Error(w, r, types.NewAppError(types.ErrCodeValidationInvalidBody, "since must be a valid RFC3339 timestamp", nil))
			return
		}
		params.Since = since.UTC()
	}

	resp, err := h.service.List(r.Context(), params)
	if err != nil {
		core.Error(w, r, err)
		return
	}
	core.JSON(w, r, http.StatusOK, resp)
}

// HandleTexture handles GET /v1/soil/texture?sand=&clay=. It classifies
// without consuming quota.
func (h *SoilHandler) HandleTexture(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	sand, err := floatParam(q.Get("sand"), soil.ParamSand)
	if err != nil {
		core.Error(w, r, err)
		return
	}
	clay, err := floatParam(q.Get("clay"), soil.ParamClay)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	v, err := soil.Validate(soil.Sample{Sand: sand, Clay: clay})
	if err != nil {
		core.Error(w, r, analysis.MapEngineError(err))
		return
	}

	tex := soil.Classify(sand, clay)
	group, _ := soil.GroupOf(tex)
	core.Data(w, r, http.StatusOK, TextureResponse{
		TextureClass: tex,
		Group:        group,
		Sand:         sand,
		Clay:         clay,
		Silt:         v.Silt(),
	})
}

func floatParam(raw, name string) (float64, error) {
	if raw == "" {
		return 0, types.NewAppErrorWithDetails(types.ErrCodeValidationMissingField,
			name+" query parameter is required", nil, map[string]any{"parameter": name})
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, types.NewAppErrorWithDetails(types.ErrCodeValidationInvalidBody,
			name+" must be a number", err, map[string]any{"parameter": name})
	}
	return v, nil
}

// logFailure logs server-side failures; client errors are left to the
// request log.
func (h *SoilHandler) logFailure(r *http.Request, msg string, err error) {
	var appErr *types.AppError
	if errors.As(err, &appErr) && appErr.HTTPStatus() < http.StatusInternalServerError {
		return
	}
	if l := types.LoggerFromContext(r.Context()); l != nil {
		l.Error(msg, "error", err.Error())
		return
	}
	h.logger.Error(msg, "error", err.Error(), "request_id", types.GetRequestID(r.Context()))
}
