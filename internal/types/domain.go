package types

import (
	"time"

	"soilwater/internal/soil"
)

// PlanLimits is the resource and feature envelope of a billing plan.
// A zero MaxAnalysesDaily means unlimited.
type PlanLimits struct {
	MaxAnalysesDaily int  `json:"analyses_daily_max"`
	MaxBatchSize     int  `json:"batch_size_max"`
	AdvancedMetrics  bool `json:"advanced_metrics"`
	GravelCorrection bool `json:"gravel_correction"`
	ConfidenceBounds bool `json:"confidence_intervals"`
	SalinityEffects  bool `json:"salinity_effects"`
	RegressionDetail bool `json:"regression_detail"`
}

// APIKey is a stored API credential. KeyHash is the bcrypt hash of the
// secret and never leaves the server.
type APIKey struct {
	ID             string     `json:"id"`
	OrganizationID string     `json:"organization_id"`
	KeyHash        string     `json:"-"`
	KeyPrefix      string     `json:"key_prefix"`
	Plan           PlanTier   `json:"plan"`
	TestMode       bool       `json:"test_mode"`
	Name           string     `json:"name"`
	LastUsedAt     *time.Time `json:"last_used_at,omitempty"`
	ExpiresAt      *time.Time `json:"expires_at,omitempty"`
	RevokedAt      *time.Time `json:"revoked_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// AnalysisRecord is one entry of an organization's analysis history. Result
// is the plan-filtered result returned to the caller; it is nil when the
// engine rejected the sample.
type AnalysisRecord struct {
	ID             string         `json:"id"`
	OrganizationID string         `json:"organization_id"`
	FieldID        string         `json:"field_id,omitempty"`
	Label          string         `json:"label,omitempty"`
	Input          soil.Sample    `json:"input"`
	Result         *soil.Result   `json:"result,omitempty"`
	Status         AnalysisStatus `json:"status"`
	ErrorCode      ErrorCode      `json:"error_code,omitempty"`
	TestMode       bool           `json:"test_mode"`
	CreatedAt      time.Time      `json:"created_at"`
}

// SoilProfile is the per-field soil record consumed by irrigation
// controllers. Water contents are volumetric fractions.
type SoilProfile struct {
	Texture     soil.Texture `json:"texture"`
	ThetaFC     float64      `json:"theta_fc"`
	ThetaWP     float64      `json:"theta_wp"`
	ThetaSat    float64      `json:"theta_sat"`
	KsatMMPerHr float64      `json:"ksat_mm_h"`
}

// AnalysisEvent is published after a successful, non-test analysis so that
// downstream consumers can refresh the field's soil profile.
type AnalysisEvent struct {
	EventID             string      `json:"event_id"`
	AnalysisID          string      `json:"analysis_id"`
	OrganizationID      string      `json:"organization_id"`
	FieldID             string      `json:"field_id,omitempty"`
	Profile             SoilProfile `json:"profile"`
	PlantAvailableWater float64     `json:"plant_available_water"`
	SoilQualityIndex    *float64    `json:"soil_quality_index,omitempty"`
	OccurredAt          time.Time   `json:"occurred_at"`
}
