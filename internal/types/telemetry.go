package types

// Metric names and dimensions shared by every metrics backend.
const (
	MetricAPILatency       = "APILatency"
	MetricAPIRequests      = "APIRequests"
	MetricAnalysisOutcome  = "AnalysisOutcome"
	MetricEventPublishFail = "EventPublishFailure"
	MetricHistoryWriteFail = "HistoryWriteFailure"

	DimEndpoint = "Endpoint"
	DimStatus   = "Status"
	DimOutcome  = "Outcome"
	DimTexture  = "Texture"
	DimPlan     = "Plan"

	MetricNamespace = "SoilWater"
)
