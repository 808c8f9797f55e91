package types

// PlanTier identifies the billing plan for an organization.
type PlanTier string

const (
	PlanFree       PlanTier = "free"
	PlanStarter    PlanTier = "starter"
	PlanPro        PlanTier = "pro"
	PlanBusiness   PlanTier = "business"
	PlanEnterprise PlanTier = "enterprise"
)

// IsValid reports whether p is a known tier.
func (p PlanTier) IsValid() bool {
	switch p {
	case PlanFree, PlanStarter, PlanPro, PlanBusiness, PlanEnterprise:
		return true
	}
	return false
}

// AnalysisStatus is the outcome recorded for a history entry.
type AnalysisStatus string

const (
	AnalysisSucceeded AnalysisStatus = "succeeded"
	AnalysisRejected  AnalysisStatus = "rejected"
	AnalysisFailed    AnalysisStatus = "failed"
)

// EventBackend selects the analysis event transport.
type EventBackend string

const (
	EventBackendNone EventBackend = "none"
	EventBackendMQTT EventBackend = "mqtt"
	EventBackendSQS  EventBackend = "sqs"
)

// MetricsBackend selects where request and analysis metrics go.
type MetricsBackend string

const (
	MetricsBackendNone       MetricsBackend = "none"
	MetricsBackendCloudWatch MetricsBackend = "cloudwatch"
	MetricsBackendPrometheus MetricsBackend = "prometheus"
)
