package telemetry

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"soilwater/internal/types"
)

// PrometheusCollector exposes the same metrics as CloudWatchCollector for
// scraping.
type PrometheusCollector struct {
	registry *prometheus.Registry
	latency  *prometheus.HistogramVec
	requests *prometheus.CounterVec
	analyses *prometheus.CounterVec
	failures *prometheus.CounterVec
}

func NewPrometheusCollector() *PrometheusCollector {
	reg := prometheus.NewRegistry()
	c := &PrometheusCollector{
		registry: reg,
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "soilwater",
			Name:      "api_latency_seconds",
			Help:      "API request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "endpoint", "status"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "soilwater",
			Name:      "api_requests_total",
			Help:      "API requests by endpoint and status.",
		}, []string{"method", "endpoint", "status"}),
		analyses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "soilwater",
			Name:      "analyses_total",
			Help:      "Soil analyses by outcome and plan.",
		}, []string{"outcome", "plan"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "soilwater",
			Name:      "failures_total",
			Help:      "Non-fatal side-effect failures.",
		}, []string{"metric"}),
	}
	reg.MustRegister(c.latency, c.requests, c.analyses, c.failures)
	return c
}

func (c *PrometheusCollector) RecordRequest(method, endpoint, status string, duration time.Duration) {
	c.latency.WithLabelValues(method, endpoint, status).Observe(duration.Seconds())
	c.requests.WithLabelValues(method, endpoint, status).Inc()
}

func (c *PrometheusCollector) RecordAnalysis(_ context.Context, outcome types.AnalysisStatus, plan types.PlanTier) {
	c.analyses.WithLabelValues(string(outcome), string(plan)).Inc()
}

func (c *PrometheusCollector) RecordFailure(_ context.Context, metric string) {
	c.failures.WithLabelValues(metric).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (c *PrometheusCollector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
