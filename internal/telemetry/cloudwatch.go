// Package telemetry implements the API and analysis metrics collectors for
// CloudWatch and Prometheus.
package telemetry

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"

	"soilwater/internal/types"
)

// maxDatumsPerPut is the PutMetricData per-request datum limit.
const maxDatumsPerPut = 1000

// CloudWatchClient abstracts the CloudWatch PutMetricData operation for testability.
type CloudWatchClient interface {
	PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error)
}

// CloudWatchCollector buffers datums in memory and sends them on Flush.
// Recording never blocks on the network.
type CloudWatchCollector struct {
	client    CloudWatchClient
	namespace string
	logger    types.Logger
	clock     types.Clock

	mu      sync.Mutex
	pending []cwtypes.MetricDatum
}

func NewCloudWatchCollector(client CloudWatchClient, namespace string, logger types.Logger, clock types.Clock) *CloudWatchCollector {
	if namespace == "" {
		namespace = types.MetricNamespace
	}
	if clock == nil {
		clock = types.RealClock{}
	}
	return &CloudWatchCollector{client: client, namespace: namespace, logger: logger, clock: clock}
}

// RecordRequest emits APILatency (ms) and APIRequests with Endpoint and
// Status dimensions. method is folded into the endpoint.
func (c *CloudWatchCollector) RecordRequest(method, endpoint, status string, duration time.Duration) {
	dims := []cwtypes.Dimension{
		dim(types.DimEndpoint, method+" "+endpoint),
		dim(types.DimStatus, status),
	}
	c.add(
		c.datum(types.MetricAPILatency, float64(duration.Milliseconds()), cwtypes.StandardUnitMilliseconds, dims),
		c.datum(types.MetricAPIRequests, 1, cwtypes.StandardUnitCount, dims),
	)
}

func (c *CloudWatchCollector) RecordAnalysis(_ context.Context, outcome types.AnalysisStatus, plan types.PlanTier) {
	c.add(c.datum(types.MetricAnalysisOutcome, 1, cwtypes.StandardUnitCount, []cwtypes.Dimension{
		dim(types.DimOutcome, string(outcome)),
		dim(types.DimPlan, string(plan)),
	}))
}

func (c *CloudWatchCollector) RecordFailure(_ context.Context, metric string) {
	c.add(c.datum(metric, 1, cwtypes.StandardUnitCount, nil))
}

// Flush sends all buffered datums. Datums of a failed batch are dropped and
// the error is logged.
func (c *CloudWatchCollector) Flush(ctx context.Context) {
	c.mu.Lock()
	pending := c.pending
	c.pending = nil
	c.mu.Unlock()

	for len(pending) > 0 {
		n := min(len(pending), maxDatumsPerPut)
		batch := pending[:n]
		pending = pending[n:]

		_, err := c.client.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
			Namespace:  aws.String(c.namespace),
			MetricData: batch,
		})
		if err != nil && c.logger != nil {
			c.logger.Error("failed to put metric data",
				"error", err.Error(),
				"datums", strconv.Itoa(n),
			)
		}
	}
}

// Run flushes every interval until ctx is done, then flushes once more.
func (c *CloudWatchCollector) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			c.Flush(ctx)
		case <-ctx.Done():
			final, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			c.Flush(final)
			cancel()
			return
		}
	}
}

func (c *CloudWatchCollector) add(d ...cwtypes.MetricDatum) {
	c.mu.Lock()
	c.pending = append(c.pending, d...)
	c.mu.Unlock()
}

func (c *CloudWatchCollector) datum(name string, value float64, unit cwtypes.StandardUnit, dims []cwtypes.Dimension) cwtypes.MetricDatum {
	return cwtypes.MetricDatum{
		MetricName: aws.String(name),
		Value:      aws.Float64(value),
		Unit:       unit,
		Timestamp:  aws.Time(c.clock.Now()),
		Dimensions: dims,
	}
}

func dim(name, value string) cwtypes.Dimension {
	return cwtypes.Dimension{Name: aws.String(name), Value: aws.String(value)}
}
