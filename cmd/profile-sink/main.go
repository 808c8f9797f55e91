// Package main is the entry point for the profile sink Lambda function.
//
// The sink consumes analysis events from the SQS analysis queue and writes
// the per-field soil profile of each successful analysis to InfluxDB, where
// irrigation controllers read it. Messages that fail with a transient error
// are reported as batch item failures so SQS redelivers only those.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"soilwater/internal/config"
	soilevents "soilwater/internal/events"
	"soilwater/internal/timeseries"
	"soilwater/internal/types"
)

// ProfileWriter stores one analysis event as a soil profile point.
type ProfileWriter interface {
	WriteProfile(ctx context.Context, e types.AnalysisEvent) error
}

type Handler struct {
	writer ProfileWriter
	logger *slog.Logger
}

func NewHandler(w ProfileWriter, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{writer: w, logger: logger}
}

// Handle processes one SQS batch.
func (h *Handler) Handle(ctx context.Context, sqsEvent events.SQSEvent) (events.SQSEventResponse, error) {
	resp := events.SQSEventResponse{}

	for _, record := range sqsEvent.Records {
		if err := h.processMessage(ctx, record); err != nil {
			h.logger.Error("failed to write soil profile",
				"message_id", record.MessageId,
				"error", err.Error(),
			)
			resp.BatchItemFailures = append(resp.BatchItemFailures,
				events.SQSBatchItemFailure{ItemIdentifier: record.MessageId},
			)
		}
	}

	return resp, nil
}

func (h *Handler) processMessage(ctx context.Context, record events.SQSMessage) error {
	e, err := soilevents.Decode([]byte(record.Body))
	if err != nil {
		// Redelivery cannot fix a malformed body; ACK it.
		h.logger.Error("dropping malformed analysis event",
			"message_id", record.MessageId,
			"error", err.Error(),
		)
		return nil
	}

	if err := h.writer.WriteProfile(ctx, e); err != nil {
		return fmt.Errorf("write profile for analysis %s: %w", e.AnalysisID, err)
	}

	h.logger.Info("soil profile written",
		"analysis_id", e.AnalysisID,
		"organization_id", e.OrganizationID,
		"field_id", e.FieldID,
	)
	return nil
}

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	var provider config.SecretProvider
	if os.Getenv("APP_ENV") != "local" {
		provider = config.NewSSMProvider(os.Getenv("AWS_REGION"))
	}
	cfg, err := config.LoadTimeseriesConfig(provider)
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	writer, closeWriter, err := timeseries.Dial(cfg.URL, cfg.Token.Unmask(), cfg.Org, cfg.Bucket)
	if err != nil {
		logger.Error("failed to create InfluxDB writer", "error", err)
		os.Exit(1)
	}
	defer closeWriter()

	handler := NewHandler(writer, logger)
	logger.Info("profile sink initialized", "influx_url", cfg.URL, "bucket", cfg.Bucket)

	// APP_ENV=local reads one SQS event from stdin instead of starting the
	// Lambda runtime.
	if os.Getenv("APP_ENV") == "local" {
		payload, err := io.ReadAll(os.Stdin)
		if err != nil {
			logger.Error("failed to read stdin", "error", err)
			os.Exit(1)
		}
		var sqsEvent events.SQSEvent
		if err := json.Unmarshal(payload, &sqsEvent); err != nil {
			logger.Error("failed to parse stdin as SQS event", "error", err)
			os.Exit(1)
		}
		resp, _ := handler.Handle(context.Background(), sqsEvent)
		logger.Info("batch processed",
			"records", len(sqsEvent.Records),
			"failures", len(resp.BatchItemFailures),
		)
		return
	}

	lambda.Start(handler.Handle)
}
