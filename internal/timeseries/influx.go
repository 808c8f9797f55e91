// Package timeseries stores field soil profiles in InfluxDB so irrigation
// controllers can query the latest profile per field.
package timeseries

import (
	"context"
	"fmt"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"soilwater/internal/types"
)

// Measurement is the InfluxDB measurement written for each analysis event.
const Measurement = "soil_profile"

// pointWriter is the blocking write surface of api.WriteAPIBlocking.
type pointWriter interface {
	WritePoint(ctx context.Context, point ...*write.Point) error
}

// Writer writes soil profiles synchronously. Each Lambda invocation must
// observe its own write errors, so the non-blocking API is not used.
type Writer struct {
	api pointWriter
}

func NewWriter(w pointWriter) *Writer {
	return &Writer{api: w}
}

// Dial opens a client for the bucket. The returned close func releases it.
func Dial(url, token, org, bucket string) (*Writer, func(), error) {
	if url == "" || token == "" || org == "" || bucket == "" {
		return nil, nil, fmt.Errorf("influx config incomplete")
	}
	client := influxdb2.NewClient(url, token)
	return NewWriter(client.WriteAPIBlocking(org, bucket)), client.Close, nil
}

// WriteProfile records e as one point tagged by organization, field and
// texture class.
func (w *Writer) WriteProfile(ctx context.Context, e types.AnalysisEvent) error {
	if err := w.api.WritePoint(ctx, ProfilePoint(e)); err != nil {
		return types.NewAppError(types.ErrCodeUpstreamTimeseries, "failed to write soil profile", err)
	}
	return nil
}

// ProfilePoint converts an event to its InfluxDB point.
func ProfilePoint(e types.AnalysisEvent) *write.Point {
	tags := map[string]string{
		"organization_id": e.OrganizationID,
		"texture":         string(e.Profile.Texture),
	}
	if e.FieldID != "" {
		tags["field_id"] = e.FieldID
	}

	fields := map[string]interface{}{
		"theta_fc":              e.Profile.ThetaFC,
		"theta_wp":              e.Profile.ThetaWP,
		"theta_sat":             e.Profile.ThetaSat,
		"ksat_mm_h":             e.Profile.KsatMMPerHr,
		"plant_available_water": e.PlantAvailableWater,
		"analysis_id":           e.AnalysisID,
	}
	if e.SoilQualityIndex != nil {
		fields["soil_quality_index"] = *e.SoilQualityIndex
	}

	return influxdb2.NewPoint(Measurement, tags, fields, e.OccurredAt)
}
