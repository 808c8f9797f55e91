package timeseries

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"soilwater/internal/types"
)

type capturingWriter struct {
	points []*write.Point
	err    error
}

func (c *capturingWriter) WritePoint(_ context.Context, p ...*write.Point) error {
	c.points = append(c.points, p...)
	return c.err
}

func event() types.AnalysisEvent {
	q := 7.0
	return types.AnalysisEvent{
		AnalysisID:     "an_1",
		OrganizationID: "org_1",
		FieldID:        "north-40",
		Profile: types.SoilProfile{
			Texture:     "Loam",
			ThetaFC:     0.3424,
			ThetaWP:     0.1272,
			ThetaSat:    0.4312,
			KsatMMPerHr: 3.67,
		},
		PlantAvailableWater: 21.52,
		SoilQualityIndex:    &q,
		OccurredAt:          time.Date(2026, 4, 2, 9, 0, 0, 0, time.UTC),
	}
}

func tagMap(p *write.Point) map[string]string {
	out := map[string]string{}
	for _, t := range p.TagList() {
		out[t.Key] = t.Value
	}
	return out
}

func fieldMap(p *write.Point) map[string]interface{} {
	out := map[string]interface{}{}
	for _, f := range p.FieldList() {
		out[f.Key] = f.Value
	}
	return out
}

func TestProfilePoint(t *testing.T) {
	p := ProfilePoint(event())

	assert.Equal(t, Measurement, p.Name())
	assert.Equal(t, time.Date(2026, 4, 2, 9, 0, 0, 0, time.UTC), p.Time())
	assert.Equal(t, map[string]string{
		"organization_id": "org_1",
		"field_id":        "north-40",
		"texture":         "Loam",
	}, tagMap(p))

	fields := fieldMap(p)
	assert.Equal(t, 0.3424, fields["theta_fc"])
	assert.Equal(t, 21.52, fields["plant_available_water"])
	assert.Equal(t, 7.0, fields["soil_quality_index"])
	assert.Equal(t, "an_1", fields["analysis_id"])
}

func TestProfilePoint_OptionalValuesOmitted(t *testing.T) {
	e := event()
	e.FieldID = ""
	e.SoilQualityIndex = nil
	p := ProfilePoint(e)

	assert.NotContains(t, tagMap(p), "field_id")
	assert.NotContains(t, fieldMap(p), "soil_quality_index")
}

func TestWriter_WriteProfile(t *testing.T) {
	w := &capturingWriter{}
	require.NoError(t, NewWriter(w).WriteProfile(context.Background(), event()))
	assert.Len(t, w.points, 1)
}

func TestWriter_WriteProfile_Error(t *testing.T) {
	w := &capturingWriter{err: errors.New("401 unauthorized")}
	err := NewWriter(w).WriteProfile(context.Background(), event())

	var appErr *types.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, types.ErrCodeUpstreamTimeseries, appErr.Code)
}

func TestDial_IncompleteConfig(t *testing.T) {
	_, _, err := Dial("http://influx:8086", "", "org", "bucket")
	assert.Error(t, err)
}
