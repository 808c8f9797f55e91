// Package events publishes analysis events to the configured transport so
// downstream consumers can refresh per-field soil profiles.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"soilwater/internal/types"
)

// EventType is carried as a message attribute on every transport.
const EventType = "soil.analysis.completed"

// Noop drops events. It backs EVENTS_BACKEND=none.
type Noop struct{}

func (Noop) Publish(context.Context, types.AnalysisEvent) error { return nil }

// Topic returns prefix/org/field, or prefix/org/_unassigned when the
// analysis carries no field.
func Topic(prefix string, e types.AnalysisEvent) string {
	field := e.FieldID
	if field == "" {
		field = "_unassigned"
	}
	return strings.TrimSuffix(prefix, "/") + "/" + e.OrganizationID + "/" + field
}

func encode(e types.AnalysisEvent) ([]byte, error) {
	b, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("encode analysis event %s: %w", e.EventID, err)
	}
	return b, nil
}

// Decode parses a message body produced by either publisher.
func Decode(body []byte) (types.AnalysisEvent, error) {
	var e types.AnalysisEvent
	if err := json.Unmarshal(body, &e); err != nil {
		return types.AnalysisEvent{}, fmt.Errorf("decode analysis event: %w", err)
	}
	if e.AnalysisID == "" || e.OrganizationID == "" {
		return types.AnalysisEvent{}, fmt.Errorf("decode analysis event: missing analysis or organization id")
	}
	return e, nil
}
