package types

import (
	"encoding/base64"
	"errors"
	"strings"
	"time"
)

// PageInfo contains pagination metadata for list responses.
type PageInfo struct {
	HasMore    bool   `json:"has_more"`
	NextCursor string `json:"next_cursor,omitempty"`
}

// ListResponse is a generic paginated response wrapper.
type ListResponse[T any] struct {
	Data     []T      `json:"data"`
	PageInfo PageInfo `json:"pagination"`
}

// AnalysisListParams filters an organization's analysis history. Cursor is
// the encoded AnalysisCursor of the last item of the previous page.
type AnalysisListParams struct {
	OrganizationID string
	FieldID        string
	Since          time.Time
	Limit          int
	Cursor         string
}

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// NormalizedLimit clamps Limit into [1, MaxPageSize], using DefaultPageSize
// when unset.
func (p AnalysisListParams) NormalizedLimit() int {
	switch {
	case p.Limit <= 0:
		return DefaultPageSize
	case p.Limit > MaxPageSize:
		return MaxPageSize
	default:
		return p.Limit
	}
}

// AnalysisCursor is a keyset position in history ordered by
// (created_at DESC, id DESC). The id breaks ties between records written in
// the same instant.
type AnalysisCursor struct {
	CreatedAt time.Time
	ID        string
}

var errMalformedCursor = errors.New("malformed cursor")

// Encode returns the opaque form handed to clients as next_cursor.
func (c AnalysisCursor) Encode() string {
	raw := c.CreatedAt.UTC().Format(time.RFC3339Nano) + "|" + c.ID
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

// ParseAnalysisCursor reverses Encode.
func ParseAnalysisCursor(s string) (AnalysisCursor, error) {
	raw, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return AnalysisCursor{}, errMalformedCursor
	}
	ts, id, ok := strings.Cut(string(raw), "|")
	if !ok || id == "" {
		return AnalysisCursor{}, errMalformedCursor
	}
	createdAt, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		return AnalysisCursor{}, errMalformedCursor
	}
	return AnalysisCursor{CreatedAt: createdAt, ID: id}, nil
}
