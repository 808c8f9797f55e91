package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"soilwater/internal/types"
)

// AnalysisRepository stores analysis history in soil_analyses. Inputs and
// results are kept as JSONB.
type AnalysisRepository struct {
	db DBTX
}

func NewAnalysisRepository(db DBTX) *AnalysisRepository {
	return &AnalysisRepository{db: db}
}

const analysisColumns = `id, organization_id, field_id, label, input, result,
	status, error_code, test_mode, created_at`

// Create inserts rec. A zero CreatedAt lets the database default apply.
func (r *AnalysisRepository) Create(ctx context.Context, rec *types.AnalysisRecord) error {
	input, err := json.Marshal(rec.Input)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalUnexpected, "failed to encode analysis input", err)
	}
	var result []byte
	if rec.Result != nil {
		if result, err = json.Marshal(rec.Result); err != nil {
			return types.NewAppError(types.ErrCodeInternalUnexpected, "failed to encode analysis result", err)
		}
	}

	var createdAt *time.Time
	if !rec.CreatedAt.IsZero() {
		createdAt = &rec.CreatedAt
	}

	_, err = r.db.Exec(ctx,
		`INSERT INTO soil_analyses (id, organization_id, field_id, label, input,
		 result, status, error_code, test_mode, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, COALESCE($10, NOW()))`,
		rec.ID,
		rec.OrganizationID,
		nilIfEmpty(rec.FieldID),
		nilIfEmpty(rec.Label),
		input,
		result,
		string(rec.Status),
		nilIfEmpty(string(rec.ErrorCode)),
		rec.TestMode,
		createdAt,
	)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "failed to insert analysis", err)
	}
	return nil
}

// GetByID returns the analysis if it belongs to orgID. Malformed ids are
// reported as not found.
func (r *AnalysisRepository) GetByID(ctx context.Context, orgID, id string) (*types.AnalysisRecord, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, types.NewAppError(types.ErrCodeNotFoundAnalysis, "analysis not found", nil)
	}

	row := r.db.QueryRow(ctx,
		fmt.Sprintf(`SELECT %s FROM soil_analyses WHERE id = $1 AND organization_id = $2`, analysisColumns),
		id, orgID,
	)
	rec, err := scanAnalysis(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.NewAppError(types.ErrCodeNotFoundAnalysis, "analysis not found", nil)
		}
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to retrieve analysis", err)
	}
	return rec, nil
}

// List returns up to NormalizedLimit()+1 records newest first so the caller
// can detect a further page.
func (r *AnalysisRepository) List(ctx context.Context, params types.AnalysisListParams) ([]*types.AnalysisRecord, error) {
	conditions := []string{"organization_id = $1"}
	args := []any{params.OrganizationID}

	if params.FieldID != "" {
		args = append(args, params.FieldID)
		conditions = append(conditions, fmt.Sprintf("field_id = $%d", len(args)))
	}
	if !params.Since.IsZero() {
		args = append(args, params.Since)
		conditions = append(conditions, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if params.Cursor != "" {
		cursor, err := types.ParseAnalysisCursor(params.Cursor)
		if err == nil {
			_, err = uuid.Parse(cursor.ID)
		}
		if err != nil {
			return nil, types.NewAppError(types.ErrCodeValidationInvalidCursor, "invalid cursor; pass next_cursor from the previous page unchanged", err)
		}
		args = append(args, cursor.CreatedAt, cursor.ID)
		conditions = append(conditions, fmt.Sprintf("(created_at, id) < ($%d, $%d::uuid)", len(args)-1, len(args)))
	}

	args = append(args, params.NormalizedLimit()+1)
	query := fmt.Sprintf(
		`SELECT %s FROM soil_analyses WHERE %s ORDER BY created_at DESC, id DESC LIMIT $%d`,
		analysisColumns, strings.Join(conditions, " AND "), len(args),
	)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to query analyses", err)
	}
	defer rows.Close()

	var out []*types.AnalysisRecord
	for rows.Next() {
		rec, err := scanAnalysis(rows)
		if err != nil {
			return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to scan analysis row", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "error iterating analysis rows", err)
	}
	return out, nil
}

// CountSince counts successful analyses of orgID created at or after since.
// Rejected samples do not consume quota.
func (r *AnalysisRepository) CountSince(ctx context.Context, orgID string, since time.Time) (int, error) {
	var n int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM soil_analyses
		 WHERE organization_id = $1 AND created_at >= $2 AND status = $3`,
		orgID, since, string(types.AnalysisSucceeded),
	).Scan(&n)
	if err != nil {
		return 0, types.NewAppError(types.ErrCodeInternalDB, "failed to count analyses", err)
	}
	return n, nil
}

// Column order must match analysisColumns.
func scanAnalysis(row rowScanner) (*types.AnalysisRecord, error) {
	var (
		rec                       types.AnalysisRecord
		fieldID, label, errorCode *string
		input, result             []byte
		status                    string
	)
	err := row.Scan(
		&rec.ID,
		&rec.OrganizationID,
		&fieldID,
		&label,
		&input,
		&result,
		&status,
		&errorCode,
		&rec.TestMode,
		&rec.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	rec.FieldID = deref(fieldID)
	rec.Label = deref(label)
	rec.Status = types.AnalysisStatus(status)
	rec.ErrorCode = types.ErrorCode(deref(errorCode))

	if err := json.Unmarshal(input, &rec.Input); err != nil {
		return nil, fmt.Errorf("decoding input of analysis %s: %w", rec.ID, err)
	}
	if len(result) > 0 {
		if err := json.Unmarshal(result, &rec.Result); err != nil {
			return nil, fmt.Errorf("decoding result of analysis %s: %w", rec.ID, err)
		}
	}
	return &rec, nil
}
