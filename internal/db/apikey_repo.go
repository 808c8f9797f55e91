package db

import (
	"context"
	"fmt"

	"soilwater/internal/types"
)

// APIKeyRepository reads the api_keys table. Secrets are stored only as
// bcrypt hashes.
type APIKeyRepository struct {
	db DBTX
}

func NewAPIKeyRepository(db DBTX) *APIKeyRepository {
	return &APIKeyRepository{db: db}
}

// key_hash is selected for verification and must never be serialized.
const apiKeyColumns = `id, organization_id, key_hash, key_prefix, plan,
	test_mode, name, last_used_at, expires_at, revoked_at, created_at`

// ListActiveByPrefix returns the unrevoked, unexpired keys sharing prefix.
// More than one row is possible; the caller verifies each hash.
func (r *APIKeyRepository) ListActiveByPrefix(ctx context.Context, prefix string) ([]*types.APIKey, error) {
	rows, err := r.db.Query(ctx,
		fmt.Sprintf(`SELECT %s FROM api_keys
		 WHERE key_prefix = $1 AND revoked_at IS NULL
		 AND (expires_at IS NULL OR expires_at > NOW())`, apiKeyColumns),
		prefix,
	)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to query API keys", err)
	}
	defer rows.Close()

	var out []*types.APIKey
	for rows.Next() {
		key, err := scanAPIKey(rows)
		if err != nil {
			return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to scan API key row", err)
		}
		out = append(out, key)
	}
	if err := rows.Err(); err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "error iterating API key rows", err)
	}
	return out, nil
}

// TouchLastUsed stamps the key's last use.
func (r *APIKeyRepository) TouchLastUsed(ctx context.Context, id string) error {
	if _, err := r.db.Exec(ctx, `UPDATE api_keys SET last_used_at = NOW() WHERE id = $1`, id); err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "failed to update API key usage", err)
	}
	return nil
}

// Column order must match apiKeyColumns.
func scanAPIKey(row rowScanner) (*types.APIKey, error) {
	var (
		key  types.APIKey
		plan string
	)
	err := row.Scan(
		&key.ID,
		&key.OrganizationID,
		&key.KeyHash,
		&key.KeyPrefix,
		&plan,
		&key.TestMode,
		&key.Name,
		&key.LastUsedAt,
		&key.ExpiresAt,
		&key.RevokedAt,
		&key.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	key.Plan = types.PlanTier(plan)
	return &key, nil
}
