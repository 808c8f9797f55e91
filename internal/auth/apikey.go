// Package auth resolves API keys to actors.
package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"soilwater/internal/types"
)

// KeyPrefixLength is the number of leading characters of a key stored in
// clear text for lookup. It covers the "sk_live_"/"sk_test_" marker plus
// eight random characters.
const KeyPrefixLength = 16

const bcryptCost = 12

// APIKeyRepo is the data access needed to resolve a key.
type APIKeyRepo interface {
	ListActiveByPrefix(ctx context.Context, prefix string) ([]*types.APIKey, error)
	TouchLastUsed(ctx context.Context, id string) error
}

// SecretHasher abstracts bcrypt for testability.
type SecretHasher interface {
	CompareHashAndPassword(hashedPassword, password string) error
	GenerateFromPassword(password string) (string, error)
}

type bcryptHasher struct{}

func (bcryptHasher) CompareHashAndPassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

func (bcryptHasher) GenerateFromPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// APIKeyAuthenticator implements core.Authenticator over hashed API keys.
type APIKeyAuthenticator struct {
	repo   APIKeyRepo
	hasher SecretHasher
	logger *slog.Logger
}

// NewAPIKeyAuthenticator uses bcrypt when hasher is nil.
func NewAPIKeyAuthenticator(repo APIKeyRepo, hasher SecretHasher, logger *slog.Logger) *APIKeyAuthenticator {
	if hasher == nil {
		hasher = bcryptHasher{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &APIKeyAuthenticator{repo: repo, hasher: hasher, logger: logger}
}

// ResolveToken finds the active key matching token and returns its actor.
// Unknown, revoked and expired keys all yield auth_token_invalid.
func (a *APIKeyAuthenticator) ResolveToken(ctx context.Context, token string) (*types.Actor, error) {
	if !hasKnownPrefix(token) || len(token) <= KeyPrefixLength {
		return nil, types.NewAppError(types.ErrCodeAuthTokenInvalid, "malformed API key", nil)
	}

	candidates, err := a.repo.ListActiveByPrefix(ctx, token[:KeyPrefixLength])
	if err != nil {
		return nil, err
	}

	for _, key := range candidates {
		if err := a.hasher.CompareHashAndPassword(key.KeyHash, token); err != nil {
			if !errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
				a.logger.Warn("api key hash comparison failed", "key_id", key.ID, "error", err)
			}
			continue
		}

		if err := a.repo.TouchLastUsed(ctx, key.ID); err != nil {
			a.logger.Warn("failed to record api key usage", "key_id", key.ID, "error", err)
		}

		return &types.Actor{
			ID:             key.ID,
			Type:           types.ActorTypeAPIKey,
			OrganizationID: key.OrganizationID,
			Plan:           key.Plan,
			// The key prefix is authoritative even if the stored flag disagrees.
			IsTestMode: key.TestMode || types.IsTestKey(token),
			Source:     "api",
		}, nil
	}

	return nil, types.NewAppError(types.ErrCodeAuthTokenInvalid, "invalid API key", nil)
}

// GeneratedKey is a freshly minted key. Secret is shown to the user once;
// only Hash and Prefix are stored.
type GeneratedKey struct {
	Secret string
	Prefix string
	Hash   string
}

// GenerateKey mints a random key with the live or test marker.
func GenerateKey(testMode bool, hasher SecretHasher) (GeneratedKey, error) {
	if hasher == nil {
		hasher = bcryptHasher{}
	}
	b := make([]byte, 24)
	if _, err := rand.Read(b); err != nil {
		return GeneratedKey{}, fmt.Errorf("generate api key: %w", err)
	}

	marker := types.APIKeyPrefixLive
	if testMode {
		marker = types.APIKeyPrefixTest
	}
	secret := marker + hex.EncodeToString(b)

	hash, err := hasher.GenerateFromPassword(secret)
	if err != nil {
		return GeneratedKey{}, fmt.Errorf("hash api key: %w", err)
	}
	return GeneratedKey{Secret: secret, Prefix: secret[:KeyPrefixLength], Hash: hash}, nil
}

func hasKnownPrefix(token string) bool {
	return strings.HasPrefix(token, types.APIKeyPrefixLive) || strings.HasPrefix(token, types.APIKeyPrefixTest)
}
