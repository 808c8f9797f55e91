// Package db provides PostgreSQL repositories for analysis history and API
// keys. Repositories accept a DBTX, satisfied by both *pgxpool.Pool and
// pgx.Tx.
//
// Tables:
//
//	soil_analyses(id uuid pk, organization_id text, field_id text null,
//	    label text null, input jsonb, result jsonb null, status text,
//	    error_code text null, test_mode bool, created_at timestamptz)
//	api_keys(id text pk, organization_id text, key_hash text,
//	    key_prefix text, plan text, test_mode bool, name text,
//	    last_used_at timestamptz null, expires_at timestamptz null,
//	    revoked_at timestamptz null, created_at timestamptz)
package db

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DBTX is the subset of *pgxpool.Pool and pgx.Tx used by repositories.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PoolConfig tunes the connection pool.
type PoolConfig struct {
	URL               string
	MaxConns          int32
	MinConns          int32
	MaxConnLifetime   time.Duration
	HealthCheckPeriod time.Duration
}

// NewPool parses the connection string, applies the tuning and connects.
func NewPool(ctx context.Context, cfg PoolConfig) (*pgxpool.Pool, error) {
	pc, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, err
	}
	if cfg.MaxConns > 0 {
		pc.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		pc.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		pc.MaxConnLifetime = cfg.MaxConnLifetime
	}
	if cfg.HealthCheckPeriod > 0 {
		pc.HealthCheckPeriod = cfg.HealthCheckPeriod
	}
	return pgxpool.NewWithConfig(ctx, pc)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func nilIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
