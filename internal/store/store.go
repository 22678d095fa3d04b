// Package store persists crawl tasks and pages in Postgres. It owns the
// durable queue semantics (atomic claim, idempotent enqueue) and the
// content-hash-deduplicated page corpus.
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/freeman-jiang/resonant/internal/backoff"
)

// Pool is the narrow pgxpool surface the stores depend on, so pgxmock can
// stand in during tests.
type Pool interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
	Close()
}

// connectAttempts bounds the startup retry loop.
const connectAttempts = 4

// Connect opens a pgx pool against dsn, retrying with backoff while the
// database comes up, and ensures the schema exists.
func Connect(ctx context.Context, dsn string, logger *zap.Logger) (*pgxpool.Pool, error) {
	if dsn == "" {
		return nil, fmt.Errorf("db.dsn is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}

	policy := backoff.Default()
	var pool *pgxpool.Pool
	for attempt := 0; ; attempt++ {
		pool, err = pgxpool.NewWithConfig(ctx, poolCfg)
		if err == nil {
			err = pool.Ping(ctx)
			if err == nil {
				break
			}
			pool.Close()
		}
		if attempt >= connectAttempts-1 {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		delay := policy.Delay(attempt)
		logger.Warn("postgres not ready, retrying",
			zap.Int("attempt", attempt+1),
			zap.Duration("delay", delay),
			zap.Error(err),
		)
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("connect postgres: %w", ctx.Err())
		case <-time.After(delay):
		}
	}

	if err := EnsureSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

const schemaDDL = `
CREATE TABLE IF NOT EXISTS crawl_tasks (
	id         BIGSERIAL PRIMARY KEY,
	url        TEXT NOT NULL UNIQUE,
	parent_url TEXT,
	text       TEXT NOT NULL DEFAULT '',
	depth      INT NOT NULL DEFAULT 0,
	status     TEXT NOT NULL DEFAULT 'PENDING',
	boost      INT NOT NULL DEFAULT 0,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS crawl_tasks_claim_idx
	ON crawl_tasks (depth ASC, boost DESC, id ASC)
	WHERE status = 'PENDING';

CREATE TABLE IF NOT EXISTS pages (
	id            BIGSERIAL PRIMARY KEY,
	url           TEXT NOT NULL,
	parent_url    TEXT,
	content_hash  TEXT NOT NULL UNIQUE,
	title         TEXT NOT NULL DEFAULT '',
	date          TEXT NOT NULL DEFAULT '',
	author        TEXT NOT NULL DEFAULT '',
	content       TEXT NOT NULL,
	outbound_urls TEXT[] NOT NULL DEFAULT '{}',
	depth         INT NOT NULL DEFAULT 0,
	page_rank     DOUBLE PRECISION,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS pages_url_idx ON pages (url);
`

// EnsureSchema creates the crawl_tasks and pages tables if absent.
func EnsureSchema(ctx context.Context, pool Pool) error {
	if _, err := pool.Exec(ctx, schemaDDL); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}
