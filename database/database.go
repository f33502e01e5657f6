// Package database opens the PostgreSQL connection pool (pgx) with retry
// logic and platform logging.
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stackskills/platform/logger"
)

// DB wraps a pgx connection pool with platform logging.
type DB struct {
	Pool *pgxpool.Pool
	log  *logger.Logger
}

// New opens a connection pool with retry logic. The context bounds the whole
// connection phase including retries.
func New(ctx context.Context, cfg Config, log *logger.Logger) (*DB, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("database config: %w", err)
	}
	if !cfg.Enabled {
		return nil, fmt.Errorf("database is disabled")
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("database dsn: %w", err)
	}
	poolCfg.MaxConns = int32(cfg.MaxConns)
	poolCfg.MinConns = int32(cfg.MinConns)
	poolCfg.MaxConnLifetime = cfg.ConnMaxLifetime
	poolCfg.MaxConnIdleTime = cfg.ConnMaxIdleTime

	dbLog := log.WithComponent("database")

	var pool *pgxpool.Pool
	for attempt := 1; attempt <= cfg.MaxRetries; attempt++ {
		pool, err = pgxpool.NewWithConfig(ctx, poolCfg)
		if err == nil {
			err = pool.Ping(ctx)
			if err == nil {
				break
			}
			pool.Close()
		}

		dbLog.Warn("Database connection failed", logger.Fields(
			"attempt", attempt,
			"max_retries", cfg.MaxRetries,
			"error", err.Error(),
		))
		if attempt == cfg.MaxRetries {
			return nil, fmt.Errorf("database connect after %d attempts: %w", cfg.MaxRetries, err)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(cfg.RetryBackoff):
		}
	}

	dbLog.Info("Database connected", logger.Fields(
		"max_conns", cfg.MaxConns,
		"min_conns", cfg.MinConns,
	))
	return &DB{Pool: pool, log: dbLog}, nil
}

// Ping verifies the database connection is alive.
func (d *DB) Ping(ctx context.Context) error {
	return d.Pool.Ping(ctx)
}

// Close releases the pool. Safe to call on a nil receiver.
func (d *DB) Close() {
	if d == nil || d.Pool == nil {
		return
	}
	d.log.Info("Closing database pool")
	d.Pool.Close()
}
