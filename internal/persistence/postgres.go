package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/spec-kit/bug-tracker/internal/config"
)

// ErrNotConfigured is reported by Ping on a backend that was never connected.
var ErrNotConfigured = errors.New("not configured")

const (
	connectAttempts = 3
	connectBackoff  = time.Second
)

// Postgres wraps access to a pgx connection pool.
type Postgres struct {
	Pool *pgxpool.Pool
}

// NewPostgres establishes a connection pool when DSN is provided. Without a
// DSN it returns an unconnected Postgres whose PoolHandle is nil.
func NewPostgres(ctx context.Context, cfg config.PostgresConfig, logger *zap.Logger) (*Postgres, error) {
	if cfg.DSN == "" {
		logger.Warn("POSTGRES_DSN not provided; skipping database connection")
		return &Postgres{}, nil
	}

	poolCfg, err := poolConfig(cfg)
	if err != nil {
		return nil, err
	}

	var pool *pgxpool.Pool
	err = retry(ctx, logger, connectAttempts, connectBackoff, sleep, func(attempt int) error {
		p, err := connect(ctx, poolCfg)
		if err != nil {
			return err
		}
		logger.Info("connected to postgres", zap.Int("attempt", attempt))
		pool = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &Postgres{Pool: pool}, nil
}

type waitFunc func(ctx context.Context, d time.Duration) error

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// retry calls fn up to attempts times with a linearly growing pause between
// tries. There is no pause after the final failure.
func retry(ctx context.Context, logger *zap.Logger, attempts int, backoff time.Duration, wait waitFunc, fn func(attempt int) error) error {
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if lastErr = fn(attempt); lastErr == nil {
			return nil
		}
		logger.Warn("postgres connect failed", zap.Int("attempt", attempt), zap.Error(lastErr))
		if attempt == attempts {
			break
		}
		if err := wait(ctx, time.Duration(attempt)*backoff); err != nil {
			return err
		}
	}
	return fmt.Errorf("connect postgres after %d attempts: %w", attempts, lastErr)
}

func connect(ctx context.Context, poolCfg *pgxpool.Config) (*pgxpool.Pool, error) {
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

// poolConfig applies the configured pool sizing on top of the DSN.
func poolConfig(cfg config.PostgresConfig) (*pgxpool.Config, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse POSTGRES_DSN: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 && cfg.MinConns <= poolCfg.MaxConns {
		poolCfg.MinConns = cfg.MinConns
	}
	if cfg.ConnMaxIdleSec > 0 {
		poolCfg.MaxConnIdleTime = time.Duration(cfg.ConnMaxIdleSec) * time.Second
	}
	if cfg.ConnMaxLifeSec > 0 {
		poolCfg.MaxConnLifetime = time.Duration(cfg.ConnMaxLifeSec) * time.Second
	}
	return poolCfg, nil
}

// Close releases pool resources.
func (p *Postgres) Close() {
	if p != nil && p.Pool != nil {
		p.Pool.Close()
	}
}

// PoolHandle returns the pool, nil when not connected.
func (p *Postgres) PoolHandle() *pgxpool.Pool {
	if p == nil {
		return nil
	}
	return p.Pool
}

// Ping verifies database connectivity.
func (p *Postgres) Ping(ctx context.Context) error {
	if p == nil || p.Pool == nil {
		return fmt.Errorf("postgres %w", ErrNotConfigured)
	}
	return p.Pool.Ping(ctx)
}
