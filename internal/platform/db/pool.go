package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PoolOptions sizes the connection pool. Requests beyond MaxConns block in
// Acquire until a connection comes back.
type PoolOptions struct {
	URL               string
	MaxConns          int32
	MinConns          int32
	ApplicationName   string
	MaxConnIdleTime   time.Duration
	HealthCheckPeriod time.Duration
	PingTimeout       time.Duration
}

func (o PoolOptions) withDefaults() PoolOptions {
	if o.ApplicationName == "" {
		o.ApplicationName = "historia-server"
	}
	if o.MaxConnIdleTime <= 0 {
		o.MaxConnIdleTime = 5 * time.Minute
	}
	if o.HealthCheckPeriod <= 0 {
		o.HealthCheckPeriod = time.Minute
	}
	if o.PingTimeout <= 0 {
		o.PingTimeout = 5 * time.Second
	}
	return o
}

// buildConfig turns options into a pgxpool config without dialing.
func buildConfig(o PoolOptions) (*pgxpool.Config, error) {
	o = o.withDefaults()
	if o.MaxConns <= 0 {
		return nil, fmt.Errorf("max conns must be positive, got %d", o.MaxConns)
	}
	if o.MinConns < 0 || o.MinConns > o.MaxConns {
		return nil, fmt.Errorf("min conns %d out of range [0, %d]", o.MinConns, o.MaxConns)
	}

	cfg, err := pgxpool.ParseConfig(o.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	cfg.MaxConns = o.MaxConns
	cfg.MinConns = o.MinConns
	cfg.MaxConnIdleTime = o.MaxConnIdleTime
	cfg.HealthCheckPeriod = o.HealthCheckPeriod
	if _, set := cfg.ConnConfig.RuntimeParams["application_name"]; !set {
		cfg.ConnConfig.RuntimeParams["application_name"] = o.ApplicationName
	}
	return cfg, nil
}

// OpenPool builds the pool and checks that the server answers before
// returning it.
func OpenPool(ctx context.Context, o PoolOptions) (*pgxpool.Pool, error) {
	cfg, err := buildConfig(o)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, o.withDefaults().PingTimeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("database unreachable: %w", err)
	}
	return pool, nil
}
