package repository

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/tracelog"
	"github.com/rs/zerolog"

	"github.com/maxviazov/racha-stats-service/internal/config"
)

const pingTimeout = 5 * time.Second

// Repository owns the pgx connection pool shared by every Postgres repository.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates the pool, wires pgx tracing into logger and verifies connectivity.
func New(ctx context.Context, cfg config.PostgresConfig, logger zerolog.Logger) (*Repository, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if cfg.Host == "" || cfg.DBName == "" {
		return nil, errors.New("postgres host and db are required")
	}

	poolConfig, err := pgxpool.ParseConfig(DSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to parse pool config: %w", err)
	}

	level := logger.GetLevel()
	if g := zerolog.GlobalLevel(); g > level {
		level = g
	}
	poolConfig.ConnConfig.Tracer = &tracelog.TraceLog{
		Logger:   newPgxLogger(logger),
		LogLevel: traceLevelFor(level),
	}

	poolConfig.MaxConns = cfg.MaxConns
	poolConfig.MinConns = cfg.MinConns
	poolConfig.MaxConnLifetime = seconds(cfg.MaxConnLifetime)
	poolConfig.MaxConnIdleTime = seconds(cfg.MaxConnIdleTime)
	poolConfig.HealthCheckPeriod = seconds(cfg.HealthCheckPeriod)

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	logger.Info().
		Str("host", cfg.Host).
		Int("port", cfg.Port).
		Str("user", cfg.User).
		Str("db", cfg.DBName).
		Int32("max_conns", cfg.MaxConns).
		Msg("connected to PostgreSQL")

	return &Repository{pool: pool}, nil
}

// DSN renders cfg as a postgres:// URL; url.URL takes care of escaping credentials.
func DSN(cfg config.PostgresConfig) string {
	u := url.URL{
		Scheme: "postgres",
		Host:   cfg.Host + ":" + strconv.Itoa(cfg.Port),
		Path:   cfg.DBName,
	}
	if cfg.User != "" || cfg.Password != "" {
		u.User = url.UserPassword(cfg.User, cfg.Password)
	}
	if cfg.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", cfg.SSLMode)
		u.RawQuery = q.Encode()
	}
	return u.String()
}

// Pool exposes the underlying pool to the postgres implementations.
func (r *Repository) Pool() *pgxpool.Pool { return r.pool }

// Close releases every pooled connection.
func (r *Repository) Close() {
	if r.pool != nil {
		r.pool.Close()
	}
}

func seconds(n int) time.Duration { return time.Duration(n) * time.Second }
