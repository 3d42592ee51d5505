// Package database provides the PostgreSQL connection pool shared by the
// repositories. It wraps pgx behind a small interface so repositories can
// be tested against fakes.
package database

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Service defines the database operations used by repositories.
type Service interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Health(ctx context.Context) map[string]string
	Close()
}

type service struct {
	pool *pgxpool.Pool
}

// New connects to PostgreSQL using the given connection URL and verifies
// the connection with a ping before returning.
func New(ctx context.Context, databaseURL string) (Service, error) {
	if databaseURL == "" {
		return nil, fmt.Errorf("database URL is required")
	}

	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &service{pool: pool}, nil
}

func (s *service) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return s.pool.Query(ctx, sql, args...)
}

func (s *service) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return s.pool.QueryRow(ctx, sql, args...)
}

func (s *service) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return s.pool.Exec(ctx, sql, args...)
}

// Health reports connectivity and basic pool statistics.
func (s *service) Health(ctx context.Context) map[string]string {
	stats := make(map[string]string)

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := s.pool.Ping(pingCtx); err != nil {
		stats["status"] = "down"
		stats["error"] = err.Error()
		return stats
	}

	poolStats := s.pool.Stat()
	stats["status"] = "up"
	stats["total_conns"] = strconv.Itoa(int(poolStats.TotalConns()))
	stats["idle_conns"] = strconv.Itoa(int(poolStats.IdleConns()))
	stats["in_use_conns"] = strconv.Itoa(int(poolStats.AcquiredConns()))

	return stats
}

func (s *service) Close() {
	s.pool.Close()
}
