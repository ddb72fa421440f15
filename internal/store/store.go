// Package store owns the relational store handle. The handle is constructed
// explicitly at process start and injected into repositories; nothing in this
// codebase reaches for an ambient connection.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/userboard/userboard-backend/internal/config"
	"github.com/userboard/userboard-backend/internal/metrics"
	"go.uber.org/zap"

	_ "github.com/jackc/pgx/v5/stdlib"
)

type Store struct {
	db      *sql.DB
	logger  *zap.SugaredLogger
	metrics *metrics.Metrics
}

// Open connects to Postgres using the configured DSN and pool limits.
// The caller is responsible for calling Close at shutdown.
func Open(cfg *config.Config, logger *zap.SugaredLogger, m *metrics.Metrics) (*Store, error) {
	db, err := sql.Open("pgx", cfg.Database.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxIdleTime(5 * time.Minute)

	return &Store{
		db:      db,
		logger:  logger,
		metrics: m,
	}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	start := time.Now()
	rows, err := s.db.QueryContext(ctx, query, args...)
	s.record(ctx, "query", err != nil, time.Since(start))
	return rows, err
}

func (s *Store) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	start := time.Now()
	row := s.db.QueryRowContext(ctx, query, args...)
	s.record(ctx, "query_row", false, time.Since(start))
	return row
}

func (s *Store) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	start := time.Now()
	res, err := s.db.ExecContext(ctx, query, args...)
	s.record(ctx, "exec", err != nil, time.Since(start))
	return res, err
}

func (s *Store) record(ctx context.Context, op string, failed bool, duration time.Duration) {
	if s.metrics != nil {
		s.metrics.RecordStoreQuery(ctx, op, failed, duration)
	}
	if failed {
		s.logger.Debugw("Store query failed", "op", op, "duration", duration)
	}
}
