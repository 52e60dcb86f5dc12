package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/hamed0406/probeharness/internal/domain"
	"github.com/hamed0406/probeharness/internal/repo"
)

var _ repo.RunStore = (*Store)(nil)
var _ repo.AlertStore = (*Store)(nil)

// Schema creates the tables the store needs. It is safe to apply repeatedly.
const Schema = `
CREATE TABLE IF NOT EXISTS probe_runs (
  id          BIGSERIAL PRIMARY KEY,
  runner      TEXT NOT NULL,
  labels      TEXT[] NOT NULL DEFAULT '{}',
  total       INTEGER NOT NULL,
  failures    INTEGER NOT NULL,
  errors      INTEGER NOT NULL,
  skipped     INTEGER NOT NULL,
  interrupted BOOLEAN NOT NULL DEFAULT false,
  started_at  TIMESTAMPTZ NOT NULL,
  duration_ms DOUBLE PRECISION NOT NULL,
  outcomes    JSONB NOT NULL DEFAULT '[]'
);

CREATE INDEX IF NOT EXISTS idx_probe_runs_started_at ON probe_runs (started_at DESC);

CREATE TABLE IF NOT EXISTS probe_alerts (
  scope        TEXT PRIMARY KEY,
  last_passed  BOOLEAN NOT NULL,
  last_sent_at TIMESTAMPTZ NULL
);
`

type Store struct {
	pool *pgxpool.Pool
	log  *zap.Logger
}

func New(ctx context.Context, dsn string, log *zap.Logger) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.New: %w", err)
	}
	ctxPing, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctxPing); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return &Store{pool: pool, log: log}, nil
}

// Migrate applies Schema.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// ---- RunStore ----

func (s *Store) SaveRun(ctx context.Context, rec *domain.RunRecord) error {
	if rec.StartedAt.IsZero() {
		rec.StartedAt = time.Now().UTC()
	}
	labels := rec.Labels
	if labels == nil {
		labels = []string{}
	}
	outcomes := rec.Outcomes
	if outcomes == nil {
		outcomes = []domain.ProbeOutcome{}
	}
	var id int64
	err := s.pool.QueryRow(ctx,
		`INSERT INTO probe_runs
		   (runner, labels, total, failures, errors, skipped, interrupted, started_at, duration_ms, outcomes)
		 VALUES
		   ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 RETURNING id`,
		rec.Runner, labels, rec.Total, rec.Failures, rec.Errors, rec.Skipped,
		rec.Interrupted, rec.StartedAt, rec.DurationMS, outcomes,
	).Scan(&id)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	rec.ID = domain.RunID(id)
	s.log.Debug("run_saved", zap.Int64("id", id), zap.Int("total", rec.Total))
	return nil
}

func (s *Store) RecentRuns(ctx context.Context, limit int) ([]domain.RunRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.pool.Query(ctx, `
SELECT id, runner, labels, total, failures, errors, skipped, interrupted, started_at, duration_ms, outcomes
  FROM probe_runs
 ORDER BY started_at DESC, id DESC
 LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("recent runs: %w", err)
	}
	defer rows.Close()

	var out []domain.RunRecord
	for rows.Next() {
		var (
			r  domain.RunRecord
			id int64
		)
		if err := rows.Scan(&id, &r.Runner, &r.Labels, &r.Total, &r.Failures, &r.Errors,
			&r.Skipped, &r.Interrupted, &r.StartedAt, &r.DurationMS, &r.Outcomes); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.ID = domain.RunID(id)
		out = append(out, r)
	}
	return out, rows.Err()
}
