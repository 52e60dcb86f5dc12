package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/hamed0406/probeharness/internal/repo"
)

func (s *Store) Get(ctx context.Context, scope string) (*repo.AlertRecord, error) {
	const q = `SELECT last_passed, last_sent_at FROM probe_alerts WHERE scope=$1`
	var r repo.AlertRecord
	r.Scope = scope
	var lastSent *time.Time
	err := s.pool.QueryRow(ctx, q, scope).Scan(&r.LastPassed, &lastSent)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	r.LastSentAt = lastSent
	return &r, nil
}

func (s *Store) Set(ctx context.Context, scope string, lastPassed bool, sentAt time.Time) error {
	const q = `
		INSERT INTO probe_alerts (scope, last_passed, last_sent_at)
		VALUES ($1,$2,$3)
		ON CONFLICT (scope)
		DO UPDATE SET last_passed=EXCLUDED.last_passed, last_sent_at=EXCLUDED.last_sent_at
	`
	var ts *time.Time
	if !sentAt.IsZero() {
		ts = &sentAt
	}
	_, err := s.pool.Exec(ctx, q, scope, lastPassed, ts)
	return err
}
