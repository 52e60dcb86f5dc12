package memory

import (
	"context"
	"sync"
	"time"

	"github.com/hamed0406/probeharness/internal/domain"
	"github.com/hamed0406/probeharness/internal/repo"
)

// Store keeps run history and alert state in process memory. History is
// capped at Max runs, oldest dropped first.
type Store struct {
	mu     sync.RWMutex
	Max    int
	nextID domain.RunID
	runs   []domain.RunRecord
	alerts map[string]repo.AlertRecord
}

func New() *Store {
	return &Store{
		Max:    500,
		runs:   make([]domain.RunRecord, 0, 64),
		alerts: make(map[string]repo.AlertRecord),
	}
}

func (m *Store) SaveRun(ctx context.Context, rec *domain.RunRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	rec.ID = m.nextID
	if rec.StartedAt.IsZero() {
		rec.StartedAt = time.Now().UTC()
	}
	m.runs = append(m.runs, *rec)
	if m.Max > 0 && len(m.runs) > m.Max {
		m.runs = append(m.runs[:0:0], m.runs[len(m.runs)-m.Max:]...)
	}
	return nil
}

func (m *Store) RecentRuns(ctx context.Context, limit int) ([]domain.RunRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if limit <= 0 || limit > len(m.runs) {
		limit = len(m.runs)
	}
	out := make([]domain.RunRecord, 0, limit)
	for i := len(m.runs) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.runs[i])
	}
	return out, nil
}

// ---- AlertStore ----

func (m *Store) Get(ctx context.Context, scope string) (*repo.AlertRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.alerts[scope]
	if !ok {
		return nil, nil
	}
	return &r, nil
}

func (m *Store) Set(ctx context.Context, scope string, lastPassed bool, sentAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r := repo.AlertRecord{Scope: scope, LastPassed: lastPassed}
	if !sentAt.IsZero() {
		ts := sentAt
		r.LastSentAt = &ts
	}
	m.alerts[scope] = r
	return nil
}
