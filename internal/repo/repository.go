package repo

import (
	"context"

	"github.com/hamed0406/probeharness/internal/domain"
)

// Ports for run history; memory and postgres adapters implement them.
type RunStore interface {
	// SaveRun stores rec and sets its ID.
	SaveRun(ctx context.Context, rec *domain.RunRecord) error
	// RecentRuns returns up to limit runs, newest first.
	RecentRuns(ctx context.Context, limit int) ([]domain.RunRecord, error)
}
