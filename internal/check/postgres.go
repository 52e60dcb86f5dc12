package check

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
)

// PostgresChecker connects to the DSN given as target and pings the server.
type PostgresChecker struct {
	Timeout time.Duration
}

func NewPostgresChecker(timeout time.Duration) *PostgresChecker {
	return &PostgresChecker{Timeout: timeout}
}

func (p *PostgresChecker) Check(ctx context.Context, target string) Result {
	if p.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.Timeout)
		defer cancel()
	}

	start := time.Now()
	conn, err := pgx.Connect(ctx, target)
	if err != nil {
		return Result{Name: "Postgres", Message: err.Error(), LatencyMS: since(start), Err: err}
	}
	defer conn.Close(context.Background())

	if err := conn.Ping(ctx); err != nil {
		return Result{Name: "Postgres", Message: err.Error(), LatencyMS: since(start), Err: err}
	}
	return Result{Name: "Postgres", Success: true, Message: "ping ok", LatencyMS: since(start)}
}

func since(t time.Time) float64 {
	return time.Since(t).Seconds() * 1000
}
