package scheduler

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/hamed0406/probeharness/internal/domain"
	"github.com/hamed0406/probeharness/internal/registry"
	"github.com/hamed0406/probeharness/internal/repo"
)

type AlerterConfig struct {
	AlertOnRecovery bool
	Cooldown        time.Duration
	PollInterval    time.Duration
	// Apps, when set, limits alerting to registered applications. Outcomes
	// of extra probes whose IDs do not start with an app name are ignored.
	Apps *registry.Registry
}

// Alerter watches the latest recorded run and notifies when an application
// starts failing or recovers.
type Alerter struct {
	runs     repo.RunStore
	alertDB  repo.AlertStore
	notifier interface {
		Send(context.Context, string, string) error
	}
	cfg      AlerterConfig
	lastSeen domain.RunID
}

func NewAlerter(
	runs repo.RunStore,
	alertDB repo.AlertStore,
	notifier interface {
		Send(context.Context, string, string) error
	},
	cfg AlerterConfig,
) *Alerter {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 30 * time.Second
	}
	return &Alerter{
		runs:     runs,
		alertDB:  alertDB,
		notifier: notifier,
		cfg:      cfg,
	}
}

func (a *Alerter) Run(ctx context.Context) error {
	t := time.NewTicker(a.cfg.PollInterval)
	defer t.Stop()

	// initial pass
	_ = a.scanOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			_ = a.scanOnce(ctx)
		}
	}
}

// appState is the pass/fail state of one application within a run.
type appState struct {
	passed  bool
	failing []string
}

func appStates(rec domain.RunRecord, apps *registry.Registry) map[string]*appState {
	out := make(map[string]*appState)
	for _, o := range rec.Outcomes {
		app, _, _ := strings.Cut(o.ProbeID, ".")
		if apps != nil {
			if _, err := apps.App(app); err != nil {
				continue
			}
		}
		st := out[app]
		if st == nil {
			st = &appState{passed: true}
			out[app] = st
		}
		if o.Status == "fail" || o.Status == "error" {
			st.passed = false
			st.failing = append(st.failing, o.ProbeID)
		}
	}
	return out
}

func (a *Alerter) scanOnce(ctx context.Context) error {
	runs, err := a.runs.RecentRuns(ctx, 1)
	if err != nil {
		return err
	}
	if len(runs) == 0 || runs[0].ID == a.lastSeen {
		return nil
	}
	rec := runs[0]
	a.lastSeen = rec.ID

	now := time.Now()
	states := appStates(rec, a.cfg.Apps)
	apps := make([]string, 0, len(states))
	for app := range states {
		apps = append(apps, app)
	}
	sort.Strings(apps)

	for _, app := range apps {
		st := states[app]
		prev, _ := a.alertDB.Get(ctx, app)

		// Has the pass/fail state changed compared to what we last recorded?
		stateChanged := prev == nil || prev.LastPassed != st.passed

		// Cooldown only matters for failure alerts (suppresses noisy repeats).
		cooled := true
		if prev != nil && prev.LastSentAt != nil {
			cooled = now.Sub(*prev.LastSentAt) >= a.cfg.Cooldown
		}

		failAlert := stateChanged && !st.passed && cooled
		recoveryAlert := stateChanged && st.passed && prev != nil && a.cfg.AlertOnRecovery // bypass cooldown

		if failAlert || recoveryAlert {
			title := "🔴 Probes FAILING: " + app
			text := fmt.Sprintf("Failing: %s\nRun: %d (%s)\nStarted: %s",
				strings.Join(st.failing, ", "), rec.ID, rec.Runner, rec.StartedAt.Format(time.RFC3339))
			if st.passed {
				title = "🟢 Probes RECOVERED: " + app
				text = fmt.Sprintf("Run: %d (%s)\nStarted: %s", rec.ID, rec.Runner, rec.StartedAt.Format(time.RFC3339))
			}

			// Best‑effort send and record the send time
			_ = a.notifier.Send(ctx, title, text)
			_ = a.alertDB.Set(ctx, app, st.passed, now)
			continue
		}

		// State changed without a send (failing within cooldown, or recovery
		// alerts disabled): record it and keep the last send time so the
		// cooldown still counts from the last real alert.
		if stateChanged {
			var lastSent time.Time
			if prev != nil && prev.LastSentAt != nil {
				lastSent = *prev.LastSentAt
			}
			_ = a.alertDB.Set(ctx, app, st.passed, lastSent)
		}
	}

	return nil
}
