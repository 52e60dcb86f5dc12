package main

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/hamed0406/probeharness/internal/config"
	"github.com/hamed0406/probeharness/internal/httpapi"
	apimw "github.com/hamed0406/probeharness/internal/httpapi/middleware"
	"github.com/hamed0406/probeharness/internal/logging"
	"github.com/hamed0406/probeharness/internal/notify"
	"github.com/hamed0406/probeharness/internal/registry"
	"github.com/hamed0406/probeharness/internal/repo"
	"github.com/hamed0406/probeharness/internal/repo/memory"
	"github.com/hamed0406/probeharness/internal/repo/postgres"
	"github.com/hamed0406/probeharness/internal/scheduler"
	"github.com/hamed0406/probeharness/internal/suite"
)

type stores interface {
	repo.RunStore
	repo.AlertStore
}

func main() {
	cfg := config.FromEnv()
	logger, err := logging.NewLogger(cfg.LogDir, cfg.LogLevel)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var store stores
	if cfg.DatabaseURL != "" {
		pg, err := postgres.New(ctx, cfg.DatabaseURL, logger)
		if err != nil {
			logger.Fatal("db_connect_failed", zap.Error(err))
		}
		defer pg.Close()
		if err := pg.Migrate(ctx); err != nil {
			logger.Fatal("db_migrate_failed", zap.Error(err))
		}
		store = pg
		logger.Info("store_selected", zap.String("kind", "postgres"))
	} else {
		store = memory.New()
		logger.Info("store_selected", zap.String("kind", "memory"))
	}

	apps, err := registry.LoadFile(cfg.AppsFile)
	if err != nil {
		logger.Fatal("apps_manifest_failed", zap.String("path", cfg.AppsFile), zap.Error(err))
	}
	logger.Info("apps_loaded", zap.String("path", cfg.AppsFile), zap.Int("count", apps.Len()))

	newRunner := func(p suite.Policy, opts ...suite.Option) (suite.ProbeRunner, error) {
		opts = append(opts,
			suite.WithLogger(logger),
			suite.WithRecorder(store),
			// HTTP and scheduled runs stop on context cancellation, not on signals.
			suite.WithInterrupter(suite.NopInterrupter{}),
		)
		return suite.NewNamedRunner(cfg.Runner, p, apps, opts...)
	}
	if _, err := newRunner(suite.Policy{}); err != nil {
		logger.Fatal("runner_unavailable", zap.String("runner", cfg.Runner), zap.Error(err))
	}

	runLock := &sync.Mutex{}
	api := httpapi.NewServer(logger, store, newRunner)
	api.RunLock = runLock

	// periodic runs, silent on the terminal; results land in the store
	if cfg.ProbeInterval > 0 {
		bg, _ := newRunner(suite.Policy{Verbosity: 0}, suite.WithOutput(io.Discard), suite.WithDiag(io.Discard))
		rc := scheduler.NewRechecker(logger, bg, nil, cfg.ProbeInterval, 0)
		rc.Lock = runLock
		go rc.Run(ctx)
	}

	notifiers := notify.Multi{notify.Log{Logger: logger}}
	if s := notify.NewSlack(cfg.SlackWebhookURL); s != nil {
		notifiers = append(notifiers, s)
	}
	alerter := scheduler.NewAlerter(store, store, notifiers, scheduler.AlerterConfig{
		AlertOnRecovery: true,
		Cooldown:        cfg.NotifyCooldown,
		PollInterval:    30 * time.Second,
		Apps:            apps,
	})
	go func() {
		if err := alerter.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Warn("alerter_stopped", zap.Error(err))
		}
	}()

	keys := apimw.Keys{View: cfg.ViewAPIKeys, Admin: cfg.AdminAPIKeys}
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.Router(keys, cfg.AllowedOrigins, cfg.ViewRPM, cfg.ViewBurst),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("api_listen", zap.String("addr", cfg.Addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("api_listen_failed", zap.Error(err))
	}
	logger.Info("api_stopped")
}
