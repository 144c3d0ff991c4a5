// cmd/worker-manager/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"go.uber.org/zap"

	"provider-matching-workers/internal/bootstrap"
	"provider-matching-workers/internal/common/camunda"
	"provider-matching-workers/internal/common/config"
	"provider-matching-workers/internal/common/logger"
	"provider-matching-workers/internal/common/observability"
	"provider-matching-workers/internal/scheduler"
	"provider-matching-workers/pkg/registry"

	cpd "provider-matching-workers/internal/workers/dedup/check-provider-duplicate"
	mdp "provider-matching-workers/internal/workers/dedup/merge-duplicate-providers"
	rdp "provider-matching-workers/internal/workers/dedup/run-dedup-pass"
	mp "provider-matching-workers/internal/workers/matching/match-providers"
)

func main() {
	bootLog := logger.New("info", "console")

	cfg, err := config.Load()
	if err != nil {
		bootLog.Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.NewWithOutput(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog).WithFields(map[string]interface{}{
		"app":     cfg.App.Name,
		"version": cfg.App.Version,
	})
	zapLog.Info("Starting worker manager...", zap.String("environment", cfg.App.Environment))

	obs, err := observability.New(cfg.App.Name)
	if err != nil {
		zapLog.Fatal("observability init failed", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	activities, err := registry.LoadOrDefault(cfg.Registry.Path)
	if err != nil {
		zapLog.Fatal("activity registry load failed", zap.Error(err))
	}

	// --- Init Zeebe Client with retry ---
	zeebe, err := camunda.NewClientWithConfig(ctx, &camunda.ClientConfig{
		GatewayAddress:         cfg.Camunda.BrokerAddress,
		UsePlaintextConnection: cfg.Camunda.Insecure,
		RequestTimeout:         config.GetDuration(cfg.Camunda.RequestTimeout),
		RetryConfig:            &camunda.RetryConfig{MaxRetries: 10, BaseDelay: 2 * time.Second, MaxDelay: 30 * time.Second},
	})
	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	zapLog.Info("Zeebe client connected successfully")

	// --- Init stores (Postgres, Redis, optional Elasticsearch) ---
	stores, err := bootstrap.OpenStores(ctx, cfg, log)
	if err != nil {
		zapLog.Fatal("store initialization failed", zap.Error(err))
	}
	defer stores.Close()

	engines, err := bootstrap.NewEngines(cfg, stores.Store, log)
	if err != nil {
		zapLog.Fatal("engine configuration invalid", zap.Error(err))
	}

	// --- Register Workers ---
	mpCfg := mp.LoadConfig(activities)
	cpdCfg := cpd.LoadConfig(activities)
	mdpCfg := mdp.LoadConfig(activities)
	rdpCfg := rdp.LoadConfig(activities)

	handlers := []struct {
		taskType string
		handler  camunda.JobHandler
		timeout  time.Duration
	}{
		{mp.TaskType, mp.NewHandler(mpCfg, engines.Matching, stores.Candidates, obs, log), mpCfg.Timeout},
		{cpd.TaskType, cpd.NewHandler(cpdCfg, engines.Dedup, obs, log), cpdCfg.Timeout},
		{mdp.TaskType, mdp.NewHandler(mdpCfg, engines.Coordinator, obs, log), mdpCfg.Timeout},
		{rdp.TaskType, rdp.NewHandler(rdpCfg, engines.Coordinator, obs, log), rdpCfg.Timeout},
	}

	var workers []*camunda.Worker
	for _, h := range handlers {
		if !config.IsWorkerEnabled(cfg, h.taskType) {
			zapLog.Info("worker disabled", zap.String("taskType", h.taskType))
			continue
		}
		wcfg := config.GetWorkerConfig(cfg, h.taskType)
		workers = append(workers, camunda.NewWorker(zeebe.GetClient(), h.taskType, camunda.WorkerOptions{
			MaxJobsActive: wcfg.MaxJobsActive,
			// the job lock must outlast the handler's own deadline
			Timeout: max(config.GetDuration(wcfg.Timeout), h.timeout),
		}, h.handler, obs, log))
	}
	zapLog.Info("Workers registered", zap.Int("count", len(workers)))

	// --- Scheduled dedup pass ---
	var sched *scheduler.Scheduler
	if cfg.Scheduler.DedupEnabled {
		sched = scheduler.New(engines.Coordinator, rdpCfg.Timeout, obs, log)
		if err := sched.Schedule(cfg.Scheduler.DedupCron); err != nil {
			zapLog.Fatal("dedup schedule invalid", zap.Error(err))
		}
		sched.Start()
	}

	// --- Health & Metrics Server ---
	var ready atomic.Bool
	checks := map[string]HealthCheck{
		"zeebe":    zeebe.HealthCheck,
		"postgres": stores.Postgres.Ping,
		"redis":    stores.Redis.Ping,
	}
	if stores.Search != nil {
		checks["elasticsearch"] = stores.Search.Ping
	}
	server := &http.Server{
		Addr:              cfg.Server.Address,
		Handler:           newMux(checks, &ready, 3*time.Second),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		zapLog.Info("Health/Metrics server listening", zap.String("address", cfg.Server.Address))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()
	ready.Store(true)

	// --- Graceful Shutdown ---
	<-ctx.Done()
	ready.Store(false)

	zapLog.Info("Shutdown signal received, stopping workers...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if sched != nil {
		sched.Stop(shutdownCtx)
	}
	for _, w := range workers {
		w.Stop()
	}
	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error stopping Health/Metrics server", zap.Error(err))
	}
	if err := zeebe.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}
	if err := obs.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error shutting down observability", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}
