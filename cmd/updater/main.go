package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"stockchart-engine/internal/config"
	"stockchart-engine/internal/database"
	"stockchart-engine/internal/logger"
	"stockchart-engine/internal/marketdata"
	"stockchart-engine/internal/scheduler"
	"stockchart-engine/internal/store"
	"stockchart-engine/internal/updater"
	"go.uber.org/zap"
)

func main() {
	// Load application configuration
	cfg, err := config.LoadConfig("./configs")
	if err != nil {
		// We can't use the logger here because it's not initialized yet.
		panic(fmt.Sprintf("could not load config: %v", err))
	}

	// Initialize logger
	log, err := logger.NewLogger(cfg.Logger.Level, cfg.Logger.Format)
	if err != nil {
		panic(err)
	}
	defer log.Sync()
	log.Info("Configuration loaded")

	// Initialize database, migrate schema and seed configured markets
	db, err := database.New(&cfg)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	log.Info("Database connection successful and schema migrated.")

	// Provider chain, persistence and the two entry points
	chain := marketdata.NewChain(&cfg.Providers, log.Named("marketdata"))
	st := store.New(db, log.Named("store"))
	up := updater.New(log.Named("updater"), chain, st, nil)

	// Setup context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		sigchan := make(chan os.Signal, 1)
		signal.Notify(sigchan, syscall.SIGINT, syscall.SIGTERM)
		<-sigchan
		log.Info("Shutdown signal received, gracefully shutting down...")
		cancel()
	}()

	// Schedule the two entry points
	runner := scheduler.New(log, ctx)
	if _, err := runner.Add(cfg.Scheduler.RefreshCron, up.RefreshMarkets); err != nil {
		log.Fatal("Failed to schedule market refresh", zap.Error(err))
	}
	if _, err := runner.Add(cfg.Scheduler.ReconcileCron, up.ReconcilePredictions); err != nil {
		log.Fatal("Failed to schedule prediction reconciliation", zap.Error(err))
	}
	runner.Start()
	log.Info("Scheduler running",
		zap.String("refresh_cron", cfg.Scheduler.RefreshCron),
		zap.String("reconcile_cron", cfg.Scheduler.ReconcileCron))

	statusServer := updater.NewStatusServer(up, cfg.Server.Port, log)
	statusServer.Start()

	<-ctx.Done()

	runner.Stop()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := statusServer.Stop(shutdownCtx); err != nil {
		log.Error("Failed to stop status server cleanly", zap.Error(err))
	}
	log.Info("Engine has been shut down.")
}
