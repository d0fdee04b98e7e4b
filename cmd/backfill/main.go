package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"stockchart-engine/internal/config"
	"stockchart-engine/internal/database"
	"stockchart-engine/internal/logger"
	"stockchart-engine/internal/marketdata"
	"stockchart-engine/internal/store"
	"stockchart-engine/internal/updater"
	"go.uber.org/zap"
)

// One-shot historical backfill: fetches a longer price history for the
// configured markets and exits. Useful after adding a market, before the
// periodic refresh has accumulated any history.
func main() {
	symbol := flag.String("symbol", "", "only backfill this market symbol")
	period := flag.String("period", "1month", "history period to fetch (1d, 5d, 1month, 3month, 6month, 1year, 5year)")
	configPath := flag.String("config", "./configs", "config directory")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		panic(fmt.Sprintf("could not load config: %v", err))
	}

	log, err := logger.NewLogger(cfg.Logger.Level, cfg.Logger.Format)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	db, err := database.New(&cfg)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}

	chain := marketdata.NewChain(&cfg.Providers, log.Named("marketdata"))
	st := store.New(db, log.Named("store"))
	up := updater.New(log.Named("backfill"), chain, st, nil)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		sigchan := make(chan os.Signal, 1)
		signal.Notify(sigchan, syscall.SIGINT, syscall.SIGTERM)
		<-sigchan
		cancel()
	}()

	if err := up.Backfill(ctx, *symbol, *period); err != nil {
		log.Error("Backfill failed", zap.Error(err))
		os.Exit(1)
	}
	log.Info("Backfill complete")
}
