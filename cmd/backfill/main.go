package main

import (
	"context"
	"flag"

	"tradepro/internal/config"
	"tradepro/internal/database"
	"tradepro/internal/service"
)

// backfill seeds price history for stocks that have none, optionally followed by one
// simulated price move for every stock.
func main() {
	days := flag.Int("days", 0, "days of history to generate (default PRICE_BACKFILL_DAYS)")
	update := flag.Bool("update", false, "apply one price update after backfilling")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		config.LogConfig{}.NewLogger().Fatalf("load config: %v", err)
	}
	logger := cfg.Log.NewLogger()
	if err := cfg.Validate(); err != nil {
		logger.Fatalf("invalid config: %v", err)
	}
	if *days <= 0 {
		*days = cfg.Prices.BackfillDays
	}

	db, err := database.Open(cfg.Database.Driver, cfg.Database.URL)
	if err != nil {
		logger.Fatalf("failed to connect to db: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	if err := database.Migrate(ctx, db, logger); err != nil {
		logger.Fatalf("migrate failed: %v", err)
	}
	r := database.New(db, logger, database.WithTimeout(cfg.Database.Timeout))

	prices := service.NewCleanPriceService(r, nil, logger)
	n, err := prices.Backfill(ctx, *days)
	if err != nil {
		logger.Fatalf("backfill failed: %v", err)
	}
	logger.Infof("backfilled %d days of history for %d stocks", *days, n)

	if *update {
		n, err := prices.UpdateAll(ctx)
		if err != nil {
			logger.Fatalf("price update failed: %v", err)
		}
		logger.Infof("updated %d quotes", n)
	}
}
