package main

import (
	"context"

	"tradepro/internal/config"
	"tradepro/internal/database"
	"tradepro/internal/service"
)

// migrate-wallets creates a wallet for every user that predates wallets. A user's
// legacy balance becomes the opening deposit; users without one get the configured
// opening balance. Running it again is a no-op.
func main() {
	cfg, err := config.Load()
	if err != nil {
		config.LogConfig{}.NewLogger().Fatalf("load config: %v", err)
	}
	logger := cfg.Log.NewLogger()
	if err := cfg.Validate(); err != nil {
		logger.Fatalf("invalid config: %v", err)
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

	wallets := service.NewWalletService(r, service.NewUserLocks(), cfg.Wallet, logger)
	n, err := wallets.MigrateLegacy(ctx)
	if err != nil {
		logger.Fatalf("wallet migration failed after %d users: %v", n, err)
	}
	logger.Infof("created %d wallets", n)
}
