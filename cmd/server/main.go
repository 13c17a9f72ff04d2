package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"tradepro/internal/auth"
	"tradepro/internal/config"
	"tradepro/internal/database"
	"tradepro/internal/handlers"
	"tradepro/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// the configured logger is not available yet
		config.LogConfig{}.NewLogger().Fatalf("load config: %v", err)
	}
	logger := cfg.Log.NewLogger()
	if err := cfg.Validate(); err != nil {
		logger.Fatalf("invalid config: %v", err)
	}
	logger.WithField("config", cfg.Redacted()).Info("configuration loaded")

	decimal.MarshalJSONWithoutQuotes = true
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.Open(cfg.Database.Driver, cfg.Database.URL)
	if err != nil {
		logger.Fatalf("db connect failed: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := database.Migrate(ctx, db, logger); err != nil {
		logger.Fatalf("migrate failed: %v", err)
	}
	r := database.New(db, logger, database.WithTimeout(cfg.Database.Timeout))

	secret := cfg.Auth.JWTSecret
	if secret == "" {
		secret = uuid.NewString()
		logger.Warn("JWT_SECRET not set; using a random secret, sessions end on restart")
	}
	issuer := auth.NewIssuer(secret, cfg.Auth.TokenTTL)
	cipher, err := auth.NewFieldCipher(cfg.Auth.FieldKey)
	if err != nil {
		logger.Fatalf("field cipher: %v", err)
	}

	hub := handlers.NewHub(cfg.CORS.AllowedOrigins, logger)

	locks := service.NewUserLocks()
	wallets := service.NewWalletService(r, locks, cfg.Wallet, logger)
	trades := service.NewTradeService(r, locks, wallets, cfg.Trading, logger)
	portfolio := service.NewPortfolioService(r, logger)
	watchlist := service.NewWatchlistService(r, logger)
	svc := handlers.Services{
		Auth:      service.NewAuthService(r, wallets, issuer, logger),
		Users:     service.NewUserService(r, cipher, logger),
		Wallets:   wallets,
		Trades:    trades,
		Portfolio: portfolio,
		Watchlist: watchlist,
		Dashboard: service.NewDashboardService(wallets, portfolio, trades, watchlist, logger),
		Stocks:    service.NewStockService(r, logger),
		Payments:  service.NewPaymentService(r, locks, wallets, cfg.Payment, logger),
	}

	priceSvc := service.NewCleanPriceService(r, hub, logger)
	if n, err := priceSvc.Backfill(ctx, cfg.Prices.BackfillDays); err != nil {
		logger.Warnf("price backfill failed: %v", err)
	} else if n > 0 {
		logger.Infof("backfilled price history for %d stocks", n)
	}
	if err := priceSvc.Start(ctx, cfg.Prices.Schedule); err != nil {
		logger.Fatalf("price scheduler: %v", err)
	}

	h := handlers.NewHandler(svc, r, issuer, hub, logger)
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handlers.NewRouter(h, cfg.CORS.AllowedOrigins),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Infof("server starting on :%s", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")
	cancel()
	hub.Close()

	shutdownCtx, stop := context.WithTimeout(context.Background(), 30*time.Second)
	defer stop()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("server forced to shutdown: %v", err)
	}
	logger.Info("server exited")
}
