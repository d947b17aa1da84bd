package main

import (
	"context"
	"fmt"

	"api_transactions/api"
	"api_transactions/internal/config"
	"api_transactions/internal/database"
	"api_transactions/internal/logging"
	"api_transactions/internal/seed"
	"api_transactions/internal/transactions"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(fmt.Errorf("error loading config: %v", err))
	}

	logger, err := logging.New(cfg.Log.Level)
	if err != nil {
		panic(fmt.Errorf("error building logger: %v", err))
	}
	defer logger.Sync()

	store, err := openStore(cfg.Database)
	if err != nil {
		logger.Fatal("failed to open record store", zap.String("backend", cfg.Database.Backend), zap.Error(err))
	}

	service := transactions.NewService(store, logger, cfg.Report.ReferenceYear)
	source := seed.NewHTTPSource(cfg.Seed.SourceURL, cfg.Seed.Timeout, cfg.Seed.RetryCount)
	defer source.Close()

	if cfg.Seed.OnStartup {
		if err := service.SeedFromSource(context.Background(), source); err != nil {
			logger.Fatal("failed to seed on startup", zap.String("source_url", cfg.Seed.SourceURL), zap.Error(err))
		}
	}

	gin.SetMode(cfg.Server.Mode)
	r := gin.New()
	r.Use(gin.Recovery(), logging.Middleware(logger))
	api.InitRoutes(r, api.NewTransactionsHandler(service, source, logger, cfg.Report.PageSize))

	logger.Info("starting server",
		zap.String("addr", cfg.Addr()),
		zap.String("backend", cfg.Database.Backend),
		zap.Int("reference_year", cfg.Report.ReferenceYear),
	)
	if err := r.Run(cfg.Addr()); err != nil {
		logger.Fatal("error trying to start server", zap.Error(err))
	}
}

func openStore(cfg config.DatabaseConfig) (transactions.Store, error) {
	if cfg.Backend == config.BackendMemory {
		return transactions.NewLocalStorage(), nil
	}

	db, err := database.Init(cfg)
	if err != nil {
		return nil, err
	}
	if err := database.AutoMigrate(db); err != nil {
		return nil, err
	}
	return database.NewTransactionStore(db), nil
}
