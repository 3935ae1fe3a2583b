package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"portfolio_tracker/internal/app/bootstrap"
	"portfolio_tracker/internal/infrastructure/configloader"
	"portfolio_tracker/internal/infrastructure/restapi"
	"portfolio_tracker/internal/pkg/logger"

	"github.com/joho/godotenv"
)

func main() {
	configPath := flag.String("config", "config/config.yml", "path to the YAML configuration file")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		logger.Debug("No .env file loaded", "error", err)
	}

	cfg, err := configloader.Load(*configPath)
	if err != nil {
		logger.Fatal("Failed to load configuration", "path", *configPath, "error", err)
	}
	configloader.ApplyEnv(cfg)

	logger.Init(cfg.Logging.Level)
	defer func() { _ = logger.Zap().Sync() }()

	wireCtx, wireCancel := context.WithTimeout(context.Background(), time.Minute)
	portfolioService, cleanup, err := bootstrap.BuildPortfolioService(wireCtx, cfg)
	wireCancel()
	if err != nil {
		logger.Fatal("Failed to wire portfolio service", "error", err)
	}
	defer cleanup()

	router := restapi.SetupRouter(restapi.NewReportHandler(portfolioService, logger.Zap()))

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	go func() {
		logger.Info("Server starting", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	logger.Info("Server exited")
}
