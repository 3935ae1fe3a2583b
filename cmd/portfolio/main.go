package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"portfolio_tracker/internal/app/bootstrap"
	"portfolio_tracker/internal/app/service"
	"portfolio_tracker/internal/infrastructure/configloader"
	"portfolio_tracker/internal/infrastructure/console"
	"portfolio_tracker/internal/infrastructure/notifier"
	"portfolio_tracker/internal/pkg/logger"

	"github.com/joho/godotenv"
)

func main() {
	configPath := flag.String("config", "config/config.yml", "path to the YAML configuration file")
	holdingsPath := flag.String("holdings", "", "override for the holdings CSV path")
	notify := flag.Bool("notify", false, "send the summary to the configured webhook")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		logger.Debug("No .env file loaded", "error", err)
	}

	cfg, err := configloader.Load(*configPath)
	if err != nil {
		logger.Fatal("Failed to load configuration", "path", *configPath, "error", err)
	}
	configloader.ApplyEnv(cfg)
	if *holdingsPath != "" {
		cfg.Holdings.FilePath = *holdingsPath
	}

	logger.Init(cfg.Logging.Level)
	defer func() { _ = logger.Zap().Sync() }()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	portfolioService, cleanup, err := bootstrap.BuildPortfolioService(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to wire portfolio service", "error", err)
	}
	defer cleanup()

	report, err := portfolioService.BuildReport(ctx)
	if err != nil {
		logger.Fatal("Failed to build portfolio report", "error", err)
	}

	fmt.Println(console.NewRenderer(cfg.FiatRates.CurrencySign).Render(report))

	if *notify {
		message := service.BuildSummaryMessage(report, cfg.FiatRates.CurrencySign, cfg.Notify.HighlightSymbols)
		n := notifier.NewDiscordNotifier(
			cfg.Notify.WebhookURL,
			time.Duration(cfg.Notify.RequestTimeoutMillis)*time.Millisecond,
			logger.Zap(),
		)
		if err := n.Send(ctx, message); err != nil {
			logger.Error("Failed to send notification", "error", err)
		}
	}
}
