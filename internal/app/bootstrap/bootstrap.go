package bootstrap

import (
	"context"
	"fmt"
	"time"

	"portfolio_tracker/internal/app/port"
	"portfolio_tracker/internal/app/service"
	"portfolio_tracker/internal/client"
	"portfolio_tracker/internal/domain/entity"
	"portfolio_tracker/internal/infrastructure/configloader"
	"portfolio_tracker/internal/infrastructure/fiatrates"
	"portfolio_tracker/internal/infrastructure/holdingsloader"
	netclient "portfolio_tracker/internal/infrastructure/network/client"
	"portfolio_tracker/internal/pkg/logger"

	"go.uber.org/zap"
)

// BuildPortfolioService wires every pricing source into a ready
// PortfolioValuationService. The returned cleanup function releases the RPC
// connection and must be called on shutdown.
func BuildPortfolioService(ctx context.Context, cfg *configloader.Config) (port.PortfolioService, func(), error) {
	zapLogger := logger.Zap()

	holdingsProvider := holdingsloader.NewHoldingsFileLoader(cfg.Holdings.FilePath, logger.Info, logger.Warn)
	holdings, err := holdingsProvider.GetHoldings()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load holdings: %w", err)
	}
	book := entity.BuildAddressBook(holdings)

	fiatProvider, err := fiatrates.NewProvider(fiatrates.Options{
		ArchiveURL:     cfg.FiatRates.ArchiveURL,
		CacheDir:       cfg.FiatRates.CacheDir,
		RequestTimeout: time.Duration(cfg.FiatRates.RequestTimeoutMillis) * time.Millisecond,
	}, logger.NewAdapter())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize fiat rates: %w", err)
	}

	mexcClient := client.NewMEXCClient(
		cfg.Exchange.BaseURL,
		cfg.Exchange.APIKey,
		time.Duration(cfg.Exchange.RequestTimeoutMillis)*time.Millisecond,
		zapLogger,
	)
	dexClient := client.NewDEXScreenerClient(
		cfg.DEXScreener.BaseURL,
		time.Duration(cfg.DEXScreener.RequestTimeoutMillis)*time.Millisecond,
		zapLogger,
	)

	quoter, err := netclient.NewUniswapQuoter(ctx, netclient.UniswapQuoterOptions{
		RPCURL:             cfg.AMM.RPCURL,
		V2RouterAddress:    cfg.AMM.V2RouterAddress,
		V3QuoterAddress:    cfg.AMM.V3QuoterAddress,
		RPCCallTimeout:     time.Duration(cfg.AMM.RPCCallTimeoutMillis) * time.Millisecond,
		RateLimitPerSecond: float64(cfg.AMM.RateLimitPerSecond),
		RateLimitBurst:     cfg.AMM.RateLimitBurst,
	}, zapLogger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize pool quoter: %w", err)
	}

	ammService := service.NewAMMPriceService(quoter, cfg.AMM.MaxConcurrentQuotes, zapLogger)
	priceService := service.NewPriceService(
		mexcClient,
		dexClient,
		ammService,
		book,
		time.Duration(cfg.Cache.QuoteTTLSeconds)*time.Second,
		zapLogger,
	)

	stockService := service.NewStockService(
		client.NewNaverChartClient(cfg.Stocks.NaverBaseURL, time.Duration(cfg.Stocks.RequestTimeoutMillis)*time.Millisecond, zapLogger),
		client.NewYahooQuoteClient(cfg.Stocks.YahooBaseURL, time.Duration(cfg.Stocks.RequestTimeoutMillis)*time.Millisecond, zapLogger),
		zapLogger,
	)

	portfolioService := service.NewPortfolioValuationService(
		holdingsProvider,
		priceService,
		stockService,
		fiatProvider,
		service.PortfolioOptions{
			LocalCurrency:    cfg.FiatRates.LocalCurrency,
			HighlightSymbols: cfg.Notify.HighlightSymbols,
		},
		zapLogger,
	)

	zapLogger.Info("Portfolio service wired",
		zap.Int("holdings", len(holdings)),
		zap.Int("address_book", len(book)),
		zap.String("local_currency", cfg.FiatRates.LocalCurrency))
	return portfolioService, quoter.Close, nil
}
