package service

import (
	"context"
	"fmt"
	"strings"

	"portfolio_tracker/internal/app/port"
	"portfolio_tracker/internal/domain/entity"

	"go.uber.org/zap"
)

// PortfolioOptions carries the presentation-level knobs of a valuation pass.
type PortfolioOptions struct {
	LocalCurrency    string
	HighlightSymbols []string
}

// PortfolioValuationService implements port.PortfolioService. One BuildReport
// call loads the holdings sheet, resolves every price and produces the full
// report. A missing fiat rate aborts the pass; a single unpriceable asset
// only zeroes its own row.
type PortfolioValuationService struct {
	holdings port.HoldingsProvider
	resolver port.PriceResolver
	stocks   port.StockPriceService
	fiat     port.FiatRateProvider
	opts     PortfolioOptions
	logger   *zap.Logger
}

var _ port.PortfolioService = (*PortfolioValuationService)(nil)

// NewPortfolioValuationService creates a PortfolioValuationService.
func NewPortfolioValuationService(
	holdings port.HoldingsProvider,
	resolver port.PriceResolver,
	stocks port.StockPriceService,
	fiat port.FiatRateProvider,
	opts PortfolioOptions,
	logger *zap.Logger,
) *PortfolioValuationService {
	return &PortfolioValuationService{
		holdings: holdings,
		resolver: resolver,
		stocks:   stocks,
		fiat:     fiat,
		opts:     opts,
		logger:   logger.Named("portfolio_service"),
	}
}

// BuildReport implements port.PortfolioService.
func (s *PortfolioValuationService) BuildReport(ctx context.Context) (*entity.PortfolioReport, error) {
	holdings, err := s.holdings.GetHoldings()
	if err != nil {
		return nil, fmt.Errorf("failed to load holdings: %w", err)
	}

	usdToLocal, err := s.fiat.GetRate("USD", s.opts.LocalCurrency)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve USD/%s rate: %w", s.opts.LocalCurrency, err)
	}

	report := &entity.PortfolioReport{
		LocalCurrency: s.opts.LocalCurrency,
		USDToLocal:    usdToLocal,
	}

	// Quotes memoized by an earlier pass must not leak into this one.
	s.resolver.Reset()

	ethPrice := s.resolver.Resolve(ctx, "ETH", "USDT")
	if ethPrice == 0 {
		s.logger.Warn("ETH price unavailable, ETH-denominated values and hop pricing disabled")
	}

	for _, h := range holdings {
		switch h.Class {
		case entity.AssetClassCrypto:
			s.addCryptoHolding(ctx, report, h, ethPrice, usdToLocal)
		case entity.AssetClassStock:
			s.addStockHolding(ctx, report, h, usdToLocal)
		}
	}

	report.CryptoTotalLocal = report.CryptoTotalUSD * usdToLocal
	report.TotalLocal = report.CryptoTotalLocal + report.StockTotalLocal
	report.TotalUSD = report.CryptoTotalUSD
	for _, row := range report.StockRows {
		report.TotalUSD += row.USDValue
	}
	report.CryptoProfitLocal = report.CryptoTotalLocal - report.CryptoInvestmentLocal
	report.StockProfitLocal = report.StockTotalLocal - report.StockInvestmentLocal
	report.TotalProfitLocal = report.CryptoProfitLocal + report.StockProfitLocal
	report.ProfitPositive = report.TotalProfitLocal >= 0

	report.HighlightPrices = s.highlightPrices(ctx, report, ethPrice)

	s.logger.Info("Portfolio report built",
		zap.Int("crypto_rows", len(report.CryptoRows)),
		zap.Int("stock_rows", len(report.StockRows)),
		zap.Float64("total_local", report.TotalLocal),
		zap.Float64("total_profit_local", report.TotalProfitLocal))
	return report, nil
}

func (s *PortfolioValuationService) addCryptoHolding(ctx context.Context, report *entity.PortfolioReport, h entity.Holding, ethPrice, usdToLocal float64) {
	if h.Subtype == entity.SubtypeInvestment {
		// The invested amount is recorded directly in the local currency.
		report.CryptoInvestmentLocal += h.Amount
		return
	}
	if h.Amount == 0 {
		s.logger.Debug("Skipping zero-amount holding", zap.String("asset", h.Symbol))
		return
	}

	priceUSD := s.cryptoUnitPriceUSD(ctx, h.Symbol, ethPrice)
	usdValue := h.Amount * priceUSD

	row := entity.PortfolioRow{
		Symbol:       h.Symbol,
		Amount:       h.Amount,
		Class:        h.Class,
		LocalValue:   usdValue * usdToLocal,
		USDValue:     usdValue,
		UnitPriceUSD: priceUSD,
	}
	if h.Symbol == "ETH" || h.Symbol == "WETH" {
		row.ETHValue = h.Amount
		row.HasETHValue = true
	} else if ethPair := s.resolver.Resolve(ctx, h.Symbol, "ETH"); ethPair > 0 {
		// The gas-asset column is its own pair observation, not a
		// derivation from the USD value.
		row.ETHValue = h.Amount * ethPair
		row.HasETHValue = true
	}

	report.CryptoRows = append(report.CryptoRows, row)
	report.CryptoTotalUSD += usdValue
}

// cryptoUnitPriceUSD resolves the USD unit price of a crypto asset. Assets
// whose symbol embeds "USD" are treated as dollar pegged. When the direct
// USDT pair fails, the asset is priced through its WETH pair times the ETH
// price.
func (s *PortfolioValuationService) cryptoUnitPriceUSD(ctx context.Context, symbol string, ethPrice float64) float64 {
	if strings.Contains(symbol, "USD") {
		return 1
	}

	price := s.resolver.Resolve(ctx, symbol, "USDT")
	if price > 0 {
		return price
	}
	if ethPrice > 0 {
		if hop := s.resolver.Resolve(ctx, symbol, "WETH"); hop > 0 {
			s.logger.Debug("Priced asset through its WETH pair", zap.String("asset", symbol))
			return hop * ethPrice
		}
	}
	s.logger.Warn("Asset could not be priced, valuing as zero", zap.String("asset", symbol))
	return 0
}

func (s *PortfolioValuationService) addStockHolding(ctx context.Context, report *entity.PortfolioReport, h entity.Holding, usdToLocal float64) {
	if h.Subtype == entity.SubtypeInvestment {
		report.StockInvestmentLocal += h.Amount
		return
	}
	if h.Amount == 0 {
		s.logger.Debug("Skipping zero-amount holding", zap.String("asset", h.Symbol))
		return
	}

	row := entity.PortfolioRow{
		Symbol: h.Symbol,
		Amount: h.Amount,
		Class:  h.Class,
	}

	ticker := h.Ticker
	if ticker == "" {
		ticker = h.Symbol
	}

	switch h.Subtype {
	case entity.SubtypeKRStock:
		price, err := s.stocks.KRWPrice(ctx, ticker)
		if err != nil {
			s.logger.Warn("Stock could not be priced, valuing as zero",
				zap.String("asset", h.Symbol), zap.String("ticker", ticker), zap.Error(err))
		} else {
			row.LocalValue = h.Amount * price
			if usdToLocal > 0 {
				row.USDValue = row.LocalValue / usdToLocal
				row.UnitPriceUSD = price / usdToLocal
			}
		}
	case entity.SubtypeUSStock:
		price, err := s.stocks.USDPrice(ctx, ticker)
		if err != nil {
			s.logger.Warn("Stock could not be priced, valuing as zero",
				zap.String("asset", h.Symbol), zap.String("ticker", ticker), zap.Error(err))
		} else {
			row.USDValue = h.Amount * price
			row.LocalValue = row.USDValue * usdToLocal
			row.UnitPriceUSD = price
		}
	}

	report.StockRows = append(report.StockRows, row)
	report.StockTotalLocal += row.LocalValue
}

// highlightPrices resolves the USD unit price of the configured highlight
// symbols, reusing prices already computed for report rows.
func (s *PortfolioValuationService) highlightPrices(ctx context.Context, report *entity.PortfolioReport, ethPrice float64) map[string]float64 {
	if len(s.opts.HighlightSymbols) == 0 {
		return nil
	}

	known := make(map[string]float64, len(report.CryptoRows))
	for _, row := range report.CryptoRows {
		known[row.Symbol] = row.UnitPriceUSD
	}

	prices := make(map[string]float64, len(s.opts.HighlightSymbols))
	for _, symbol := range s.opts.HighlightSymbols {
		symbol = strings.ToUpper(symbol)
		if symbol == "ETH" || symbol == "WETH" {
			prices[symbol] = ethPrice
			continue
		}
		if p, ok := known[symbol]; ok {
			prices[symbol] = p
			continue
		}
		prices[symbol] = s.cryptoUnitPriceUSD(ctx, symbol, ethPrice)
	}
	return prices
}
