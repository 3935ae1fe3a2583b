package service

import (
	"context"
	"fmt"

	"portfolio_tracker/internal/app/port"
	"portfolio_tracker/internal/client"

	"go.uber.org/zap"
)

// StockService implements port.StockPriceService over the two market data
// clients: the Korean daily-chart endpoint for KRW closes and the US chart
// endpoint for USD quotes.
type StockService struct {
	kr     client.NaverChartClient
	us     client.YahooQuoteClient
	logger *zap.Logger
}

var _ port.StockPriceService = (*StockService)(nil)

// NewStockService creates a StockService.
func NewStockService(kr client.NaverChartClient, us client.YahooQuoteClient, logger *zap.Logger) *StockService {
	return &StockService{kr: kr, us: us, logger: logger.Named("stock_service")}
}

// KRWPrice implements port.StockPriceService.
func (s *StockService) KRWPrice(ctx context.Context, ticker string) (float64, error) {
	price, err := s.kr.DailyClose(ctx, ticker)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch KRW close for %s: %w", ticker, err)
	}
	s.logger.Debug("Korean stock priced", zap.String("ticker", ticker), zap.Float64("krw", price))
	return price, nil
}

// USDPrice implements port.StockPriceService.
func (s *StockService) USDPrice(ctx context.Context, ticker string) (float64, error) {
	price, err := s.us.QuotePrice(ctx, ticker)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch USD quote for %s: %w", ticker, err)
	}
	s.logger.Debug("US stock priced", zap.String("ticker", ticker), zap.Float64("usd", price))
	return price, nil
}
