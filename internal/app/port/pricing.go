package port

import (
	"context"
	"math/big"

	"portfolio_tracker/internal/domain/entity"
)

// PriceResolver resolves a base/quote pair to a price. It never fails: when no
// source yields a price it logs a diagnostic and returns 0.
type PriceResolver interface {
	Resolve(ctx context.Context, base, quote string) float64
	// Reset discards memoized quotes so the next valuation pass recomputes
	// every price from scratch.
	Reset()
}

// AveragePriceSource is a centralized-exchange quote endpoint keyed by a
// concatenated trading-pair symbol, e.g. "ETHUSDT".
type AveragePriceSource interface {
	AvgPrice(ctx context.Context, symbol string) (entity.ExchangeQuote, error)
	TickerPrice(ctx context.Context, symbol string) (entity.ExchangeQuote, error)
}

// PairDiscoverySource aggregates observed trading pairs for a token address,
// returning per counter-asset symbol the native and USD prices of the base
// token.
type PairDiscoverySource interface {
	TokenPrices(ctx context.Context, tokenAddress string) (map[string]entity.PairPrice, error)
}

// BestPriceSource computes the best on-chain execution price for a token pair
// and trade side. The boolean is false when no pool produced a usable quote.
type BestPriceSource interface {
	BestPrice(ctx context.Context, tokenA, tokenB entity.TokenMeta, side entity.TradeSide) (float64, bool)
}

// PoolQuoter issues a single AMM pool price query against one protocol
// version and fee tier. Amounts are raw token units.
type PoolQuoter interface {
	// QuoteExactInput returns the output amount of tokenOut received for
	// amountIn of tokenIn.
	QuoteExactInput(ctx context.Context, version entity.ExchangeVersion, tokenIn, tokenOut string, amountIn *big.Int, feeTier int64) (*big.Int, error)
	// QuoteExactOutput returns the input amount of tokenIn required to
	// receive amountOut of tokenOut.
	QuoteExactOutput(ctx context.Context, version entity.ExchangeVersion, tokenIn, tokenOut string, amountOut *big.Int, feeTier int64) (*big.Int, error)
}

// StockPriceService prices stock holdings. KRWPrice returns a KRW-denominated
// close for a Korean ticker, USDPrice a USD-denominated quote for a US ticker.
type StockPriceService interface {
	KRWPrice(ctx context.Context, ticker string) (float64, error)
	USDPrice(ctx context.Context, ticker string) (float64, error)
}

// PortfolioService builds the full valuation report for one pass.
type PortfolioService interface {
	BuildReport(ctx context.Context) (*entity.PortfolioReport, error)
}
