package service

import (
	"context"
	"strings"
	"time"

	"portfolio_tracker/internal/app/port"
	"portfolio_tracker/internal/domain/entity"
	"portfolio_tracker/internal/pkg/metrics"

	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

var stableQuotes = map[string]bool{
	"USDT": true,
	"USDC": true,
	"DAI":  true,
}

// PriceService implements port.PriceResolver. It tries pricing sources in a
// fixed order: the exchange average-price endpoint for ETH, the pair-discovery
// aggregator for tokens with a known address, and finally the on-chain
// best-price fan-out. Results are memoized for the duration of one pass, and
// a pair no source can price resolves to 0 with a diagnostic.
type PriceService struct {
	exchange  port.AveragePriceSource
	discovery port.PairDiscoverySource
	amm       port.BestPriceSource
	book      entity.AddressBook
	cache     *gocache.Cache
	logger    *zap.Logger
}

var _ port.PriceResolver = (*PriceService)(nil)

// NewPriceService creates a PriceService over the given sources. book maps
// asset symbols to on-chain token metadata; quoteTTL bounds how long a
// resolved price is reused.
func NewPriceService(
	exchange port.AveragePriceSource,
	discovery port.PairDiscoverySource,
	amm port.BestPriceSource,
	book entity.AddressBook,
	quoteTTL time.Duration,
	logger *zap.Logger,
) *PriceService {
	return &PriceService{
		exchange:  exchange,
		discovery: discovery,
		amm:       amm,
		book:      book,
		cache:     gocache.New(quoteTTL, 2*quoteTTL),
		logger:    logger.Named("price_service"),
	}
}

// Resolve implements port.PriceResolver.
func (s *PriceService) Resolve(ctx context.Context, base, quote string) float64 {
	base = strings.ToUpper(base)
	quote = strings.ToUpper(quote)

	cacheKey := base + "/" + quote
	if cached, found := s.cache.Get(cacheKey); found {
		return cached.(float64)
	}

	price := s.resolve(ctx, base, quote)
	s.cache.Set(cacheKey, price, gocache.DefaultExpiration)
	return price
}

// Reset implements port.PriceResolver. Memoization only holds within one
// valuation pass; the caller resets before recomputing a report.
func (s *PriceService) Reset() {
	s.cache.Flush()
}

func (s *PriceService) resolve(ctx context.Context, base, quote string) float64 {
	if base == "ETH" || base == "WETH" {
		return s.exchangePrice(ctx, base, quote)
	}

	baseMeta, ok := s.book.Lookup(base)
	if !ok {
		s.logger.Warn("No token address known for asset, pricing as zero", zap.String("asset", base))
		metrics.PriceLookupFailures.WithLabelValues("unknown_asset").Inc()
		return 0
	}

	prices, err := s.discovery.TokenPrices(ctx, baseMeta.Address)
	if err != nil {
		s.logger.Warn("Pair discovery lookup failed",
			zap.String("asset", base),
			zap.String("address", baseMeta.Address),
			zap.Error(err))
		metrics.PriceLookupFailures.WithLabelValues("pair_discovery").Inc()
		prices = map[string]entity.PairPrice{}
	}

	if stableQuotes[quote] {
		if price, ok := maxUSDPrice(prices); ok {
			metrics.PriceLookups.WithLabelValues(string(entity.SourceDEXScreener)).Inc()
			return price
		}
		return s.ammPrice(ctx, base, quote, baseMeta)
	}

	pairSymbol := quote
	if quote == "ETH" {
		// The discovery service only ever sees the wrapped form.
		pairSymbol = "WETH"
	}
	if pp, ok := prices[pairSymbol]; ok && pp.Native > 0 {
		metrics.PriceLookups.WithLabelValues(string(entity.SourceDEXScreener)).Inc()
		return pp.Native
	}

	return s.ammPrice(ctx, base, quote, baseMeta)
}

// exchangePrice prices ETH (or its wrapped form) against quote on the
// centralized exchange, preferring the averaged endpoint and falling back to
// the last-trade ticker.
func (s *PriceService) exchangePrice(ctx context.Context, base, quote string) float64 {
	symbol := base
	if symbol == "WETH" {
		symbol = "ETH"
	}
	pair := symbol + quote

	result, err := s.exchange.AvgPrice(ctx, pair)
	if err != nil {
		s.logger.Debug("Average price lookup failed, falling back to ticker",
			zap.String("pair", pair), zap.Error(err))
		result, err = s.exchange.TickerPrice(ctx, pair)
	}
	if err != nil {
		s.logger.Warn("Exchange price lookup failed", zap.String("pair", pair), zap.Error(err))
		metrics.PriceLookupFailures.WithLabelValues("exchange").Inc()
		return 0
	}

	s.logger.Debug("Exchange price resolved",
		zap.String("pair", pair),
		zap.String("kind", string(result.Kind)),
		zap.Float64("price", result.Value))
	metrics.PriceLookups.WithLabelValues(string(entity.SourceDirect)).Inc()
	return result.Value
}

// ammPrice falls back to the on-chain best execution price, first as a sell
// and, when no pool quotes the sell, as a buy.
func (s *PriceService) ammPrice(ctx context.Context, base, quote string, baseMeta entity.TokenMeta) float64 {
	quoteSymbol := quote
	if quoteSymbol == "ETH" {
		quoteSymbol = "WETH"
	}
	quoteMeta, ok := s.book.Lookup(quoteSymbol)
	if !ok {
		s.logger.Warn("No token address known for quote asset, pricing as zero",
			zap.String("asset", base),
			zap.String("quote", quote))
		metrics.PriceLookupFailures.WithLabelValues("unknown_asset").Inc()
		return 0
	}

	price, ok := s.amm.BestPrice(ctx, baseMeta, quoteMeta, entity.SideSell)
	if !ok {
		price, ok = s.amm.BestPrice(ctx, baseMeta, quoteMeta, entity.SideBuy)
	}
	if !ok {
		s.logger.Warn("No pricing source could resolve pair, pricing as zero",
			zap.String("base", base),
			zap.String("quote", quote))
		metrics.PriceLookupFailures.WithLabelValues("amm").Inc()
		return 0
	}

	metrics.PriceLookups.WithLabelValues(string(entity.SourceAMMBest)).Inc()
	return price
}

// maxUSDPrice returns the maximum observed USD price across all pairs, even
// when every observation is zero; absence is only the empty set.
func maxUSDPrice(prices map[string]entity.PairPrice) (float64, bool) {
	var best float64
	found := false
	for _, pp := range prices {
		if !found || pp.USD > best {
			best = pp.USD
			found = true
		}
	}
	return best, found
}
