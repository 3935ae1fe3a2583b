package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"portfolio_tracker/internal/domain/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeExchange struct {
	avgPrices    map[string]float64
	tickerPrices map[string]float64
	avgCalls     int
}

func (f *fakeExchange) AvgPrice(_ context.Context, symbol string) (entity.ExchangeQuote, error) {
	f.avgCalls++
	if p, ok := f.avgPrices[symbol]; ok {
		return entity.ExchangeQuote{Kind: entity.QuoteAveraged, Value: p}, nil
	}
	return entity.ExchangeQuote{}, fmt.Errorf("no average price for %s", symbol)
}

func (f *fakeExchange) TickerPrice(_ context.Context, symbol string) (entity.ExchangeQuote, error) {
	if p, ok := f.tickerPrices[symbol]; ok {
		return entity.ExchangeQuote{Kind: entity.QuoteDirect, Value: p}, nil
	}
	return entity.ExchangeQuote{}, fmt.Errorf("no ticker price for %s", symbol)
}

type fakeDiscovery struct {
	prices map[string]map[string]entity.PairPrice
	calls  int
}

func (f *fakeDiscovery) TokenPrices(_ context.Context, tokenAddress string) (map[string]entity.PairPrice, error) {
	f.calls++
	if p, ok := f.prices[tokenAddress]; ok {
		return p, nil
	}
	return nil, fmt.Errorf("no pairs for %s", tokenAddress)
}

type fakeBestPrice struct {
	sellPrice float64
	sellOK    bool
	buyPrice  float64
	buyOK     bool
	sides     []entity.TradeSide
}

func (f *fakeBestPrice) BestPrice(_ context.Context, _, _ entity.TokenMeta, side entity.TradeSide) (float64, bool) {
	f.sides = append(f.sides, side)
	if side == entity.SideSell {
		return f.sellPrice, f.sellOK
	}
	return f.buyPrice, f.buyOK
}

func testBook() entity.AddressBook {
	return entity.BuildAddressBook([]entity.Holding{
		{Symbol: "TKN", Class: entity.AssetClassCrypto, Subtype: entity.SubtypeDEX, Address: "0xaaa", Decimals: 18},
		{Symbol: "WETH", Class: entity.AssetClassCrypto, Subtype: entity.SubtypeDEX, Address: "0xweth", Decimals: 18},
	})
}

func TestResolveETHUsesExchange(t *testing.T) {
	exchange := &fakeExchange{avgPrices: map[string]float64{"ETHUSDT": 3150.5}}
	svc := NewPriceService(exchange, &fakeDiscovery{}, &fakeBestPrice{}, testBook(), time.Minute, zap.NewNop())

	assert.InDelta(t, 3150.5, svc.Resolve(context.Background(), "ETH", "USDT"), 1e-9)
	assert.InDelta(t, 3150.5, svc.Resolve(context.Background(), "WETH", "USDT"), 1e-9)
}

func TestResolveETHFallsBackToTicker(t *testing.T) {
	exchange := &fakeExchange{tickerPrices: map[string]float64{"ETHUSDT": 3149.0}}
	svc := NewPriceService(exchange, &fakeDiscovery{}, &fakeBestPrice{}, testBook(), time.Minute, zap.NewNop())

	assert.InDelta(t, 3149.0, svc.Resolve(context.Background(), "ETH", "USDT"), 1e-9)
}

func TestResolveStableQuoteTakesMaxUSD(t *testing.T) {
	discovery := &fakeDiscovery{prices: map[string]map[string]entity.PairPrice{
		"0xaaa": {
			"WETH": {Native: 0.001, USD: 3.10},
			"USDC": {Native: 3.12, USD: 3.12},
		},
	}}
	svc := NewPriceService(&fakeExchange{}, discovery, &fakeBestPrice{}, testBook(), time.Minute, zap.NewNop())

	assert.InDelta(t, 3.12, svc.Resolve(context.Background(), "TKN", "USDT"), 1e-9)
}

func TestResolveStableQuoteKeepsZeroUSDPrice(t *testing.T) {
	discovery := &fakeDiscovery{prices: map[string]map[string]entity.PairPrice{
		"0xaaa": {
			"USDC": {Native: 0, USD: 0},
			"USDT": {Native: 0, USD: 0},
		},
	}}
	amm := &fakeBestPrice{sellPrice: 0.5, sellOK: true}
	svc := NewPriceService(&fakeExchange{}, discovery, amm, testBook(), time.Minute, zap.NewNop())

	// Zero is still an observation; a dead market must not fall through to
	// the pool quoter.
	assert.Zero(t, svc.Resolve(context.Background(), "TKN", "USDT"))
	assert.Empty(t, amm.sides)
}

func TestResolveETHQuoteUsesWrappedPair(t *testing.T) {
	discovery := &fakeDiscovery{prices: map[string]map[string]entity.PairPrice{
		"0xaaa": {"WETH": {Native: 0.00095, USD: 3.0}},
	}}
	svc := NewPriceService(&fakeExchange{}, discovery, &fakeBestPrice{}, testBook(), time.Minute, zap.NewNop())

	assert.InDelta(t, 0.00095, svc.Resolve(context.Background(), "TKN", "ETH"), 1e-9)
}

func TestResolveFallsBackToPoolsSellThenBuy(t *testing.T) {
	amm := &fakeBestPrice{buyPrice: 0.0011, buyOK: true}
	svc := NewPriceService(&fakeExchange{}, &fakeDiscovery{}, amm, testBook(), time.Minute, zap.NewNop())

	price := svc.Resolve(context.Background(), "TKN", "WETH")
	assert.InDelta(t, 0.0011, price, 1e-9)
	require.Equal(t, []entity.TradeSide{entity.SideSell, entity.SideBuy}, amm.sides)
}

func TestResolveUnknownAssetIsZero(t *testing.T) {
	svc := NewPriceService(&fakeExchange{}, &fakeDiscovery{}, &fakeBestPrice{}, testBook(), time.Minute, zap.NewNop())

	assert.Zero(t, svc.Resolve(context.Background(), "GHOST", "USDT"))
}

func TestResolveMemoizesWithinTTL(t *testing.T) {
	exchange := &fakeExchange{avgPrices: map[string]float64{"ETHUSDT": 3150.5}}
	svc := NewPriceService(exchange, &fakeDiscovery{}, &fakeBestPrice{}, testBook(), time.Minute, zap.NewNop())

	svc.Resolve(context.Background(), "ETH", "USDT")
	svc.Resolve(context.Background(), "ETH", "USDT")
	assert.Equal(t, 1, exchange.avgCalls)
}

func TestResetDropsMemoizedQuotes(t *testing.T) {
	exchange := &fakeExchange{avgPrices: map[string]float64{"ETHUSDT": 3000}}
	svc := NewPriceService(exchange, &fakeDiscovery{}, &fakeBestPrice{}, testBook(), time.Minute, zap.NewNop())

	assert.InDelta(t, 3000, svc.Resolve(context.Background(), "ETH", "USDT"), 1e-9)

	exchange.avgPrices["ETHUSDT"] = 3500
	svc.Reset()

	assert.InDelta(t, 3500, svc.Resolve(context.Background(), "ETH", "USDT"), 1e-9)
	assert.Equal(t, 2, exchange.avgCalls)
}
