package client

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"portfolio_tracker/internal/domain/entity"
	wire "portfolio_tracker/internal/entity"

	jsoniter "github.com/json-iterator/go"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// DEXScreenerClient fetches aggregated trading-pair observations for a token
// address from the DEX Screener API.
type DEXScreenerClient interface {
	TokenPrices(ctx context.Context, tokenAddress string) (map[string]entity.PairPrice, error)
}

type dexScreenerClientImpl struct {
	client  *fasthttp.Client
	baseURL string
	timeout time.Duration
	logger  *zap.Logger
}

// NewDEXScreenerClient creates a new DEX Screener client.
func NewDEXScreenerClient(baseURL string, timeout time.Duration, logger *zap.Logger) DEXScreenerClient {
	return &dexScreenerClientImpl{
		client:  &fasthttp.Client{},
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
		logger:  logger.Named("DEXScreenerClient"),
	}
}

// TokenPrices implements DEXScreenerClient. The result maps each observed
// counter-asset symbol to the base token's native and USD price; when a
// counter-asset appears in several pairs the last observation wins.
func (c *dexScreenerClientImpl) TokenPrices(ctx context.Context, tokenAddress string) (map[string]entity.PairPrice, error) {
	if tokenAddress == "" {
		return nil, fmt.Errorf("tokenAddress cannot be empty")
	}

	requestURL := fmt.Sprintf("%s/latest/dex/tokens/%s", c.baseURL, tokenAddress)
	c.logger.Debug("Requesting token pairs from DEX Screener", zap.String("url", requestURL))

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	req.SetRequestURI(requestURL)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.SetContentTypeBytes([]byte("application/json"))

	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	if deadline, ok := ctx.Deadline(); ok {
		if err := c.client.DoDeadline(req, resp, deadline); err != nil {
			c.logger.Error("Failed to execute request to DEX Screener", zap.String("url", requestURL), zap.Error(err))
			return nil, fmt.Errorf("failed to execute request to %s: %w", requestURL, err)
		}
	} else {
		if err := c.client.DoTimeout(req, resp, c.timeout); err != nil {
			c.logger.Error("Failed to execute request to DEX Screener (with default timeout)", zap.String("url", requestURL), zap.Error(err))
			return nil, fmt.Errorf("failed to execute request to %s with default timeout: %w", requestURL, err)
		}
	}

	rawBody := resp.Body()
	if resp.StatusCode() != fasthttp.StatusOK {
		c.logger.Error("DEX Screener API request failed",
			zap.String("url", requestURL),
			zap.Int("statusCode", resp.StatusCode()),
			zap.ByteString("responseBody", rawBody))
		return nil, fmt.Errorf("DEX Screener API request to %s failed with status %d", requestURL, resp.StatusCode())
	}

	var payload wire.DEXTokenPairs
	if err := json.Unmarshal(rawBody, &payload); err != nil {
		c.logger.Error("Failed to unmarshal DEX Screener response",
			zap.String("url", requestURL),
			zap.ByteString("responseBody", rawBody),
			zap.Error(err))
		return nil, fmt.Errorf("failed to unmarshal DEX Screener response from %s: %w", requestURL, err)
	}

	if len(payload.Pairs) == 0 {
		c.logger.Warn("DEXScreener returned 200 OK with no pairs",
			zap.String("url", requestURL),
			zap.String("tokenAddress", tokenAddress))
		return map[string]entity.PairPrice{}, nil
	}

	prices := make(map[string]entity.PairPrice, len(payload.Pairs))
	for _, pair := range payload.Pairs {
		native, errNative := strconv.ParseFloat(pair.PriceNative, 64)
		usd, errUsd := strconv.ParseFloat(pair.PriceUsd, 64)
		if errNative != nil || errUsd != nil {
			c.logger.Warn("Skipping pair with unparsable price",
				zap.String("pairAddress", pair.PairAddress),
				zap.String("priceNative", pair.PriceNative),
				zap.String("priceUsd", pair.PriceUsd))
			continue
		}
		prices[pair.QuoteToken.Symbol] = entity.PairPrice{Native: native, USD: usd}
	}

	c.logger.Debug("Collected pair prices from DEX Screener",
		zap.String("tokenAddress", tokenAddress),
		zap.Int("pairCount", len(payload.Pairs)),
		zap.Int("counterAssets", len(prices)))
	return prices, nil
}
