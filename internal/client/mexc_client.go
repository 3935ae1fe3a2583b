package client

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"portfolio_tracker/internal/domain/entity"
	wire "portfolio_tracker/internal/entity"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

// MEXCClient queries the exchange's public spot endpoints for a trading pair
// built by symbol concatenation, e.g. "ETHUSDT".
type MEXCClient interface {
	AvgPrice(ctx context.Context, symbol string) (entity.ExchangeQuote, error)
	TickerPrice(ctx context.Context, symbol string) (entity.ExchangeQuote, error)
}

type mexcClientImpl struct {
	client  *fasthttp.Client
	baseURL string
	apiKey  string
	timeout time.Duration
	logger  *zap.Logger
}

// NewMEXCClient creates a new exchange quote client. The API key is optional
// for the public price endpoints.
func NewMEXCClient(baseURL, apiKey string, timeout time.Duration, logger *zap.Logger) MEXCClient {
	return &mexcClientImpl{
		client:  &fasthttp.Client{},
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		timeout: timeout,
		logger:  logger.Named("MEXCClient"),
	}
}

// AvgPrice returns the rolling average price of symbol.
func (c *mexcClientImpl) AvgPrice(ctx context.Context, symbol string) (entity.ExchangeQuote, error) {
	var payload wire.AvgPriceResponse
	if err := c.getJSON(ctx, "/api/v3/avgPrice", symbol, &payload); err != nil {
		return entity.ExchangeQuote{}, err
	}
	value, err := strconv.ParseFloat(payload.Price, 64)
	if err != nil {
		return entity.ExchangeQuote{}, fmt.Errorf("failed to parse avg price %q for %s: %w", payload.Price, symbol, err)
	}
	return entity.ExchangeQuote{Kind: entity.QuoteAveraged, Value: value}, nil
}

// TickerPrice returns the last traded price of symbol.
func (c *mexcClientImpl) TickerPrice(ctx context.Context, symbol string) (entity.ExchangeQuote, error) {
	var payload wire.TickerPriceResponse
	if err := c.getJSON(ctx, "/api/v3/ticker/price", symbol, &payload); err != nil {
		return entity.ExchangeQuote{}, err
	}
	value, err := strconv.ParseFloat(payload.Price, 64)
	if err != nil {
		return entity.ExchangeQuote{}, fmt.Errorf("failed to parse ticker price %q for %s: %w", payload.Price, symbol, err)
	}
	return entity.ExchangeQuote{Kind: entity.QuoteDirect, Value: value}, nil
}

func (c *mexcClientImpl) getJSON(ctx context.Context, path, symbol string, out any) error {
	if symbol == "" {
		return fmt.Errorf("symbol cannot be empty")
	}

	requestURL := fmt.Sprintf("%s%s?symbol=%s", c.baseURL, path, symbol)
	c.logger.Debug("Requesting exchange quote", zap.String("url", requestURL))

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	req.SetRequestURI(requestURL)
	req.Header.SetMethod(fasthttp.MethodGet)
	if c.apiKey != "" {
		req.Header.Set("X-MEXC-APIKEY", c.apiKey)
	}

	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	if deadline, ok := ctx.Deadline(); ok {
		if err := c.client.DoDeadline(req, resp, deadline); err != nil {
			return fmt.Errorf("failed to execute request to %s: %w", requestURL, err)
		}
	} else {
		if err := c.client.DoTimeout(req, resp, c.timeout); err != nil {
			return fmt.Errorf("failed to execute request to %s with default timeout: %w", requestURL, err)
		}
	}

	if resp.StatusCode() != fasthttp.StatusOK {
		c.logger.Error("Exchange API request failed",
			zap.String("url", requestURL),
			zap.Int("statusCode", resp.StatusCode()),
			zap.ByteString("responseBody", resp.Body()))
		return fmt.Errorf("exchange request to %s failed with status %d", requestURL, resp.StatusCode())
	}

	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return fmt.Errorf("failed to unmarshal exchange response from %s: %w", requestURL, err)
	}
	return nil
}
